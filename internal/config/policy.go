package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds every tunable constant of the answer pipeline. The values
// below ship as defaults and can be overridden from a YAML file; none of
// them should be hardcoded anywhere else.
type Policy struct {
	// Silence Protocol
	SilenceThreshold   float64 `yaml:"silence_threshold"`
	FollowUpRelaxation float64 `yaml:"follow_up_relaxation"`

	// Confidence scoring
	CoverageWeight       float64 `yaml:"coverage_weight"`
	AgreementWeight      float64 `yaml:"agreement_weight"`
	CertaintyWeight      float64 `yaml:"certainty_weight"`
	CoverageSaturation   float64 `yaml:"coverage_saturation"`
	SourceSaturation     int     `yaml:"source_saturation"`
	CitationSaturation   int     `yaml:"citation_saturation"`
	NoCitationCertainty  float64 `yaml:"no_citation_certainty"`
	HistoryBoost         float64 `yaml:"history_boost"`
	ConfidenceCeiling    float64 `yaml:"confidence_ceiling"`
	EmptyVaultConfidence float64 `yaml:"empty_vault_confidence"`
	NoEvidenceConfidence float64 `yaml:"no_evidence_confidence"`
	ZeroChunkConfidence  float64 `yaml:"zero_chunk_confidence"`

	// Retrieval and chunking
	TopK               int `yaml:"top_k"`
	ChunkSizeTokens    int `yaml:"chunk_size_tokens"`
	ChunkOverlapTokens int `yaml:"chunk_overlap_tokens"`
	CharsPerToken      int `yaml:"chars_per_token"`

	// Citations
	ExcerptLength int `yaml:"excerpt_length"`
}

func DefaultPolicy() Policy {
	return Policy{
		SilenceThreshold:     0.85,
		FollowUpRelaxation:   0.8,
		CoverageWeight:       0.4,
		AgreementWeight:      0.4,
		CertaintyWeight:      0.2,
		CoverageSaturation:   0.8,
		SourceSaturation:     3,
		CitationSaturation:   3,
		NoCitationCertainty:  0.3,
		HistoryBoost:         0.05,
		ConfidenceCeiling:    0.98,
		EmptyVaultConfidence: 0.95,
		NoEvidenceConfidence: 0.3,
		ZeroChunkConfidence:  0.5,
		TopK:                 10,
		ChunkSizeTokens:      512,
		ChunkOverlapTokens:   64,
		CharsPerToken:        4,
		ExcerptLength:        300,
	}
}

// LoadPolicy reads the policy file from POLICY_CONFIG_PATH (default
// configs/policy.yaml). A missing file is not an error: the defaults apply.
func LoadPolicy() (Policy, error) {
	path := os.Getenv("POLICY_CONFIG_PATH")
	if path == "" {
		path = "configs/policy.yaml"
	}

	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, nil
		}
		return policy, fmt.Errorf("failed to read policy config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("failed to parse policy config %s: %w", path, err)
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}

	return policy, nil
}

func (p Policy) Validate() error {
	if p.SilenceThreshold < 0 || p.SilenceThreshold > 1 {
		return fmt.Errorf("silence_threshold must be in [0,1], got %.2f", p.SilenceThreshold)
	}
	if p.FollowUpRelaxation <= 0 || p.FollowUpRelaxation > 1 {
		return fmt.Errorf("follow_up_relaxation must be in (0,1], got %.2f", p.FollowUpRelaxation)
	}
	if p.ChunkOverlapTokens < 0 || p.ChunkOverlapTokens >= p.ChunkSizeTokens {
		return fmt.Errorf("chunk overlap %d must be non-negative and smaller than chunk size %d",
			p.ChunkOverlapTokens, p.ChunkSizeTokens)
	}
	if p.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", p.TopK)
	}
	if p.ExcerptLength <= 0 {
		return fmt.Errorf("excerpt_length must be positive, got %d", p.ExcerptLength)
	}
	return nil
}
