package confidence

import (
	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/config"
	"github.com/vaultmind/vault-agent/internal/retrieval"
)

// Breakdown is the three-factor confidence score for one answer. Each factor
// is in [0,1]; Overall is their weighted combination, capped below 1 so
// confidence is never reported as certain.
type Breakdown struct {
	RetrievalCoverage float64 `json:"retrieval_coverage"`
	SourceAgreement   float64 `json:"source_agreement"`
	ModelCertainty    float64 `json:"model_certainty"`
	Overall           float64 `json:"overall"`
}

type Calculator struct {
	policy config.Policy
}

func NewCalculator(policy config.Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Score combines retrieval and citation statistics into a Breakdown.
//
//   - retrieval coverage: average similarity, saturating at the coverage
//     saturation point
//   - source agreement: distinct cited documents, saturating at the source
//     saturation count
//   - model certainty: citation density, with a flat floor when the answer
//     carries no citations at all
//
// A follow-up question inherits grounding from the prior turn, so history
// adds a flat boost before the ceiling clamp.
func (c *Calculator) Score(retrievedChunks []retrieval.RetrievedChunk, citations []citation.Citation, hasHistory bool) Breakdown {
	if len(retrievedChunks) == 0 {
		// Defensive default only: the orchestrator intercepts the zero-chunk
		// case before scoring.
		return Breakdown{Overall: c.policy.ZeroChunkConfidence}
	}

	var similaritySum float64
	for _, chunk := range retrievedChunks {
		similaritySum += chunk.Similarity
	}
	avgSimilarity := similaritySum / float64(len(retrievedChunks))

	coverage := clamp01(avgSimilarity / c.policy.CoverageSaturation)
	agreement := clamp01(float64(citation.DistinctDocumentCount(citations)) / float64(c.policy.SourceSaturation))

	certainty := c.policy.NoCitationCertainty
	if len(citations) > 0 {
		certainty = clamp01(float64(len(citations)) / float64(c.policy.CitationSaturation))
	}

	overall := c.policy.CoverageWeight*coverage +
		c.policy.AgreementWeight*agreement +
		c.policy.CertaintyWeight*certainty

	if hasHistory {
		overall += c.policy.HistoryBoost
	}

	if overall > c.policy.ConfidenceCeiling {
		overall = c.policy.ConfidenceCeiling
	}
	if overall < 0 {
		overall = 0
	}

	return Breakdown{
		RetrievalCoverage: coverage,
		SourceAgreement:   agreement,
		ModelCertainty:    certainty,
		Overall:           overall,
	}
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}
