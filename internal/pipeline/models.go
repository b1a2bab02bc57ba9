package pipeline

import (
	"context"

	"github.com/vaultmind/vault-agent/internal/bedrock"
	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/confidence"
	"github.com/vaultmind/vault-agent/internal/conversation"
	"github.com/vaultmind/vault-agent/internal/retrieval"
)

// AccessResolver decides which documents a request may see.
type AccessResolver interface {
	ResolveAccessibleDocuments(ctx context.Context, ownerID string, maxTier int, privileged bool) ([]string, error)
}

// ChunkRetriever performs access-filtered similarity search. It fails soft:
// backend trouble surfaces as an empty result, never as an error.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string, documentIDs []string, topK int) []retrieval.RetrievedChunk
}

// Generator is the text-generation collaborator.
type Generator interface {
	InvokeModel(ctx context.Context, req bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
	InvokeModelStream(ctx context.Context, req bedrock.ClaudeRequest, callback bedrock.StreamCallback) (*bedrock.ClaudeResponse, error)
	ModelID() string
}

// QueryInput is one question against the caller's vault.
type QueryInput struct {
	Query        string
	UserID       string
	MaxTier      int
	Privileged   bool
	History      []conversation.Message
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

func (in *QueryInput) hasHistory() bool {
	return len(in.History) > 0
}

// Outcome tags which branch produced the result. Modeling the branches as a
// sum makes contradictory states (an empty-vault answer that is also a
// silence refusal) unrepresentable.
type Outcome int

const (
	// OutcomeAnswered is a grounded answer that cleared the silence gate.
	OutcomeAnswered Outcome = iota
	// OutcomeEmptyVault is a direct conversational answer: the vault held no
	// accessible documents, which is a state fact, not an evidence-quality
	// fact, so the assistant stays conversational instead of refusing.
	OutcomeEmptyVault
	// OutcomeNoEvidence is the refusal issued when retrieval produced
	// nothing to ground on; the generator is never called.
	OutcomeNoEvidence
	// OutcomeSilenced is the refusal issued by the silence gate over a
	// generated answer whose confidence fell short.
	OutcomeSilenced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeEmptyVault:
		return "empty_vault"
	case OutcomeNoEvidence:
		return "no_evidence"
	case OutcomeSilenced:
		return "silenced"
	default:
		return "unknown"
	}
}

// Result is the terminal artifact of one query. Owned by the caller after
// return; never mutated afterwards.
type Result struct {
	Outcome         Outcome
	Answer          string
	Citations       []citation.Citation
	Confidence      confidence.Breakdown
	ChunksUsed      int
	LatencyMs       int64
	Model           string
	RetrievedChunks []retrieval.RetrievedChunk
}

// SilenceProtocol reports whether the result is a refusal.
func (r *Result) SilenceProtocol() bool {
	return r.Outcome == OutcomeNoEvidence || r.Outcome == OutcomeSilenced
}

// EmptyVault reports whether the result came from the empty-vault branch.
func (r *Result) EmptyVault() bool {
	return r.Outcome == OutcomeEmptyVault
}
