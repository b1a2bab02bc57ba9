package agent

import (
	"encoding/json"
	"fmt"

	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/confidence"
	"github.com/vaultmind/vault-agent/internal/middleware"
)

type QueryRequest struct {
	Query           string  `json:"query" description:"The natural-language question to answer"`
	UserID          string  `json:"user_id" description:"Vault owner the question runs against"`
	MaxSecurityTier int     `json:"max_security_tier,omitempty" description:"Highest document security tier this request may read"`
	Privileged      bool    `json:"privileged,omitempty" description:"Lift the security tier ceiling for this request"`
	SessionID       string  `json:"session_id,omitempty" description:"Conversation session to continue; empty starts a new one"`
	SystemPrompt    string  `json:"system_prompt,omitempty" description:"Override for the default system prompt"`
	MaxTokens       int     `json:"max_tokens,omitempty" description:"Maximum tokens to generate (default: 2000)"`
	Temperature     float64 `json:"temperature,omitempty" description:"Temperature for generation (0.0-1.0, default: 0.0)"`
}

type QueryResponse struct {
	SessionID       string               `json:"session_id,omitempty" description:"Session the exchange was recorded under"`
	Answer          string               `json:"answer" description:"The answer or refusal text"`
	Citations       []citation.Citation  `json:"citations" description:"Source passages backing the answer"`
	Confidence      confidence.Breakdown `json:"confidence" description:"Calibrated confidence breakdown"`
	SilenceProtocol bool                 `json:"silence_protocol" description:"True when the assistant refused to answer"`
	EmptyVault      bool                 `json:"empty_vault" description:"True when the vault held no accessible documents"`
	ChunksUsed      int                  `json:"chunks_used" description:"Number of retrieved passages given to the model"`
	LatencyMs       int64                `json:"latency_ms" description:"End to end processing time"`
	Model           string               `json:"model" description:"Model ID used"`
}

type DocumentInfo struct {
	ID           string `json:"id" description:"Document id"`
	Name         string `json:"name" description:"Document display name"`
	SecurityTier int    `json:"security_tier" description:"Security tier of the document"`
}

type DocumentsResponse struct {
	UserID    string         `json:"user_id" description:"Vault owner the listing belongs to"`
	Documents []DocumentInfo `json:"documents" description:"Documents in the vault"`
	Count     int            `json:"count" description:"Number of documents"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return middleware.ErrEmptyQuery
	}

	if q.UserID == "" {
		return middleware.ErrMissingUserID
	}

	if q.MaxTokens < 0 || q.MaxTokens > 100000 {
		return middleware.ErrInvalidMaxTokens
	}

	if q.Temperature < 0.0 || q.Temperature > 1.0 {
		return middleware.ErrInvalidTemperature
	}

	if q.MaxSecurityTier < 0 {
		return middleware.ErrInvalidSecurity
	}

	return nil
}

func (q *QueryRequest) SetDefaults() {
	if q.MaxTokens == 0 {
		q.MaxTokens = 2000
	}
}

type SSEEvent struct {
	Event string      `json:"-"`
	Data  interface{} `json:"-"`
}

// SSE event data structures
type StreamStartEvent struct {
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model"`
}

type StreamChunkEvent struct {
	Text string `json:"text"`
}

type StreamErrorEvent struct {
	Error string `json:"error"`
}

func (e SSEEvent) Format() (string, error) {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Event, string(jsonData)), nil
}
