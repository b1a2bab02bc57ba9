// Package trace records step timing and status across a pipeline run for
// observability. It sits off the decision path: nothing here may alter a
// pipeline outcome, so every operation tolerates misuse and swallows its own
// failures.
package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vaultmind/vault-agent/internal/confidence"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

type Step struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	StartedMs   int64          `json:"started_ms"`
	DurationMs  int64          `json:"duration_ms,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ReasoningTrace is the terminal observability artifact of one query.
type ReasoningTrace struct {
	Steps           []Step               `json:"steps"`
	Confidence      confidence.Breakdown `json:"confidence"`
	ChunksRetrieved int                  `json:"chunks_retrieved"`
	DocumentsUsed   int                  `json:"documents_used"`
	Model           string               `json:"model"`
	TotalMs         int64                `json:"total_ms"`
}

type Collector struct {
	mu      sync.Mutex
	start   time.Time
	steps   []*Step
	started map[string]time.Time
}

func NewCollector() *Collector {
	return &Collector{
		start:   time.Now(),
		started: make(map[string]time.Time),
	}
}

// StartStep appends a running step and returns its id.
func (c *Collector) StartStep(label, description string) string {
	if c == nil {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	step := &Step{
		ID:          uuid.New().String(),
		Label:       label,
		Description: description,
		Status:      StatusRunning,
		StartedMs:   now.Sub(c.start).Milliseconds(),
	}
	c.steps = append(c.steps, step)
	c.started[step.ID] = now

	return step.ID
}

// CompleteStep marks the step complete. Unknown ids are ignored.
func (c *Collector) CompleteStep(stepID string, metadata map[string]any) {
	c.finish(stepID, StatusComplete, metadata)
}

// FailStep marks the step failed, carrying the error text as metadata.
// Unknown ids are ignored.
func (c *Collector) FailStep(stepID string, err error) {
	metadata := map[string]any{}
	if err != nil {
		metadata["error"] = err.Error()
	}
	c.finish(stepID, StatusError, metadata)
}

func (c *Collector) finish(stepID string, status Status, metadata map[string]any) {
	if c == nil || stepID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, step := range c.steps {
		if step.ID != stepID {
			continue
		}
		step.Status = status
		if len(metadata) > 0 {
			step.Metadata = metadata
		}
		if startedAt, ok := c.started[stepID]; ok {
			step.DurationMs = time.Since(startedAt).Milliseconds()
			delete(c.started, stepID)
		}
		return
	}
}

// Steps returns a snapshot of the recorded steps.
func (c *Collector) Steps() []Step {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	steps := make([]Step, 0, len(c.steps))
	for _, step := range c.steps {
		steps = append(steps, *step)
	}
	return steps
}

// BuildTrace assembles the final trace for observability consumers.
func (c *Collector) BuildTrace(conf confidence.Breakdown, chunksRetrieved, documentsUsed int, model string) ReasoningTrace {
	if c == nil {
		return ReasoningTrace{}
	}

	return ReasoningTrace{
		Steps:           c.Steps(),
		Confidence:      conf,
		ChunksRetrieved: chunksRetrieved,
		DocumentsUsed:   documentsUsed,
		Model:           model,
		TotalMs:         time.Since(c.start).Milliseconds(),
	}
}
