package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/vaultmind/vault-agent/internal/bedrock"
	"github.com/vaultmind/vault-agent/internal/confidence"
	"github.com/vaultmind/vault-agent/internal/trace"
)

type EventType string

const (
	// EventFragment carries one raw text fragment, forwarded as it arrives.
	EventFragment EventType = "fragment"
	// EventMetadata is the single trailing event carrying the full result.
	// Citation markers can appear anywhere in the answer, so citations,
	// confidence and the gate verdict only exist once the stream completes.
	EventMetadata EventType = "metadata"
)

type Event struct {
	Type     EventType
	Fragment string
	Result   *Result
}

// EmitFunc receives stream events in order. Returning an error stops the
// stream.
type EmitFunc func(Event) error

// ExecuteStream runs one query in streaming mode: raw fragments are forwarded
// to emit as the generator produces them, and the assembled result follows as
// one trailing metadata event. A cancelled context stops forwarding promptly
// and no metadata event is emitted for a cancelled run.
func (p *Pipeline) ExecuteStream(ctx context.Context, in QueryInput, emit EmitFunc) error {
	start := time.Now()
	collector := trace.NewCollector()

	documentIDs, err := p.filterAccess(ctx, in, collector)
	if err != nil {
		p.publishTrace(ctx, collector, confidence.Breakdown{}, 0, 0)
		return err
	}

	if len(documentIDs) == 0 {
		stepID := collector.StartStep("generate_direct", "Vault is empty, answering conversationally")
		content, err := p.streamGeneration(ctx, p.buildDirectRequest(in), emit)
		if err != nil {
			collector.FailStep(stepID, err)
			p.publishTrace(ctx, collector, confidence.Breakdown{}, 0, 0)
			return err
		}
		collector.CompleteStep(stepID, nil)

		conf := confidence.Breakdown{Overall: p.policy.EmptyVaultConfidence}
		p.publishTrace(ctx, collector, conf, 0, 0)

		return emit(Event{Type: EventMetadata, Result: &Result{
			Outcome:    OutcomeEmptyVault,
			Answer:     content,
			Confidence: conf,
			Model:      p.generator.ModelID(),
			LatencyMs:  time.Since(start).Milliseconds(),
		}})
	}

	chunks := p.retrieve(ctx, in, documentIDs, collector)
	if len(chunks) == 0 {
		result := p.refuseNoEvidence(ctx, in, collector, start)
		return emit(Event{Type: EventMetadata, Result: result})
	}

	stepID := collector.StartStep("generate", "Streaming a grounded answer")
	content, err := p.streamGeneration(ctx, p.buildGenerateRequest(in, chunks), emit)
	if err != nil {
		collector.FailStep(stepID, err)
		p.publishTrace(ctx, collector, confidence.Breakdown{}, len(chunks), 0)
		return err
	}
	collector.CompleteStep(stepID, nil)

	result := p.postprocess(ctx, in, chunks, content, collector, start)
	return emit(Event{Type: EventMetadata, Result: result})
}

// streamGeneration bridges the generator's callback into a producer-consumer
// channel: the generator pushes fragments, this goroutine forwards them to
// emit, and the assembled answer is returned once the stream terminates.
func (p *Pipeline) streamGeneration(ctx context.Context, req bedrock.ClaudeRequest, emit EmitFunc) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fragments := make(chan string, 64)

	type generated struct {
		response *bedrock.ClaudeResponse
		err      error
	}
	done := make(chan generated, 1)

	go func() {
		response, err := p.generator.InvokeModelStream(ctx, req, func(fragment string) error {
			select {
			case fragments <- fragment:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(fragments)
		done <- generated{response: response, err: err}
	}()

	var emitErr error
	for fragment := range fragments {
		if emitErr != nil {
			continue // drain so the producer can finish
		}
		if err := emit(Event{Type: EventFragment, Fragment: fragment}); err != nil {
			emitErr = err
			cancel()
		}
	}

	gen := <-done

	if emitErr != nil {
		return "", emitErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if gen.err != nil {
		return "", fmt.Errorf("generation failed: %w", gen.err)
	}

	return gen.response.Content, nil
}
