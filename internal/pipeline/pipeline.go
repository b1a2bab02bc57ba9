// Package pipeline sequences access filtering, retrieval, generation,
// citation mapping, confidence scoring and the silence gate into one query
// state machine.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/citation"
	"github.com/vaultmind/vault-agent/internal/confidence"
	"github.com/vaultmind/vault-agent/internal/config"
	"github.com/vaultmind/vault-agent/internal/observability"
	"github.com/vaultmind/vault-agent/internal/retrieval"
	"github.com/vaultmind/vault-agent/internal/silence"
	"github.com/vaultmind/vault-agent/internal/trace"
)

const noEvidenceRefusal = "I couldn't find anything in your documents related to this question. " +
	"You could rephrase it to be more specific, or add documents that cover this topic."

type Pipeline struct {
	access    AccessResolver
	retriever ChunkRetriever
	generator Generator
	sink      observability.Sink
	policy    config.Policy

	parser     *citation.Parser
	calculator *confidence.Calculator
	gate       silence.Gate
}

func New(access AccessResolver, retriever ChunkRetriever, generator Generator, sink observability.Sink, policy config.Policy) *Pipeline {
	return &Pipeline{
		access:     access,
		retriever:  retriever,
		generator:  generator,
		sink:       sink,
		policy:     policy,
		parser:     citation.NewParser(policy.ExcerptLength),
		calculator: confidence.NewCalculator(policy),
		gate:       silence.NewGate(policy.SilenceThreshold, policy.FollowUpRelaxation),
	}
}

// Execute runs one query end to end and returns its result. Embedding and
// search trouble degrades to the no-evidence refusal inside the retriever; a
// failed generation call is the one fatal case and propagates unmodified.
func (p *Pipeline) Execute(ctx context.Context, in QueryInput) (*Result, error) {
	start := time.Now()
	collector := trace.NewCollector()

	documentIDs, err := p.filterAccess(ctx, in, collector)
	if err != nil {
		p.publishTrace(ctx, collector, confidence.Breakdown{}, 0, 0)
		return nil, err
	}

	if len(documentIDs) == 0 {
		return p.answerEmptyVault(ctx, in, collector, start)
	}

	chunks := p.retrieve(ctx, in, documentIDs, collector)
	if len(chunks) == 0 {
		return p.refuseNoEvidence(ctx, in, collector, start), nil
	}

	stepID := collector.StartStep("generate", "Generating a grounded answer")
	response, err := p.generator.InvokeModel(ctx, p.buildGenerateRequest(in, chunks))
	if err != nil {
		collector.FailStep(stepID, err)
		p.publishTrace(ctx, collector, confidence.Breakdown{}, len(chunks), 0)
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	collector.CompleteStep(stepID, nil)

	result := p.postprocess(ctx, in, chunks, response.Content, collector, start)
	return result, nil
}

func (p *Pipeline) filterAccess(ctx context.Context, in QueryInput, collector *trace.Collector) ([]string, error) {
	stepID := collector.StartStep("access_filter", "Resolving which documents this request may see")

	documentIDs, err := p.access.ResolveAccessibleDocuments(ctx, in.UserID, in.MaxTier, in.Privileged)
	if err != nil {
		collector.FailStep(stepID, err)
		// Guessing at visibility on a failed access check would risk leaking
		// restricted documents, so this is not a soft-degrade case.
		return nil, fmt.Errorf("failed to resolve document access: %w", err)
	}

	collector.CompleteStep(stepID, map[string]any{"documents": len(documentIDs)})
	return documentIDs, nil
}

func (p *Pipeline) retrieve(ctx context.Context, in QueryInput, documentIDs []string, collector *trace.Collector) []retrieval.RetrievedChunk {
	stepID := collector.StartStep("retrieve", "Searching accessible documents for relevant passages")
	chunks := p.retriever.Retrieve(ctx, in.Query, documentIDs, p.policy.TopK)
	collector.CompleteStep(stepID, map[string]any{"chunks": len(chunks)})
	return chunks
}

// answerEmptyVault handles the vault-with-no-documents branch: retrieval is
// skipped and the generator is called in direct-chat mode.
func (p *Pipeline) answerEmptyVault(ctx context.Context, in QueryInput, collector *trace.Collector, start time.Time) (*Result, error) {
	stepID := collector.StartStep("generate_direct", "Vault is empty, answering conversationally")

	response, err := p.generator.InvokeModel(ctx, p.buildDirectRequest(in))
	if err != nil {
		collector.FailStep(stepID, err)
		p.publishTrace(ctx, collector, confidence.Breakdown{}, 0, 0)
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	collector.CompleteStep(stepID, nil)

	conf := confidence.Breakdown{Overall: p.policy.EmptyVaultConfidence}
	p.publishTrace(ctx, collector, conf, 0, 0)

	return &Result{
		Outcome:    OutcomeEmptyVault,
		Answer:     response.Content,
		Confidence: conf,
		Model:      p.generator.ModelID(),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// refuseNoEvidence handles the zero-chunk branch without spending a model
// call: there is nothing to ground a generation on.
func (p *Pipeline) refuseNoEvidence(ctx context.Context, in QueryInput, collector *trace.Collector, start time.Time) *Result {
	conf := confidence.Breakdown{Overall: p.policy.NoEvidenceConfidence}
	p.publishTrace(ctx, collector, conf, 0, 0)

	log.Info().Str("user_id", in.UserID).Msg("No relevant chunks retrieved, refusing without generation")

	return &Result{
		Outcome:    OutcomeNoEvidence,
		Answer:     noEvidenceRefusal,
		Confidence: conf,
		Model:      p.generator.ModelID(),
		LatencyMs:  time.Since(start).Milliseconds(),
	}
}

// postprocess maps citations, scores confidence and applies the silence gate
// over a fully assembled answer.
func (p *Pipeline) postprocess(ctx context.Context, in QueryInput, chunks []retrieval.RetrievedChunk, answer string, collector *trace.Collector, start time.Time) *Result {
	hasHistory := in.hasHistory()

	stepID := collector.StartStep("cite", "Mapping citation markers to retrieved passages")
	citations := p.parser.Parse(answer, chunks)
	collector.CompleteStep(stepID, map[string]any{"citations": len(citations)})

	stepID = collector.StartStep("score", "Scoring answer confidence")
	conf := p.calculator.Score(chunks, citations, hasHistory)
	collector.CompleteStep(stepID, map[string]any{"overall": conf.Overall})

	stepID = collector.StartStep("gate", "Applying the silence protocol")
	verdict := p.gate.Apply(conf, hasHistory, answer, citations)
	collector.CompleteStep(stepID, map[string]any{
		"silenced":            verdict.Silenced,
		"effective_threshold": verdict.EffectiveThreshold,
	})

	outcome := OutcomeAnswered
	if verdict.Silenced {
		outcome = OutcomeSilenced
	}

	p.publishTrace(ctx, collector, conf, len(chunks), citation.DistinctDocumentCount(citations))

	return &Result{
		Outcome:         outcome,
		Answer:          verdict.Answer,
		Citations:       verdict.Citations,
		Confidence:      conf,
		ChunksUsed:      len(chunks),
		LatencyMs:       time.Since(start).Milliseconds(),
		Model:           p.generator.ModelID(),
		RetrievedChunks: chunks,
	}
}

// publishTrace hands the trace to the observability sink. Trace delivery must
// never alter a pipeline outcome, so every failure is swallowed here.
func (p *Pipeline) publishTrace(ctx context.Context, collector *trace.Collector, conf confidence.Breakdown, chunksRetrieved, documentsUsed int) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Any("panic", r).Msg("Trace publishing panicked")
		}
	}()

	if p.sink == nil {
		return
	}

	p.sink.Publish(ctx, collector.BuildTrace(conf, chunksRetrieved, documentsUsed, p.generator.ModelID()))
}
