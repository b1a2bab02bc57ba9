package observability

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/trace"
)

// Sink receives the final reasoning trace of a query. Fire-and-forget: the
// pipeline never consults the result and never fails because a sink did.
type Sink interface {
	Publish(ctx context.Context, t trace.ReasoningTrace)
}

const DefaultStream = "reasoning-traces"

// RedisSink appends traces to a Redis stream for display consumers.
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{
		client: client,
		stream: stream,
	}
}

func (s *RedisSink) Publish(ctx context.Context, t trace.ReasoningTrace) {
	payload, err := json.Marshal(t)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal reasoning trace")
		return
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"trace": payload},
	}).Err()
	if err != nil {
		log.Warn().Err(err).Str("stream", s.stream).Msg("Failed to publish reasoning trace")
	}
}

// LogSink writes traces to the application log. Used when Redis is not
// configured.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Publish(ctx context.Context, t trace.ReasoningTrace) {
	log.Info().
		Int("steps", len(t.Steps)).
		Int("chunks_retrieved", t.ChunksRetrieved).
		Int("documents_used", t.DocumentsUsed).
		Float64("confidence", t.Confidence.Overall).
		Str("model", t.Model).
		Int64("total_ms", t.TotalMs).
		Msg("Reasoning trace")
}
