package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/agent"
	"github.com/vaultmind/vault-agent/internal/bedrock"
	"github.com/vaultmind/vault-agent/internal/config"
	"github.com/vaultmind/vault-agent/internal/conversation"
	"github.com/vaultmind/vault-agent/internal/database"
	"github.com/vaultmind/vault-agent/internal/embedding"
	"github.com/vaultmind/vault-agent/internal/observability"
	"github.com/vaultmind/vault-agent/internal/pipeline"
	"github.com/vaultmind/vault-agent/internal/retrieval"
)

type Config struct {
	AWSRegion        string
	ClaudeModelID    string
	EmbeddingModelID string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	TraceStream   string
}

type Dependencies struct {
	DB      *database.DB
	Handler *agent.Handler
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
		EmbeddingModelID: getEnv("EMBEDDING_MODEL_ID", "amazon.titan-embed-text-v2:0"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "vaultmind"),
		DBSSLMode:        getEnv("DB_SSL_MODE", "disable"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		TraceStream:      getEnv("TRACE_STREAM", observability.DefaultStream),
	}
}

// Wire builds the full query stack: Postgres, Bedrock generation and
// embeddings, Redis conversation store, trace sink and the pipeline behind
// the HTTP handler.
func Wire(ctx context.Context, cfg *Config) (*Dependencies, error) {
	policy, err := config.LoadPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	db, err := database.New(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	bedrockClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.EmbeddingModelID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	var conversationStore conversation.Store
	var sink observability.Sink
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis is unreachable, using in-memory sessions and log traces")
		conversationStore = conversation.NewMemoryStore()
		sink = observability.NewLogSink()
	} else {
		conversationStore = conversation.NewRedisStore(redisClient)
		sink = observability.NewRedisSink(redisClient, cfg.TraceStream)
	}

	retriever := retrieval.New(embedder, db)
	p := pipeline.New(db, retriever, bedrockClient, sink, policy)

	service := agent.NewService(p, conversationStore, db, cfg.ClaudeModelID)
	handler := agent.NewHandler(service)

	return &Dependencies{
		DB:      db,
		Handler: handler,
	}, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
