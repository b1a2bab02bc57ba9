package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const sessionTTL = 24 * time.Hour

// RedisStore keeps conversation history in Redis lists, one list per session.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) CreateSession(ctx context.Context) (string, error) {
	sessionID := uuid.New().String()

	// Touch the session key so expiry starts at creation time.
	key := sessionKey(sessionID)
	if err := s.client.Set(ctx, key, "{}", sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session_id", sessionID).Msg("Session created")
	return sessionID, nil
}

func (s *RedisStore) GetConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	entries, err := s.client.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", sessionID, err)
	}

	conv := &Conversation{SessionID: sessionID}
	for _, entry := range entries {
		var msg Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Skipping malformed message entry")
			continue
		}
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, nil
}

func (s *RedisStore) AddMessage(ctx context.Context, sessionID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messagesKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message to session %s: %w", sessionID, err)
	}

	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func messagesKey(sessionID string) string {
	return "session:" + sessionID + ":messages"
}
