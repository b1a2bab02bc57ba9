package conversation

import (
	"context"
	"time"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// HasHistory reports whether the conversation carries prior turns that a
// follow-up question can inherit grounding from.
func (c *Conversation) HasHistory() bool {
	return c != nil && len(c.Messages) > 0
}

type Store interface {
	CreateSession(ctx context.Context) (string, error)
	GetConversation(ctx context.Context, sessionID string) (*Conversation, error)
	AddMessage(ctx context.Context, sessionID string, msg Message) error
}
