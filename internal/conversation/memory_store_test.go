package conversation

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sessionID, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	conv, err := store.GetConversation(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if conv.HasHistory() {
		t.Error("new session should have no history")
	}

	msg := Message{Role: "user", Content: "What is the refund policy?", Timestamp: time.Now()}
	if err := store.AddMessage(ctx, sessionID, msg); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	conv, err = store.GetConversation(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if !conv.HasHistory() {
		t.Error("expected history after AddMessage")
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != msg.Content {
		t.Errorf("unexpected messages: %+v", conv.Messages)
	}
}

func TestMemoryStore_UnknownSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.GetConversation(ctx, "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
	if err := store.AddMessage(ctx, "missing", Message{Role: "user", Content: "hi"}); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestConversation_HasHistory(t *testing.T) {
	var nilConv *Conversation
	if nilConv.HasHistory() {
		t.Error("nil conversation has no history")
	}
	if (&Conversation{}).HasHistory() {
		t.Error("empty conversation has no history")
	}
	conv := &Conversation{Messages: []Message{{Role: "user", Content: "q"}}}
	if !conv.HasHistory() {
		t.Error("expected history")
	}
}
