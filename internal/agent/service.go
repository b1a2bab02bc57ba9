package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/conversation"
	"github.com/vaultmind/vault-agent/internal/database"
	"github.com/vaultmind/vault-agent/internal/pipeline"
)

// DocumentLister exposes the vault's document inventory.
type DocumentLister interface {
	GetAllDocs(ctx context.Context, ownerID string) ([]database.Document, error)
}

type Service struct {
	pipeline          *pipeline.Pipeline
	conversationStore conversation.Store
	documents         DocumentLister
	modelID           string
}

func NewService(p *pipeline.Pipeline, conversationStore conversation.Store, documents DocumentLister, modelID string) *Service {
	return &Service{
		pipeline:          p,
		conversationStore: conversationStore,
		documents:         documents,
		modelID:           modelID,
	}
}

func (s *Service) ListDocuments(ctx context.Context, userID string) (DocumentsResponse, error) {
	docs, err := s.documents.GetAllDocs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list documents")
		return DocumentsResponse{}, err
	}

	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, DocumentInfo{
			ID:           doc.Id,
			Name:         doc.Name,
			SecurityTier: doc.SecurityTier,
		})
	}

	return DocumentsResponse{
		UserID:    userID,
		Documents: infos,
		Count:     len(infos),
	}, nil
}

func (s *Service) Query(ctx context.Context, queryRequest QueryRequest) (QueryResponse, error) {
	sessionID, history := s.getOrCreateSession(ctx, queryRequest)

	result, err := s.pipeline.Execute(ctx, s.buildInput(queryRequest, history))
	if err != nil {
		log.Error().Err(err).Msg("Failed to execute query")
		return QueryResponse{}, err
	}

	s.saveConversationMessages(ctx, sessionID, queryRequest.Query, result.Answer)

	return toQueryResponse(sessionID, result), nil
}

func (s *Service) QueryStream(ctx context.Context, queryRequest QueryRequest, flusher http.Flusher, writer io.Writer) error {
	sessionID, history := s.getOrCreateSession(ctx, queryRequest)

	writeEvent(writer, flusher, SSEEvent{
		Event: "start",
		Data: StreamStartEvent{
			SessionID: sessionID,
			Model:     s.modelID,
		},
	})

	var final *pipeline.Result
	err := s.pipeline.ExecuteStream(ctx, s.buildInput(queryRequest, history), func(e pipeline.Event) error {
		switch e.Type {
		case pipeline.EventFragment:
			writeEvent(writer, flusher, SSEEvent{
				Event: "chunk",
				Data:  StreamChunkEvent{Text: e.Fragment},
			})
		case pipeline.EventMetadata:
			final = e.Result
			writeEvent(writer, flusher, SSEEvent{
				Event: "metadata",
				Data:  toQueryResponse(sessionID, e.Result),
			})
		}
		return nil
	})

	if err != nil {
		writeEvent(writer, flusher, SSEEvent{
			Event: "error",
			Data:  StreamErrorEvent{Error: err.Error()},
		})
		return err
	}

	if final != nil {
		s.saveConversationMessages(ctx, sessionID, queryRequest.Query, final.Answer)
	}

	return nil
}

func (s *Service) buildInput(queryRequest QueryRequest, history *conversation.Conversation) pipeline.QueryInput {
	in := pipeline.QueryInput{
		Query:        queryRequest.Query,
		UserID:       queryRequest.UserID,
		MaxTier:      queryRequest.MaxSecurityTier,
		Privileged:   queryRequest.Privileged,
		SystemPrompt: queryRequest.SystemPrompt,
		MaxTokens:    queryRequest.MaxTokens,
		Temperature:  queryRequest.Temperature,
	}
	if history != nil {
		in.History = history.Messages
	}
	return in
}

func toQueryResponse(sessionID string, result *pipeline.Result) QueryResponse {
	return QueryResponse{
		SessionID:       sessionID,
		Answer:          result.Answer,
		Citations:       result.Citations,
		Confidence:      result.Confidence,
		SilenceProtocol: result.SilenceProtocol(),
		EmptyVault:      result.EmptyVault(),
		ChunksUsed:      result.ChunksUsed,
		LatencyMs:       result.LatencyMs,
		Model:           result.Model,
	}
}

func writeEvent(writer io.Writer, flusher http.Flusher, event SSEEvent) {
	formatted, err := event.Format()
	if err != nil {
		log.Warn().Err(err).Str("event", event.Event).Msg("Failed to format SSE event")
		return
	}
	fmt.Fprint(writer, formatted)
	flusher.Flush()
}

func (s *Service) saveConversationMessages(ctx context.Context, sessionID, query, answer string) {
	if sessionID == "" {
		return // No session to save to
	}

	userMsg := conversation.Message{
		Role:      "user",
		Content:   query,
		Timestamp: time.Now(),
	}
	if err := s.conversationStore.AddMessage(ctx, sessionID, userMsg); err != nil {
		log.Warn().Err(err).Msg("Failed to save user message")
	}

	assistantMsg := conversation.Message{
		Role:      "assistant",
		Content:   answer,
		Timestamp: time.Now(),
	}
	if err := s.conversationStore.AddMessage(ctx, sessionID, assistantMsg); err != nil {
		log.Warn().Err(err).Msg("Failed to save assistant message")
	}
}

func (s *Service) getOrCreateSession(ctx context.Context, queryRequest QueryRequest) (string, *conversation.Conversation) {
	if queryRequest.SessionID == "" {
		sessionID, err := s.conversationStore.CreateSession(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			return "", nil
		}
		return sessionID, nil
	}

	sessionID := queryRequest.SessionID
	history, err := s.conversationStore.GetConversation(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("sessionID", sessionID).Msg("failed to retrieve conversation, continuing without history")
		return sessionID, nil
	}
	return sessionID, history
}
