package agent

import (
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Query handles POST /api/v1/query
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var queryRequest QueryRequest

	if err := req.ReadEntity(&queryRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	queryRequest.SetDefaults()
	if err := queryRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("user_id", queryRequest.UserID).
		Str("session_id", queryRequest.SessionID).
		Int("max_tokens", queryRequest.MaxTokens).
		Msg("Process Query")

	ctx := req.Request.Context()

	queryResponse, err := h.service.Query(ctx, queryRequest)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, queryResponse)
}

// QueryStream handles POST /api/v1/query/stream
func (h *Handler) QueryStream(req *restful.Request, resp *restful.Response) {
	var queryRequest QueryRequest

	if err := req.ReadEntity(&queryRequest); err != nil {
		log.Error().Err(err).Msg("Unable to parse query request")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	queryRequest.SetDefaults()
	if err := queryRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("user_id", queryRequest.UserID).
		Str("session_id", queryRequest.SessionID).
		Int("max_tokens", queryRequest.MaxTokens).
		Msg("Process Query Stream")

	ctx := req.Request.Context()

	resp.AddHeader("Content-Type", "text/event-stream")
	resp.AddHeader("Cache-Control", "no-cache")
	resp.AddHeader("Connection", "keep-alive")
	resp.AddHeader("X-Accel-Buffering", "no")

	writer := resp.ResponseWriter
	flusher, ok := writer.(http.Flusher)
	if !ok {
		middleware.HandleError(resp, fmt.Errorf("streaming not supported"), http.StatusInternalServerError)
		return
	}

	err := h.service.QueryStream(ctx, queryRequest, flusher, writer)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query stream")
		return
	}

	flusher.Flush()
}

// ListDocuments handles GET /api/v1/documents
func (h *Handler) ListDocuments(req *restful.Request, resp *restful.Response) {
	userID := req.QueryParameter("user_id")
	if userID == "" {
		middleware.HandleError(resp, middleware.ErrMissingUserID, http.StatusBadRequest)
		return
	}

	documents, err := h.service.ListDocuments(req.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list documents")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, documents)
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
