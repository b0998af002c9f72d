package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

const maxQueryLength = 1000

// PipelineService defines the pipeline operations used by the handler.
type PipelineService interface {
	Process(ctx context.Context, query entities.Query) (*entities.Answer, error)
}

// QueryHandler handles the main question-answering endpoint.
type QueryHandler struct {
	pipeline PipelineService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(pipeline PipelineService) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// HandleQuery handles POST /api/query
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Query = strings.TrimSpace(payload.Query)
	if payload.Query == "" {
		respondWithError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	if len(payload.Query) > maxQueryLength {
		respondWithError(w, http.StatusBadRequest, "query is too long")
		return
	}

	query := entities.Query{
		Text:       payload.Query,
		SessionID:  payload.SessionID,
		UserID:     payload.UserID,
		ReceivedAt: time.Now().UTC(),
	}

	answer, err := h.pipeline.Process(r.Context(), query)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to process query")
		return
	}

	respondWithJSON(w, http.StatusOK, answer)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
