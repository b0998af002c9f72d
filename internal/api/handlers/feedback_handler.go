package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

const maxCommentLength = 1000

// FeedbackHandler handles answer feedback submissions.
type FeedbackHandler struct {
	service *services.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

type feedbackRequest struct {
	AnswerID  string `json:"answer_id"`
	SessionID string `json:"session_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Comment = strings.TrimSpace(payload.Comment)
	if len(payload.Comment) > maxCommentLength {
		respondWithError(w, http.StatusBadRequest, "comment is too long")
		return
	}

	fb := entities.Feedback{
		AnswerID:  payload.AnswerID,
		SessionID: payload.SessionID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	}

	stored, err := h.service.Submit(r.Context(), fb)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"id":     stored.ID,
		"status": "received",
	})
}
