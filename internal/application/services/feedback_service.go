package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// FeedbackService records user ratings for delivered answers.
type FeedbackService struct {
	repo repositories.FeedbackRepository
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(repo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// Submit validates and persists one piece of feedback, returning the stored
// record with its generated identifier.
func (s *FeedbackService) Submit(ctx context.Context, fb entities.Feedback) (*entities.Feedback, error) {
	if fb.AnswerID == "" {
		return nil, apperrors.NewValidationError("answer_id is required")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}
	if s.repo == nil {
		return nil, apperrors.NewInternalError("feedback storage is not available", nil)
	}

	fb.ID = uuid.New().String()
	fb.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, &fb); err != nil {
		return nil, apperrors.NewInternalError("failed to store feedback", err)
	}
	return &fb, nil
}
