package repositories

import (
	"context"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// FeedbackRepository defines the interface for feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entities.Feedback) error
}
