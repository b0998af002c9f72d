package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"id":         feedback.ID,
		"session_id": sql.NullString{String: feedback.SessionID, Valid: feedback.SessionID != ""},
		"answer_id":  sql.NullString{String: feedback.AnswerID, Valid: feedback.AnswerID != ""},
		"rating":     feedback.Rating,
		"comment":    sql.NullString{String: feedback.Comment, Valid: feedback.Comment != ""},
		"created_at": feedback.CreatedAt,
	}

	query, args, err := a.db.Insert("feedback").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create feedback", err)
	}

	return nil
}
