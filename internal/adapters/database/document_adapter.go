package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

const chunksTable = "document_chunks"

// DocumentAdapter reads the chunk corpus the index is rebuilt from.
type DocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDocumentAdapter creates a new document source adapter.
func NewDocumentAdapter(client *postgres.Client) repositories.DocumentSourceRepository {
	return &DocumentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListChunks returns every chunk in insertion order.
func (a *DocumentAdapter) ListChunks(ctx context.Context) ([]entities.DocumentChunk, error) {
	query, args, err := a.db.From(chunksTable).
		Select("content", "source", "source_type").
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build chunk listing query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to list document chunks", err)
	}
	defer rows.Close()

	var chunks []entities.DocumentChunk
	for rows.Next() {
		var chunk entities.DocumentChunk
		if err := rows.Scan(&chunk.Content, &chunk.Source, &chunk.SourceType); err != nil {
			return nil, apperrors.NewInternalError("failed to scan document chunk", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read document chunks", err)
	}
	return chunks, nil
}
