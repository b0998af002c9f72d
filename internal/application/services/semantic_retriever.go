package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// SemanticRetriever embeds the query text and finds the nearest document
// passages in the vector index.
type SemanticRetriever struct {
	embedder providers.EmbeddingProvider
	index    repositories.DocumentSearchRepository
	metrics  *observability.Metrics
}

// NewSemanticRetriever creates a new semantic retriever after verifying that
// the query-time embedder and the live index agree on dimensionality. A
// mismatch means the index was built with a different embedding scheme, which
// is a fatal configuration error, not a per-query one.
func NewSemanticRetriever(embedder providers.EmbeddingProvider, index repositories.DocumentSearchRepository, metrics *observability.Metrics) (*SemanticRetriever, error) {
	if index != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		size, err := index.Size(ctx)
		if err == nil && size > 0 {
			dim, err := index.Dimension(ctx)
			if err != nil {
				return nil, apperrors.NewConfigurationError("failed to read index dimension", err)
			}
			if dim != embedder.Dimension() {
				return nil, apperrors.NewConfigurationError(
					fmt.Sprintf("embedding dimension mismatch: index has %d, embedder produces %d", dim, embedder.Dimension()), nil)
			}
		}
	}

	return &SemanticRetriever{embedder: embedder, index: index, metrics: metrics}, nil
}

// Retrieve returns the k nearest chunks to the query text. An empty or
// unreachable index yields an empty result with the degraded flag set.
func (r *SemanticRetriever) Retrieve(ctx context.Context, queryText string, k int) ([]entities.DocumentChunk, bool) {
	if r.index == nil {
		return nil, true
	}

	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("query embedding failed, semantic retrieval degraded")
		return nil, true
	}

	start := time.Now()
	chunks, err := r.index.Search(ctx, embedding, k)
	observability.RecordRetrieval(ctx, r.metrics, "semantic", len(chunks), time.Since(start))
	if err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("semantic retrieval degraded")
		return nil, true
	}
	return chunks, false
}
