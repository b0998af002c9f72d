package services

import (
	"context"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// IndexerService rebuilds the document index from the chunk corpus. The new
// index is assembled completely before it replaces the live one, so queries
// keep being answered from the old index for the whole rebuild.
type IndexerService struct {
	source    repositories.DocumentSourceRepository
	embedder  providers.EmbeddingProvider
	rebuilder repositories.DocumentIndexRebuilder
	bus       providers.EventBus
}

// NewIndexerService creates a new indexer service. The event bus is optional;
// without it the service only supports direct Rebuild calls.
func NewIndexerService(
	source repositories.DocumentSourceRepository,
	embedder providers.EmbeddingProvider,
	rebuilder repositories.DocumentIndexRebuilder,
	bus providers.EventBus,
) *IndexerService {
	return &IndexerService{source: source, embedder: embedder, rebuilder: rebuilder, bus: bus}
}

// Rebuild loads every chunk, embeds it, and swaps the result in. It returns
// the number of chunks indexed.
func (s *IndexerService) Rebuild(ctx context.Context) (int, error) {
	logger := observability.LoggerFromContext(ctx)

	chunks, err := s.source.ListChunks(ctx)
	if err != nil {
		return 0, apperrors.NewExternalError("failed to load chunk corpus", err)
	}
	logger.Info().Int("chunks", len(chunks)).Msg("embedding chunk corpus")

	embeddings := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		embeddings[i], err = s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return 0, apperrors.NewInternalError("failed to embed chunk", err)
		}
	}

	if err := s.rebuilder.Rebuild(ctx, chunks, embeddings); err != nil {
		return 0, apperrors.NewExternalError("failed to swap in rebuilt index", err)
	}

	logger.Info().Int("chunks", len(chunks)).Msg("index rebuilt")
	return len(chunks), nil
}

// Run blocks, serving reindex requests from the event bus until the context
// is cancelled. Each completed or failed rebuild is reported on the status
// channel under the request's identifier.
func (s *IndexerService) Run(ctx context.Context) error {
	if s.bus == nil {
		return apperrors.NewInternalError("event bus is not available", nil)
	}

	requests, err := s.bus.Subscribe(ctx, providers.EventChannelReindexRequests)
	if err != nil {
		return apperrors.NewExternalError("failed to subscribe to reindex requests", err)
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().Msg("indexer listening for reindex requests")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-requests:
			if !ok {
				return nil
			}
			if event == nil || event.Stage != "requested" {
				continue
			}
			s.serve(ctx, event)
		}
	}
}

func (s *IndexerService) serve(ctx context.Context, request *providers.ReindexEvent) {
	logger := observability.LoggerFromContext(ctx)
	logger.Info().Str("request_id", request.ID).Msg("reindex request received")

	count, err := s.Rebuild(ctx)
	status := &providers.ReindexEvent{
		ID:          request.ID,
		Stage:       "completed",
		RequestedBy: request.RequestedBy,
		At:          time.Now().UTC(),
	}
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID).Msg("reindex failed")
		status.Stage = "failed"
	} else {
		logger.Info().Str("request_id", request.ID).Int("chunks", count).Msg("reindex completed")
	}

	if err := s.bus.Publish(ctx, providers.EventChannelReindexStatus, status); err != nil {
		logger.Warn().Err(err).Str("request_id", request.ID).Msg("failed to publish reindex status")
	}
}
