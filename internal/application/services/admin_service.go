package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// AdminService exposes operational actions: triggering a reindex of the
// document collection and reporting corpus statistics.
type AdminService struct {
	records repositories.RecordRepository
	index   repositories.DocumentSearchRepository
	bus     providers.EventBus
}

// NewAdminService creates a new admin service.
func NewAdminService(records repositories.RecordRepository, index repositories.DocumentSearchRepository, bus providers.EventBus) *AdminService {
	return &AdminService{records: records, index: index, bus: bus}
}

// RequestReindex publishes a reindex request for the ingestion worker and
// returns the request identifier. The rebuild itself happens out of band;
// queries keep being served from the current index until the worker swaps
// the new one in.
func (s *AdminService) RequestReindex(ctx context.Context, requestedBy string) (string, error) {
	if s.bus == nil {
		return "", apperrors.NewInternalError("event bus is not available", nil)
	}

	event := &providers.ReindexEvent{
		ID:          uuid.New().String(),
		Stage:       "requested",
		RequestedBy: requestedBy,
		At:          time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, providers.EventChannelReindexRequests, event); err != nil {
		return "", apperrors.NewInternalError("failed to publish reindex request", err)
	}

	observability.LoggerFromContext(ctx).Info().
		Str("request_id", event.ID).
		Str("requested_by", requestedBy).
		Msg("reindex requested")
	return event.ID, nil
}

// Stats summarizes the data the service currently answers from.
type Stats struct {
	RecordCount   int `json:"record_count"`
	DocumentCount int `json:"document_count"`
	IndexDim      int `json:"index_dimension"`
}

// Stats reports corpus sizes. Unavailable backends contribute zeros rather
// than failing the call.
func (s *AdminService) Stats(ctx context.Context) Stats {
	var stats Stats
	logger := observability.LoggerFromContext(ctx)

	if s.records != nil {
		count, err := s.records.Count(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("record count unavailable")
		} else {
			stats.RecordCount = count
		}
	}
	if s.index != nil {
		size, err := s.index.Size(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("index size unavailable")
		} else {
			stats.DocumentCount = size
			if size > 0 {
				if dim, err := s.index.Dimension(ctx); err == nil {
					stats.IndexDim = dim
				}
			}
		}
	}
	return stats
}
