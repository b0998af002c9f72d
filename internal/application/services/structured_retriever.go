package services

import (
	"context"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
)

// StructuredRetriever turns extracted entities into a ranked record lookup
// against the structured store.
type StructuredRetriever struct {
	repo    repositories.RecordRepository
	metrics *observability.Metrics
}

// NewStructuredRetriever creates a new structured retriever.
func NewStructuredRetriever(repo repositories.RecordRepository, metrics *observability.Metrics) *StructuredRetriever {
	return &StructuredRetriever{repo: repo, metrics: metrics}
}

// Retrieve returns up to k ranked records for the recognized entities. With
// no recognized entities it returns empty without touching the store: an
// unfiltered scan would surface arbitrary unrelated rows. An unreachable
// store degrades to an empty result instead of failing the query.
func (r *StructuredRetriever) Retrieve(ctx context.Context, ents entities.ExtractedEntities, intent entities.Intent, k int) ([]entities.StructuredRecord, bool) {
	if ents.IsEmpty() {
		return nil, false
	}
	if r.repo == nil {
		return nil, true
	}

	filter := repositories.RecordFilter{
		Regions: ents.Regions,
		Metrics: ents.Metrics,
		Years:   ents.Years,
		Limit:   k,
	}
	// Comparisons need one record per compared region; trends need the full
	// year span. Both get headroom beyond the caller's k.
	if intent == entities.IntentComparison && len(ents.CompareTargets) > k {
		filter.Limit = len(ents.CompareTargets)
	}
	if intent == entities.IntentTrend {
		filter.Limit = k * 2
	}

	start := time.Now()
	records, err := r.repo.Search(ctx, filter)
	observability.RecordRetrieval(ctx, r.metrics, "structured", len(records), time.Since(start))
	if err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("structured retrieval degraded")
		return nil, true
	}
	return records, false
}
