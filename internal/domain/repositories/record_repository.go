package repositories

import (
	"context"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// RecordFilter narrows a structured retrieval. An empty filter is rejected
// by the retriever before it reaches the repository.
type RecordFilter struct {
	Regions []string
	Metrics []string
	Years   []entities.YearRange
	Limit   int
}

// IsEmpty reports whether the filter constrains nothing.
func (f RecordFilter) IsEmpty() bool {
	return len(f.Regions) == 0 && len(f.Metrics) == 0 && len(f.Years) == 0
}

// RecordRepository is the structured groundwater store. Search returns rows
// ranked exact-match-first, then partial matches by year descending.
type RecordRepository interface {
	Search(ctx context.Context, filter RecordFilter) ([]entities.StructuredRecord, error)
	Count(ctx context.Context) (int, error)
}
