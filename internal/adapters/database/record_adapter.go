package database

import (
	"context"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

const recordsTable = "groundwater_records"

// candidateCap bounds the rows fetched before in-process tier ranking.
const candidateCap = 200

// RecordAdapter implements RecordRepository on Postgres.
type RecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecordAdapter creates a new record adapter.
func NewRecordAdapter(client *postgres.Client) repositories.RecordRepository {
	return &RecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Search returns records matching the filter, ranked exact-match-first and
// year-descending within a tier. An empty filter yields an empty result; the
// adapter never scans unfiltered.
func (a *RecordAdapter) Search(ctx context.Context, filter repositories.RecordFilter) ([]entities.StructuredRecord, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	var conds []goqu.Expression
	if len(filter.Regions) > 0 {
		conds = append(conds, goqu.Func("LOWER", goqu.C("region")).In(lowerAll(filter.Regions)))
	}
	if len(filter.Metrics) > 0 {
		conds = append(conds, goqu.Func("LOWER", goqu.C("metric")).In(lowerAll(filter.Metrics)))
	}
	for _, yr := range filter.Years {
		conds = append(conds, goqu.C("year").Between(goqu.Range(yr.From, yr.To)))
	}

	ds := a.db.From(recordsTable).
		Select("region", "metric", "year", "value", "unit", "source").
		Where(goqu.Or(conds...)).
		Order(goqu.C("year").Desc()).
		Limit(candidateCap).
		Prepared(true)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build record search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search groundwater records", err)
	}
	defer rows.Close()

	var records []entities.StructuredRecord
	for rows.Next() {
		var rec entities.StructuredRecord
		if err := rows.Scan(&rec.Region, &rec.Metric, &rec.Year, &rec.Value, &rec.Unit, &rec.Source); err != nil {
			return nil, apperrors.NewInternalError("failed to scan groundwater record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read groundwater records", err)
	}

	rankRecords(records, filter)

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// Count returns the total number of structured records.
func (a *RecordAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.From(recordsTable).Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build record count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewExternalError("failed to count groundwater records", err)
	}
	return count, nil
}

// rankRecords sorts candidates so rows matching every recognized entity kind
// come first, then partial matches, year descending within equal tiers.
func rankRecords(records []entities.StructuredRecord, filter repositories.RecordFilter) {
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := matchScore(records[i], filter), matchScore(records[j], filter)
		if si != sj {
			return si > sj
		}
		return records[i].Year > records[j].Year
	})
}

func matchScore(rec entities.StructuredRecord, filter repositories.RecordFilter) int {
	score := 0
	if containsFold(filter.Regions, rec.Region) {
		score++
	}
	if containsFold(filter.Metrics, rec.Metric) {
		score++
	}
	for _, yr := range filter.Years {
		if yr.Contains(rec.Year) {
			score++
			break
		}
	}
	return score
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
