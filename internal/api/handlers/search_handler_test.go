package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingres-rag/groundwater-backend/internal/adapters/embedding"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/search"
	"github.com/ingres-rag/groundwater-backend/internal/api/handlers"
	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
)

type stubRecordStore struct {
	records []entities.StructuredRecord
	filters []repositories.RecordFilter
}

func (s *stubRecordStore) Search(ctx context.Context, filter repositories.RecordFilter) ([]entities.StructuredRecord, error) {
	s.filters = append(s.filters, filter)
	return s.records, nil
}

func (s *stubRecordStore) Count(ctx context.Context) (int, error) {
	return len(s.records), nil
}

func newSearchHandler(t *testing.T, store *stubRecordStore) *handlers.SearchHandler {
	t.Helper()

	embedder, err := embedding.NewHashingEmbedder(8)
	require.NoError(t, err)
	index := search.NewMemoryIndex(8)

	chunk := entities.DocumentChunk{Content: "Shapefiles are uploaded from the map view.", Source: "user-guide.pdf", SourceType: "manual"}
	vec, err := embedder.Embed(context.Background(), chunk.Content)
	require.NoError(t, err)
	require.NoError(t, index.Rebuild(context.Background(), []entities.DocumentChunk{chunk}, [][]float32{vec}))

	semantic, err := services.NewSemanticRetriever(embedder, index, nil)
	require.NoError(t, err)

	return handlers.NewSearchHandler(
		services.NewEntityExtractor(),
		services.NewStructuredRetriever(store, nil),
		semantic,
	)
}

func TestSearchStructured_FiltersByRegionAndMetric(t *testing.T) {
	store := &stubRecordStore{records: []entities.StructuredRecord{
		{Region: "karnataka", Metric: "rainfall", Year: 2022, Value: 1153.0, Unit: "mm", Source: "CGWB assessment"},
	}}
	handler := newSearchHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/search/structured?region=Karnataka&metric=precipitation&year=2022", nil)
	rec := httptest.NewRecorder()
	handler.SearchStructured(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			Region string  `json:"region"`
			Metric string  `json:"metric"`
			Value  float64 `json:"value"`
		} `json:"results"`
		Count    int  `json:"count"`
		Degraded bool `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "karnataka", body.Results[0].Region)
	assert.False(t, body.Degraded)

	// The metric alias folds to its canonical name before hitting the store.
	require.Len(t, store.filters, 1)
	assert.Equal(t, []string{"rainfall"}, store.filters[0].Metrics)
	assert.Equal(t, []string{"karnataka"}, store.filters[0].Regions)
}

func TestSearchStructured_RequiresAFilter(t *testing.T) {
	store := &stubRecordStore{}
	handler := newSearchHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/search/structured", nil)
	rec := httptest.NewRecorder()
	handler.SearchStructured(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.filters)
}

func TestSearchStructured_UnrecognizedRegionReturnsEmpty(t *testing.T) {
	store := &stubRecordStore{records: []entities.StructuredRecord{
		{Region: "karnataka", Metric: "rainfall", Year: 2022, Value: 1153.0, Unit: "mm"},
	}}
	handler := newSearchHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/search/structured?region=atlantis", nil)
	rec := httptest.NewRecorder()
	handler.SearchStructured(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
	// Nothing recognized means no store call, never an unfiltered scan.
	assert.Empty(t, store.filters)
}

func TestSearchUnstructured_ReturnsRankedChunks(t *testing.T) {
	handler := newSearchHandler(t, &stubRecordStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/unstructured?q=how+to+upload+a+shapefile", nil)
	rec := httptest.NewRecorder()
	handler.SearchUnstructured(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			Content string  `json:"content"`
			Source  string  `json:"source"`
			Score   float64 `json:"score"`
		} `json:"results"`
		Degraded bool `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "user-guide.pdf", body.Results[0].Source)
	assert.False(t, body.Degraded)
}

func TestSearchUnstructured_RequiresQuery(t *testing.T) {
	handler := newSearchHandler(t, &stubRecordStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/unstructured", nil)
	rec := httptest.NewRecorder()
	handler.SearchUnstructured(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
