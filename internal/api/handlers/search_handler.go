package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchHandler exposes each retriever directly for inspection and tooling.
type SearchHandler struct {
	extractor  *services.EntityExtractor
	structured *services.StructuredRetriever
	semantic   *services.SemanticRetriever
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(extractor *services.EntityExtractor, structured *services.StructuredRetriever, semantic *services.SemanticRetriever) *SearchHandler {
	return &SearchHandler{extractor: extractor, structured: structured, semantic: semantic}
}

type structuredHit struct {
	Region string  `json:"region"`
	Metric string  `json:"metric"`
	Year   int     `json:"year"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Source string  `json:"source"`
}

// SearchStructured handles GET /api/search/structured. Filters arrive as
// explicit region/metric/year parameters; values are canonicalized through
// the extraction dictionary, so "precipitation" folds to "rainfall" and an
// unrecognized region matches nothing rather than everything.
func (h *SearchHandler) SearchStructured(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	parts := make([]string, 0, 3)
	for _, name := range []string{"region", "metric", "year"} {
		if v := strings.TrimSpace(params.Get(name)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one of region, metric or year is required")
		return
	}
	limit := parseLimit(r)

	ents := h.extractor.Extract(strings.Join(parts, " "))
	records, degraded := h.structured.Retrieve(r.Context(), ents, entities.IntentLookup, limit)

	hits := make([]structuredHit, 0, len(records))
	for _, rec := range records {
		hits = append(hits, structuredHit{
			Region: rec.Region,
			Metric: rec.Metric,
			Year:   rec.Year,
			Value:  rec.Value,
			Unit:   rec.Unit,
			Source: rec.Source,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results":  hits,
		"count":    len(hits),
		"degraded": degraded,
		"entities": map[string]interface{}{
			"regions": ents.Regions,
			"metrics": ents.Metrics,
			"years":   ents.Years,
		},
	})
}

type chunkHit struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	SourceType string  `json:"source_type"`
	Score      float64 `json:"score"`
}

// SearchUnstructured handles GET /api/search/unstructured
func (h *SearchHandler) SearchUnstructured(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	limit := parseLimit(r)

	chunks, degraded := h.semantic.Retrieve(r.Context(), q, limit)

	hits := make([]chunkHit, 0, len(chunks))
	for _, chunk := range chunks {
		hits = append(hits, chunkHit{
			Content:    chunk.Content,
			Source:     chunk.Source,
			SourceType: chunk.SourceType,
			Score:      chunk.Score,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results":  hits,
		"count":    len(hits),
		"degraded": degraded,
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultSearchLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
