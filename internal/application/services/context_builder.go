package services

import (
	"sort"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
)

// headerOverhead reserves room for both section headers and the separator
// line Serialize inserts between them.
const headerOverhead = len(entities.RecordsHeader) + len(entities.DocumentsHeader) + 1

// ContextBuilder fuses both retrieval results into one bounded, deduplicated
// evidence bundle.
type ContextBuilder struct{}

// NewContextBuilder creates a new context builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// Build interleaves records and chunks by normalized relevance, drops
// duplicate chunk content, and greedily admits items until the character
// budget would be exceeded. When no item fits whole, the best chunk is
// truncated into the budget; the serialized bundle never exceeds it.
func (b *ContextBuilder) Build(ents entities.ExtractedEntities, records []entities.StructuredRecord, chunks []entities.DocumentChunk, budget int) entities.ContextBundle {
	bundle := entities.ContextBundle{Budget: budget}

	items := make([]entities.EvidenceItem, 0, len(records)+len(chunks))
	for i := range records {
		rec := records[i]
		items = append(items, entities.EvidenceItem{
			Kind:      entities.EvidenceRecord,
			Record:    &rec,
			Relevance: recordRelevance(rec, ents, i),
		})
	}
	seen := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		chunk := chunks[i]
		key := strings.TrimSpace(chunk.Content)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, entities.EvidenceItem{
			Kind:      entities.EvidenceChunk,
			Chunk:     &chunk,
			Relevance: chunk.Score,
		})
	}
	if len(items) == 0 {
		return bundle
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Relevance > items[j].Relevance
	})

	available := budget - headerOverhead
	if available < 0 {
		available = 0
	}
	used := 0
	for _, item := range items {
		cost := len(item.Render()) + 1
		if used+cost > available {
			continue
		}
		bundle.Items = append(bundle.Items, item)
		used += cost
	}

	// Nothing fit whole. Admit the single best item that still fits after
	// truncation, or nothing when even that is impossible.
	if len(bundle.Items) == 0 {
		if item, ok := bestFit(items, budget); ok {
			bundle.Items = append(bundle.Items, item)
		}
	}

	return bundle
}

// bestFit returns the highest-ranked item whose single-item serialization
// fits the budget, truncating chunk content when needed. Records render to a
// fixed format and cannot be shortened, so an oversized record is skipped.
func bestFit(items []entities.EvidenceItem, budget int) (entities.EvidenceItem, bool) {
	for _, item := range items {
		header := entities.RecordsHeader
		if item.Kind == entities.EvidenceChunk {
			header = entities.DocumentsHeader
		}
		limit := budget - len(header) - 1
		if limit <= 0 {
			continue
		}
		rendered := item.Render()
		if len(rendered) <= limit {
			return item, true
		}
		if item.Kind != entities.EvidenceChunk {
			continue
		}
		keep := limit - (len(rendered) - len(item.Chunk.Content))
		if keep <= 0 {
			continue
		}
		truncated := *item.Chunk
		truncated.Content = truncated.Content[:keep]
		item.Chunk = &truncated
		return item, true
	}
	return entities.EvidenceItem{}, false
}

// recordRelevance treats a record matching every recognized entity kind as
// maximally relevant; otherwise relevance follows the retriever's order.
func recordRelevance(rec entities.StructuredRecord, ents entities.ExtractedEntities, position int) float64 {
	filter := repositories.RecordFilter{Regions: ents.Regions, Metrics: ents.Metrics, Years: ents.Years}
	recognized := 0
	if len(ents.Regions) > 0 {
		recognized++
	}
	if len(ents.Metrics) > 0 {
		recognized++
	}
	if len(ents.Years) > 0 {
		recognized++
	}
	if recognized > 0 && matchScoreForBundle(rec, filter) == recognized {
		return 1.0
	}
	rel := 0.8 - float64(position)*0.02
	if rel < 0.1 {
		rel = 0.1
	}
	return rel
}

func matchScoreForBundle(rec entities.StructuredRecord, filter repositories.RecordFilter) int {
	score := 0
	for _, region := range filter.Regions {
		if strings.EqualFold(region, rec.Region) {
			score++
			break
		}
	}
	for _, metric := range filter.Metrics {
		if strings.EqualFold(metric, rec.Metric) {
			score++
			break
		}
	}
	for _, yr := range filter.Years {
		if yr.Contains(rec.Year) {
			score++
			break
		}
	}
	return score
}
