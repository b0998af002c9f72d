package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

func bundleWithItems(relevances ...float64) entities.ContextBundle {
	bundle := entities.ContextBundle{Budget: 4000}
	for _, rel := range relevances {
		chunk := entities.DocumentChunk{Content: "evidence", Source: "doc.pdf", SourceType: "report", Score: rel}
		bundle.Items = append(bundle.Items, entities.EvidenceItem{
			Kind:      entities.EvidenceChunk,
			Chunk:     &chunk,
			Relevance: rel,
		})
	}
	return bundle
}

func TestConfidenceScorer_ZeroIffEmpty(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.DefaultConfidenceWeights())

	assert.Zero(t, scorer.Score(entities.ContextBundle{}, entities.ExtractedEntities{}, false))
	assert.Zero(t, scorer.Score(entities.ContextBundle{}, fullMatchEntities(), true))

	score := scorer.Score(bundleWithItems(0.9), fullMatchEntities(), false)
	assert.Greater(t, score, 0.0)
}

func TestConfidenceScorer_FallbackStrictlyLowers(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.DefaultConfidenceWeights())
	bundle := bundleWithItems(0.9, 0.8, 0.7)
	ents := fullMatchEntities()

	direct := scorer.Score(bundle, ents, false)
	fallback := scorer.Score(bundle, ents, true)

	assert.Less(t, fallback, direct)
}

func TestConfidenceScorer_BoundedByOne(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.DefaultConfidenceWeights())

	score := scorer.Score(bundleWithItems(1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0), fullMatchEntities(), false)

	assert.LessOrEqual(t, score, 1.0)
}

func TestConfidenceScorer_FloorApplied(t *testing.T) {
	weights := services.DefaultConfidenceWeights()
	weights.Base = 0.0
	weights.Floor = 0.1
	scorer := services.NewConfidenceScorer(weights)

	score := scorer.Score(bundleWithItems(0.01), entities.ExtractedEntities{}, true)

	assert.GreaterOrEqual(t, score, 0.1)
}

func TestConfidenceScorer_MoreEvidenceScoresHigher(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.DefaultConfidenceWeights())
	ents := fullMatchEntities()

	thin := scorer.Score(bundleWithItems(0.8), ents, false)
	rich := scorer.Score(bundleWithItems(0.8, 0.8, 0.8, 0.8, 0.8), ents, false)

	assert.Greater(t, rich, thin)
}

func TestConfidenceScorer_CompletenessContributes(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.DefaultConfidenceWeights())
	bundle := bundleWithItems(0.8)

	partial := scorer.Score(bundle, entities.ExtractedEntities{Regions: []string{"kerala"}}, false)
	full := scorer.Score(bundle, fullMatchEntities(), false)

	assert.Greater(t, full, partial)
}

func TestConfidenceScorer_ZeroWeightsUseDefaults(t *testing.T) {
	scorer := services.NewConfidenceScorer(services.ConfidenceWeights{})
	reference := services.NewConfidenceScorer(services.DefaultConfidenceWeights())
	bundle := bundleWithItems(0.5, 0.4)

	assert.Equal(t,
		reference.Score(bundle, fullMatchEntities(), true),
		scorer.Score(bundle, fullMatchEntities(), true))
}
