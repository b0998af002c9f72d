package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
)

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func recordBundle(records ...entities.StructuredRecord) entities.ContextBundle {
	bundle := entities.ContextBundle{Budget: 4000}
	for i := range records {
		bundle.Items = append(bundle.Items, entities.EvidenceItem{
			Kind:      entities.EvidenceRecord,
			Record:    &records[i],
			Relevance: 1.0,
		})
	}
	return bundle
}

func TestAnswerGenerator_UsesLLMWhenAvailable(t *testing.T) {
	llm := &stubLLM{response: "Karnataka received 1153.00 mm of rainfall in 2022."}
	gen := services.NewAnswerGenerator(llm)
	bundle := recordBundle(sampleRecord("karnataka", 2022))

	text, usedFallback := gen.Generate(context.Background(), "rainfall in karnataka 2022", entities.IntentLookup, fullMatchEntities(), bundle)

	assert.False(t, usedFallback)
	assert.Equal(t, llm.response, text)
	assert.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "=== GROUNDWATER RECORDS ===")
}

func TestAnswerGenerator_FallbackOnLLMError(t *testing.T) {
	llm := &stubLLM{err: errors.New("upstream 500")}
	gen := services.NewAnswerGenerator(llm)
	bundle := recordBundle(sampleRecord("karnataka", 2022))

	text, usedFallback := gen.Generate(context.Background(), "rainfall in karnataka", entities.IntentLookup, fullMatchEntities(), bundle)

	assert.True(t, usedFallback)
	assert.Contains(t, text, "karnataka")
	assert.Contains(t, text, "1153.00 mm")
}

func TestAnswerGenerator_FallbackOnRefusal(t *testing.T) {
	llm := &stubLLM{response: "I'm sorry, I cannot answer that."}
	gen := services.NewAnswerGenerator(llm)
	bundle := recordBundle(sampleRecord("karnataka", 2022))

	text, usedFallback := gen.Generate(context.Background(), "rainfall in karnataka", entities.IntentLookup, fullMatchEntities(), bundle)

	assert.True(t, usedFallback)
	assert.NotContains(t, text, "sorry")
}

func TestAnswerGenerator_NilProviderUsesFallback(t *testing.T) {
	gen := services.NewAnswerGenerator(nil)
	bundle := recordBundle(sampleRecord("karnataka", 2022))

	text, usedFallback := gen.Generate(context.Background(), "rainfall in karnataka", entities.IntentLookup, fullMatchEntities(), bundle)

	assert.True(t, usedFallback)
	assert.Contains(t, text, "rainfall")
}

func TestAnswerGenerator_UnavailableBackendUsesFallback(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("connect: %w", providers.ErrLLMUnavailable)}
	gen := services.NewAnswerGenerator(llm)
	bundle := recordBundle(sampleRecord("karnataka", 2022))

	text, usedFallback := gen.Generate(context.Background(), "rainfall in karnataka", entities.IntentLookup, fullMatchEntities(), bundle)

	assert.True(t, usedFallback)
	assert.Contains(t, text, "1153.00 mm")
}

func TestAnswerGenerator_EmptyBundleReturnsNoDataMessage(t *testing.T) {
	llm := &stubLLM{response: "should not be called"}
	gen := services.NewAnswerGenerator(llm)

	text, usedFallback := gen.Generate(context.Background(), "rainfall on mars", entities.IntentLookup, entities.ExtractedEntities{}, entities.ContextBundle{})

	assert.True(t, usedFallback)
	assert.Equal(t, services.NoDataMessage, text)
	assert.Empty(t, llm.prompts)
}

func TestAnswerGenerator_ComparisonFallback(t *testing.T) {
	gen := services.NewAnswerGenerator(nil)
	a := sampleRecord("kerala", 2022)
	a.Value = 3000
	b := sampleRecord("karnataka", 2022)
	b.Value = 1153
	bundle := recordBundle(a, b)

	text, usedFallback := gen.Generate(context.Background(), "compare kerala and karnataka rainfall", entities.IntentComparison, entities.ExtractedEntities{
		Regions:        []string{"kerala", "karnataka"},
		Metrics:        []string{"rainfall"},
		CompareTargets: []string{"kerala", "karnataka"},
	}, bundle)

	assert.True(t, usedFallback)
	assert.Contains(t, text, "kerala")
	assert.Contains(t, text, "karnataka")
	assert.Contains(t, text, "1847.00")
}

func TestAnswerGenerator_DefinitionFallbackUsesTopChunk(t *testing.T) {
	gen := services.NewAnswerGenerator(nil)
	chunk := entities.DocumentChunk{
		Content:    "An aquifer is a body of permeable rock that holds groundwater.",
		Source:     "glossary.pdf",
		SourceType: "report",
		Score:      0.9,
	}
	bundle := entities.ContextBundle{Budget: 4000, Items: []entities.EvidenceItem{
		{Kind: entities.EvidenceChunk, Chunk: &chunk, Relevance: 0.9},
	}}

	text, usedFallback := gen.Generate(context.Background(), "what is an aquifer", entities.IntentDefinition, entities.ExtractedEntities{Metrics: []string{"aquifer"}}, bundle)

	assert.True(t, usedFallback)
	assert.Equal(t, chunk.Content, text)
}

func TestAnswerGenerator_ConversationalSkipsLLM(t *testing.T) {
	llm := &stubLLM{response: "should not be called"}
	gen := services.NewAnswerGenerator(llm)

	greeting, usedFallback := gen.Generate(context.Background(), "hello", entities.IntentGreeting, entities.ExtractedEntities{}, entities.ContextBundle{})
	assert.False(t, usedFallback)
	assert.NotEmpty(t, greeting)

	farewell, _ := gen.Generate(context.Background(), "bye", entities.IntentFarewell, entities.ExtractedEntities{}, entities.ContextBundle{})
	assert.NotEqual(t, greeting, farewell)
	assert.Empty(t, llm.prompts)
}

func TestAnswerGenerator_TrendFallbackListsRecords(t *testing.T) {
	gen := services.NewAnswerGenerator(nil)
	bundle := recordBundle(sampleRecord("karnataka", 2022), sampleRecord("karnataka", 2021), sampleRecord("karnataka", 2020))

	text, usedFallback := gen.Generate(context.Background(), "rainfall trend in karnataka", entities.IntentTrend, fullMatchEntities(), bundle)

	assert.True(t, usedFallback)
	assert.Contains(t, text, "2022")
	assert.Contains(t, text, "2020")
}
