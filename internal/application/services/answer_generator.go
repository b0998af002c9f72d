package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
)

// NoDataMessage is returned verbatim when no evidence supports the query.
const NoDataMessage = "I could not find groundwater data matching your query. Try naming a state or union territory, a metric such as rainfall or extraction, and optionally a year."

const greetingMessage = "Hello! I can answer questions about groundwater data across Indian states and union territories, including rainfall, extraction, and resource assessments. What would you like to know?"

const farewellMessage = "Goodbye! Feel free to come back with more groundwater questions."

// refusalMarkers flag model output that declined to answer; such output is
// discarded in favor of the deterministic fallback.
var refusalMarkers = []string{
	"i can't",
	"i cannot",
	"i'm sorry",
	"i am sorry",
	"i am unable",
	"i'm unable",
	"as an ai",
	"i don't have access",
	"i do not have access",
}

const answerPromptTemplate = `You are a groundwater data assistant for India. Answer the question using only the evidence below. Cite figures exactly as given, with their units and years. If the evidence does not cover the question, say what is missing. Keep the answer under 150 words.

Question: %s

Evidence:
%s

Answer:`

// AnswerGenerator produces the answer text, preferring the configured LLM and
// falling back to deterministic templates when the model is unavailable,
// errors, or refuses.
type AnswerGenerator struct {
	llm providers.LLMProvider
}

// NewAnswerGenerator creates a generator. A nil provider disables the LLM
// path entirely.
func NewAnswerGenerator(llm providers.LLMProvider) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// Generate returns the answer text and whether the deterministic fallback
// produced it. It never returns an error: every failure mode degrades to the
// fallback.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, intent entities.Intent, ents entities.ExtractedEntities, bundle entities.ContextBundle) (string, bool) {
	switch intent {
	case entities.IntentGreeting:
		return greetingMessage, false
	case entities.IntentFarewell:
		return farewellMessage, false
	}

	if bundle.IsEmpty() {
		return NoDataMessage, true
	}

	text, err := g.viaLLM(ctx, query, bundle)
	switch {
	case errors.Is(err, providers.ErrLLMUnavailable):
		// No backend configured; go straight to the fallback.
	case err != nil:
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("llm generation failed, using fallback")
	case isRefusal(text):
		observability.LoggerFromContext(ctx).Warn().Msg("llm refused, using fallback")
	case strings.TrimSpace(text) != "":
		return strings.TrimSpace(text), false
	}

	return g.fallback(intent, ents, bundle), true
}

func (g *AnswerGenerator) viaLLM(ctx context.Context, query string, bundle entities.ContextBundle) (string, error) {
	if g.llm == nil {
		return "", providers.ErrLLMUnavailable
	}
	prompt := fmt.Sprintf(answerPromptTemplate, query, bundle.Serialize())
	return g.llm.Generate(ctx, prompt)
}

// fallback renders a deterministic answer from the evidence bundle.
func (g *AnswerGenerator) fallback(intent entities.Intent, ents entities.ExtractedEntities, bundle entities.ContextBundle) string {
	records := bundle.Records()
	chunks := bundle.Chunks()

	switch intent {
	case entities.IntentComparison:
		if text, ok := comparisonFallback(records); ok {
			return text
		}
	case entities.IntentDefinition:
		if len(chunks) > 0 {
			return strings.TrimSpace(chunks[0].Content)
		}
	case entities.IntentTrend, entities.IntentRanking:
		if len(records) > 1 {
			return multiRecordFallback(records)
		}
	}

	if len(records) > 0 {
		rec := records[0]
		return fmt.Sprintf("According to %s, %s for %s in %d was %.2f %s.",
			rec.Source, rec.Metric, rec.Region, rec.Year, rec.Value, rec.Unit)
	}
	if len(chunks) > 0 {
		return strings.TrimSpace(chunks[0].Content)
	}
	return NoDataMessage
}

// comparisonFallback states both sides and their difference when the bundle
// holds records for two distinct regions of the same metric.
func comparisonFallback(records []entities.StructuredRecord) (string, bool) {
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if strings.EqualFold(a.Region, b.Region) || !strings.EqualFold(a.Metric, b.Metric) {
				continue
			}
			diff := a.Value - b.Value
			if diff < 0 {
				diff = -diff
			}
			return fmt.Sprintf("%s for %s in %d was %.2f %s, while %s recorded %.2f %s in %d, a difference of %.2f %s.",
				a.Metric, a.Region, a.Year, a.Value, a.Unit,
				b.Region, b.Value, b.Unit, b.Year, diff, a.Unit), true
		}
	}
	return "", false
}

func multiRecordFallback(records []entities.StructuredRecord) string {
	var sb strings.Builder
	sb.WriteString("Here is what the data shows:")
	limit := len(records)
	if limit > 5 {
		limit = 5
	}
	for _, rec := range records[:limit] {
		sb.WriteString(fmt.Sprintf(" %s in %s (%d): %.2f %s.", rec.Metric, rec.Region, rec.Year, rec.Value, rec.Unit))
	}
	return sb.String()
}

func isRefusal(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
