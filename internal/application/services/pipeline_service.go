package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	"github.com/ingres-rag/groundwater-backend/pkg/config"
	apperrors "github.com/ingres-rag/groundwater-backend/pkg/errors"
)

// answerCacheTTLSeconds bounds how long a fully-served answer is reused.
const answerCacheTTLSeconds = 300

// Pipeline query states, logged as the query moves through the stages.
const (
	stateReceived   = "received"
	stateExtracted  = "extracted"
	stateClassified = "classified"
	stateRetrieved  = "retrieved"
	stateBuilt      = "context_built"
	stateGenerated  = "generated"
	stateResponded  = "responded"
	stateFailed     = "failed"
)

// PipelineService runs a query through extraction, classification, dual
// retrieval, context building, generation, and confidence scoring.
type PipelineService struct {
	extractor  *EntityExtractor
	classifier *IntentClassifier
	structured *StructuredRetriever
	semantic   *SemanticRetriever
	builder    *ContextBuilder
	generator  *AnswerGenerator
	scorer     *ConfidenceScorer
	cache      providers.CacheProvider
	metrics    *observability.Metrics
	cfg        config.PipelineConfig
}

// NewPipelineService wires the pipeline stages together. The cache and
// metrics collaborators are optional.
func NewPipelineService(
	extractor *EntityExtractor,
	classifier *IntentClassifier,
	structured *StructuredRetriever,
	semantic *SemanticRetriever,
	builder *ContextBuilder,
	generator *AnswerGenerator,
	scorer *ConfidenceScorer,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg config.PipelineConfig,
) *PipelineService {
	return &PipelineService{
		extractor:  extractor,
		classifier: classifier,
		structured: structured,
		semantic:   semantic,
		builder:    builder,
		generator:  generator,
		scorer:     scorer,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Process answers one query end to end. It returns a validation error for a
// blank query; every downstream failure degrades inside the pipeline instead
// of surfacing as an error.
func (s *PipelineService) Process(ctx context.Context, query entities.Query) (*entities.Answer, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		observability.LoggerFromContext(ctx).Debug().Str("state", stateFailed).Msg("pipeline state")
		return nil, apperrors.NewValidationError("query text must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	logger := observability.LoggerFromContext(ctx)
	logger.Debug().Str("state", stateReceived).Msg("pipeline state")

	if answer, ok := s.cachedAnswer(ctx, text); ok {
		answer.ResponseTimeMs = time.Since(start).Milliseconds()
		return answer, nil
	}

	ents := s.extractor.Extract(text)
	logger.Debug().Str("state", stateExtracted).
		Strs("regions", ents.Regions).
		Strs("metrics", ents.Metrics).
		Int("year_ranges", len(ents.Years)).
		Msg("pipeline state")

	intent := s.classifier.Classify(text, ents)
	logger.Debug().Str("state", stateClassified).Str("intent", string(intent)).Msg("pipeline state")

	// Greetings and farewells skip retrieval entirely.
	if intent.IsConversational() {
		answerText, _ := s.generator.Generate(ctx, text, intent, ents, entities.ContextBundle{})
		answer := &entities.Answer{
			ID:             uuid.New().String(),
			Text:           answerText,
			Sources:        []entities.Source{},
			Confidence:     1.0,
			ResponseTimeMs: time.Since(start).Milliseconds(),
		}
		observability.RecordQuery(ctx, s.metrics, string(intent), false, time.Since(start))
		return answer, nil
	}

	result := s.retrieve(ctx, text, ents, intent)
	logger.Debug().Str("state", stateRetrieved).
		Int("records", len(result.Records)).
		Int("chunks", len(result.Chunks)).
		Bool("structured_degraded", result.StructuredDegraded).
		Bool("semantic_degraded", result.SemanticDegraded).
		Msg("pipeline state")

	bundle := s.builder.Build(ents, result.Records, result.Chunks, s.cfg.ContextBudget)
	logger.Debug().Str("state", stateBuilt).Int("items", len(bundle.Items)).Msg("pipeline state")

	genCtx, genCancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	answerText, usedFallback := s.generator.Generate(genCtx, text, intent, ents, bundle)
	genCancel()
	logger.Debug().Str("state", stateGenerated).Bool("fallback", usedFallback).Msg("pipeline state")

	answer := &entities.Answer{
		ID:           uuid.New().String(),
		Text:         answerText,
		Sources:      sourcesFromBundle(bundle, s.cfg.MaxSources),
		Confidence:   s.scorer.Score(bundle, ents, usedFallback),
		UsedFallback: usedFallback,
	}
	answer.ResponseTimeMs = time.Since(start).Milliseconds()

	// Answers assembled under a degraded retriever are not cached: the next
	// attempt may see the store healthy again.
	if !result.StructuredDegraded && !result.SemanticDegraded {
		s.storeAnswer(ctx, text, answer)
	}

	observability.RecordQuery(ctx, s.metrics, string(intent), usedFallback, time.Since(start))
	logger.Debug().Str("state", stateResponded).Float64("confidence", answer.Confidence).Msg("pipeline state")
	return answer, nil
}

// retrieve fans out to both retrievers concurrently, each under its own
// timeout. Neither retriever can fail the query; a slow or broken one
// degrades to an empty result.
func (s *PipelineService) retrieve(ctx context.Context, text string, ents entities.ExtractedEntities, intent entities.Intent) entities.RetrievalResult {
	var result entities.RetrievalResult
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, s.cfg.RetrieverTimeout)
		defer cancel()
		result.Records, result.StructuredDegraded = s.structured.Retrieve(rctx, ents, intent, s.cfg.TopK)
	}()
	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(ctx, s.cfg.RetrieverTimeout)
		defer cancel()
		result.Chunks, result.SemanticDegraded = s.semantic.Retrieve(rctx, text, s.cfg.TopK)
	}()
	wg.Wait()

	return result
}

func sourcesFromBundle(bundle entities.ContextBundle, max int) []entities.Source {
	sources := make([]entities.Source, 0, max)
	for _, item := range bundle.Items {
		if len(sources) == max {
			break
		}
		sources = append(sources, entities.Source{
			Type:      item.Kind,
			Source:    item.SourceLabel(),
			Relevance: item.Relevance,
		})
	}
	return sources
}

func (s *PipelineService) cachedAnswer(ctx context.Context, text string) (*entities.Answer, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, answerCacheKey(text))
	if err != nil || raw == nil {
		return nil, false
	}
	var answer entities.Answer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, false
	}
	return &answer, true
}

func (s *PipelineService) storeAnswer(ctx context.Context, text string, answer *entities.Answer) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, answerCacheKey(text), raw, answerCacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("answer cache write failed")
	}
}

func answerCacheKey(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return "answer:" + hex.EncodeToString(sum[:])
}
