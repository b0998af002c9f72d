package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/adapters/cache"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/database"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/embedding"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/events"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/search"
	"github.com/ingres-rag/groundwater-backend/internal/api/handlers"
	"github.com/ingres-rag/groundwater-backend/internal/api/routes"
	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/domain/repositories"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/gemini"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/postgres"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/redis"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/typesense"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	"github.com/ingres-rag/groundwater-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The application works without caching and
	// events, so a missing Redis only degrades it.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Typesense client")
		typesenseClient = nil
	} else {
		logger.Info().Msg("Typesense client initialized")
	}

	// Initialize adapters
	recordAdapter := database.NewRecordAdapter(pgClient)
	feedbackAdapter := database.NewFeedbackAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("event bus initialized")
	} else {
		logger.Warn().Msg("event bus disabled, reindex requests will be rejected")
	}

	embedder, err := embedding.NewHashingEmbedder(cfg.Embedding.Dimension)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	var documentIndex repositories.DocumentSearchRepository
	if typesenseClient != nil {
		documentIndex = search.NewTypesenseAdapter(typesenseClient, cfg.Embedding.Dimension)
	} else {
		// Without Typesense the index lives in process memory, rebuilt from
		// the chunk corpus at startup. Searches stay available, at the cost
		// of reindex requests needing a restart.
		memIndex := search.NewMemoryIndex(cfg.Embedding.Dimension)
		bootstrap := services.NewIndexerService(database.NewDocumentAdapter(pgClient), embedder, memIndex, nil)
		if count, err := bootstrap.Rebuild(ctx); err != nil {
			logger.Warn().Err(err).Msg("in-memory index bootstrap failed, semantic retrieval degraded")
		} else {
			logger.Info().Int("chunks", count).Msg("in-memory document index built")
		}
		documentIndex = memIndex
	}

	var llmProvider providers.LLMProvider
	if cfg.Gemini.Enabled {
		geminiClient, err := gemini.NewClient(&cfg.Gemini)
		if err != nil {
			// Generation enabled but unusable is a configuration error, not
			// a degraded mode.
			logger.Fatal().Err(err).Msg("failed to initialize Gemini client")
		}
		llmProvider = geminiClient
		logger.Info().Str("model", cfg.Gemini.Model).Msg("Gemini client initialized")
	} else {
		logger.Info().Msg("Gemini disabled, answers come from the deterministic fallback")
	}

	// Initialize services
	var extractor *services.EntityExtractor
	if cfg.Pipeline.EntityDictPath != "" {
		extractor, err = services.NewEntityExtractorFromFile(cfg.Pipeline.EntityDictPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Pipeline.EntityDictPath).Msg("failed to load entity dictionary")
		}
	} else {
		extractor = services.NewEntityExtractor()
	}

	classifier := services.NewIntentClassifier()
	structuredRetriever := services.NewStructuredRetriever(recordAdapter, metrics)
	semanticRetriever, err := services.NewSemanticRetriever(embedder, documentIndex, metrics)
	if err != nil {
		// A dimension mismatch between the embedder and the live index
		// cannot be recovered at runtime.
		logger.Fatal().Err(err).Msg("failed to initialize semantic retriever")
	}

	weights := services.DefaultConfidenceWeights()
	weights.FallbackPenalty = cfg.Pipeline.FallbackPenalty
	weights.Floor = cfg.Pipeline.ConfidenceFloor

	pipelineService := services.NewPipelineService(
		extractor,
		classifier,
		structuredRetriever,
		semanticRetriever,
		services.NewContextBuilder(),
		services.NewAnswerGenerator(llmProvider),
		services.NewConfidenceScorer(weights),
		cacheProvider,
		metrics,
		cfg.Pipeline,
	)

	feedbackService := services.NewFeedbackService(feedbackAdapter)
	adminService := services.NewAdminService(recordAdapter, documentIndex, eventBus)

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(pipelineService)
	searchHandler := handlers.NewSearchHandler(extractor, structuredRetriever, semanticRetriever)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(adminService)

	healthChecks := map[string]handlers.ComponentCheck{
		"database": pgClient.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.Ping
	}
	if documentIndex != nil {
		healthChecks["index"] = func(ctx context.Context) error {
			_, err := documentIndex.Size(ctx)
			return err
		}
	}
	healthHandler := handlers.NewHealthHandler(healthChecks)

	// Set up router
	router := routes.NewRouter(
		queryHandler,
		searchHandler,
		feedbackHandler,
		adminHandler,
		healthHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Pipeline.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
