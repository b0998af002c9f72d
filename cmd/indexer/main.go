package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ingres-rag/groundwater-backend/internal/adapters/database"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/embedding"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/events"
	"github.com/ingres-rag/groundwater-backend/internal/adapters/search"
	"github.com/ingres-rag/groundwater-backend/internal/application/services"
	"github.com/ingres-rag/groundwater-backend/internal/domain/providers"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/postgres"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/redis"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/clients/typesense"
	"github.com/ingres-rag/groundwater-backend/internal/infrastructure/observability"
	"github.com/ingres-rag/groundwater-backend/pkg/config"
)

func main() {
	var listen bool
	var intervalFlag string
	flag.BoolVar(&listen, "listen", false, "serve reindex requests from the event bus after the initial rebuild")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	observability.InitLogger("groundwater-indexer", cfg.Server.Env)
	logger := observability.GetLogger()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			logger.Fatal().Str("interval", intervalValue).Err(err).Msg("invalid interval")
		}
		if interval <= 0 {
			logger.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	embedder, err := embedding.NewHashingEmbedder(cfg.Embedding.Dimension)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	var bus providers.EventBus
	if listen {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Redis client, cannot listen for requests")
		}
		defer redisClient.Close()
		bus = events.NewRedisEventBus(redisClient)
	}

	indexer := services.NewIndexerService(
		database.NewDocumentAdapter(pgClient),
		embedder,
		search.NewTypesenseAdapter(tsClient, cfg.Embedding.Dimension),
		bus,
	)

	for {
		if count, err := indexer.Rebuild(ctx); err != nil {
			logger.Error().Err(err).Msg("reindex failed")
		} else {
			logger.Info().Int("chunks", count).Msg("reindex complete")
		}

		if listen {
			if err := indexer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("indexer stopped")
			}
			return
		}

		if interval <= 0 {
			return
		}
		logger.Info().Dur("interval", interval).Msg("next reindex scheduled")

		select {
		case <-ctx.Done():
			logger.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}
