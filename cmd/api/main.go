package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/cache"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/database"
	"github.com/MassterJoe/alertMe9Ja/internal/handlers"
	"github.com/MassterJoe/alertMe9Ja/internal/jobs"
	"github.com/MassterJoe/alertMe9Ja/internal/log"
	"github.com/MassterJoe/alertMe9Ja/internal/middleware"
	"github.com/MassterJoe/alertMe9Ja/internal/queue"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
	"github.com/MassterJoe/alertMe9Ja/internal/repository/memory"
	"github.com/MassterJoe/alertMe9Ja/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "api")

	ctx := context.Background()

	deps := handlers.Dependencies{}

	var dbPool *pgxpool.Pool
	if cfg.Postgres.DSN == "" {
		logger.Warn().Msg("postgres.dsn not set, using in-memory store")
		store := memory.New()
		deps.Users = store.Users()
		deps.Posts = store.Posts()
		deps.Database = store
	} else {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		if cfg.Postgres.Migrate {
			if err := database.Migrate(ctx, dbPool, logger); err != nil {
				logger.Fatal().Err(err).Msg("failed to migrate postgres")
			}
		}
		deps.Users = repository.NewUserRepository(dbPool)
		deps.Posts = repository.NewPostRepository(dbPool)
		deps.Database = dbPool
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	var scheduler *jobs.Scheduler
	if redisClient != nil {
		publisher := queue.NewPublisher(redisClient, cfg.Redis.Stream)
		deps.Cache = redisClient
		deps.Publisher = publisher

		scheduler = jobs.NewScheduler(publisher, cfg.Archive.PruneSchedule, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	} else {
		logger.Warn().Msg("redis.addr not set, rate limiting and media archiving disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = middleware.NewMetrics(registry)

	handlerSet := handlers.NewHandlerSet(logger, cfg, deps)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, deps.Metrics, registry)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
