package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/MassterJoe/alertMe9Ja/internal/cache"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/database"
	"github.com/MassterJoe/alertMe9Ja/internal/log"
	"github.com/MassterJoe/alertMe9Ja/internal/queue"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
	"github.com/MassterJoe/alertMe9Ja/internal/storage"
	"github.com/MassterJoe/alertMe9Ja/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.DSN == "" {
		logger.Fatal().Msg("postgres.dsn is required by the worker")
	}
	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil || client == nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	processor := tasks.NewProcessor(
		repository.NewUserRepository(dbPool),
		objectStore,
		cfg.Archive.Retention,
		logger,
	)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Archive.ClaimInterval,
		logger,
		processor,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
