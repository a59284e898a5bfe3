package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"academy/internal/config"
	"academy/internal/logger"
	"academy/internal/metrics"
	"academy/internal/queue"
	"academy/internal/repository"
	"academy/internal/snapshot"
	"academy/internal/store"
)

// Worker consumes academy events and keeps the dashboard snapshot current.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.For(logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: !cfg.IsProduction()}), "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != "redis" {
		log.Fatal().Str("queue", cfg.QueueBackend).Msg("worker needs QUEUE_BACKEND=redis; the api maintains the snapshot itself with an in-memory queue")
	}

	kv, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		BadgerDir:   cfg.BadgerDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer kv.Close()

	repo := repository.New(kv,
		repository.WithLogger(logger.For(log, "repository")),
		repository.WithQuota(cfg.StoreQuotaBytes),
		repository.WithSaveFailureHook(metrics.SaveFailed),
	)

	q := queue.NewRedisQueue(store.NewRedisClient(cfg.RedisAddr), cfg.QueueKey, log)
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("queue consume init failed")
	}

	log.Info().Str("store", cfg.StoreBackend).Dur("interval", cfg.SnapshotInterval).Msg("worker started, waiting for messages")
	snapshot.NewBuilder(repo, log, nil).Run(ctx, messages, cfg.SnapshotInterval)
	log.Info().Msg("worker stopped")
}
