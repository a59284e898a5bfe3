package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"academy/internal/api"
	"academy/internal/attendance"
	"academy/internal/auth"
	"academy/internal/config"
	"academy/internal/events"
	"academy/internal/httpmiddleware"
	"academy/internal/logger"
	"academy/internal/metrics"
	"academy/internal/queue"
	"academy/internal/repository"
	"academy/internal/roster"
	"academy/internal/snapshot"
	"academy/internal/store"
)

// devPassword is accepted for ADMIN_USER when no hash is configured outside production.
const devPassword = "admin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: !cfg.IsProduction()})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		BadgerDir:   cfg.BadgerDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	repo := repository.New(kv,
		repository.WithLogger(logger.For(log, "repository")),
		repository.WithQuota(cfg.StoreQuotaBytes),
		repository.WithSaveFailureHook(metrics.SaveFailed),
	)
	if !repo.IsAvailable(ctx) {
		log.Warn().Str("backend", cfg.StoreBackend).Msg("store is not writable, changes will be kept in memory only")
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(store.NewRedisClient(cfg.RedisAddr), cfg.QueueKey, logger.For(log, "queue"))
	}

	bus := events.NewBus()
	bus.Subscribe(events.Forward(q, logger.For(log, "events")))

	builder := snapshot.NewBuilder(repo, logger.For(log, "snapshot"), nil)
	if cfg.QueueBackend == "memory" {
		// An in-memory queue is only visible to this process, so the snapshot is maintained here.
		messages, err := q.Consume(ctx)
		if err != nil {
			return fmt.Errorf("queue consume init failed: %w", err)
		}
		go builder.Run(ctx, messages, cfg.SnapshotInterval)
	}

	admin, err := adminCredential(cfg, log)
	if err != nil {
		return err
	}

	mu := &sync.Mutex{}
	limiter := httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	go sweep(ctx, limiter)

	h := api.New(api.Deps{
		Repo:       repo,
		Roster:     roster.New(repo, bus, roster.WithLock(mu), roster.WithLogger(logger.For(log, "roster"))),
		Attendance: attendance.NewService(repo, bus, attendance.WithLock(mu), attendance.WithLogger(logger.For(log, "attendance"))),
		Snapshots:  builder,
		Bus:        bus,
		Lock:       mu,
		Signer: auth.Signer{
			Issuer:     cfg.JWTIssuer,
			Key:        []byte(cfg.JWTSigningKey),
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		Admin:     admin,
		Limiter:   limiter,
		Log:       logger.For(log, "http"),
		Delimiter: cfg.Delimiter(),
	})

	r := gin.New()
	r.Use(corsMiddleware(cfg.CORSOrigins))
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Str("queue", cfg.QueueBackend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	if pending := repo.Pending(); len(pending) > 0 {
		log.Warn().Strs("keys", pending).Msg("exiting with unsaved changes")
	}
	log.Info().Msg("server exited")
	return nil
}

// adminCredential returns the configured admin, or a development fallback when no hash is set.
func adminCredential(cfg config.App, log zerolog.Logger) (auth.Admin, error) {
	if cfg.AdminPasswordHash != "" {
		return auth.Admin{User: cfg.AdminUser, PasswordHash: []byte(cfg.AdminPasswordHash)}, nil
	}
	hash, err := auth.HashPassword(devPassword)
	if err != nil {
		return auth.Admin{}, fmt.Errorf("hash dev password: %w", err)
	}
	log.Warn().Str("user", cfg.AdminUser).Msg("ADMIN_PASSWORD_HASH not set, using the development password")
	return auth.Admin{User: cfg.AdminUser, PasswordHash: []byte(hash)}, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", httpmiddleware.RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return cors.New(conf)
}

func sweep(ctx context.Context, l *httpmiddleware.SimpleTokenBucket) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
