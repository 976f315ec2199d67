package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starsystem-server/internal/auth"
	"starsystem-server/internal/metrics"
	"starsystem-server/internal/middleware"
	"starsystem-server/internal/server"
	"starsystem-server/internal/shared/config"
	"starsystem-server/internal/shared/database"
	"starsystem-server/internal/shared/logger"
	"starsystem-server/internal/shared/redis"
	"starsystem-server/internal/snapshot"
	"starsystem-server/internal/system"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	log.Info("Starting star system server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"snapshot_backend", cfg.Snapshot.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	collector, err := metrics.NewDefault()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure owner tokens: %w", err)
	}

	registry := system.NewRegistry(cfg.System.MaxSessions)
	systemService := system.NewService(registry, store, collector, slog.Default())

	mux := server.NewRoutes(systemService, tokens, collector).Setup()
	handler := server.Handler(mux,
		middleware.NewCORS(cfg.Frontend),
		middleware.NewRateLimiter(ctx, cfg.RateLimit),
		collector)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "url", cfg.Server.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// openSnapshotStore connects the configured snapshot backend. The returned
// close function is always safe to call.
func openSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	log := slog.With("component", "main", "operation", "open_snapshot_store", "backend", cfg.Snapshot.Backend)

	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.RunMigrations(ctx); err != nil {
			closeLogged(log, db.Close)
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return snapshot.NewPostgresStore(db), func() { closeLogged(log, db.Close) }, nil

	case config.SnapshotBackendRedis:
		client, err := redis.Connect(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store := snapshot.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Snapshot.TTL)
		return store, func() { closeLogged(log, client.Close) }, nil

	default:
		log.Info("Using in-memory snapshot store, systems will not survive a restart")
		return snapshot.NewMemoryStore(), func() {}, nil
	}
}

func closeLogged(log *slog.Logger, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Error("Failed to close snapshot store", "error", err)
	}
}
