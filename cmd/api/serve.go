// Copyright (c) 2026 GenrA. All rights reserved.

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

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/api"
	"github.com/genra-app/genra/internal/platform/config"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/migration"
	pgstore "github.com/genra-app/genra/internal/platform/postgres"
	redisstore "github.com/genra-app/genra/internal/platform/redis"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Startup sequence: configuration, PostgreSQL, Redis, migrations, domain
wiring, then the HTTP listener. SIGINT or SIGTERM triggers a graceful
shutdown that waits for in-flight requests.`,
	RunE: runServe,
}

var skipMigrations bool

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	// ── 1. Configuration & Logger ─────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Debug)
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Startup gets a deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 2. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.PoolOptions(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisOptions(), log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	if !skipMigrations {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return err
		}
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}

	avatars, err := storage.NewDiskStore(cfg.AvatarDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	services := wireServices(pool, rdb, cfg, tokens, avatars, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		"postgres": func(context context.Context) error { return pgstore.Ping(context, pool) },
		"redis":    func(context context.Context) error { return redisstore.Ping(context, rdb) },
	}, log, "postgres", "redis")

	handlers := services.handlers()
	handlers.Liveness = liveness
	handlers.Readiness = readiness
	handlers.Avatars = avatars.Handler()

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, api.Dependencies{Verifier: tokens, Bans: services.bans}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
		return err
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server_stopped")
	return nil
}
