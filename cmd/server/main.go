// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/kinetrace/internal/api"
	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/ingest"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/session"
	"github.com/tomtom215/kinetrace/internal/supervisor"
	"github.com/tomtom215/kinetrace/internal/supervisor/services"
	"github.com/tomtom215/kinetrace/internal/window"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Kinetrace exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // Sequential setup steps
func run(cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Kinetrace with supervisor tree")

	db, err := database.New(&cfg.Database, database.WithBreaker(cfg.Store))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("breaker", db.BreakerState()).Msg("Database initialized successfully")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS is configured with wildcard origin (CORS_ORIGINS=*); set explicit origins in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	ev, err := initEvents(cfg.Events, tree)
	if err != nil {
		return err
	}
	defer ev.close()

	idem, err := initIdempotency(cfg.Idempotency, tree)
	if err != nil {
		return err
	}
	defer idem.close()

	sessions := session.NewManager(db, ev.emitter)
	handler := api.NewHandler(api.Dependencies{
		Sessions:    sessions,
		Windows:     window.NewEngine(sessions, db),
		Ingester:    ingest.NewPipeline(db, ev.emitter),
		Store:       db,
		Idempotency: idem.cache(),
		Version:     version,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	runErr := awaitShutdown(ctx, stop, errCh)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return runErr
}

// awaitShutdown blocks until ctx is canceled or the tree stops on its own,
// then cancels the tree and waits for its result. ServeBackground delivers
// exactly one value and never closes the channel.
func awaitShutdown(ctx context.Context, stop context.CancelFunc, errCh <-chan error) error {
	select {
	case err := <-errCh:
		stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor tree: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	}
	stop()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor shutdown error")
	}
	return nil
}
