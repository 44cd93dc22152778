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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/dukerupert/billing/internal"
	"github.com/dukerupert/billing/internal/bootstrap"
	"github.com/dukerupert/billing/internal/handler/admin"
	"github.com/dukerupert/billing/internal/middleware"
	"github.com/dukerupert/billing/internal/router"
	"github.com/dukerupert/billing/internal/routes"
	"github.com/dukerupert/billing/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewBillingMetrics(registry, "billing")

	// Initialize database, engine, notifications and orchestrator
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Metrics: metrics}, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Info().
		Str("timezone", cfg.Billing.Location.String()).
		Str("daily", cfg.Billing.DailySchedule).
		Str("weekly", cfg.Billing.WeeklySchedule).
		Bool("notifications_enabled", cfg.Billing.NotificationsEnabled).
		Msg("Starting billing orchestrator")
	if err := app.Orchestrator.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}

	// ==========================================================================
	// HTTP surface
	// ==========================================================================

	e := router.New(router.Config{
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: registry,
	})

	billingHandler := admin.NewBillingHandler(app.Engine, app.Orchestrator, admin.Settings{
		NotificationsEnabled:  app.Dispatcher.Enabled(),
		OperatorRecipient:     cfg.Billing.OperatorRecipient,
		DefaultLateFeePercent: cfg.Billing.LateFeePercentDefault,
	}, logger)

	routes.RegisterBillingRoutes(e, routes.BillingDeps{
		Handler:  billingHandler,
		Verifier: middleware.NewStaticTokenVerifier(cfg.Operator.APIToken, cfg.Operator.Subject),
		Tenants:  app.Tenants,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", addr).Msg("Starting operator server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Waits for an in-flight pipeline run to finish
	if err := app.Orchestrator.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("orchestrator shutdown failed: %w", err)
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("billing server exited")
	}
}
