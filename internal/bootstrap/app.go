// Package bootstrap wires the billing components from configuration. The
// server and billingctl share it so both run the same engine and pipelines.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal"
	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/email"
	"github.com/dukerupert/billing/internal/jobs"
	"github.com/dukerupert/billing/internal/notify"
	"github.com/dukerupert/billing/internal/postgres"
	"github.com/dukerupert/billing/internal/repository"
	"github.com/dukerupert/billing/internal/service"
	"github.com/dukerupert/billing/internal/telemetry"
	"github.com/dukerupert/billing/internal/tenant"
	"github.com/dukerupert/billing/internal/worker"
)

// App holds the long-lived billing components.
type App struct {
	Pool         *pgxpool.Pool
	Tenants      tenant.Resolver
	Engine       domain.ReconciliationService
	Dispatcher   *notify.Gate
	Orchestrator *worker.Orchestrator

	closers []func()
}

// Options adjust the wiring for a particular entrypoint.
type Options struct {
	// Clock overrides the business-timezone wall clock.
	Clock domain.Clock
	// Metrics may be nil.
	Metrics *telemetry.BillingMetrics
	// SkipMigrations leaves the schema untouched.
	SkipMigrations bool
}

// New migrates the database, opens the pool and builds the engine, the
// notification chain and the orchestrator. The orchestrator is not started.
func New(ctx context.Context, cfg *internal.Config, opts Options, logger zerolog.Logger) (*App, error) {
	app := &App{}

	if !opts.SkipMigrations {
		logger.Info().Msg("Running database migrations...")
		if err := internal.OpenAndMigrate(cfg.DatabaseUrl); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		logger.Info().Msg("Database migrations completed successfully")
	}

	logger.Info().Msg("Connecting to database...")
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{DatabaseURL: cfg.DatabaseUrl})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	app.Pool = pool
	app.closers = append(app.closers, pool.Close)
	logger.Info().Msg("Database connection established")

	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{Location: cfg.Billing.Location}
	}

	repo := repository.New(pool)
	app.Tenants = tenant.NewDBResolver(repo)
	app.Engine = service.NewReconciliationService(service.ReconciliationConfig{
		Repo:    repo,
		Tx:      postgres.NewTxRunner(pool),
		Tenants: app.Tenants,
		Clock:   clock,
		Logger:  logger,
		Metrics: opts.Metrics,
	})

	var events notify.Publisher
	if cfg.NATSURL != "" {
		conn, err := notify.Connect(cfg.NATSURL, "billing")
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = conn.Drain() })
		events = conn
		logger.Info().Str("url", cfg.NATSURL).Msg("NATS publisher enabled")
	}
	app.Dispatcher = NewDispatcher(cfg, events, clock, opts.Metrics, logger)

	builder := jobs.NewBuilder(jobs.Config{
		Engine:            app.Engine,
		Dispatcher:        app.Dispatcher,
		Clock:             clock,
		OperatorRecipient: cfg.Billing.OperatorRecipient,
		Concurrency:       cfg.Billing.DispatchConcurrency,
		Logger:            logger,
		Metrics:           opts.Metrics,
	})

	guard, rdb, err := NewGuard(cfg.RedisURL)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		logger.Info().Msg("Using Redis run guard")
	}

	app.Orchestrator, err = worker.NewOrchestrator(builder, guard, worker.Config{
		DailySchedule:  cfg.Billing.DailySchedule,
		WeeklySchedule: cfg.Billing.WeeklySchedule,
		Location:       cfg.Billing.Location,
		LateFeePercent: cfg.Billing.LateFeePercentDefault,
		RunOnStart:     cfg.Billing.RunPipelineOnStart,
	}, logger, opts.Metrics)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize orchestrator: %w", err)
	}

	return app, nil
}

// NewDispatcher builds the notification chain: email and, when conn is set,
// NATS events, instrumented and gated by the notifications switch.
func NewDispatcher(cfg *internal.Config, conn notify.Publisher, clock domain.Clock, metrics *telemetry.BillingMetrics, logger zerolog.Logger) *notify.Gate {
	sender := NewSender(cfg.Email, logger)

	fanout := notify.Fanout{email.NewNotifier(sender, cfg.Email.From, cfg.Email.FromName, logger)}
	if conn != nil {
		fanout = append(fanout, notify.NewNATSPublisher(conn, clock))
	}

	return notify.NewGate(notify.NewInstrumented(fanout, metrics), cfg.Billing.NotificationsEnabled, logger)
}

// NewSender returns the email.Sender for the configured provider. SMTP is the
// fallback for an empty provider.
func NewSender(cfg internal.EmailConfig, logger zerolog.Logger) email.Sender {
	if cfg.Provider == "postmark" {
		return email.NewPostmarkSender(cfg.PostmarkToken, "", logger)
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.Host,
		Port:     int(cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
	}, logger)
}

// NewGuard returns a Redis-backed guard when redisURL is set so that replicas
// share one run lock, and an in-process guard otherwise.
func NewGuard(redisURL string) (worker.RunGuard, *redis.Client, error) {
	if redisURL == "" {
		return worker.NewMemoryGuard(), nil, nil
	}
	rdb, err := worker.NewRedisClient(redisURL)
	if err != nil {
		return nil, nil, err
	}
	return worker.NewRedisGuard(rdb, "", 0), rdb, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
