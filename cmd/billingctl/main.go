// Command billingctl runs the billing reconciliation operations and pipelines
// from the command line against the configured database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/dukerupert/billing/internal"
	"github.com/dukerupert/billing/internal/bootstrap"
	"github.com/dukerupert/billing/internal/domain"
)

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp wires the real stack. Schema migrations are left to the server.
func openApp(ctx context.Context, asOf *time.Time) (*backend, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	var clock domain.Clock
	if asOf != nil {
		clock = asOfClock(*asOf, cfg.Billing.Location)
		logger.Info().Str("as_of", asOf.Format(time.DateOnly)).Msg("using fixed clock")
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Clock: clock, SkipMigrations: true}, logger)
	if err != nil {
		return nil, err
	}

	return &backend{
		engine:         app.Engine,
		runner:         app.Orchestrator,
		tenants:        app.Tenants,
		defaultPercent: cfg.Billing.LateFeePercentDefault,
		logger:         logger,
		close:          app.Close,
	}, nil
}

// asOfClock pins "today" to the civil date d in the business timezone.
// Noon keeps the date stable under any UTC offset.
func asOfClock(d time.Time, loc *time.Location) domain.Clock {
	return domain.FixedClock{At: time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)}
}

func operatorName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
