package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/jobs"
	"github.com/dukerupert/billing/internal/tenant"
)

// runner runs the pipelines synchronously under the run guard.
type runner interface {
	RunDaily(ctx context.Context) (*jobs.Report, error)
	RunWeekly(ctx context.Context, percent decimal.Decimal) (*jobs.Report, error)
}

// backend is what the commands operate on.
type backend struct {
	engine         domain.ReconciliationService
	runner         runner
	tenants        tenant.Resolver
	defaultPercent decimal.Decimal
	logger         zerolog.Logger
	close          func()
}

// opener builds a backend. asOf pins "today" when set.
type opener func(ctx context.Context, asOf *time.Time) (*backend, error)

type globalFlags struct {
	tenant string
	asOf   string
}

func newRootCmd(open opener) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "billingctl",
		Short: "Run billing reconciliation operations and pipelines",
		Long: `billingctl runs the billing reconciliation engine against the configured
database, using the same settings as the server (.env and environment).

Every command prints its result as JSON. Operations that change the ledger
are idempotent and may be re-run safely.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.tenant, "tenant", "", "Restrict to one tenant (slug or UUID)")
	rootCmd.PersistentFlags().StringVar(&flags.asOf, "as-of", "", "Evaluate as if today were this date (YYYY-MM-DD)")

	// withBackend opens the backend, scopes the context and runs fn.
	withBackend := func(fn func(ctx context.Context, b *backend) (any, error)) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			var asOf *time.Time
			if flags.asOf != "" {
				d, err := time.Parse(time.DateOnly, flags.asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date, use YYYY-MM-DD: %w", err)
				}
				asOf = &d
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			b, err := open(ctx, asOf)
			if err != nil {
				return err
			}
			if b.close != nil {
				defer b.close()
			}

			ctx = domain.NewContextWithOperator(ctx, &domain.Operator{Subject: operatorName(), Source: "cli"})
			if flags.tenant != "" {
				t, err := b.tenants.Resolve(ctx, flags.tenant)
				if err != nil {
					return err
				}
				ctx = tenant.NewContext(ctx, t)
			}

			result, err := fn(ctx, b)
			b.logger.Debug().
				Str("command", cmd.CommandPath()).
				Str("tenant", flags.tenant).
				Err(err).
				Msg("command finished")
			if err != nil {
				// An aborted run still has a report worth printing.
				if report, ok := result.(*jobs.Report); ok && report != nil {
					_ = writeJSON(cmd, report)
				}
				return err
			}
			return writeJSON(cmd, result)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "mark-overdue",
			Short: "Mark pending invoices past their due date as overdue",
			Args:  cobra.NoArgs,
			RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
				return b.engine.MarkOverdueInvoices(ctx)
			}),
		},
		newLateFeesCmd(withBackend),
		newRemindersCmd(withBackend),
		&cobra.Command{
			Use:   "summary",
			Short: "Print the daily billing summary",
			Args:  cobra.NoArgs,
			RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
				return b.engine.GenerateDailySummary(ctx, nil)
			}),
		},
		newPlansCmd(withBackend),
		newRunCmd(withBackend),
	)

	return rootCmd
}

type backendFunc func(fn func(ctx context.Context, b *backend) (any, error)) func(cmd *cobra.Command, args []string) error

func newLateFeesCmd(withBackend backendFunc) *cobra.Command {
	var percent string
	cmd := &cobra.Command{
		Use:     "late-fees",
		Short:   "Apply a late fee to invoices more than 30 days past due",
		Example: "  billingctl late-fees --percent 2",
		Args:    cobra.NoArgs,
		RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
			p, err := parsePercent(percent)
			if err != nil {
				return nil, err
			}
			return b.engine.ApplyLateFees(ctx, p)
		}),
	}
	cmd.Flags().StringVar(&percent, "percent", "", "Late fee percentage of the invoice amount")
	_ = cmd.MarkFlagRequired("percent")
	return cmd
}

func newRemindersCmd(withBackend backendFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect reminder cohorts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "Count the invoices in every reminder and overdue cohort",
		Args:  cobra.NoArgs,
		RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
			return b.engine.GetReminderPreview(ctx)
		}),
	})
	return cmd
}

func newPlansCmd(withBackend backendFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect and reconcile payment plans",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "due",
			Short: "List active payment plans due today and overdue",
			Args:  cobra.NoArgs,
			RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
				return b.engine.GetDuePaymentPlans(ctx)
			}),
		},
		&cobra.Command{
			Use:   "mark-defaulted",
			Short: "Default active plans more than 90 days behind",
			Args:  cobra.NoArgs,
			RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
				return b.engine.MarkDefaultedPaymentPlans(ctx)
			}),
		},
	)
	return cmd
}

func newRunCmd(withBackend backendFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a billing pipeline now and wait for it to finish",
	}

	var percent string
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Run the weekly late fee pipeline",
		Args:  cobra.NoArgs,
		RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
			p := b.defaultPercent
			if percent != "" {
				var err error
				if p, err = parsePercent(percent); err != nil {
					return nil, err
				}
			}
			return b.runner.RunWeekly(ctx, p)
		}),
	}
	weekly.Flags().StringVar(&percent, "percent", "", "Late fee percentage (defaults to LATE_FEE_PERCENT_DEFAULT)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "daily",
			Short: "Run the daily reconciliation pipeline",
			Args:  cobra.NoArgs,
			RunE: withBackend(func(ctx context.Context, b *backend) (any, error) {
				return b.runner.RunDaily(ctx)
			}),
		},
		weekly,
	)
	return cmd
}

func parsePercent(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --percent %q: %w", raw, err)
	}
	if err := domain.ValidateLateFeePercent(p); err != nil {
		return decimal.Zero, err
	}
	return p, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
