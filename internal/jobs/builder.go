package jobs

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/telemetry"
)

// Config wires the pipeline builder.
type Config struct {
	Engine     domain.ReconciliationService
	Dispatcher domain.NotificationDispatcher
	Clock      domain.Clock

	// OperatorRecipient receives the daily summary. Empty skips the step.
	OperatorRecipient string

	// Concurrency bounds in-flight notifications within one step (default 5).
	Concurrency int

	Logger  zerolog.Logger
	Metrics *telemetry.BillingMetrics
}

// Builder assembles the daily and weekly pipelines.
type Builder struct {
	cfg    Config
	logger zerolog.Logger
}

// NewBuilder creates a pipeline builder.
func NewBuilder(cfg Config) *Builder {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock{}
	}
	return &Builder{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "jobs").Logger(),
	}
}

func (b *Builder) pipeline(name string, steps ...Step) Pipeline {
	return Pipeline{Name: name, Steps: steps, logger: b.logger, metrics: b.cfg.Metrics}
}

// Daily returns the six-step daily pipeline.
func (b *Builder) Daily() Pipeline {
	return b.pipeline(PipelineDaily,
		Step{Name: StepMarkOverdue, Run: b.markOverdue},
		Step{Name: StepPaymentReminders, Run: b.paymentReminders},
		Step{Name: StepOverdueNotices, Run: b.overdueNotices},
		Step{Name: StepPaymentPlanReminders, Run: b.paymentPlanReminders},
		Step{Name: StepMarkDefaultedPlans, Run: b.markDefaultedPlans},
		Step{Name: StepDailySummary, Run: b.dailySummary},
	)
}

// Weekly returns the late fee pipeline charging percent.
func (b *Builder) Weekly(percent decimal.Decimal) Pipeline {
	return b.pipeline(PipelineWeekly,
		Step{Name: StepApplyLateFees, Run: func(ctx context.Context) (StepResult, error) {
			return b.applyLateFees(ctx, percent)
		}},
	)
}

// dispatch sends n items with at most Concurrency in flight. A failed item is
// logged and counted; it never cancels its siblings.
func (b *Builder) dispatch(ctx context.Context, step string, n int, send func(ctx context.Context, i int) (zerolog.Logger, error)) (dispatched, failed int) {
	var ok, bad atomic.Int64

	var g errgroup.Group
	g.SetLimit(b.cfg.Concurrency)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log, err := send(ctx, i)
			if err != nil {
				bad.Add(1)
				log.Warn().Err(err).Str("step", step).Msg("notification failed")
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load()), int(bad.Load())
}

func (b *Builder) invoiceLogger(inv domain.Invoice) zerolog.Logger {
	return b.logger.With().
		Str("tenant_id", inv.TenantID.String()).
		Int64("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Logger()
}

func (b *Builder) markOverdue(ctx context.Context) (StepResult, error) {
	res, err := b.cfg.Engine.MarkOverdueInvoices(ctx)
	if err != nil {
		return StepResult{}, err
	}

	// Newly flagged invoices get the day-1 notice however late the sweep ran.
	sent, failed := b.dispatch(ctx, StepMarkOverdue, len(res.Invoices), func(ctx context.Context, i int) (zerolog.Logger, error) {
		inv := res.Invoices[i]
		return b.invoiceLogger(inv), b.cfg.Dispatcher.SendOverdueNotice(ctx, inv, FirstOverdueNoticeDay)
	})
	return StepResult{Processed: res.UpdatedCount, Dispatched: sent, Failed: failed}, nil
}

type invoiceItem struct {
	invoice domain.Invoice
	days    int
}

func (b *Builder) paymentReminders(ctx context.Context) (StepResult, error) {
	cohorts, err := b.cfg.Engine.GetReminderCohorts(ctx)
	if err != nil {
		return StepResult{}, err
	}

	var items []invoiceItem
	for _, days := range domain.ReminderOffsets {
		for _, inv := range cohorts.ByOffset(days) {
			items = append(items, invoiceItem{invoice: inv, days: days})
		}
	}

	sent, failed := b.dispatch(ctx, StepPaymentReminders, len(items), func(ctx context.Context, i int) (zerolog.Logger, error) {
		it := items[i]
		return b.invoiceLogger(it.invoice), b.cfg.Dispatcher.SendPaymentReminder(ctx, it.invoice, it.days)
	})
	return StepResult{Processed: len(items), Dispatched: sent, Failed: failed}, nil
}

func (b *Builder) overdueNotices(ctx context.Context) (StepResult, error) {
	cohorts, err := b.cfg.Engine.GetOverdueCohorts(ctx)
	if err != nil {
		return StepResult{}, err
	}

	var items []invoiceItem
	for _, days := range domain.OverdueOffsets {
		for _, inv := range cohorts.ByOffset(days) {
			items = append(items, invoiceItem{invoice: inv, days: days})
		}
	}

	sent, failed := b.dispatch(ctx, StepOverdueNotices, len(items), func(ctx context.Context, i int) (zerolog.Logger, error) {
		it := items[i]
		return b.invoiceLogger(it.invoice), b.cfg.Dispatcher.SendOverdueNotice(ctx, it.invoice, it.days)
	})
	return StepResult{Processed: len(items), Dispatched: sent, Failed: failed}, nil
}

type planItem struct {
	plan      domain.PaymentPlan
	isOverdue bool
}

func (b *Builder) paymentPlanReminders(ctx context.Context) (StepResult, error) {
	due, err := b.cfg.Engine.GetDuePaymentPlans(ctx)
	if err != nil {
		return StepResult{}, err
	}

	items := make([]planItem, 0, len(due.DueToday)+len(due.Overdue))
	for _, p := range due.DueToday {
		items = append(items, planItem{plan: p})
	}
	for _, p := range due.Overdue {
		items = append(items, planItem{plan: p, isOverdue: true})
	}

	sent, failed := b.dispatch(ctx, StepPaymentPlanReminders, len(items), func(ctx context.Context, i int) (zerolog.Logger, error) {
		it := items[i]
		log := b.logger.With().Str("tenant_id", it.plan.TenantID.String()).Int64("plan_id", it.plan.ID).Logger()
		return log, b.cfg.Dispatcher.SendPaymentPlanReminder(ctx, it.plan, it.isOverdue)
	})
	return StepResult{Processed: len(items), Dispatched: sent, Failed: failed}, nil
}

func (b *Builder) markDefaultedPlans(ctx context.Context) (StepResult, error) {
	res, err := b.cfg.Engine.MarkDefaultedPaymentPlans(ctx)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Processed: res.UpdatedCount}, nil
}

func (b *Builder) dailySummary(ctx context.Context) (StepResult, error) {
	if b.cfg.OperatorRecipient == "" {
		b.logger.Info().Msg("no operator recipient configured, skipping daily summary")
		return StepResult{Skipped: true}, nil
	}

	summary, err := b.cfg.Engine.GenerateDailySummary(ctx, nil)
	if err != nil {
		return StepResult{}, err
	}

	res := StepResult{Processed: 1}
	if err := b.cfg.Dispatcher.SendDailySummary(ctx, b.cfg.OperatorRecipient, *summary); err != nil {
		b.logger.Warn().Err(err).Str("step", StepDailySummary).Msg("notification failed")
		res.Failed = 1
		return res, nil
	}
	res.Dispatched = 1
	return res, nil
}

func (b *Builder) applyLateFees(ctx context.Context, percent decimal.Decimal) (StepResult, error) {
	res, err := b.cfg.Engine.ApplyLateFees(ctx, percent)
	if err != nil {
		return StepResult{}, err
	}
	b.logger.Info().
		Int("applied", res.AppliedCount).
		Str("total_fees", res.TotalFees.StringFixed(2)).
		Str("percent", percent.String()).
		Msg("weekly late fees applied")
	return StepResult{Processed: res.AppliedCount}, nil
}
