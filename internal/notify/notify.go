// Package notify composes notification dispatchers: the kill switch, fan-out
// to several transports, metrics, and the NATS event publisher.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/telemetry"
)

// Notification kinds, used as metric labels and NATS subject suffixes.
const (
	KindPaymentReminder = "payment_reminder"
	KindOverdueNotice   = "overdue_notice"
	KindPlanReminder    = "plan_reminder"
	KindDailySummary    = "daily_summary"
)

// Gate drops every notification when disabled. Ledger mutations still run.
type Gate struct {
	next    domain.NotificationDispatcher
	enabled bool
	logger  zerolog.Logger
}

var _ domain.NotificationDispatcher = (*Gate)(nil)

// NewGate wraps next behind the notifications kill switch.
func NewGate(next domain.NotificationDispatcher, enabled bool, logger zerolog.Logger) *Gate {
	return &Gate{next: next, enabled: enabled, logger: logger.With().Str("component", "notify").Logger()}
}

// Enabled reports whether notifications are delivered.
func (g *Gate) Enabled() bool {
	return g.enabled
}

func (g *Gate) skip(kind string) bool {
	if g.enabled {
		return false
	}
	g.logger.Debug().Str("kind", kind).Msg("notifications disabled, skipping")
	return true
}

func (g *Gate) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	if g.skip(KindPaymentReminder) {
		return nil
	}
	return g.next.SendPaymentReminder(ctx, invoice, daysUntilDue)
}

func (g *Gate) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	if g.skip(KindOverdueNotice) {
		return nil
	}
	return g.next.SendOverdueNotice(ctx, invoice, daysOverdue)
}

func (g *Gate) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	if g.skip(KindPlanReminder) {
		return nil
	}
	return g.next.SendPaymentPlanReminder(ctx, plan, isOverdue)
}

func (g *Gate) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	if g.skip(KindDailySummary) {
		return nil
	}
	return g.next.SendDailySummary(ctx, recipient, summary)
}

// Fanout delivers each notification to every dispatcher. All dispatchers are
// attempted; their errors are joined.
type Fanout []domain.NotificationDispatcher

var _ domain.NotificationDispatcher = Fanout(nil)

func (f Fanout) each(fn func(d domain.NotificationDispatcher) error) error {
	var errs []error
	for _, d := range f {
		if err := fn(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	return f.each(func(d domain.NotificationDispatcher) error {
		return d.SendPaymentReminder(ctx, invoice, daysUntilDue)
	})
}

func (f Fanout) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	return f.each(func(d domain.NotificationDispatcher) error {
		return d.SendOverdueNotice(ctx, invoice, daysOverdue)
	})
}

func (f Fanout) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	return f.each(func(d domain.NotificationDispatcher) error {
		return d.SendPaymentPlanReminder(ctx, plan, isOverdue)
	})
}

func (f Fanout) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	return f.each(func(d domain.NotificationDispatcher) error {
		return d.SendDailySummary(ctx, recipient, summary)
	})
}

// Instrumented counts dispatch outcomes per kind.
type Instrumented struct {
	next    domain.NotificationDispatcher
	metrics *telemetry.BillingMetrics
}

var _ domain.NotificationDispatcher = (*Instrumented)(nil)

// NewInstrumented wraps next with notification counters.
func NewInstrumented(next domain.NotificationDispatcher, metrics *telemetry.BillingMetrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (i *Instrumented) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	err := i.next.SendPaymentReminder(ctx, invoice, daysUntilDue)
	i.metrics.RecordNotification(KindPaymentReminder, err)
	return err
}

func (i *Instrumented) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	err := i.next.SendOverdueNotice(ctx, invoice, daysOverdue)
	i.metrics.RecordNotification(KindOverdueNotice, err)
	return err
}

func (i *Instrumented) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	err := i.next.SendPaymentPlanReminder(ctx, plan, isOverdue)
	i.metrics.RecordNotification(KindPlanReminder, err)
	return err
}

func (i *Instrumented) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	err := i.next.SendDailySummary(ctx, recipient, summary)
	i.metrics.RecordNotification(KindDailySummary, err)
	return err
}
