// Package notifytest provides a recording NotificationDispatcher for tests.
package notifytest

import (
	"context"
	"sync"

	"github.com/dukerupert/billing/internal/domain"
)

// Call is one recorded dispatch.
type Call struct {
	Kind      string
	InvoiceID int64
	PlanID    int64
	Days      int
	IsOverdue bool
	Recipient string
	Summary   domain.DailySummary
	// Failed is set when the dispatch returned Err.
	Failed bool
}

// Recorder records every attempted dispatch. FailInvoice and FailPlan make
// dispatches for those IDs return Err; the attempt is still recorded.
type Recorder struct {
	mu          sync.Mutex
	calls       []Call
	FailInvoice map[int64]bool
	FailPlan    map[int64]bool
	FailSummary bool
	Err         error
}

var _ domain.NotificationDispatcher = (*Recorder)(nil)

// Calls returns a copy of the recorded dispatches.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many dispatches of kind succeeded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Kind == kind && !c.Failed {
			n++
		}
	}
	return n
}

func (r *Recorder) record(c Call, fail bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Failed = fail
	r.calls = append(r.calls, c)
	if fail {
		return r.Err
	}
	return nil
}

func (r *Recorder) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	return r.record(Call{Kind: "payment_reminder", InvoiceID: invoice.ID, Days: daysUntilDue}, r.FailInvoice[invoice.ID])
}

func (r *Recorder) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	return r.record(Call{Kind: "overdue_notice", InvoiceID: invoice.ID, Days: daysOverdue}, r.FailInvoice[invoice.ID])
}

func (r *Recorder) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	return r.record(Call{Kind: "plan_reminder", PlanID: plan.ID, IsOverdue: isOverdue}, r.FailPlan[plan.ID])
}

func (r *Recorder) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	return r.record(Call{Kind: "daily_summary", Recipient: recipient, Summary: summary}, r.FailSummary)
}
