package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPipelineRunning is returned when a run of the same pipeline is active.
var ErrPipelineRunning = &Error{Code: ECONFLICT, Message: "Pipeline run already in progress"}

// MarkOverdueResult is the set of invoices moved from pending to overdue.
type MarkOverdueResult struct {
	UpdatedCount int       `json:"updatedCount"`
	Invoices     []Invoice `json:"invoices"`
}

// ReminderCohorts groups pending invoices by exact days until due.
type ReminderCohorts struct {
	DueInThreeDays []Invoice `json:"dueInThreeDays"`
	DueTomorrow    []Invoice `json:"dueTomorrow"`
	DueToday       []Invoice `json:"dueToday"`
}

// ByOffset returns the cohort for a days-until-due value from ReminderOffsets.
func (c *ReminderCohorts) ByOffset(days int) []Invoice {
	switch days {
	case 3:
		return c.DueInThreeDays
	case 1:
		return c.DueTomorrow
	case 0:
		return c.DueToday
	}
	return nil
}

// OverdueCohorts groups overdue invoices by exact days past due.
type OverdueCohorts struct {
	SevenDays    []Invoice `json:"sevenDays"`
	FourteenDays []Invoice `json:"fourteenDays"`
	ThirtyDays   []Invoice `json:"thirtyDays"`
}

// ByOffset returns the cohort for a days-past-due value from OverdueOffsets.
func (c *OverdueCohorts) ByOffset(days int) []Invoice {
	switch days {
	case 7:
		return c.SevenDays
	case 14:
		return c.FourteenDays
	case 30:
		return c.ThirtyDays
	}
	return nil
}

// LateFeeResult summarizes one ApplyLateFees pass.
type LateFeeResult struct {
	AppliedCount int                 `json:"appliedCount"`
	TotalFees    decimal.Decimal     `json:"totalFees"`
	Adjustments  []BillingAdjustment `json:"adjustments"`
}

// DuePaymentPlans holds active plans due today and those with an overdue installment.
type DuePaymentPlans struct {
	DueToday []PaymentPlan `json:"dueToday"`
	Overdue  []PaymentPlan `json:"overdue"`
}

// DefaultedPlansResult is the set of plans moved to defaulted.
type DefaultedPlansResult struct {
	UpdatedCount int     `json:"updatedCount"`
	PlanIDs      []int64 `json:"planIds"`
}

// DailySummary is the derived financial snapshot sent to the operator.
type DailySummary struct {
	Date           time.Time       `json:"date"`
	TenantID       *uuid.UUID      `json:"tenantId,omitempty"`
	PendingCount   int64           `json:"pendingCount"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
	OverdueCount   int64           `json:"overdueCount"`
	OverdueAmount  decimal.Decimal `json:"overdueAmount"`
	PaidTodayCount int64           `json:"paidTodayCount"`
	CollectedToday decimal.Decimal `json:"collectedToday"`
}

// CohortSizes counts invoices per offset.
type CohortSizes map[int]int

// ReminderPreview reports who would be contacted today without sending anything.
type ReminderPreview struct {
	Date     time.Time   `json:"date"`
	Upcoming CohortSizes `json:"upcoming"`
	Overdue  CohortSizes `json:"overdue"`
}

// ReconciliationService advances invoice and payment plan lifecycles.
// Each operation reads the clock once. A tenant in the context scopes the
// operation; otherwise every active tenant is swept.
type ReconciliationService interface {
	// MarkOverdueInvoices moves pending invoices with due_date < today to overdue.
	MarkOverdueInvoices(ctx context.Context) (*MarkOverdueResult, error)

	// GetReminderCohorts returns pending invoices due exactly in 3, 1 and 0 days.
	GetReminderCohorts(ctx context.Context) (*ReminderCohorts, error)

	// GetOverdueCohorts returns overdue invoices exactly 7, 14 and 30 days past due.
	GetOverdueCohorts(ctx context.Context) (*OverdueCohorts, error)

	// ApplyLateFees charges percent of the amount on invoices more than 30 days
	// past due that have no late fee in the last 30 days.
	ApplyLateFees(ctx context.Context, percent decimal.Decimal) (*LateFeeResult, error)

	// GetDuePaymentPlans returns active plans due today and overdue.
	GetDuePaymentPlans(ctx context.Context) (*DuePaymentPlans, error)

	// MarkDefaultedPaymentPlans defaults active plans more than 90 days behind.
	MarkDefaultedPaymentPlans(ctx context.Context) (*DefaultedPlansResult, error)

	// GenerateDailySummary aggregates invoice totals, optionally for one tenant.
	GenerateDailySummary(ctx context.Context, tenantID *uuid.UUID) (*DailySummary, error)

	// GetReminderPreview returns the size of every reminder and overdue cohort.
	GetReminderPreview(ctx context.Context) (*ReminderPreview, error)
}

// NotificationDispatcher delivers patient and operator notifications.
// Implementations are best effort; callers log failures and continue.
type NotificationDispatcher interface {
	SendPaymentReminder(ctx context.Context, invoice Invoice, daysUntilDue int) error
	SendOverdueNotice(ctx context.Context, invoice Invoice, daysOverdue int) error
	SendPaymentPlanReminder(ctx context.Context, plan PaymentPlan, isOverdue bool) error
	SendDailySummary(ctx context.Context, recipient string, summary DailySummary) error
}
