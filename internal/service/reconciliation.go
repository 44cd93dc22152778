package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/repository"
	"github.com/dukerupert/billing/internal/telemetry"
	"github.com/dukerupert/billing/internal/tenant"
)

// TxRunner runs fn inside a single ledger transaction. postgres.TxRunner and
// repositorytest.Store implement it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// ReconciliationConfig wires the reconciliation engine.
type ReconciliationConfig struct {
	Repo    repository.Querier
	Tx      TxRunner
	Tenants tenant.Resolver
	Clock   domain.Clock
	Logger  zerolog.Logger
	Metrics *telemetry.BillingMetrics
}

type reconciliationService struct {
	repo    repository.Querier
	tx      TxRunner
	tenants tenant.Resolver
	clock   domain.Clock
	logger  zerolog.Logger
	metrics *telemetry.BillingMetrics
}

var _ domain.ReconciliationService = (*reconciliationService)(nil)

// NewReconciliationService creates the billing reconciliation engine.
func NewReconciliationService(cfg ReconciliationConfig) domain.ReconciliationService {
	clock := cfg.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &reconciliationService{
		repo:    cfg.Repo,
		tx:      cfg.Tx,
		tenants: cfg.Tenants,
		clock:   clock,
		logger:  cfg.Logger.With().Str("component", "reconciliation").Logger(),
		metrics: cfg.Metrics,
	}
}

// scope returns the tenant carried by ctx, or every active tenant.
func (s *reconciliationService) scope(ctx context.Context, op string) ([]tenant.Tenant, error) {
	if t := tenant.FromContext(ctx); t != nil {
		return []tenant.Tenant{*t}, nil
	}
	tenants, err := s.tenants.Active(ctx)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to list active tenants")
	}
	return tenants, nil
}

// MarkOverdueInvoices moves pending invoices with a due date before today to overdue.
func (s *reconciliationService) MarkOverdueInvoices(ctx context.Context) (*domain.MarkOverdueResult, error) {
	const op = "billing.mark_overdue"

	today := domain.DateOf(s.clock.Now())
	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}

	result := &domain.MarkOverdueResult{Invoices: []domain.Invoice{}}
	for _, t := range tenants {
		rows, err := s.repo.MarkInvoicesOverdue(ctx, repository.MarkInvoicesOverdueParams{
			TenantID:  t.ID,
			DueBefore: pgDate(today),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to mark invoices overdue")
		}
		for _, row := range rows {
			result.Invoices = append(result.Invoices, invoiceFromOverdueRow(row))
		}
		s.metrics.RecordOverdue(t.ID, len(rows))
		if len(rows) > 0 {
			s.logger.Info().Str("tenant", t.Slug).Int("count", len(rows)).Msg("invoices marked overdue")
		}
	}
	result.UpdatedCount = len(result.Invoices)
	return result, nil
}

// GetReminderCohorts returns pending invoices due exactly 3, 1 and 0 days from today.
// An invoice that misses its exact day is not picked up on a later day.
func (s *reconciliationService) GetReminderCohorts(ctx context.Context) (*domain.ReminderCohorts, error) {
	const op = "billing.reminder_cohorts"

	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.reminderCohorts(ctx, op, tenants, domain.DateOf(s.clock.Now()))
}

func (s *reconciliationService) reminderCohorts(ctx context.Context, op string, tenants []tenant.Tenant, today time.Time) (*domain.ReminderCohorts, error) {
	cohorts := &domain.ReminderCohorts{}
	for _, days := range domain.ReminderOffsets {
		invoices, err := s.invoicesDueOn(ctx, op, tenants, domain.InvoiceStatusPending, domain.AddDays(today, days))
		if err != nil {
			return nil, err
		}
		switch days {
		case 3:
			cohorts.DueInThreeDays = invoices
		case 1:
			cohorts.DueTomorrow = invoices
		case 0:
			cohorts.DueToday = invoices
		}
	}
	return cohorts, nil
}

// GetOverdueCohorts returns overdue invoices exactly 7, 14 and 30 days past due.
func (s *reconciliationService) GetOverdueCohorts(ctx context.Context) (*domain.OverdueCohorts, error) {
	const op = "billing.overdue_cohorts"

	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.overdueCohorts(ctx, op, tenants, domain.DateOf(s.clock.Now()))
}

func (s *reconciliationService) overdueCohorts(ctx context.Context, op string, tenants []tenant.Tenant, today time.Time) (*domain.OverdueCohorts, error) {
	cohorts := &domain.OverdueCohorts{}
	for _, days := range domain.OverdueOffsets {
		invoices, err := s.invoicesDueOn(ctx, op, tenants, domain.InvoiceStatusOverdue, domain.AddDays(today, -days))
		if err != nil {
			return nil, err
		}
		switch days {
		case 7:
			cohorts.SevenDays = invoices
		case 14:
			cohorts.FourteenDays = invoices
		case 30:
			cohorts.ThirtyDays = invoices
		}
	}
	return cohorts, nil
}

func (s *reconciliationService) invoicesDueOn(ctx context.Context, op string, tenants []tenant.Tenant, status domain.InvoiceStatus, due time.Time) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	for _, t := range tenants {
		rows, err := s.repo.ListInvoicesByStatusDueOn(ctx, repository.ListInvoicesByStatusDueOnParams{
			TenantID: t.ID,
			Status:   string(status),
			DueDate:  pgDate(due),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list invoices")
		}
		for _, row := range rows {
			invoices = append(invoices, invoiceFromDueOnRow(row))
		}
	}
	return invoices, nil
}

// errSkipLateFee ends a late fee transaction when the fee rounds to zero.
var errSkipLateFee = errors.New("late fee rounds to zero")

// skipLateFee reports whether err means the invoice stopped qualifying
// between the candidate query and the row lock.
func skipLateFee(err error) bool {
	return errors.Is(err, errSkipLateFee) ||
		errors.Is(err, domain.ErrInvoiceNotOverdue) ||
		errors.Is(err, domain.ErrLateFeeAlreadyApplied)
}

// ApplyLateFees charges percent of the current amount on every overdue invoice
// due before today-30 with no late fee in the last 30 days. Each fee and its
// amount increase commit together; eligibility is rechecked under a row lock.
func (s *reconciliationService) ApplyLateFees(ctx context.Context, percent decimal.Decimal) (*domain.LateFeeResult, error) {
	const op = "billing.apply_late_fees"

	if err := domain.ValidateLateFeePercent(percent); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := domain.DateOf(now)
	suppressSince := domain.LateFeeSuppressedSince(now)

	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}

	result := &domain.LateFeeResult{TotalFees: decimal.Zero, Adjustments: []domain.BillingAdjustment{}}
	for _, t := range tenants {
		candidates, err := s.repo.ListLateFeeCandidates(ctx, repository.ListLateFeeCandidatesParams{
			TenantID:      t.ID,
			DueBefore:     pgDate(domain.LateFeeDueBefore(today)),
			SuppressSince: pgTimestamp(suppressSince),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list late fee candidates")
		}

		for _, inv := range candidates {
			adj, err := s.applyLateFee(ctx, inv, percent, now, suppressSince)
			if skipLateFee(err) {
				s.logger.Debug().Err(err).Int64("invoice_id", inv.ID).Msg("late fee skipped after lock")
				continue
			}
			if err != nil {
				return nil, domain.Internal(err, op, "failed to apply late fee")
			}

			result.Adjustments = append(result.Adjustments, adj)
			result.TotalFees = result.TotalFees.Add(adj.Amount)
			s.metrics.RecordLateFee(t.ID, adj.Amount)
		}
	}
	result.AppliedCount = len(result.Adjustments)

	if result.AppliedCount > 0 {
		s.logger.Info().
			Int("count", result.AppliedCount).
			Str("total", result.TotalFees.StringFixed(2)).
			Str("percent", percent.String()).
			Msg("late fees applied")
	}
	return result, nil
}

func (s *reconciliationService) applyLateFee(ctx context.Context, candidate repository.Invoice, percent decimal.Decimal, now, suppressSince time.Time) (domain.BillingAdjustment, error) {
	var adj domain.BillingAdjustment
	today := domain.DateOf(now)

	err := s.tx.InTx(ctx, func(q repository.Querier) error {
		inv, err := q.LockInvoiceForUpdate(ctx, repository.LockInvoiceForUpdateParams{
			TenantID: candidate.TenantID,
			ID:       candidate.ID,
		})
		if err != nil {
			return err
		}
		if inv.Status != string(domain.InvoiceStatusOverdue) {
			return domain.ErrInvoiceNotOverdue
		}

		n, err := q.CountLateFeesSince(ctx, repository.CountLateFeesSinceParams{
			InvoiceID: inv.ID,
			Since:     pgTimestamp(suppressSince),
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrLateFeeAlreadyApplied
		}

		fee := domain.LateFeeAmount(inv.Amount, percent)
		if !fee.IsPositive() {
			return errSkipLateFee
		}

		daysPastDue := domain.DaysBetween(fromPgDate(inv.DueDate), today)
		row, err := q.CreateBillingAdjustment(ctx, repository.CreateBillingAdjustmentParams{
			TenantID:       inv.TenantID,
			InvoiceID:      inv.ID,
			AdjustmentType: domain.AdjustmentTypeLateFee,
			Amount:         fee,
			Reason:         domain.LateFeeReason(percent, daysPastDue),
			CreatedAt:      pgTimestamp(now),
		})
		if err != nil {
			return err
		}

		if _, err := q.IncreaseInvoiceAmount(ctx, repository.IncreaseInvoiceAmountParams{
			Delta:    fee,
			TenantID: inv.TenantID,
			ID:       inv.ID,
		}); err != nil {
			return err
		}

		adj = adjustmentFromRow(row)
		return nil
	})
	return adj, err
}

// GetDuePaymentPlans returns active plans due today and active plans already behind.
func (s *reconciliationService) GetDuePaymentPlans(ctx context.Context) (*domain.DuePaymentPlans, error) {
	const op = "billing.due_payment_plans"

	today := domain.DateOf(s.clock.Now())
	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}

	due := &domain.DuePaymentPlans{DueToday: []domain.PaymentPlan{}, Overdue: []domain.PaymentPlan{}}
	for _, t := range tenants {
		todayRows, err := s.repo.ListActivePlansDueOn(ctx, repository.ListActivePlansDueOnParams{
			TenantID:    t.ID,
			NextDueDate: pgDate(today),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list plans due today")
		}
		for _, row := range todayRows {
			due.DueToday = append(due.DueToday, planFromDueOnRow(row))
		}

		overdueRows, err := s.repo.ListActivePlansDueBefore(ctx, repository.ListActivePlansDueBeforeParams{
			TenantID:  t.ID,
			DueBefore: pgDate(today),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list overdue plans")
		}
		for _, row := range overdueRows {
			due.Overdue = append(due.Overdue, planFromDueBeforeRow(row))
		}
	}
	return due, nil
}

// MarkDefaultedPaymentPlans defaults active plans whose next due date is
// before today-90.
func (s *reconciliationService) MarkDefaultedPaymentPlans(ctx context.Context) (*domain.DefaultedPlansResult, error) {
	const op = "billing.mark_defaulted_plans"

	today := domain.DateOf(s.clock.Now())
	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}

	result := &domain.DefaultedPlansResult{PlanIDs: []int64{}}
	for _, t := range tenants {
		ids, err := s.repo.MarkPlansDefaulted(ctx, repository.MarkPlansDefaultedParams{
			TenantID:  t.ID,
			DueBefore: pgDate(domain.DefaultCutoff(today)),
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to mark payment plans defaulted")
		}
		result.PlanIDs = append(result.PlanIDs, ids...)
		s.metrics.RecordDefaulted(t.ID, len(ids))
		if len(ids) > 0 {
			s.logger.Warn().Str("tenant", t.Slug).Int("count", len(ids)).Msg("payment plans defaulted")
		}
	}
	result.UpdatedCount = len(result.PlanIDs)
	return result, nil
}

// GenerateDailySummary aggregates pending, overdue and paid-today totals.
// A nil tenantID falls back to the tenant in ctx, then to all tenants.
func (s *reconciliationService) GenerateDailySummary(ctx context.Context, tenantID *uuid.UUID) (*domain.DailySummary, error) {
	const op = "billing.daily_summary"

	now := s.clock.Now()
	paidFrom := domain.StartOfDay(now)
	paidTo := paidFrom.AddDate(0, 0, 1)

	if tenantID == nil {
		if t := tenant.FromContext(ctx); t != nil {
			id := t.ID
			tenantID = &id
		}
	}

	params := repository.SummarizeInvoicesParams{
		PaidFrom: pgTimestamp(paidFrom),
		PaidTo:   pgTimestamp(paidTo),
	}
	if tenantID != nil {
		params.TenantID = uuid.NullUUID{UUID: *tenantID, Valid: true}
	}

	row, err := s.repo.SummarizeInvoices(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to summarize invoices")
	}

	return &domain.DailySummary{
		Date:           domain.DateOf(now),
		TenantID:       tenantID,
		PendingCount:   row.PendingCount,
		PendingAmount:  row.PendingAmount,
		OverdueCount:   row.OverdueCount,
		OverdueAmount:  row.OverdueAmount,
		PaidTodayCount: row.PaidTodayCount,
		CollectedToday: row.CollectedToday,
	}, nil
}

// GetReminderPreview reports cohort sizes without dispatching anything.
func (s *reconciliationService) GetReminderPreview(ctx context.Context) (*domain.ReminderPreview, error) {
	const op = "billing.reminder_preview"

	today := domain.DateOf(s.clock.Now())
	tenants, err := s.scope(ctx, op)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.reminderCohorts(ctx, op, tenants, today)
	if err != nil {
		return nil, err
	}
	overdue, err := s.overdueCohorts(ctx, op, tenants, today)
	if err != nil {
		return nil, err
	}

	preview := &domain.ReminderPreview{
		Date:     today,
		Upcoming: domain.CohortSizes{},
		Overdue:  domain.CohortSizes{},
	}
	for _, days := range domain.ReminderOffsets {
		preview.Upcoming[days] = len(upcoming.ByOffset(days))
	}
	for _, days := range domain.OverdueOffsets {
		preview.Overdue[days] = len(overdue.ByOffset(days))
	}
	return preview, nil
}
