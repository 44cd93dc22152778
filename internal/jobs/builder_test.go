package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/notify/notifytest"
	"github.com/dukerupert/billing/internal/repository"
	"github.com/dukerupert/billing/internal/repository/repositorytest"
	"github.com/dukerupert/billing/internal/service"
	"github.com/dukerupert/billing/internal/tenant"
)

type harness struct {
	store    *repositorytest.Store
	recorder *notifytest.Recorder
	builder  *Builder
	tenant   repository.Tenant
	patient  repository.Patient
	today    time.Time
}

func newHarness(t *testing.T, recipient string) *harness {
	t.Helper()

	now := time.Date(2026, time.March, 15, 6, 0, 0, 0, time.UTC)
	clock := domain.FixedClock{At: now}
	store := repositorytest.New()
	tn := store.AddTenant("st-marys")
	patient := store.AddPatient(tn.ID, "Ada", "Lovelace", "ada@example.com")

	engine := service.NewReconciliationService(service.ReconciliationConfig{
		Repo:    store,
		Tx:      store,
		Tenants: tenant.NewDBResolver(store),
		Clock:   clock,
		Logger:  zerolog.Nop(),
	})
	recorder := &notifytest.Recorder{Err: errors.New("smtp: 451 temporary failure")}

	return &harness{
		store:    store,
		recorder: recorder,
		tenant:   tn,
		patient:  patient,
		today:    domain.DateOf(now),
		builder: NewBuilder(Config{
			Engine:            engine,
			Dispatcher:        recorder,
			Clock:             clock,
			OperatorRecipient: recipient,
			Concurrency:       3,
			Logger:            zerolog.Nop(),
		}),
	}
}

func (h *harness) invoice(amount string, dueOffset int, status string) repository.Invoice {
	return h.store.AddInvoice(repository.Invoice{
		TenantID:  h.tenant.ID,
		PatientID: h.patient.ID,
		Amount:    decimal.RequireFromString(amount),
		DueDate:   repositorytest.Date(domain.AddDays(h.today, dueOffset)),
		Status:    status,
	})
}

func (h *harness) plan(dueOffset int) repository.PaymentPlan {
	return h.store.AddPlan(repository.PaymentPlan{
		TenantID:          h.tenant.ID,
		PatientID:         h.patient.ID,
		PlanName:          "Plan",
		InstallmentAmount: decimal.NewFromInt(100),
		RemainingBalance:  decimal.NewFromInt(500),
		NextDueDate:       repositorytest.Date(domain.AddDays(h.today, dueOffset)),
	})
}

func stepByName(r *Report, name string) StepResult {
	for _, s := range r.Steps {
		if s.Step == name {
			return s
		}
	}
	return StepResult{}
}

func TestDaily_RunsEveryStepInOrder(t *testing.T) {
	h := newHarness(t, "ops@example.com")

	newlyOverdue := h.invoice("100", -1, "pending")
	h.invoice("100", 3, "pending")
	h.invoice("100", 0, "pending")
	h.invoice("100", -7, "overdue")
	h.plan(0)
	h.plan(-5)
	defaulted := h.plan(-91)

	report, err := h.builder.Daily().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PipelineDaily, report.Pipeline)
	assert.Empty(t, report.FailedStep)

	names := make([]string, len(report.Steps))
	for i, s := range report.Steps {
		names[i] = s.Step
	}
	assert.Equal(t, []string{
		StepMarkOverdue,
		StepPaymentReminders,
		StepOverdueNotices,
		StepPaymentPlanReminders,
		StepMarkDefaultedPlans,
		StepDailySummary,
	}, names)

	assert.Equal(t, 1, stepByName(report, StepMarkOverdue).Processed)
	assert.Equal(t, 2, stepByName(report, StepPaymentReminders).Dispatched)
	assert.Equal(t, 1, stepByName(report, StepOverdueNotices).Dispatched)
	assert.Equal(t, 3, stepByName(report, StepPaymentPlanReminders).Dispatched)
	assert.Equal(t, 1, stepByName(report, StepMarkDefaultedPlans).Processed)
	assert.Equal(t, 1, stepByName(report, StepDailySummary).Dispatched)

	assert.Equal(t, "defaulted", h.store.Plan(defaulted.ID).Status)

	var dayOne []notifytest.Call
	for _, c := range h.recorder.Calls() {
		if c.Kind == "overdue_notice" && c.InvoiceID == newlyOverdue.ID {
			dayOne = append(dayOne, c)
		}
	}
	require.Len(t, dayOne, 1)
	assert.Equal(t, 1, dayOne[0].Days)

	summaries := 0
	for _, c := range h.recorder.Calls() {
		if c.Kind == "daily_summary" {
			summaries++
			assert.Equal(t, "ops@example.com", c.Recipient)
			assert.Equal(t, int64(2), c.Summary.PendingCount)
			assert.Equal(t, int64(2), c.Summary.OverdueCount)
		}
	}
	assert.Equal(t, 1, summaries)
}

func TestDaily_NotificationFailureDoesNotStopCohort(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		step      string
		dueOffset int
		status    string
	}{
		{"seven days overdue", "overdue_notice", StepOverdueNotices, -7, "overdue"},
		{"due in three days", "payment_reminder", StepPaymentReminders, 3, "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")

			first := h.invoice("100", tt.dueOffset, tt.status)
			failing := h.invoice("100", tt.dueOffset, tt.status)
			last := h.invoice("100", tt.dueOffset, tt.status)
			h.recorder.FailInvoice = map[int64]bool{failing.ID: true}

			report, err := h.builder.Daily().Run(context.Background())
			require.NoError(t, err)
			assert.Len(t, report.Steps, 6)

			step := stepByName(report, tt.step)
			assert.Equal(t, 3, step.Processed)
			assert.Equal(t, 2, step.Dispatched)
			assert.Equal(t, 1, step.Failed)

			attempted := map[int64]bool{}
			for _, c := range h.recorder.Calls() {
				if c.Kind == tt.kind {
					attempted[c.InvoiceID] = !c.Failed
				}
			}
			assert.Equal(t, map[int64]bool{first.ID: true, failing.ID: false, last.ID: true}, attempted)
		})
	}
}

// A sweep that runs late still sends the day-1 notice for invoices it flags.
func TestDaily_MarkOverdueSendsDayOneNotice(t *testing.T) {
	h := newHarness(t, "")
	late := h.invoice("100", -5, "pending")

	report, err := h.builder.Daily().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stepByName(report, StepMarkOverdue).Dispatched)

	var notices []notifytest.Call
	for _, c := range h.recorder.Calls() {
		if c.Kind == "overdue_notice" && c.InvoiceID == late.ID {
			notices = append(notices, c)
		}
	}
	require.Len(t, notices, 1)
	assert.Equal(t, FirstOverdueNoticeDay, notices[0].Days)
	assert.Equal(t, "overdue", h.store.Invoice(late.ID).Status)
}

func TestDaily_EngineErrorAbortsRemainingSteps(t *testing.T) {
	h := newHarness(t, "ops@example.com")
	h.invoice("100", 3, "pending")
	h.plan(-91)
	h.store.Fail("ListInvoicesByStatusDueOn", errors.New("connection reset by peer"))

	report, err := h.builder.Daily().Run(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))

	assert.Equal(t, StepPaymentReminders, report.FailedStep)
	assert.NotEmpty(t, report.Error)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StepMarkOverdue, report.Steps[0].Step)

	assert.Zero(t, h.store.Calls("ListActivePlansDueOn"))
	assert.Zero(t, h.store.Calls("MarkPlansDefaulted"))
	assert.Zero(t, h.store.Calls("SummarizeInvoices"))
	assert.Empty(t, h.recorder.Calls())
}

func TestDaily_SkipsSummaryWithoutRecipient(t *testing.T) {
	h := newHarness(t, "")

	report, err := h.builder.Daily().Run(context.Background())
	require.NoError(t, err)

	summary := stepByName(report, StepDailySummary)
	assert.True(t, summary.Skipped)
	assert.Zero(t, h.store.Calls("SummarizeInvoices"))
	assert.Zero(t, h.recorder.Count("daily_summary"))
}

func TestDaily_SummaryDispatchFailureIsNotAnEngineError(t *testing.T) {
	h := newHarness(t, "ops@example.com")
	h.recorder.FailSummary = true

	report, err := h.builder.Daily().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stepByName(report, StepDailySummary).Failed)
}

func TestWeekly_AppliesLateFees(t *testing.T) {
	h := newHarness(t, "")
	inv := h.invoice("1000", -35, "overdue")

	report, err := h.builder.Weekly(decimal.NewFromInt(2)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PipelineWeekly, report.Pipeline)
	assert.Equal(t, 1, stepByName(report, StepApplyLateFees).Processed)
	assert.True(t, h.store.Invoice(inv.ID).Amount.Equal(decimal.NewFromInt(1020)))

	again, err := h.builder.Weekly(decimal.NewFromInt(2)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stepByName(again, StepApplyLateFees).Processed)
}

func TestWeekly_InvalidPercentFails(t *testing.T) {
	h := newHarness(t, "")

	report, err := h.builder.Weekly(decimal.Zero).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidLateFeePercent)
	assert.Equal(t, StepApplyLateFees, report.FailedStep)
}

// slowDispatcher tracks the peak number of concurrent sends.
type slowDispatcher struct {
	notifytest.Recorder
	inFlight atomic.Int64
	mu       sync.Mutex
	peak     int64
}

func (s *slowDispatcher) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	n := s.inFlight.Add(1)
	s.mu.Lock()
	if n > s.peak {
		s.peak = n
	}
	s.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	s.inFlight.Add(-1)
	return nil
}

func TestDispatch_IsBounded(t *testing.T) {
	h := newHarness(t, "")
	for i := 0; i < 12; i++ {
		h.invoice("10", 3, "pending")
	}

	slow := &slowDispatcher{}
	h.builder.cfg.Dispatcher = slow
	h.builder.cfg.Concurrency = 2

	report, err := h.builder.Daily().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stepByName(report, StepPaymentReminders).Dispatched)

	slow.mu.Lock()
	defer slow.mu.Unlock()
	assert.LessOrEqual(t, slow.peak, int64(2))
	assert.GreaterOrEqual(t, slow.peak, int64(1))
}
