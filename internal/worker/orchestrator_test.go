package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/jobs"
	"github.com/dukerupert/billing/internal/notify/notifytest"
	"github.com/dukerupert/billing/internal/telemetry"
)

// stubEngine returns empty results. When block is set, MarkOverdueInvoices
// signals entered and waits for block to close.
type stubEngine struct {
	entered  chan struct{}
	block    chan struct{}
	marks    atomic.Int64
	lateFees atomic.Int64
	percent  atomic.Value
}

func (s *stubEngine) MarkOverdueInvoices(ctx context.Context) (*domain.MarkOverdueResult, error) {
	s.marks.Add(1)
	if s.block != nil {
		s.entered <- struct{}{}
		<-s.block
	}
	return &domain.MarkOverdueResult{}, nil
}

func (s *stubEngine) GetReminderCohorts(ctx context.Context) (*domain.ReminderCohorts, error) {
	return &domain.ReminderCohorts{}, nil
}

func (s *stubEngine) GetOverdueCohorts(ctx context.Context) (*domain.OverdueCohorts, error) {
	return &domain.OverdueCohorts{}, nil
}

func (s *stubEngine) ApplyLateFees(ctx context.Context, percent decimal.Decimal) (*domain.LateFeeResult, error) {
	s.lateFees.Add(1)
	s.percent.Store(percent.String())
	return &domain.LateFeeResult{TotalFees: decimal.Zero}, nil
}

func (s *stubEngine) GetDuePaymentPlans(ctx context.Context) (*domain.DuePaymentPlans, error) {
	return &domain.DuePaymentPlans{}, nil
}

func (s *stubEngine) MarkDefaultedPaymentPlans(ctx context.Context) (*domain.DefaultedPlansResult, error) {
	return &domain.DefaultedPlansResult{}, nil
}

func (s *stubEngine) GenerateDailySummary(ctx context.Context, tenantID *uuid.UUID) (*domain.DailySummary, error) {
	return &domain.DailySummary{}, nil
}

func (s *stubEngine) GetReminderPreview(ctx context.Context) (*domain.ReminderPreview, error) {
	return &domain.ReminderPreview{}, nil
}

func newOrchestrator(t *testing.T, engine *stubEngine, cfg Config) (*Orchestrator, *telemetry.BillingMetrics) {
	t.Helper()
	metrics := telemetry.NewBillingMetrics(prometheus.NewRegistry(), "test")
	builder := jobs.NewBuilder(jobs.Config{
		Engine:     engine,
		Dispatcher: &notifytest.Recorder{},
		Logger:     zerolog.Nop(),
		Metrics:    metrics,
	})
	o, err := NewOrchestrator(builder, NewMemoryGuard(), cfg, zerolog.Nop(), metrics)
	require.NoError(t, err)
	return o, metrics
}

func TestOrchestrator_StartStop(t *testing.T) {
	o, _ := newOrchestrator(t, &stubEngine{}, Config{})

	assert.Equal(t, Status{}, o.Status())

	require.NoError(t, o.Start())
	assert.Equal(t, Status{IsRunning: true, ScheduledJobCount: 2}, o.Status())
	assert.Len(t, o.NextRuns(), 2)

	// A second start keeps the existing triggers.
	require.NoError(t, o.Start())
	assert.Equal(t, 2, o.Status().ScheduledJobCount)

	require.NoError(t, o.Stop(context.Background()))
	assert.Equal(t, Status{}, o.Status())
	assert.Nil(t, o.NextRuns())
}

func TestNewOrchestrator_Validation(t *testing.T) {
	builder := jobs.NewBuilder(jobs.Config{Engine: &stubEngine{}, Dispatcher: &notifytest.Recorder{}, Logger: zerolog.Nop()})

	_, err := NewOrchestrator(builder, nil, Config{DailySchedule: "every morning"}, zerolog.Nop(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	_, err = NewOrchestrator(builder, nil, Config{LateFeePercent: decimal.NewFromInt(150)}, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLateFeePercent)
}

func TestOrchestrator_NextDailyRunUsesCalendar(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	o, _ := newOrchestrator(t, &stubEngine{}, Config{DailySchedule: "0 6 * * *", WeeklySchedule: "0 7 * * 1", Location: loc})
	require.NoError(t, o.Start())
	defer o.Stop(context.Background())

	for _, next := range o.NextRuns() {
		local := next.In(loc)
		assert.Zero(t, local.Minute())
		assert.Contains(t, []int{6, 7}, local.Hour())
	}
}

func TestOrchestrator_RunDailyRecordsLastRun(t *testing.T) {
	engine := &stubEngine{}
	o, _ := newOrchestrator(t, engine, Config{})
	assert.Nil(t, o.LastRun())

	report, err := o.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Steps, 6)
	require.NotNil(t, o.LastRun())
	assert.Equal(t, report, o.LastReport(jobs.PipelineDaily))
	assert.Equal(t, int64(1), engine.marks.Load())
}

func TestOrchestrator_RunWeeklyUsesDefaultPercent(t *testing.T) {
	engine := &stubEngine{}
	o, _ := newOrchestrator(t, engine, Config{})

	_, err := o.RunWeekly(context.Background(), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "2", engine.percent.Load())

	_, err = o.RunWeekly(context.Background(), decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, "1.5", engine.percent.Load())
}

func TestOrchestrator_OverlappingRunIsDropped(t *testing.T) {
	engine := &stubEngine{entered: make(chan struct{}), block: make(chan struct{})}
	o, metrics := newOrchestrator(t, engine, Config{})

	o.TriggerDaily(context.Background())
	<-engine.entered

	_, err := o.RunDaily(context.Background())
	assert.ErrorIs(t, err, domain.ErrPipelineRunning)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PipelineSkipped.WithLabelValues(jobs.PipelineDaily)))

	// The weekly pipeline has its own guard.
	_, err = o.RunWeekly(context.Background(), decimal.Zero)
	require.NoError(t, err)

	close(engine.block)
	require.NoError(t, o.Stop(context.Background()))
	assert.Equal(t, int64(1), engine.marks.Load())

	// The guard admits a new run once the previous one finished.
	engine.block = nil
	_, err = o.RunDaily(context.Background())
	require.NoError(t, err)
}

func TestOrchestrator_RunOnStart(t *testing.T) {
	engine := &stubEngine{}
	o, _ := newOrchestrator(t, engine, Config{RunOnStart: true})

	require.NoError(t, o.Start())
	require.NoError(t, o.Stop(context.Background()))

	assert.Equal(t, int64(1), engine.marks.Load())
	assert.NotNil(t, o.LastRun())
}

func TestOrchestrator_StopDoesNotInterruptRun(t *testing.T) {
	engine := &stubEngine{entered: make(chan struct{}), block: make(chan struct{})}
	o, _ := newOrchestrator(t, engine, Config{})
	require.NoError(t, o.Start())

	o.TriggerDaily(context.Background())
	<-engine.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, o.Stop(ctx), context.DeadlineExceeded)
	assert.False(t, o.Status().IsRunning)

	close(engine.block)
	require.NoError(t, o.Stop(context.Background()))
	report := o.LastReport(jobs.PipelineDaily)
	require.NotNil(t, report)
	assert.Len(t, report.Steps, 6)
}
