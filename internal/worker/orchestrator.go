// Package worker schedules the billing pipelines and guards against
// overlapping runs.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/jobs"
	"github.com/dukerupert/billing/internal/telemetry"
)

// Default cron schedules, evaluated in the business timezone.
const (
	DefaultDailySchedule  = "0 6 * * *"
	DefaultWeeklySchedule = "0 7 * * 1"
)

// Config holds orchestrator configuration
type Config struct {
	// DailySchedule and WeeklySchedule are standard five-field cron specs
	DailySchedule  string
	WeeklySchedule string

	// Location the schedules are evaluated in (UTC when nil)
	Location *time.Location

	// LateFeePercent is charged by scheduled weekly runs
	LateFeePercent decimal.Decimal

	// RunOnStart fires the daily pipeline once when Start is called
	RunOnStart bool
}

// Status is the exposed orchestrator state.
type Status struct {
	IsRunning         bool `json:"isRunning"`
	ScheduledJobCount int  `json:"scheduledJobCount"`
}

// Orchestrator runs the daily and weekly pipelines on calendar triggers.
// Stop cancels pending triggers but never interrupts an in-flight run.
type Orchestrator struct {
	cfg     Config
	builder *jobs.Builder
	guard   RunGuard
	logger  zerolog.Logger
	metrics *telemetry.BillingMetrics

	mu      sync.Mutex
	cron    *cron.Cron
	lastRun *time.Time
	reports map[string]*jobs.Report

	inflight sync.WaitGroup
}

// NewOrchestrator validates the schedules and creates a stopped orchestrator.
func NewOrchestrator(builder *jobs.Builder, guard RunGuard, cfg Config, logger zerolog.Logger, metrics *telemetry.BillingMetrics) (*Orchestrator, error) {
	if cfg.DailySchedule == "" {
		cfg.DailySchedule = DefaultDailySchedule
	}
	if cfg.WeeklySchedule == "" {
		cfg.WeeklySchedule = DefaultWeeklySchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LateFeePercent.IsZero() {
		cfg.LateFeePercent = decimal.NewFromInt(domain.DefaultLateFeePercent)
	}
	if err := domain.ValidateLateFeePercent(cfg.LateFeePercent); err != nil {
		return nil, err
	}
	for name, spec := range map[string]string{"daily": cfg.DailySchedule, "weekly": cfg.WeeklySchedule} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, domain.Invalid("worker.new", fmt.Sprintf("invalid %s schedule %q: %v", name, spec, err))
		}
	}
	if guard == nil {
		guard = NewMemoryGuard()
	}

	return &Orchestrator{
		cfg:     cfg,
		builder: builder,
		guard:   guard,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
		metrics: metrics,
		reports: make(map[string]*jobs.Report),
	}, nil
}

// Start registers the calendar triggers. Calling Start while running is a no-op.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cron != nil {
		o.logger.Warn().Msg("orchestrator already running")
		return nil
	}

	c := cron.New(
		cron.WithLocation(o.cfg.Location),
		cron.WithChain(cron.Recover(cronLogger{o.logger})),
		cron.WithLogger(cronLogger{o.logger}),
	)

	if _, err := c.AddFunc(o.cfg.DailySchedule, func() {
		_, _ = o.run(context.Background(), jobs.PipelineDaily, o.builder.Daily())
	}); err != nil {
		return fmt.Errorf("failed to schedule daily pipeline: %w", err)
	}
	if _, err := c.AddFunc(o.cfg.WeeklySchedule, func() {
		_, _ = o.run(context.Background(), jobs.PipelineWeekly, o.builder.Weekly(o.cfg.LateFeePercent))
	}); err != nil {
		return fmt.Errorf("failed to schedule weekly pipeline: %w", err)
	}

	c.Start()
	o.cron = c

	o.logger.Info().
		Str("daily", o.cfg.DailySchedule).
		Str("weekly", o.cfg.WeeklySchedule).
		Str("location", o.cfg.Location.String()).
		Msg("orchestrator started")

	if o.cfg.RunOnStart {
		o.TriggerDaily(context.Background())
	}
	return nil
}

// Stop removes the triggers and waits, bounded by ctx, for in-flight runs.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	c := o.cron
	o.cron = nil
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if c != nil {
			<-c.Stop().Done()
		}
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info().Msg("orchestrator stopped")
		return nil
	case <-ctx.Done():
		o.logger.Warn().Msg("orchestrator stopped with runs still in flight")
		return ctx.Err()
	}
}

// Status reports whether triggers are registered and how many.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cron == nil {
		return Status{}
	}
	return Status{IsRunning: true, ScheduledJobCount: len(o.cron.Entries())}
}

// LastRun returns when the most recent pipeline run finished, or nil.
func (o *Orchestrator) LastRun() *time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastRun == nil {
		return nil
	}
	t := *o.lastRun
	return &t
}

// LastReport returns the most recent report for pipeline, or nil.
func (o *Orchestrator) LastReport(pipeline string) *jobs.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reports[pipeline]
}

// NextRuns returns the next fire time of each scheduled trigger.
func (o *Orchestrator) NextRuns() []time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cron == nil {
		return nil
	}
	var next []time.Time
	for _, e := range o.cron.Entries() {
		next = append(next, e.Next)
	}
	return next
}

// RunDaily runs the daily pipeline synchronously.
func (o *Orchestrator) RunDaily(ctx context.Context) (*jobs.Report, error) {
	return o.run(ctx, jobs.PipelineDaily, o.builder.Daily())
}

// RunWeekly runs the weekly pipeline synchronously. A zero percent uses the
// configured default.
func (o *Orchestrator) RunWeekly(ctx context.Context, percent decimal.Decimal) (*jobs.Report, error) {
	if percent.IsZero() {
		percent = o.cfg.LateFeePercent
	}
	return o.run(ctx, jobs.PipelineWeekly, o.builder.Weekly(percent))
}

// TriggerDaily starts a daily run in the background and returns immediately.
func (o *Orchestrator) TriggerDaily(ctx context.Context) {
	o.trigger(ctx, jobs.PipelineDaily, func(ctx context.Context) (*jobs.Report, error) {
		return o.RunDaily(ctx)
	})
}

// TriggerWeekly starts a weekly run in the background and returns immediately.
func (o *Orchestrator) TriggerWeekly(ctx context.Context, percent decimal.Decimal) {
	o.trigger(ctx, jobs.PipelineWeekly, func(ctx context.Context) (*jobs.Report, error) {
		return o.RunWeekly(ctx, percent)
	})
}

func (o *Orchestrator) trigger(ctx context.Context, pipeline string, run func(ctx context.Context) (*jobs.Report, error)) {
	// Detach from the request so the run outlives it, keeping its values.
	ctx = context.WithoutCancel(ctx)

	o.logger.Info().Str("pipeline", pipeline).Str("triggered_by", domain.TriggeredBy(ctx)).Msg("manual run requested")

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error().Interface("panic", r).Str("pipeline", pipeline).Msg("pipeline panicked")
			}
		}()
		_, _ = run(ctx)
	}()
}

// run executes p under the guard. A run already in progress drops this one.
func (o *Orchestrator) run(ctx context.Context, name string, p jobs.Pipeline) (*jobs.Report, error) {
	const op = "worker.run"
	log := o.logger.With().Str("pipeline", name).Str("triggered_by", domain.TriggeredBy(ctx)).Logger()

	ok, err := o.guard.TryAcquire(ctx, name)
	if err != nil {
		log.Error().Err(err).Msg("run guard unavailable")
		return nil, domain.Internal(err, op, "failed to acquire run guard")
	}
	if !ok {
		log.Warn().Msg("run already in progress, dropping")
		o.metrics.RecordSkipped(name)
		return nil, domain.ErrPipelineRunning
	}
	defer func() {
		if err := o.guard.Release(context.WithoutCancel(ctx), name); err != nil {
			log.Error().Err(err).Msg("failed to release run guard")
		}
	}()

	report, runErr := p.Run(ctx)

	o.mu.Lock()
	finished := report.FinishedAt
	o.lastRun = &finished
	o.reports[name] = report
	o.mu.Unlock()

	return report, runErr
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
