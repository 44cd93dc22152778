package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/telemetry"
)

// Pipeline names
const (
	PipelineDaily  = "daily"
	PipelineWeekly = "weekly"
)

// Step names, in daily order, then weekly.
const (
	StepMarkOverdue          = "mark_overdue"
	StepPaymentReminders     = "payment_reminders"
	StepOverdueNotices       = "overdue_notices"
	StepPaymentPlanReminders = "payment_plan_reminders"
	StepMarkDefaultedPlans   = "mark_defaulted_plans"
	StepDailySummary         = "daily_summary"
	StepApplyLateFees        = "apply_late_fees"
)

// FirstOverdueNoticeDay is the day count sent with the notice for an invoice
// the mark_overdue step has just flagged.
const FirstOverdueNoticeDay = 1

// StepResult is what one step did.
type StepResult struct {
	Step       string        `json:"step"`
	Processed  int           `json:"processed"`  // ledger rows changed or items found
	Dispatched int           `json:"dispatched"` // notifications accepted by the dispatcher
	Failed     int           `json:"failed"`     // notifications that returned an error
	Skipped    bool          `json:"skipped,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Report summarizes one pipeline run.
type Report struct {
	Pipeline   string       `json:"pipeline"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Steps      []StepResult `json:"steps"`
	FailedStep string       `json:"failedStep,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Step is one ordered unit of a pipeline. A returned error aborts the run.
type Step struct {
	Name string
	Run  func(ctx context.Context) (StepResult, error)
}

// Pipeline runs its steps strictly in order.
type Pipeline struct {
	Name  string
	Steps []Step

	logger  zerolog.Logger
	metrics *telemetry.BillingMetrics
}

// Run executes every step until one fails. The report is always returned;
// the error is the failing step's engine error.
func (p Pipeline) Run(ctx context.Context) (*Report, error) {
	log := p.logger.With().Str("pipeline", p.Name).Logger()
	report := &Report{Pipeline: p.Name, StartedAt: time.Now(), Steps: []StepResult{}}

	ctx, finish := telemetry.StartSpan(ctx, "billing.pipeline", p.Name)
	defer finish()

	log.Info().Int("steps", len(p.Steps)).Msg("pipeline started")

	var runErr error
	for _, step := range p.Steps {
		started := time.Now()
		res, err := step.Run(ctx)
		res.Step = step.Name
		res.Duration = time.Since(started)

		if err != nil {
			runErr = err
			report.FailedStep = step.Name
			report.Error = err.Error()
			log.Error().Err(err).Str("step", step.Name).Msg("step failed, aborting run")
			p.metrics.RecordStepFailure(p.Name, step.Name)
			telemetry.CapturePipelineError(err, p.Name, step.Name)
			break
		}

		report.Steps = append(report.Steps, res)
		telemetry.AddBreadcrumb("pipeline", p.Name+"."+step.Name, map[string]interface{}{
			"processed":  res.Processed,
			"dispatched": res.Dispatched,
			"failed":     res.Failed,
		})
		log.Info().
			Str("step", step.Name).
			Int("processed", res.Processed).
			Int("dispatched", res.Dispatched).
			Int("failed", res.Failed).
			Bool("skipped", res.Skipped).
			Dur("duration", res.Duration).
			Msg("step completed")
	}

	report.FinishedAt = time.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)
	p.metrics.RecordRun(p.Name, elapsed.Seconds(), float64(report.FinishedAt.Unix()), runErr)

	if runErr == nil {
		log.Info().Dur("duration", elapsed).Msg("pipeline finished")
	}
	return report, runErr
}
