package telemetry

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// BillingMetrics holds Prometheus metrics for the reconciliation pipelines.
// Ledger counters carry a tenant_id label for per-hospital dashboards.
type BillingMetrics struct {
	// Pipelines
	PipelineRuns     *prometheus.CounterVec
	PipelineSkipped  *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	PipelineLastRun  *prometheus.GaugeVec
	StepFailures     *prometheus.CounterVec

	// Ledger transitions
	InvoicesMarkedOverdue *prometheus.CounterVec
	LateFeesApplied       *prometheus.CounterVec
	LateFeeAmount         *prometheus.CounterVec
	PlansDefaulted        *prometheus.CounterVec

	// Notifications
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewBillingMetrics creates the metrics and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry().
func NewBillingMetrics(reg prometheus.Registerer, namespace string) *BillingMetrics {
	if namespace == "" {
		namespace = "billing"
	}
	f := promauto.With(reg)

	return &BillingMetrics{
		PipelineRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total pipeline runs by outcome",
			},
			[]string{"pipeline", "outcome"}, // outcome: success, failed
		),
		PipelineSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "skipped_total",
				Help:      "Pipeline fires dropped because a run was already active",
			},
			[]string{"pipeline"},
		),
		PipelineDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Pipeline run duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"pipeline"},
		),
		PipelineLastRun: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the pipeline last finished",
			},
			[]string{"pipeline"},
		),
		StepFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "step_failures_total",
				Help:      "Engine errors that aborted a pipeline run",
			},
			[]string{"pipeline", "step"},
		),

		InvoicesMarkedOverdue: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "invoices_marked_overdue_total",
				Help:      "Invoices moved from pending to overdue",
			},
			[]string{"tenant_id"},
		),
		LateFeesApplied: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "late_fees_applied_total",
				Help:      "Late fee adjustments created",
			},
			[]string{"tenant_id"},
		),
		LateFeeAmount: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "late_fee_amount_total",
				Help:      "Sum of late fees charged, in invoice currency units",
			},
			[]string{"tenant_id"},
		),
		PlansDefaulted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "payment_plans_defaulted_total",
				Help:      "Payment plans moved from active to defaulted",
			},
			[]string{"tenant_id"},
		),

		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "sent_total",
				Help:      "Notifications dispatched",
			},
			[]string{"kind"}, // kind: payment_reminder, overdue_notice, plan_reminder, daily_summary
		),
		NotificationsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "failed_total",
				Help:      "Notification dispatch failures",
			},
			[]string{"kind"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Admin API requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Admin API request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// The helpers below are safe to call on a nil *BillingMetrics so services and
// tests can run without a registry.

// RecordOverdue counts invoices moved to overdue for a tenant.
func (m *BillingMetrics) RecordOverdue(tenantID uuid.UUID, n int) {
	if m == nil || n == 0 {
		return
	}
	m.InvoicesMarkedOverdue.WithLabelValues(tenantID.String()).Add(float64(n))
}

// RecordLateFee counts one late fee and its amount.
func (m *BillingMetrics) RecordLateFee(tenantID uuid.UUID, amount decimal.Decimal) {
	if m == nil {
		return
	}
	id := tenantID.String()
	m.LateFeesApplied.WithLabelValues(id).Inc()
	m.LateFeeAmount.WithLabelValues(id).Add(amount.InexactFloat64())
}

// RecordDefaulted counts plans moved to defaulted for a tenant.
func (m *BillingMetrics) RecordDefaulted(tenantID uuid.UUID, n int) {
	if m == nil || n == 0 {
		return
	}
	m.PlansDefaulted.WithLabelValues(tenantID.String()).Add(float64(n))
}

// RecordNotification counts a dispatch outcome.
func (m *BillingMetrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.NotificationsFailed.WithLabelValues(kind).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(kind).Inc()
}

// RecordSkipped counts a dropped pipeline fire.
func (m *BillingMetrics) RecordSkipped(pipeline string) {
	if m == nil {
		return
	}
	m.PipelineSkipped.WithLabelValues(pipeline).Inc()
}

// RecordStepFailure counts an aborted step.
func (m *BillingMetrics) RecordStepFailure(pipeline, step string) {
	if m == nil {
		return
	}
	m.StepFailures.WithLabelValues(pipeline, step).Inc()
}

// RecordRun records a finished pipeline run.
func (m *BillingMetrics) RecordRun(pipeline string, seconds float64, finishedUnix float64, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	m.PipelineRuns.WithLabelValues(pipeline, outcome).Inc()
	m.PipelineDuration.WithLabelValues(pipeline).Observe(seconds)
	m.PipelineLastRun.WithLabelValues(pipeline).Set(finishedUnix)
}
