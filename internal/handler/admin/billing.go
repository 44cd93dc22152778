// Package admin implements the operator-facing billing trigger surface.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/jobs"
	"github.com/dukerupert/billing/internal/worker"
)

// Scheduler is the part of the orchestrator the operator surface drives.
type Scheduler interface {
	Status() worker.Status
	LastRun() *time.Time
	LastReport(pipeline string) *jobs.Report
	TriggerDaily(ctx context.Context)
	TriggerWeekly(ctx context.Context, percent decimal.Decimal)
}

// Settings are the configuration values reported by the status endpoint.
type Settings struct {
	NotificationsEnabled  bool
	OperatorRecipient     string
	DefaultLateFeePercent decimal.Decimal
}

// BillingHandler serves /admin/billing.
type BillingHandler struct {
	engine    domain.ReconciliationService
	scheduler Scheduler
	settings  Settings
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(engine domain.ReconciliationService, scheduler Scheduler, settings Settings, logger zerolog.Logger) *BillingHandler {
	if settings.DefaultLateFeePercent.IsZero() {
		settings.DefaultLateFeePercent = decimal.NewFromInt(domain.DefaultLateFeePercent)
	}
	return &BillingHandler{
		engine:    engine,
		scheduler: scheduler,
		settings:  settings,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With().Str("component", "admin.billing").Logger(),
	}
}

// StatusResponse is the getStatus payload.
type StatusResponse struct {
	NotificationsEnabled        bool                    `json:"notificationsEnabled"`
	OperatorRecipientConfigured bool                    `json:"operatorRecipientConfigured"`
	LastRunTimestamp            *time.Time              `json:"lastRunTimestamp"`
	Scheduler                   worker.Status           `json:"scheduler"`
	Pipelines                   map[string]*jobs.Report `json:"pipelines"`
}

// Status handles GET /admin/billing/status
func (h *BillingHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		NotificationsEnabled:        h.settings.NotificationsEnabled,
		OperatorRecipientConfigured: h.settings.OperatorRecipient != "",
		LastRunTimestamp:            h.scheduler.LastRun(),
		Scheduler:                   h.scheduler.Status(),
		Pipelines: map[string]*jobs.Report{
			jobs.PipelineDaily:  h.scheduler.LastReport(jobs.PipelineDaily),
			jobs.PipelineWeekly: h.scheduler.LastReport(jobs.PipelineWeekly),
		},
	})
}

// AckResponse acknowledges a background run.
type AckResponse struct {
	Message string           `json:"message"`
	Percent *decimal.Decimal `json:"percent,omitempty"`
}

// RunDaily handles POST /admin/billing/run/daily. The run happens in the
// background; an overlapping run is dropped by the orchestrator and logged.
func (h *BillingHandler) RunDaily(c echo.Context) error {
	h.scheduler.TriggerDaily(c.Request().Context())
	return c.JSON(http.StatusAccepted, AckResponse{Message: "Daily billing pipeline started"})
}

type percentRequest struct {
	Percent *decimal.Decimal `json:"percent" validate:"required"`
}

// bindPercent reads percent from the JSON body, falling back to ?percent=.
func bindPercent(c echo.Context, op string) (*decimal.Decimal, error) {
	var req percentRequest
	if err := c.Bind(&req); err != nil {
		return nil, domain.Invalid(op, "Invalid request body")
	}
	if req.Percent == nil {
		if raw := c.QueryParam("percent"); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, domain.NewValidationError(op, "percent", "percent must be a number")
			}
			req.Percent = &p
		}
	}
	return req.Percent, nil
}

// RunWeekly handles POST /admin/billing/run/weekly with an optional percent.
func (h *BillingHandler) RunWeekly(c echo.Context) error {
	const op = "admin.run_weekly"

	requested, err := bindPercent(c, op)
	if err != nil {
		return err
	}

	percent := h.settings.DefaultLateFeePercent
	if requested != nil {
		percent = *requested
	}
	if err := domain.ValidateLateFeePercent(percent); err != nil {
		return domain.NewValidationError(op, "percent", domain.ErrorMessage(err))
	}

	h.scheduler.TriggerWeekly(c.Request().Context(), percent)
	return c.JSON(http.StatusAccepted, AckResponse{Message: "Weekly billing pipeline started", Percent: &percent})
}

// MarkOverdue handles POST /admin/billing/invoices/mark-overdue
func (h *BillingHandler) MarkOverdue(c echo.Context) error {
	res, err := h.engine.MarkOverdueInvoices(c.Request().Context())
	if err != nil {
		return err
	}
	h.logger.Info().
		Str("triggered_by", domain.TriggeredBy(c.Request().Context())).
		Int("updated", res.UpdatedCount).
		Msg("manual mark overdue")
	return c.JSON(http.StatusOK, res)
}

// LateFeeResponse is the applyLateFeesNow payload.
type LateFeeResponse struct {
	AppliedCount int             `json:"appliedCount"`
	TotalFees    decimal.Decimal `json:"totalFees"`
}

// ApplyLateFees handles POST /admin/billing/late-fees
func (h *BillingHandler) ApplyLateFees(c echo.Context) error {
	const op = "admin.apply_late_fees"

	percent, err := bindPercent(c, op)
	if err != nil {
		return err
	}
	if err := h.validate.Struct(percentRequest{Percent: percent}); err != nil {
		return domain.NewValidationError(op, "percent", "percent is required")
	}

	res, err := h.engine.ApplyLateFees(c.Request().Context(), *percent)
	if err != nil {
		return err
	}
	h.logger.Info().
		Str("triggered_by", domain.TriggeredBy(c.Request().Context())).
		Stringer("percent", percent).
		Int("applied", res.AppliedCount).
		Stringer("total_fees", res.TotalFees).
		Msg("manual late fees")
	return c.JSON(http.StatusOK, LateFeeResponse{AppliedCount: res.AppliedCount, TotalFees: res.TotalFees})
}

// ReminderPreview handles GET /admin/billing/reminders/preview
func (h *BillingHandler) ReminderPreview(c echo.Context) error {
	res, err := h.engine.GetReminderPreview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Summary handles GET /admin/billing/summary. A ?tenant= scope is applied by
// middleware; without it the summary spans every active tenant.
func (h *BillingHandler) Summary(c echo.Context) error {
	res, err := h.engine.GenerateDailySummary(c.Request().Context(), nil)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// DuePaymentPlans handles GET /admin/billing/payment-plans/due
func (h *BillingHandler) DuePaymentPlans(c echo.Context) error {
	res, err := h.engine.GetDuePaymentPlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// MarkDefaulted handles POST /admin/billing/payment-plans/mark-defaulted
func (h *BillingHandler) MarkDefaulted(c echo.Context) error {
	res, err := h.engine.MarkDefaultedPaymentPlans(c.Request().Context())
	if err != nil {
		return err
	}
	h.logger.Info().
		Str("triggered_by", domain.TriggeredBy(c.Request().Context())).
		Int("updated", res.UpdatedCount).
		Msg("manual mark defaulted")
	return c.JSON(http.StatusOK, res)
}
