package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/billing/internal/middleware"
)

// RegisterBillingRoutes registers the manual trigger surface under
// /admin/billing. Every route requires an operator token and accepts
// ?tenant=<uuid|slug> to scope the operation.
func RegisterBillingRoutes(e *echo.Echo, deps BillingDeps) {
	g := e.Group("/admin/billing",
		middleware.RequireOperator(deps.Verifier),
		middleware.ScopeTenant(deps.Tenants),
	)

	h := deps.Handler

	// Status and background runs
	g.GET("/status", h.Status)
	g.POST("/run/daily", h.RunDaily)
	g.POST("/run/weekly", h.RunWeekly)

	// Synchronous operations
	timeout := middleware.Timeout()
	g.POST("/invoices/mark-overdue", h.MarkOverdue, timeout)
	g.POST("/late-fees", h.ApplyLateFees, timeout)
	g.GET("/reminders/preview", h.ReminderPreview, timeout)
	g.GET("/summary", h.Summary, timeout)
	g.GET("/payment-plans/due", h.DuePaymentPlans, timeout)
	g.POST("/payment-plans/mark-defaulted", h.MarkDefaulted, timeout)
}
