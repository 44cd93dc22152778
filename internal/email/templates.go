package email

//go:generate templ generate

import (
	"fmt"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/billing/internal/domain"
)

// EmailTemplate is a renderable notification body.
type EmailTemplate interface {
	Subject() string
	Component() templ.Component
}

// PaymentReminderEmail reminds a patient of an upcoming due date.
type PaymentReminderEmail struct {
	Invoice      domain.Invoice
	DaysUntilDue int
}

func (e PaymentReminderEmail) Subject() string {
	switch e.DaysUntilDue {
	case 0:
		return fmt.Sprintf("Invoice %s is due today", e.Invoice.InvoiceNumber)
	case 1:
		return fmt.Sprintf("Invoice %s is due tomorrow", e.Invoice.InvoiceNumber)
	default:
		return fmt.Sprintf("Invoice %s is due in %d days", e.Invoice.InvoiceNumber, e.DaysUntilDue)
	}
}

func (e PaymentReminderEmail) Component() templ.Component {
	return paymentReminder(e)
}

// OverdueNoticeEmail escalates an overdue invoice.
type OverdueNoticeEmail struct {
	Invoice     domain.Invoice
	DaysOverdue int
}

func (e OverdueNoticeEmail) Subject() string {
	return fmt.Sprintf("Invoice %s is %d days overdue", e.Invoice.InvoiceNumber, e.DaysOverdue)
}

func (e OverdueNoticeEmail) Component() templ.Component {
	return overdueNotice(e)
}

// PaymentPlanReminderEmail reminds a patient of a plan installment.
type PaymentPlanReminderEmail struct {
	Plan      domain.PaymentPlan
	IsOverdue bool
}

func (e PaymentPlanReminderEmail) Subject() string {
	if e.IsOverdue {
		return fmt.Sprintf("Missed installment on %s", e.Plan.PlanName)
	}
	return fmt.Sprintf("Installment due today on %s", e.Plan.PlanName)
}

func (e PaymentPlanReminderEmail) Component() templ.Component {
	return planReminder(e)
}

// DailySummaryEmail is the operator digest.
type DailySummaryEmail struct {
	Summary domain.DailySummary
}

func (e DailySummaryEmail) Subject() string {
	return "Billing summary for " + e.Summary.Date.Format("2006-01-02")
}

func (e DailySummaryEmail) Component() templ.Component {
	return dailySummary(e)
}

func money(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

func longDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
