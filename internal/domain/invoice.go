package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// AdjustmentTypeLateFee marks a billing adjustment created by ApplyLateFees.
const AdjustmentTypeLateFee = "late_fee"

// Late fee and cohort windows, in days.
const (
	LateFeeGraceDays        = 30
	LateFeeSuppressionDays  = 30
	DefaultLateFeePercent   = 2
	PaymentPlanDefaultAfter = 90
)

var (
	// ReminderOffsets are the days-until-due values that receive a payment reminder.
	ReminderOffsets = []int{3, 1, 0}

	// OverdueOffsets are the days-past-due values that receive an escalation notice.
	OverdueOffsets = []int{7, 14, 30}
)

// Invoice-related domain errors.
var (
	ErrInvalidLateFeePercent = &Error{Code: EINVALID, Message: "Late fee percent must be greater than 0 and at most 100"}
	ErrInvoiceNotOverdue     = &Error{Code: ECONFLICT, Message: "Invoice is no longer overdue"}
	ErrLateFeeAlreadyApplied = &Error{Code: ECONFLICT, Message: "Late fee already applied within the suppression window"}
)

// CanTransitionTo reports whether the ledger allows moving from s to next.
// Paid and cancelled are terminal.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending:
		return next == InvoiceStatusOverdue || next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return next == InvoiceStatusPaid
	default:
		return false
	}
}

// Contact is the patient identity joined into notifications.
type Contact struct {
	PatientID int64  `json:"patientId"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
}

// Invoice is a tenant-scoped billing record.
type Invoice struct {
	ID            int64           `json:"id"`
	TenantID      uuid.UUID       `json:"tenantId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"dueDate"`
	Status        InvoiceStatus   `json:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	Contact       Contact         `json:"contact"`
}

// BillingAdjustment is an append-only change to an invoice amount.
type BillingAdjustment struct {
	ID             int64           `json:"id"`
	TenantID       uuid.UUID       `json:"tenantId"`
	InvoiceID      int64           `json:"invoiceId"`
	AdjustmentType string          `json:"adjustmentType"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ValidateLateFeePercent enforces 0 < percent <= 100.
func ValidateLateFeePercent(percent decimal.Decimal) error {
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidLateFeePercent
	}
	return nil
}

// LateFeeAmount computes amount * percent / 100 rounded to cents.
func LateFeeAmount(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// LateFeeDueBefore is the exclusive due-date cutoff for late-fee eligibility:
// an invoice qualifies when its due date is strictly before today-30.
func LateFeeDueBefore(today time.Time) time.Time {
	return AddDays(today, -LateFeeGraceDays)
}

// LateFeeSuppressedSince returns the instant from which an existing late_fee
// adjustment suppresses another one.
func LateFeeSuppressedSince(now time.Time) time.Time {
	return now.AddDate(0, 0, -LateFeeSuppressionDays)
}

// LateFeeReason is the reason text stored on the adjustment.
func LateFeeReason(percent decimal.Decimal, daysPastDue int) string {
	return fmt.Sprintf("Late fee %s%% (%d days past due)", percent.String(), daysPastDue)
}
