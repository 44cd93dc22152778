package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of a payment plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusDefaulted PlanStatus = "defaulted"
)

// CanTransitionTo reports whether the ledger allows moving from s to next.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	return s == PlanStatusActive && (next == PlanStatusCompleted || next == PlanStatusDefaulted)
}

// PaymentPlan is an installment schedule for a patient balance.
type PaymentPlan struct {
	ID                int64           `json:"id"`
	TenantID          uuid.UUID       `json:"tenantId"`
	PlanName          string          `json:"planName"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	NextDueDate       time.Time       `json:"nextDueDate"`
	Status            PlanStatus      `json:"status"`
	Contact           Contact         `json:"contact"`
}

// DefaultCutoff is the exclusive next-due-date cutoff for defaulting:
// plans due strictly before today-90 are defaulted, today-90 itself is not.
func DefaultCutoff(today time.Time) time.Time {
	return AddDays(today, -PaymentPlanDefaultAfter)
}
