package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		want bool
	}{
		{InvoiceStatusPending, InvoiceStatusOverdue, true},
		{InvoiceStatusPending, InvoiceStatusPaid, true},
		{InvoiceStatusPending, InvoiceStatusCancelled, true},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusPending, false},
		{InvoiceStatusOverdue, InvoiceStatusCancelled, false},
		{InvoiceStatusPaid, InvoiceStatusOverdue, false},
		{InvoiceStatusCancelled, InvoiceStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLateFeeAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		percent string
		want    string
	}{
		{"two percent of 1000", "1000", "2", "20"},
		{"rounds to cents", "333.33", "2", "6.67"},
		{"fractional percent", "250.00", "1.5", "3.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LateFeeAmount(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.percent))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestValidateLateFeePercent(t *testing.T) {
	assert.NoError(t, ValidateLateFeePercent(decimal.NewFromInt(2)))
	assert.NoError(t, ValidateLateFeePercent(decimal.NewFromInt(100)))
	assert.ErrorIs(t, ValidateLateFeePercent(decimal.Zero), ErrInvalidLateFeePercent)
	assert.ErrorIs(t, ValidateLateFeePercent(decimal.NewFromInt(-1)), ErrInvalidLateFeePercent)
	assert.ErrorIs(t, ValidateLateFeePercent(decimal.NewFromInt(101)), ErrInvalidLateFeePercent)
}

func TestPlanStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PlanStatusActive.CanTransitionTo(PlanStatusDefaulted))
	assert.True(t, PlanStatusActive.CanTransitionTo(PlanStatusCompleted))
	assert.False(t, PlanStatusCompleted.CanTransitionTo(PlanStatusDefaulted))
	assert.False(t, PlanStatusDefaulted.CanTransitionTo(PlanStatusActive))
}

func TestDefaultCutoff(t *testing.T) {
	today := date(2026, time.March, 31)
	cutoff := DefaultCutoff(today)

	assert.False(t, AddDays(today, -90).Before(cutoff), "exactly 90 days is not defaulted")
	assert.True(t, AddDays(today, -91).Before(cutoff), "91 days is defaulted")
}

func TestDateHelpers(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2026, time.January, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, date(2026, time.January, 10), DateOf(late))
	assert.Equal(t, 35, DaysBetween(date(2026, time.January, 1), date(2026, time.February, 5)))
	assert.Equal(t, date(2025, time.December, 31), LateFeeDueBefore(date(2026, time.January, 30)))
}

func TestCohortByOffset(t *testing.T) {
	r := &ReminderCohorts{DueTomorrow: []Invoice{{ID: 1}}}
	assert.Len(t, r.ByOffset(1), 1)
	assert.Nil(t, r.ByOffset(2))

	o := &OverdueCohorts{ThirtyDays: []Invoice{{ID: 2}, {ID: 3}}}
	assert.Len(t, o.ByOffset(30), 2)
	assert.Empty(t, o.ByOffset(7))
}
