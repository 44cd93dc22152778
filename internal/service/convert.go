package service

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/repository"
)

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: true}
}

func pgTimestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func fromPgDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOf(d.Time)
}

func contact(patientID int64, first, last string, email pgtype.Text) domain.Contact {
	c := domain.Contact{
		PatientID: patientID,
		Name:      strings.TrimSpace(first + " " + last),
	}
	if email.Valid {
		c.Email = email.String
	}
	return c
}

func invoiceFromOverdueRow(r repository.MarkInvoicesOverdueRow) domain.Invoice {
	return domain.Invoice{
		ID:            r.ID,
		TenantID:      r.TenantID,
		InvoiceNumber: r.InvoiceNumber,
		Amount:        r.Amount,
		Currency:      r.Currency,
		DueDate:       fromPgDate(r.DueDate),
		Status:        domain.InvoiceStatus(r.Status),
		Contact:       contact(r.PatientID, r.PatientFirstName, r.PatientLastName, r.PatientEmail),
	}
}

func invoiceFromDueOnRow(r repository.ListInvoicesByStatusDueOnRow) domain.Invoice {
	return domain.Invoice{
		ID:            r.ID,
		TenantID:      r.TenantID,
		InvoiceNumber: r.InvoiceNumber,
		Amount:        r.Amount,
		Currency:      r.Currency,
		DueDate:       fromPgDate(r.DueDate),
		Status:        domain.InvoiceStatus(r.Status),
		Contact:       contact(r.PatientID, r.PatientFirstName, r.PatientLastName, r.PatientEmail),
	}
}

func adjustmentFromRow(r repository.BillingAdjustment) domain.BillingAdjustment {
	return domain.BillingAdjustment{
		ID:             r.ID,
		TenantID:       r.TenantID,
		InvoiceID:      r.InvoiceID,
		AdjustmentType: r.AdjustmentType,
		Amount:         r.Amount,
		Reason:         r.Reason,
		CreatedAt:      r.CreatedAt.Time,
	}
}

func planFromDueOnRow(r repository.ListActivePlansDueOnRow) domain.PaymentPlan {
	return domain.PaymentPlan{
		ID:                r.ID,
		TenantID:          r.TenantID,
		PlanName:          r.PlanName,
		InstallmentAmount: r.InstallmentAmount,
		RemainingBalance:  r.RemainingBalance,
		NextDueDate:       fromPgDate(r.NextDueDate),
		Status:            domain.PlanStatus(r.Status),
		Contact:           contact(r.PatientID, r.PatientFirstName, r.PatientLastName, r.PatientEmail),
	}
}

func planFromDueBeforeRow(r repository.ListActivePlansDueBeforeRow) domain.PaymentPlan {
	return planFromDueOnRow(repository.ListActivePlansDueOnRow(r))
}
