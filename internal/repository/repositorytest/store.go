// Package repositorytest provides an in-memory repository.Querier with the same
// filtering semantics as the SQL queries, for service, job and handler tests.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/repository"
)

// Store is a thread-safe in-memory ledger.
type Store struct {
	mu          sync.Mutex
	tenants     []repository.Tenant
	patients    map[int64]repository.Patient
	invoices    []*repository.Invoice
	adjustments []repository.BillingAdjustment
	plans       []*repository.PaymentPlan
	nextID      int64
	failures    map[string]error
	calls       map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		patients: make(map[int64]repository.Patient),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

var _ repository.Querier = (*Store)(nil)

// Date converts a civil date into a pgtype.Date.
func Date(t time.Time) pgtype.Date {
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// Timestamp converts an instant into a pgtype.Timestamptz.
func Timestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// Fail makes every subsequent call to method return err. A nil err clears it.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Calls returns how many times method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) enter(method string) error {
	s.calls[method]++
	return s.failures[method]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddTenant registers an active tenant.
func (s *Store) AddTenant(slug string) repository.Tenant {
	return s.AddTenantWithStatus(slug, "active")
}

// AddTenantWithStatus registers a tenant with the given status.
func (s *Store) AddTenantWithStatus(slug, status string) repository.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := repository.Tenant{ID: uuid.New(), Slug: slug, Name: slug, Status: status}
	s.tenants = append(s.tenants, t)
	return t
}

// AddPatient registers a patient. An empty email is stored as NULL.
func (s *Store) AddPatient(tenantID uuid.UUID, first, last, email string) repository.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := repository.Patient{
		ID:        s.id(),
		TenantID:  tenantID,
		FirstName: first,
		LastName:  last,
		Email:     pgtype.Text{String: email, Valid: email != ""},
	}
	s.patients[p.ID] = p
	return p
}

// AddInvoice stores inv, assigning an ID and defaults for unset fields.
func (s *Store) AddInvoice(inv repository.Invoice) repository.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = s.id()
	}
	if inv.Status == "" {
		inv.Status = "pending"
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = fmt.Sprintf("INV-%d", inv.ID)
	}
	stored := inv
	s.invoices = append(s.invoices, &stored)
	return stored
}

// AddPlan stores plan, assigning an ID and defaults for unset fields.
func (s *Store) AddPlan(plan repository.PaymentPlan) repository.PaymentPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if plan.ID == 0 {
		plan.ID = s.id()
	}
	if plan.Status == "" {
		plan.Status = "active"
	}
	stored := plan
	s.plans = append(s.plans, &stored)
	return stored
}

// AddAdjustment appends a pre-existing adjustment.
func (s *Store) AddAdjustment(adj repository.BillingAdjustment) repository.BillingAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if adj.ID == 0 {
		adj.ID = s.id()
	}
	s.adjustments = append(s.adjustments, adj)
	return adj
}

// Invoice returns a copy of the invoice with id.
func (s *Store) Invoice(id int64) repository.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			return *inv
		}
	}
	return repository.Invoice{}
}

// Plan returns a copy of the plan with id.
func (s *Store) Plan(id int64) repository.PaymentPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == id {
			return *p
		}
	}
	return repository.PaymentPlan{}
}

// AdjustmentsFor returns adjustments recorded against invoiceID.
func (s *Store) AdjustmentsFor(invoiceID int64) []repository.BillingAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.BillingAdjustment
	for _, a := range s.adjustments {
		if a.InvoiceID == invoiceID {
			out = append(out, a)
		}
	}
	return out
}

// InTx runs fn against the store and rolls back invoice, adjustment and plan
// changes when fn returns an error.
func (s *Store) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	invoices := make([]repository.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		invoices[i] = *inv
	}
	plans := make([]repository.PaymentPlan, len(s.plans))
	for i, p := range s.plans {
		plans[i] = *p
	}
	adjustments := append([]repository.BillingAdjustment(nil), s.adjustments...)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		for i := range invoices {
			*s.invoices[i] = invoices[i]
		}
		for i := range plans {
			*s.plans[i] = plans[i]
		}
		s.adjustments = adjustments
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) contact(patientID int64) (string, string, pgtype.Text) {
	p := s.patients[patientID]
	return p.FirstName, p.LastName, p.Email
}

// ListActiveTenants implements repository.Querier.
func (s *Store) ListActiveTenants(ctx context.Context) ([]repository.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListActiveTenants"); err != nil {
		return nil, err
	}
	var out []repository.Tenant
	for _, t := range s.tenants {
		if t.Status == "active" {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// GetTenantByID implements repository.Querier.
func (s *Store) GetTenantByID(ctx context.Context, id uuid.UUID) (repository.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTenantByID"); err != nil {
		return repository.Tenant{}, err
	}
	for _, t := range s.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return repository.Tenant{}, pgx.ErrNoRows
}

// tenantActive reports whether id names an active tenant. Callers hold s.mu.
func (s *Store) tenantActive(id uuid.UUID) bool {
	for _, t := range s.tenants {
		if t.ID == id {
			return t.Status == "active"
		}
	}
	return false
}

// GetTenantBySlug implements repository.Querier.
func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (repository.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTenantBySlug"); err != nil {
		return repository.Tenant{}, err
	}
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return repository.Tenant{}, pgx.ErrNoRows
}

// MarkInvoicesOverdue implements repository.Querier.
func (s *Store) MarkInvoicesOverdue(ctx context.Context, arg repository.MarkInvoicesOverdueParams) ([]repository.MarkInvoicesOverdueRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MarkInvoicesOverdue"); err != nil {
		return nil, err
	}
	var out []repository.MarkInvoicesOverdueRow
	for _, inv := range s.invoices {
		if inv.TenantID != arg.TenantID || !inv.DueDate.Time.Before(arg.DueBefore.Time) {
			continue
		}
		if !domain.InvoiceStatus(inv.Status).CanTransitionTo(domain.InvoiceStatusOverdue) {
			continue
		}
		inv.Status = string(domain.InvoiceStatusOverdue)
		first, last, email := s.contact(inv.PatientID)
		out = append(out, repository.MarkInvoicesOverdueRow{
			ID:               inv.ID,
			TenantID:         inv.TenantID,
			InvoiceNumber:    inv.InvoiceNumber,
			PatientID:        inv.PatientID,
			Amount:           inv.Amount,
			Currency:         inv.Currency,
			DueDate:          inv.DueDate,
			Status:           inv.Status,
			PatientFirstName: first,
			PatientLastName:  last,
			PatientEmail:     email,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueDate.Time.Equal(out[j].DueDate.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueDate.Time.Before(out[j].DueDate.Time)
	})
	return out, nil
}

// ListInvoicesByStatusDueOn implements repository.Querier.
func (s *Store) ListInvoicesByStatusDueOn(ctx context.Context, arg repository.ListInvoicesByStatusDueOnParams) ([]repository.ListInvoicesByStatusDueOnRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListInvoicesByStatusDueOn"); err != nil {
		return nil, err
	}
	var out []repository.ListInvoicesByStatusDueOnRow
	for _, inv := range s.invoices {
		if inv.TenantID != arg.TenantID || inv.Status != arg.Status || !inv.DueDate.Time.Equal(arg.DueDate.Time) {
			continue
		}
		first, last, email := s.contact(inv.PatientID)
		out = append(out, repository.ListInvoicesByStatusDueOnRow{
			ID:               inv.ID,
			TenantID:         inv.TenantID,
			InvoiceNumber:    inv.InvoiceNumber,
			PatientID:        inv.PatientID,
			Amount:           inv.Amount,
			Currency:         inv.Currency,
			DueDate:          inv.DueDate,
			Status:           inv.Status,
			PatientFirstName: first,
			PatientLastName:  last,
			PatientEmail:     email,
		})
	}
	return out, nil
}

func (s *Store) hasLateFeeSince(invoiceID int64, since time.Time) bool {
	for _, a := range s.adjustments {
		if a.InvoiceID == invoiceID && a.AdjustmentType == "late_fee" && !a.CreatedAt.Time.Before(since) {
			return true
		}
	}
	return false
}

// ListLateFeeCandidates implements repository.Querier.
func (s *Store) ListLateFeeCandidates(ctx context.Context, arg repository.ListLateFeeCandidatesParams) ([]repository.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListLateFeeCandidates"); err != nil {
		return nil, err
	}
	var out []repository.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != arg.TenantID || inv.Status != "overdue" || !inv.DueDate.Time.Before(arg.DueBefore.Time) {
			continue
		}
		if s.hasLateFeeSince(inv.ID, arg.SuppressSince.Time) {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

// LockInvoiceForUpdate implements repository.Querier.
func (s *Store) LockInvoiceForUpdate(ctx context.Context, arg repository.LockInvoiceForUpdateParams) (repository.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LockInvoiceForUpdate"); err != nil {
		return repository.Invoice{}, err
	}
	for _, inv := range s.invoices {
		if inv.TenantID == arg.TenantID && inv.ID == arg.ID {
			return *inv, nil
		}
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

// IncreaseInvoiceAmount implements repository.Querier.
func (s *Store) IncreaseInvoiceAmount(ctx context.Context, arg repository.IncreaseInvoiceAmountParams) (repository.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("IncreaseInvoiceAmount"); err != nil {
		return repository.Invoice{}, err
	}
	for _, inv := range s.invoices {
		if inv.TenantID == arg.TenantID && inv.ID == arg.ID {
			inv.Amount = inv.Amount.Add(arg.Delta)
			return *inv, nil
		}
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

// CountLateFeesSince implements repository.Querier.
func (s *Store) CountLateFeesSince(ctx context.Context, arg repository.CountLateFeesSinceParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountLateFeesSince"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.adjustments {
		if a.InvoiceID == arg.InvoiceID && a.AdjustmentType == "late_fee" && !a.CreatedAt.Time.Before(arg.Since.Time) {
			n++
		}
	}
	return n, nil
}

// CreateBillingAdjustment implements repository.Querier.
func (s *Store) CreateBillingAdjustment(ctx context.Context, arg repository.CreateBillingAdjustmentParams) (repository.BillingAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateBillingAdjustment"); err != nil {
		return repository.BillingAdjustment{}, err
	}
	adj := repository.BillingAdjustment{
		ID:             s.id(),
		TenantID:       arg.TenantID,
		InvoiceID:      arg.InvoiceID,
		AdjustmentType: arg.AdjustmentType,
		Amount:         arg.Amount,
		Reason:         arg.Reason,
		CreatedAt:      arg.CreatedAt,
	}
	s.adjustments = append(s.adjustments, adj)
	return adj, nil
}

func (s *Store) planRow(p *repository.PaymentPlan) repository.ListActivePlansDueOnRow {
	first, last, email := s.contact(p.PatientID)
	return repository.ListActivePlansDueOnRow{
		ID:                p.ID,
		TenantID:          p.TenantID,
		PatientID:         p.PatientID,
		PlanName:          p.PlanName,
		InstallmentAmount: p.InstallmentAmount,
		RemainingBalance:  p.RemainingBalance,
		NextDueDate:       p.NextDueDate,
		Status:            p.Status,
		PatientFirstName:  first,
		PatientLastName:   last,
		PatientEmail:      email,
	}
}

// ListActivePlansDueOn implements repository.Querier.
func (s *Store) ListActivePlansDueOn(ctx context.Context, arg repository.ListActivePlansDueOnParams) ([]repository.ListActivePlansDueOnRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListActivePlansDueOn"); err != nil {
		return nil, err
	}
	var out []repository.ListActivePlansDueOnRow
	for _, p := range s.plans {
		if p.TenantID == arg.TenantID && p.Status == "active" && p.NextDueDate.Time.Equal(arg.NextDueDate.Time) {
			out = append(out, s.planRow(p))
		}
	}
	return out, nil
}

// ListActivePlansDueBefore implements repository.Querier.
func (s *Store) ListActivePlansDueBefore(ctx context.Context, arg repository.ListActivePlansDueBeforeParams) ([]repository.ListActivePlansDueBeforeRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListActivePlansDueBefore"); err != nil {
		return nil, err
	}
	var out []repository.ListActivePlansDueBeforeRow
	for _, p := range s.plans {
		if p.TenantID == arg.TenantID && p.Status == "active" && p.NextDueDate.Time.Before(arg.DueBefore.Time) {
			out = append(out, repository.ListActivePlansDueBeforeRow(s.planRow(p)))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextDueDate.Time.Before(out[j].NextDueDate.Time)
	})
	return out, nil
}

// MarkPlansDefaulted implements repository.Querier.
func (s *Store) MarkPlansDefaulted(ctx context.Context, arg repository.MarkPlansDefaultedParams) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MarkPlansDefaulted"); err != nil {
		return nil, err
	}
	var ids []int64
	for _, p := range s.plans {
		if p.TenantID != arg.TenantID || !p.NextDueDate.Time.Before(arg.DueBefore.Time) {
			continue
		}
		if domain.PlanStatus(p.Status).CanTransitionTo(domain.PlanStatusDefaulted) {
			p.Status = string(domain.PlanStatusDefaulted)
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// SummarizeInvoices implements repository.Querier.
func (s *Store) SummarizeInvoices(ctx context.Context, arg repository.SummarizeInvoicesParams) (repository.SummarizeInvoicesRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SummarizeInvoices"); err != nil {
		return repository.SummarizeInvoicesRow{}, err
	}
	row := repository.SummarizeInvoicesRow{
		PendingAmount:  decimal.Zero,
		OverdueAmount:  decimal.Zero,
		CollectedToday: decimal.Zero,
	}
	for _, inv := range s.invoices {
		if arg.TenantID.Valid && inv.TenantID != arg.TenantID.UUID {
			continue
		}
		if !arg.TenantID.Valid && !s.tenantActive(inv.TenantID) {
			continue
		}
		switch inv.Status {
		case "pending":
			row.PendingCount++
			row.PendingAmount = row.PendingAmount.Add(inv.Amount)
		case "overdue":
			row.OverdueCount++
			row.OverdueAmount = row.OverdueAmount.Add(inv.Amount)
		case "paid":
			if inv.PaidAt.Valid && !inv.PaidAt.Time.Before(arg.PaidFrom.Time) && inv.PaidAt.Time.Before(arg.PaidTo.Time) {
				row.PaidTodayCount++
				row.CollectedToday = row.CollectedToday.Add(inv.Amount)
			}
		}
	}
	return row, nil
}
