package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/repository"
)

// Resolver resolves tenants from operator-supplied identifiers.
type Resolver interface {
	// BySlug resolves a tenant by slug.
	BySlug(ctx context.Context, slug string) (*Tenant, error)

	// ByID resolves a tenant by ID.
	ByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// Resolve accepts either a UUID or a slug.
	Resolve(ctx context.Context, ref string) (*Tenant, error)

	// Active lists every active tenant, ordered by slug.
	Active(ctx context.Context) ([]Tenant, error)
}

// DBResolver implements Resolver using database queries.
type DBResolver struct {
	queries repository.Querier
}

// NewDBResolver creates a new database-backed tenant resolver.
func NewDBResolver(queries repository.Querier) *DBResolver {
	return &DBResolver{queries: queries}
}

// BySlug resolves a tenant by slug.
func (r *DBResolver) BySlug(ctx context.Context, slug string) (*Tenant, error) {
	row, err := r.queries.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, mapErr(err)
	}
	return fromRow(row), nil
}

// ByID resolves a tenant by ID.
func (r *DBResolver) ByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row, err := r.queries.GetTenantByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return fromRow(row), nil
}

// Resolve accepts either a UUID or a slug and rejects inactive tenants.
func (r *DBResolver) Resolve(ctx context.Context, ref string) (*Tenant, error) {
	var (
		t   *Tenant
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		t, err = r.ByID(ctx, id)
	} else {
		t, err = r.BySlug(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, ErrTenantInactive
	}
	return t, nil
}

// Active lists every active tenant.
func (r *DBResolver) Active(ctx context.Context) ([]Tenant, error) {
	rows, err := r.queries.ListActiveTenants(ctx)
	if err != nil {
		return nil, domain.Internal(err, "tenant.list_active", "failed to list active tenants")
	}
	tenants := make([]Tenant, len(rows))
	for i, row := range rows {
		tenants[i] = *fromRow(row)
	}
	return tenants, nil
}

func fromRow(row repository.Tenant) *Tenant {
	return &Tenant{
		ID:     row.ID,
		Slug:   row.Slug,
		Name:   row.Name,
		Status: row.Status,
	}
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTenantNotFound
	}
	return domain.Internal(err, "tenant.resolve", "failed to resolve tenant")
}

// Compile-time check that DBResolver implements Resolver.
var _ Resolver = (*DBResolver)(nil)
