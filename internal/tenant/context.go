package tenant

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// Tenant is a hospital organization whose ledgers are reconciled independently.
type Tenant struct {
	ID     uuid.UUID
	Slug   string
	Name   string
	Status string // active, suspended, cancelled
}

// NewContext returns a new context scoped to a single tenant.
func NewContext(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, t)
}

// FromContext extracts the tenant from the context.
// Returns nil if no tenant is present, which means "all active tenants".
func FromContext(ctx context.Context) *Tenant {
	t, ok := ctx.Value(tenantContextKey).(*Tenant)
	if !ok {
		return nil
	}
	return t
}

// IDFromContext returns the tenant ID from context, or uuid.Nil.
func IDFromContext(ctx context.Context) uuid.UUID {
	t := FromContext(ctx)
	if t == nil {
		return uuid.Nil
	}
	return t.ID
}

// IsActive returns true if the tenant status is "active".
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == "active"
}
