package tenant

import "github.com/dukerupert/billing/internal/domain"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found by slug or ID.
	ErrTenantNotFound = &domain.Error{Code: domain.ENOTFOUND, Op: "tenant.resolve", Message: "tenant not found"}

	// ErrTenantInactive is returned when a tenant exists but is not in active status.
	ErrTenantInactive = &domain.Error{Code: domain.EINVALID, Op: "tenant.resolve", Message: "tenant is not active"}
)
