package routes

import (
	"github.com/dukerupert/billing/internal/handler/admin"
	"github.com/dukerupert/billing/internal/middleware"
	"github.com/dukerupert/billing/internal/tenant"
)

// BillingDeps contains dependencies for the operator billing routes
type BillingDeps struct {
	Handler *admin.BillingHandler

	// Verifier authenticates operator bearer tokens. Nil disables the surface.
	Verifier middleware.TokenVerifier

	// Tenants resolves the optional ?tenant= scope.
	Tenants tenant.Resolver
}
