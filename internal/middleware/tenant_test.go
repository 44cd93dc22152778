package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/handler"
	"github.com/dukerupert/billing/internal/tenant"
)

// =============================================================================
// MOCK RESOLVER
// =============================================================================

// mockResolver is a mock implementation of tenant.Resolver for testing.
type mockResolver struct {
	resolveFunc func(ctx context.Context, ref string) (*tenant.Tenant, error)
	calls       []string
}

func (m *mockResolver) BySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return m.Resolve(ctx, slug)
}

func (m *mockResolver) ByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return m.Resolve(ctx, id.String())
}

func (m *mockResolver) Resolve(ctx context.Context, ref string) (*tenant.Tenant, error) {
	m.calls = append(m.calls, ref)
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, ref)
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *mockResolver) Active(ctx context.Context) ([]tenant.Tenant, error) {
	return nil, nil
}

var stMarys = &tenant.Tenant{
	ID:     uuid.MustParse("7b0c8a52-3f51-4c5e-9f0e-6d2f8f0f4a11"),
	Slug:   "st-marys",
	Name:   "St. Mary's General",
	Status: "active",
}

// serve runs a single GET /scoped request through mw and reports what the
// handler saw.
func serve(t *testing.T, mw echo.MiddlewareFunc, target string, header http.Header) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler

	var seen context.Context
	e.GET("/scoped", func(c echo.Context) error {
		seen = c.Request().Context()
		return c.NoContent(http.StatusNoContent)
	}, mw)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestScopeTenant(t *testing.T) {
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, ref string) (*tenant.Tenant, error) {
			switch ref {
			case "st-marys", stMarys.ID.String():
				return stMarys, nil
			case "closed-clinic":
				return nil, tenant.ErrTenantInactive
			case "broken":
				return nil, domain.Internal(assert.AnError, "tenant.resolve", "failed to resolve tenant")
			}
			return nil, tenant.ErrTenantNotFound
		},
	}

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantTenant *tenant.Tenant
	}{
		{"no parameter spans all tenants", "/scoped", http.StatusNoContent, nil},
		{"slug", "/scoped?tenant=st-marys", http.StatusNoContent, stMarys},
		{"uuid", "/scoped?tenant=" + stMarys.ID.String(), http.StatusNoContent, stMarys},
		{"unknown tenant", "/scoped?tenant=nowhere", http.StatusNotFound, nil},
		{"inactive tenant", "/scoped?tenant=closed-clinic", http.StatusBadRequest, nil},
		{"store failure", "/scoped?tenant=broken", http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := serve(t, ScopeTenant(resolver), tt.target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusNoContent {
				assert.Nil(t, seen, "handler must not run")
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.wantTenant, tenant.FromContext(seen))
		})
	}
}

func TestScopeTenant_BlankParameterIsIgnored(t *testing.T) {
	resolver := &mockResolver{}

	rec, seen := serve(t, ScopeTenant(resolver), "/scoped?tenant=%20", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, tenant.FromContext(seen))
	assert.Empty(t, resolver.calls)
}
