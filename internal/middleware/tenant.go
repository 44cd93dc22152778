package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/tenant"
)

// TenantQueryParam scopes an operator request to one tenant.
const TenantQueryParam = "tenant"

// ScopeTenant resolves ?tenant=<uuid|slug> and puts the tenant in the request
// context. Without the parameter the request spans every active tenant.
//
// Resolution failures:
//   - unknown tenant: 404
//   - suspended or cancelled tenant: 400
func ScopeTenant(resolver tenant.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ref := strings.TrimSpace(c.QueryParam(TenantQueryParam))
			if ref == "" {
				return next(c)
			}

			r := c.Request()
			t, err := resolver.Resolve(r.Context(), ref)
			if err != nil {
				if domain.IsCode(err, domain.EINTERNAL) {
					zerolog.Ctx(r.Context()).Error().Err(err).Str("tenant", ref).Msg("tenant resolution failed")
				}
				return err
			}

			ctx := tenant.NewContext(r.Context(), t)
			ctx = zerolog.Ctx(ctx).With().Str("tenant_id", t.ID.String()).Logger().WithContext(ctx)
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}
