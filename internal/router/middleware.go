package router

import (
	"fmt"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
)

// Recovery recovers from panics, logs them and answers with a 500.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Str("path", c.Request().URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					err = domain.Internal(fmt.Errorf("panic: %v", rec), "router.recovery", "panic recovered")
				}
			}()
			return next(c)
		}
	}
}
