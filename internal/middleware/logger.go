package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
)

// RequestLogger injects a request-scoped zerolog logger into the context and
// logs each completed request. Place it after RequestID.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			r := c.Request()

			lc := base.With().
				Str("method", r.Method).
				Str("path", r.URL.Path)
			if requestID := domain.RequestIDFromContext(r.Context()); requestID != "" {
				lc = lc.Str("request_id", requestID)
			}
			logger := lc.Logger()

			c.SetRequest(r.WithContext(logger.WithContext(r.Context())))

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			event := logger.Info()
			if c.Response().Status >= 500 {
				event = logger.Error()
			}
			if op := domain.OperatorFromContext(c.Request().Context()); op != nil {
				event = event.Str("operator", op.Subject)
			}
			event.
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("request")

			return nil
		}
	}
}
