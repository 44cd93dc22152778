// Package router builds the echo instance that serves the operator surface.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/handler"
	"github.com/dukerupert/billing/internal/middleware"
	"github.com/dukerupert/billing/internal/telemetry"
)

// Config holds router dependencies
type Config struct {
	Logger  zerolog.Logger
	Metrics *telemetry.BillingMetrics

	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// New creates an echo instance with the global middleware chain, the JSON
// error handler, and the health and metrics endpoints.
//
// Chain order: recovery, sentry, request id, request logger, metrics,
// security headers, body limit.
func New(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(
		Recovery(cfg.Logger),
		telemetry.EchoMiddleware(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		middleware.MaxBodySize(),
	)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	return e
}
