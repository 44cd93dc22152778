// Package handler holds the JSON response helpers shared by the operator surface.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
)

// errorBody is the JSON error envelope: {"error":{"code","message","operation"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Operation string            `json:"operation,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.EFORBIDDEN:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// ErrorResponse writes err as a JSON error envelope.
// Internal errors are logged in full and answered with a generic message.
func ErrorResponse(c echo.Context, err error) error {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	logError(c, err, code, status)

	return c.JSON(status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   domain.ErrorMessage(err),
		Operation: domain.ErrorOp(err),
	}})
}

// ValidationErrorResponse writes field-level validation failures.
// Non-validation errors fall back to ErrorResponse.
func ValidationErrorResponse(c echo.Context, err error) error {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		return ErrorResponse(c, err)
	}

	logError(c, err, domain.EINVALID, http.StatusBadRequest)

	var ve *domain.ValidationError
	errors.As(err, &ve)

	return c.JSON(http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:      domain.EINVALID,
		Message:   "Validation failed",
		Operation: ve.Op,
		Fields:    fields,
	}})
}

// NotFoundResponse writes a 404 for unknown routes.
func NotFoundResponse(c echo.Context) error {
	return ErrorResponse(c, domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found"))
}

// UnauthorizedResponse writes a 401.
func UnauthorizedResponse(c echo.Context) error {
	return ErrorResponse(c, domain.Errorf(domain.EUNAUTHORIZED, "", "Authentication required"))
}

// ForbiddenResponse writes a 403.
func ForbiddenResponse(c echo.Context) error {
	return ErrorResponse(c, domain.Errorf(domain.EFORBIDDEN, "", "You don't have permission to access this resource"))
}

// InternalErrorResponse logs err and writes a generic 500.
func InternalErrorResponse(c echo.Context, err error) error {
	return ErrorResponse(c, domain.Internal(err, "", "An unexpected error occurred"))
}

// ErrorHandler is installed as echo's HTTPErrorHandler so that handlers and
// middleware can return domain errors directly.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		err = fromHTTPError(he)
	}

	if domain.IsValidationError(err) {
		_ = ValidationErrorResponse(c, err)
		return
	}
	_ = ErrorResponse(c, err)
}

// fromHTTPError converts echo's router and binder errors into domain errors.
func fromHTTPError(he *echo.HTTPError) error {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	switch {
	case he.Code == http.StatusNotFound:
		return domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found")
	case he.Code == http.StatusMethodNotAllowed:
		return domain.Errorf(domain.ENOTFOUND, "", "%s", message)
	case he.Code == http.StatusUnauthorized:
		return domain.Unauthorized("", message)
	case he.Code == http.StatusForbidden:
		return domain.Forbidden("", message)
	case he.Code >= 400 && he.Code < 500:
		return domain.Invalid("", message)
	default:
		return domain.Internal(he, "", message)
	}
}

func logError(c echo.Context, err error, code string, status int) {
	r := c.Request()
	logger := zerolog.Ctx(r.Context())

	var event *zerolog.Event
	if status >= 500 {
		event = logger.Error()
	} else {
		event = logger.Info()
	}

	event.
		Err(err).
		Str("code", code).
		Str("operation", domain.ErrorOp(err)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
}
