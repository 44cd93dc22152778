// Package middleware provides echo middleware for the operator surface.
package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
)

// Operator auth errors.
var (
	ErrMissingToken   = domain.Unauthorized("middleware.operator", "Missing bearer token")
	ErrInvalidToken   = domain.Unauthorized("middleware.operator", "Invalid operator token")
	ErrSurfaceDisabled = domain.Forbidden("middleware.operator", "Operator surface is disabled")
)

// TokenVerifier checks an operator bearer token and returns who it belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Operator, error)
}

// StaticTokenVerifier accepts a single shared token.
// An empty token disables the operator surface.
type StaticTokenVerifier struct {
	token   []byte
	subject string
}

// NewStaticTokenVerifier creates a verifier for token, reporting subject as the operator.
func NewStaticTokenVerifier(token, subject string) *StaticTokenVerifier {
	if subject == "" {
		subject = "operator"
	}
	return &StaticTokenVerifier{token: []byte(token), subject: subject}
}

// Verify compares token in constant time.
func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (*domain.Operator, error) {
	if len(v.token) == 0 {
		return nil, ErrSurfaceDisabled
	}
	if subtle.ConstantTimeCompare(v.token, []byte(token)) != 1 {
		return nil, ErrInvalidToken
	}
	return &domain.Operator{Subject: v.subject, Source: "http"}, nil
}

// RequireOperator rejects requests without a valid "Authorization: Bearer" token
// and attaches the operator to the request context.
func RequireOperator(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return ErrSurfaceDisabled
			}

			r := c.Request()
			token, ok := bearerToken(r.Header.Get(echo.HeaderAuthorization))
			if !ok {
				return ErrMissingToken
			}

			operator, err := verifier.Verify(r.Context(), token)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().
					Str("code", domain.ErrorCode(err)).
					Str("path", r.URL.Path).
					Msg("operator auth failed")
				return err
			}

			ctx := domain.NewContextWithOperator(r.Context(), operator)
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
