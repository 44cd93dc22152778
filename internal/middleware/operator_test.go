package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/billing/internal/domain"
)

func TestStaticTokenVerifier(t *testing.T) {
	v := NewStaticTokenVerifier("s3cret", "")

	op, err := v.Verify(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, &domain.Operator{Subject: "operator", Source: "http"}, op)

	_, err = v.Verify(context.Background(), "s3cre")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewStaticTokenVerifier("", "ops").Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrSurfaceDisabled)
}

func TestRequireOperator(t *testing.T) {
	verifier := NewStaticTokenVerifier("s3cret", "billing-ops")

	tests := []struct {
		name          string
		verifier      TokenVerifier
		authorization string
		wantStatus    int
	}{
		{"valid token", verifier, "Bearer s3cret", http.StatusNoContent},
		{"scheme is case insensitive", verifier, "bearer s3cret", http.StatusNoContent},
		{"missing header", verifier, "", http.StatusUnauthorized},
		{"wrong scheme", verifier, "Basic s3cret", http.StatusUnauthorized},
		{"empty bearer", verifier, "Bearer   ", http.StatusUnauthorized},
		{"wrong token", verifier, "Bearer guess", http.StatusUnauthorized},
		{"surface disabled", NewStaticTokenVerifier("", ""), "Bearer anything", http.StatusForbidden},
		{"no verifier", nil, "Bearer s3cret", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.authorization != "" {
				header.Set("Authorization", tt.authorization)
			}

			rec, seen := serve(t, RequireOperator(tt.verifier), "/scoped", header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				require.NotNil(t, seen)
				op := domain.OperatorFromContext(seen)
				require.NotNil(t, op)
				assert.Equal(t, "billing-ops", op.Subject)
				assert.Equal(t, "http:billing-ops", domain.TriggeredBy(seen))
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id", func(t *testing.T) {
		rec, seen := serve(t, RequestID(), "/scoped", nil)

		id := rec.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, domain.RequestIDFromContext(seen))
	})

	t.Run("keeps an upstream id", func(t *testing.T) {
		header := http.Header{}
		header.Set(RequestIDHeader, "lb-1234")

		rec, seen := serve(t, RequestID(), "/scoped", header)

		assert.Equal(t, "lb-1234", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "lb-1234", domain.RequestIDFromContext(seen))
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec, _ := serve(t, SecurityHeaders(DefaultSecurityHeadersConfig()), "/scoped", nil)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}
