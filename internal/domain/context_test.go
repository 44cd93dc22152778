package domain

import (
	"context"
	"testing"
)

func TestOperatorContext(t *testing.T) {
	t.Run("OperatorFromContext returns nil when no operator", func(t *testing.T) {
		if op := OperatorFromContext(context.Background()); op != nil {
			t.Errorf("expected nil operator, got %+v", op)
		}
	})

	t.Run("OperatorFromContext returns operator when set", func(t *testing.T) {
		ctx := NewContextWithOperator(context.Background(), &Operator{Subject: "billing-ops", Source: "http"})

		op := OperatorFromContext(ctx)
		if op == nil {
			t.Fatal("expected operator, got nil")
		}
		if op.Subject != "billing-ops" {
			t.Errorf("expected Subject %q, got %q", "billing-ops", op.Subject)
		}
	})

	t.Run("TriggeredBy defaults to scheduler", func(t *testing.T) {
		if got := TriggeredBy(context.Background()); got != "scheduler" {
			t.Errorf("TriggeredBy() = %q, want %q", got, "scheduler")
		}
	})

	t.Run("TriggeredBy names the operator", func(t *testing.T) {
		ctx := NewContextWithOperator(context.Background(), &Operator{Subject: "alice", Source: "cli"})
		if got := TriggeredBy(ctx); got != "cli:alice" {
			t.Errorf("TriggeredBy() = %q, want %q", got, "cli:alice")
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty request ID, got %q", id)
	}

	ctx := NewContextWithRequestID(context.Background(), "req-123")
	if id := RequestIDFromContext(ctx); id != "req-123" {
		t.Errorf("expected %q, got %q", "req-123", id)
	}
}
