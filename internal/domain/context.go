// Package domain provides the core billing types, service contracts and context
// helpers shared by the reconciliation engine, the orchestrator and the operator surface.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// operatorContextKey stores the authenticated operator in context.
	operatorContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Operator identifies whoever invoked a manual trigger.
// Scheduled runs carry no operator.
type Operator struct {
	// Subject is the identity returned by the token verifier.
	Subject string
	// Source is "http" or "cli".
	Source string
}

// NewContextWithOperator returns a new context with the operator attached.
func NewContextWithOperator(ctx context.Context, operator *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, operator)
}

// OperatorFromContext retrieves the operator from context.
// Returns nil if no operator is present.
func OperatorFromContext(ctx context.Context) *Operator {
	operator, _ := ctx.Value(operatorContextKey).(*Operator)
	return operator
}

// TriggeredBy describes the initiator of an operation for log lines.
func TriggeredBy(ctx context.Context) string {
	if op := OperatorFromContext(ctx); op != nil {
		return op.Source + ":" + op.Subject
	}
	return "scheduler"
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
