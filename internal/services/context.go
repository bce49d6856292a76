package services

import "context"

type contextKey string

const (
	referenceKey contextKey = "txn_reference"
	messageIDKey contextKey = "message_id"
	requestIDKey contextKey = "request_id"
)

// WithReference annotates context with the submission's txnReference.
func WithReference(ctx context.Context, ref string) context.Context {
	if ref == "" {
		return ctx
	}
	return context.WithValue(ctx, referenceKey, ref)
}

// ReferenceFromContext returns the txnReference if present.
func ReferenceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(referenceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMessageID annotates context with the work queue message identifier.
func WithMessageID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, messageIDKey, id)
}

// MessageIDFromContext extracts the work queue message identifier if present.
func MessageIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(messageIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
