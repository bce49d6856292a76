package services_test

import (
	"context"
	"testing"

	"wpp/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMessageID(ctx, 42)
	ctx = services.WithReference(ctx, "b0f95582-c11b-43b4")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.MessageIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected message id: %v %v", id, ok)
	}
	if ref, ok := services.ReferenceFromContext(ctx); !ok || ref != "b0f95582-c11b-43b4" {
		t.Fatalf("unexpected reference: %v %v", ref, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankReferencePreservesContext(t *testing.T) {
	ctx := services.WithReference(context.Background(), "")
	if _, ok := services.ReferenceFromContext(ctx); ok {
		t.Fatal("expected no reference value")
	}
}
