package services_test

import (
	"context"
	"testing"

	"audiopref/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithUserID(ctx, "user_1700000000000")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if uid, ok := services.UserIDFromContext(ctx); !ok || uid != "user_1700000000000" {
		t.Fatalf("unexpected user id: %v %v", uid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "")
	ctx = services.WithUserID(ctx, "")
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.UserIDFromContext(ctx); ok {
		t.Fatal("expected no user id")
	}
}
