package services_test

import (
	"context"
	"testing"

	"cinewatch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithSource(ctx, "letterboxd")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if src, ok := services.SourceFromContext(ctx); !ok || src != "letterboxd" {
		t.Fatalf("unexpected source: %v %v", src, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSource(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.SourceFromContext(ctx); ok {
		t.Fatal("expected no source value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}

func TestNewRunIDIsUnique(t *testing.T) {
	a, b := services.NewRunID(), services.NewRunID()
	if a == "" || a == b {
		t.Fatalf("expected distinct run ids, got %q and %q", a, b)
	}
}
