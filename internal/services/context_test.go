package services_test

import (
	"context"
	"testing"

	"dubstudio/internal/services"
)

func TestContextTagsRoundTrip(t *testing.T) {
	ctx := services.WithRequestID(
		services.WithStage(
			services.WithJobID(
				services.WithProjectID(context.Background(), 42), "job-1"), "rendering"), "req-123")

	if id, ok := services.ProjectIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("project id = %v, %v", id, ok)
	}
	tags := map[string]func(context.Context) (string, bool){
		"job-1":     services.JobIDFromContext,
		"rendering": services.StageFromContext,
		"req-123":   services.RequestIDFromContext,
	}
	for want, get := range tags {
		if got, ok := get(ctx); !ok || got != want {
			t.Fatalf("got %q, %v; want %q", got, ok, want)
		}
	}
}

func TestEmptyTagsAreNotStored(t *testing.T) {
	base := context.Background()
	ctx := services.WithRequestID(services.WithJobID(services.WithStage(base, ""), ""), "")
	if ctx != base {
		t.Fatal("empty tags should return the context unchanged")
	}
	if _, ok := services.ProjectIDFromContext(ctx); ok {
		t.Fatal("untagged context has no project id")
	}
}
