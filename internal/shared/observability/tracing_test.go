package observability

import (
	"context"
	"testing"
)

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{})
	if err != nil {
		t.Fatalf("init tracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingRequiresEndpoint(t *testing.T) {
	if _, err := InitTracing(context.Background(), TracingConfig{Enabled: true}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
