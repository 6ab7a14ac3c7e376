package telemetry

import (
	"context"
	"testing"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	shutdown, err := Init(context.Background(), "vidresolve", "test")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestHostPort(t *testing.T) {
	tests := map[string]string{
		"http://collector:4318":   "collector:4318",
		"https://collector:4318/": "collector:4318",
		"collector:4318":          "collector:4318",
	}
	for in, want := range tests {
		if got := hostPort(in); got != want {
			t.Errorf("hostPort(%q) = %q, want %q", in, got, want)
		}
	}
}
