package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"vidresolve/internal/extraction"
	"vidresolve/internal/metrics"
)

func TestRegisterOnFreshRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

func TestAttemptObserverCounts(t *testing.T) {
	counter := metrics.StrategyAttemptsTotal.WithLabelValues("script", "invalid")
	before := testutil.ToFloat64(counter)

	metrics.AttemptObserver{}.ObserveAttempt(extraction.Attempt{
		Strategy: "script",
		Outcome:  extraction.OutcomeInvalid,
		Duration: 3 * time.Millisecond,
	})

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("counter delta = %v, want 1", got)
	}
}
