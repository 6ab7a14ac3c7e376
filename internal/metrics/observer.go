package metrics

import (
	"vidresolve/internal/extraction"
)

// AttemptObserver records every extraction attempt.
type AttemptObserver struct{}

func (AttemptObserver) ObserveAttempt(a extraction.Attempt) {
	StrategyAttemptsTotal.WithLabelValues(a.Strategy, string(a.Outcome)).Inc()
	StrategyDuration.WithLabelValues(a.Strategy).Observe(a.Duration.Seconds())
}
