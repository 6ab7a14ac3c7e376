// Package logging assembles structured slog loggers and formatting helpers used
// across vidresolve.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so resolver and daemon code can
// tag log lines with request IDs, video IDs, and strategy names. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
