// Package metrics holds the Prometheus collectors for resolution and the
// serve API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidresolve",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	StrategyAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "strategy_attempts_total",
		Help:      "Extraction strategy attempts by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	StrategyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidresolve",
		Name:      "strategy_duration_seconds",
		Help:      "Extraction strategy duration in seconds.",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"strategy"})

	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "resolutions_total",
		Help:      "Completed resolutions by result (resolved, failed, cached).",
	}, []string{"result"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "cache_hits_total",
		Help:      "Total number of resolution cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "cache_misses_total",
		Help:      "Total number of resolution cache misses.",
	})

	InFlightResolutions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vidresolve",
		Name:      "resolutions_in_flight",
		Help:      "Resolutions currently running extraction.",
	})

	SubtitleFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "subtitle_fetches_total",
		Help:      "Subtitle fetch-and-convert operations by format and result.",
	}, []string{"format", "result"})

	EventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vidresolve",
		Name:      "event_subscribers",
		Help:      "Connected websocket event subscribers.",
	})

	SidecarsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidresolve",
		Name:      "sidecars_written_total",
		Help:      "Info sidecars created or recreated by the reconcile loop.",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StrategyAttemptsTotal,
		StrategyDuration,
		ResolutionsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		InFlightResolutions,
		SubtitleFetchesTotal,
		EventSubscribers,
		SidecarsWrittenTotal,
	)
}
