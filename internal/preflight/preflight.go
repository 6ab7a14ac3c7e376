package preflight

import (
	"context"
	"net/http"

	"vidresolve/internal/config"
	"vidresolve/internal/resolvecache"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	// Advisory results describe conditions the system tolerates, such as an
	// output directory that has not been mounted yet.
	Advisory bool   `json:"advisory,omitempty"`
	Detail   string `json:"detail"`
}

// Failed reports whether r should fail a readiness run.
func (r Result) Failed() bool {
	return !r.Passed && !r.Advisory
}

// Options carries the live collaborators the checks probe.
type Options struct {
	Cache      resolvecache.Cache
	HTTPClient *http.Client
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckOutputDirectory(cfg.Paths.OutputDir),
		CheckCache(ctx, cfg.Cache.Backend, opts.Cache),
	}
	if cfg.StrategyEnabled(config.StrategyRemote) {
		results = append(results, CheckEndpoint(ctx, "Player endpoint", cfg.Innertube.Endpoint, opts.HTTPClient))
	}
	return results
}

// AnyFailed reports whether a non-advisory check failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
