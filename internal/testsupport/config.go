// Package testsupport builds configs and provider fixtures for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidresolve/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The watch page fetch is off and logs go to a file so tests stay offline
// and quiet. The output directory is not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Extraction.Strategies = []string{config.StrategyGlobal, config.StrategyElement, config.StrategyScript}
	cfg.Extraction.FetchWatchPage = false
	cfg.Innertube.TimeoutSeconds = 2
	cfg.Innertube.RetryAttempts = 0
	cfg.Innertube.RequestsPerSecond = 0
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"
	cfg.Logging.Output = []string{filepath.Join(base, "vidresolve.log")}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithStrategies replaces the extraction strategy order.
func WithStrategies(names ...string) ConfigOption {
	return func(c *config.Config) {
		c.Extraction.Strategies = names
	}
}

// WithInnertubeEndpoint points the remote strategy at endpoint.
func WithInnertubeEndpoint(endpoint string) ConfigOption {
	return func(c *config.Config) {
		c.Innertube.Endpoint = endpoint
	}
}

// WithAPIToken sets the serve API bearer token.
func WithAPIToken(token string) ConfigOption {
	return func(c *config.Config) {
		c.Server.APIToken = token
	}
}

// WriteConfig renders cfg as TOML next to its state directory and returns
// the file path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
