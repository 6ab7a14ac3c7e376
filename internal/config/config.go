package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
}

// Extraction controls which metadata strategies run and how the script scan is bounded.
type Extraction struct {
	Strategies     []string `toml:"strategies"`
	ScanBudget     int      `toml:"scan_budget"`
	Markers        []string `toml:"markers"`
	FetchWatchPage bool     `toml:"fetch_watch_page"`
}

// Innertube contains settings for the remote player endpoint.
type Innertube struct {
	Endpoint          string   `toml:"endpoint"`
	APIKey            string   `toml:"api_key"`
	Clients           []string `toml:"clients"`
	HL                string   `toml:"hl"`
	GL                string   `toml:"gl"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	RetryAttempts     int      `toml:"retry_attempts"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	UserAgent         string   `toml:"user_agent"`
}

// Cache selects the resolved-video cache backend.
type Cache struct {
	Backend    string `toml:"backend"`
	TTLSeconds int    `toml:"ttl_seconds"`
	RedisURL   string `toml:"redis_url"`
	KeyPrefix  string `toml:"key_prefix"`
}

// Subtitles contains subtitle fetch settings.
type Subtitles struct {
	DefaultFormat  string `toml:"default_format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Validate       bool   `toml:"validate"`
}

// Server contains settings for the serve daemon.
type Server struct {
	Bind               string  `toml:"bind"`
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
	RateLimitBurst     int     `toml:"rate_limit_burst"`
	LockPath           string  `toml:"lock_path"`
	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string `toml:"api_token"`
}

// Reconcile controls the sidecar liveness loop.
type Reconcile struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string   `toml:"format"`
	Level  string   `toml:"level"`
	Output []string `toml:"output"`
}

// Config encapsulates all configuration values for vidresolve.
//
// Configuration sections by subsystem:
//   - Paths: artifact output and daemon state directories
//   - Extraction: strategy order and script scan bounds
//   - Innertube: remote player endpoint and client profiles
//   - Cache: resolved-video cache backend
//   - Subtitles: caption download format and timeout
//   - Server: serve daemon bind address and rate limits
//   - Reconcile: sidecar liveness loop interval
//   - Logging: log format, level, and outputs
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Innertube  Innertube  `toml:"innertube"`
	Cache      Cache      `toml:"cache"`
	Subtitles  Subtitles  `toml:"subtitles"`
	Server     Server     `toml:"server"`
	Reconcile  Reconcile  `toml:"reconcile"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidresolve/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidresolve.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory. The output directory is
// created on demand by writers so a missing mount does not block startup.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// InnertubeTimeout returns the per-request timeout for remote player calls.
func (c *Config) InnertubeTimeout() time.Duration {
	return time.Duration(c.Innertube.TimeoutSeconds) * time.Second
}

// SubtitleTimeout returns the timeout for a single subtitle fetch.
func (c *Config) SubtitleTimeout() time.Duration {
	return time.Duration(c.Subtitles.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long resolved videos stay cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ReconcileInterval returns the liveness loop tick.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.Reconcile.IntervalSeconds) * time.Second
}

// StrategyEnabled reports whether the named extraction strategy is configured.
func (c *Config) StrategyEnabled(name string) bool {
	for _, s := range c.Extraction.Strategies {
		if s == name {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
