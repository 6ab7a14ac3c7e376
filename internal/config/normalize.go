package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeInnertube()
	c.normalizeCache()
	c.normalizeSubtitles()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Server.LockPath) == "" {
		c.Server.LockPath = filepath.Join(c.Paths.StateDir, "vidresolve.lock")
	} else if c.Server.LockPath, err = expandPath(c.Server.LockPath); err != nil {
		return fmt.Errorf("server.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.Strategies = normalizeList(c.Extraction.Strategies, strings.ToLower)
	markers := c.Extraction.Markers[:0]
	for _, m := range c.Extraction.Markers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	c.Extraction.Markers = markers
	if c.Extraction.ScanBudget <= 0 {
		c.Extraction.ScanBudget = defaultScanBudget
	}
}

func (c *Config) normalizeInnertube() {
	c.Innertube.Endpoint = strings.TrimSpace(c.Innertube.Endpoint)
	if c.Innertube.Endpoint == "" {
		c.Innertube.Endpoint = defaultInnertubeEndpoint
	}
	c.Innertube.APIKey = strings.TrimSpace(c.Innertube.APIKey)
	if c.Innertube.APIKey == "" {
		if value, ok := os.LookupEnv("VIDRESOLVE_INNERTUBE_API_KEY"); ok {
			c.Innertube.APIKey = strings.TrimSpace(value)
		}
	}
	c.Innertube.Clients = normalizeList(c.Innertube.Clients, strings.ToUpper)
	c.Innertube.HL = strings.TrimSpace(c.Innertube.HL)
	if c.Innertube.HL == "" {
		c.Innertube.HL = defaultInnertubeHL
	}
	c.Innertube.GL = strings.ToUpper(strings.TrimSpace(c.Innertube.GL))
	c.Innertube.UserAgent = strings.TrimSpace(c.Innertube.UserAgent)
	if c.Innertube.UserAgent == "" {
		c.Innertube.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	c.Cache.RedisURL = strings.TrimSpace(c.Cache.RedisURL)
	if c.Cache.RedisURL == "" {
		if value, ok := os.LookupEnv("VIDRESOLVE_REDIS_URL"); ok {
			c.Cache.RedisURL = strings.TrimSpace(value)
		}
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaultCacheKeyPrefix
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Subtitles.DefaultFormat))
	if c.Subtitles.DefaultFormat == "" {
		c.Subtitles.DefaultFormat = defaultSubtitleFormat
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("VIDRESOLVE_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.Output) == 0 {
		c.Logging.Output = []string{"stderr"}
	}
}

func normalizeList(values []string, transform func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = transform(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
