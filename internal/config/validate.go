package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownClients = map[string]struct{}{"WEB": {}, "ANDROID": {}}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateInnertube(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExtraction() error {
	if len(c.Extraction.Strategies) == 0 {
		return errors.New("extraction.strategies must list at least one strategy")
	}
	for _, s := range c.Extraction.Strategies {
		switch s {
		case StrategyGlobal, StrategyElement, StrategyScript, StrategyRemote:
		default:
			return fmt.Errorf("extraction.strategies: unknown strategy %q", s)
		}
	}
	if c.StrategyEnabled(StrategyScript) && len(c.Extraction.Markers) == 0 {
		return errors.New("extraction.markers must not be empty when the script strategy is enabled")
	}
	return nil
}

func (c *Config) validateInnertube() error {
	if !c.StrategyEnabled(StrategyRemote) {
		return nil
	}
	if len(c.Innertube.Clients) == 0 {
		return errors.New("innertube.clients must not be empty")
	}
	for _, name := range c.Innertube.Clients {
		if _, ok := knownClients[name]; !ok {
			return fmt.Errorf("innertube.clients: unsupported client %q (expected WEB or ANDROID)", name)
		}
	}
	if !strings.HasPrefix(c.Innertube.Endpoint, "http://") && !strings.HasPrefix(c.Innertube.Endpoint, "https://") {
		return fmt.Errorf("innertube.endpoint must be an http(s) URL, got %q", c.Innertube.Endpoint)
	}
	if c.Innertube.TimeoutSeconds <= 0 {
		return errors.New("innertube.timeout_seconds must be positive")
	}
	if c.Innertube.RetryAttempts < 0 {
		return errors.New("innertube.retry_attempts must be zero or greater")
	}
	if c.Innertube.RequestsPerSecond < 0 {
		return errors.New("innertube.requests_per_second must be zero or greater")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendOff:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required when cache.backend is redis. Set VIDRESOLVE_REDIS_URL or edit the config file")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis, or off, got %q", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.New("cache.ttl_seconds must be zero or greater")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	switch c.Subtitles.DefaultFormat {
	case "srt", "vtt":
	default:
		return fmt.Errorf("subtitles.default_format must be srt or vtt, got %q", c.Subtitles.DefaultFormat)
	}
	if c.Subtitles.TimeoutSeconds <= 0 {
		return errors.New("subtitles.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerSecond < 0 {
		return errors.New("server.rate_limit_per_second must be zero or greater")
	}
	if c.Server.RateLimitPerSecond > 0 && c.Server.RateLimitBurst <= 0 {
		return errors.New("server.rate_limit_burst must be positive when rate limiting is enabled")
	}
	if c.Reconcile.IntervalSeconds <= 0 {
		return errors.New("reconcile.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
