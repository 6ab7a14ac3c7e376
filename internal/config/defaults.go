package config

const (
	defaultOutputDir          = "~/Downloads/vidresolve"
	defaultStateDir           = "~/.local/share/vidresolve"
	defaultScanBudget         = 500000
	defaultInnertubeEndpoint  = "https://www.youtube.com/youtubei/v1/player"
	defaultInnertubeHL        = "en"
	defaultInnertubeGL        = "US"
	defaultInnertubeTimeout   = 15
	defaultInnertubeRetries   = 2
	defaultInnertubeRate      = 2.0
	defaultUserAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultCacheBackend       = CacheBackendMemory
	defaultCacheTTLSeconds    = 1800
	defaultCacheKeyPrefix     = "vidresolve:"
	defaultSubtitleFormat     = "srt"
	defaultSubtitleTimeout    = 20
	defaultServerBind         = "127.0.0.1:7480"
	defaultRateLimitPerSecond = 10.0
	defaultRateLimitBurst     = 20
	defaultReconcileInterval  = 1
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Strategy names accepted in extraction.strategies, in default order.
const (
	StrategyGlobal  = "global"
	StrategyElement = "element"
	StrategyScript  = "script"
	StrategyRemote  = "remote"
)

// Cache backends accepted in cache.backend.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendOff    = "off"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Extraction: Extraction{
			Strategies:     []string{StrategyGlobal, StrategyElement, StrategyScript, StrategyRemote},
			ScanBudget:     defaultScanBudget,
			Markers:        []string{"ytInitialPlayerResponse", "raw_player_response"},
			FetchWatchPage: true,
		},
		Innertube: Innertube{
			Endpoint:          defaultInnertubeEndpoint,
			Clients:           []string{"WEB", "ANDROID"},
			HL:                defaultInnertubeHL,
			GL:                defaultInnertubeGL,
			TimeoutSeconds:    defaultInnertubeTimeout,
			RetryAttempts:     defaultInnertubeRetries,
			RequestsPerSecond: defaultInnertubeRate,
			UserAgent:         defaultUserAgent,
		},
		Cache: Cache{
			Backend:    defaultCacheBackend,
			TTLSeconds: defaultCacheTTLSeconds,
			KeyPrefix:  defaultCacheKeyPrefix,
		},
		Subtitles: Subtitles{
			DefaultFormat:  defaultSubtitleFormat,
			TimeoutSeconds: defaultSubtitleTimeout,
		},
		Server: Server{
			Bind:               defaultServerBind,
			RateLimitPerSecond: defaultRateLimitPerSecond,
			RateLimitBurst:     defaultRateLimitBurst,
		},
		Reconcile: Reconcile{
			IntervalSeconds: defaultReconcileInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Output: []string{"stderr"},
		},
	}
}
