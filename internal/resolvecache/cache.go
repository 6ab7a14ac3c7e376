// Package resolvecache stores resolved videos keyed by video id. Backends are
// an in-process TTL map and Redis; both hold only successful resolutions.
package resolvecache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vidresolve/internal/config"
	"vidresolve/internal/media"
)

// Cache is the resolver's view of a backend.
type Cache interface {
	Get(ctx context.Context, videoID string) (*media.ResolvedVideo, bool, error)
	Set(ctx context.Context, videoID string, video *media.ResolvedVideo, ttl time.Duration) error
	Delete(ctx context.Context, videoID string) error
}

// Pinger is implemented by backends with a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New returns the backend selected by cfg.
func New(cfg config.Cache) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", config.CacheBackendMemory:
		return NewMemory(defaultMaxEntries), nil
	case config.CacheBackendOff:
		return Nop{}, nil
	case config.CacheBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("resolvecache: parse redis url: %w", err)
		}
		return NewRedis(redis.NewClient(opts), cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("resolvecache: unknown backend %q", cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*media.ResolvedVideo, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, *media.ResolvedVideo, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }
