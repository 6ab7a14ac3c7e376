package resolvecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vidresolve/internal/media"
)

const defaultRedisPrefix = "vidresolve:video:"

// Redis stores resolved videos as JSON under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client. An empty prefix uses "vidresolve:video:".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(videoID string) string { return r.prefix + videoID }

func (r *Redis) Get(ctx context.Context, videoID string) (*media.ResolvedVideo, bool, error) {
	data, err := r.client.Get(ctx, r.key(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resolvecache: redis get: %w", err)
	}
	var video media.ResolvedVideo
	if err := json.Unmarshal(data, &video); err != nil {
		return nil, false, fmt.Errorf("resolvecache: decode cached video: %w", err)
	}
	return &video, true, nil
}

func (r *Redis) Set(ctx context.Context, videoID string, video *media.ResolvedVideo, ttl time.Duration) error {
	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("resolvecache: encode video: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(videoID), data, ttl).Err(); err != nil {
		return fmt.Errorf("resolvecache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, videoID string) error {
	if err := r.client.Del(ctx, r.key(videoID)).Err(); err != nil {
		return fmt.Errorf("resolvecache: redis del: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
