package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"vidresolve/internal/extraction"
	"vidresolve/internal/logging"
	"vidresolve/internal/media"
	"vidresolve/internal/metrics"
	"vidresolve/internal/resolvecache"
	"vidresolve/internal/services"
)

var tracer = otel.Tracer("vidresolve/internal/resolver")

// Extractor is the part of extraction.Extractor the pipeline needs.
type Extractor interface {
	Extract(ctx context.Context, videoID string, page extraction.Page) (*extraction.Result, error)
}

// Options configures a Pipeline.
type Options struct {
	Cache    resolvecache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
	Listener Listener
}

// Pipeline resolves video ids. It is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	cache     resolvecache.Cache
	ttl       time.Duration
	logger    *slog.Logger
	listener  Listener

	group singleflight.Group

	mu     sync.RWMutex
	states map[string]Status
	now    func() time.Time
}

// New builds a pipeline around extractor. A nil cache disables caching.
func New(extractor Extractor, opts Options) *Pipeline {
	cache := opts.Cache
	if cache == nil {
		cache = resolvecache.Nop{}
	}
	return &Pipeline{
		extractor: extractor,
		cache:     cache,
		ttl:       opts.CacheTTL,
		logger:    logging.NewComponentLogger(opts.Logger, "resolver"),
		listener:  opts.Listener,
		states:    make(map[string]Status),
		now:       time.Now,
	}
}

// Resolve returns the ResolvedVideo for videoID, serving a cached result when
// one exists. Concurrent calls for the same id share one extraction; the
// shared run is not cancelled when one waiting caller gives up.
func (p *Pipeline) Resolve(ctx context.Context, videoID string, page extraction.Page) (*media.ResolvedVideo, error) {
	return p.ResolveFrom(ctx, videoID, StaticPage(page))
}

// ResolveFrom is Resolve with a lazily built capability set. pages runs only
// after a cache miss, once per shared extraction. A nil pages means an empty
// page.
func (p *Pipeline) ResolveFrom(ctx context.Context, videoID string, pages PageSource) (*media.ResolvedVideo, error) {
	if !media.ValidVideoID(videoID) {
		return nil, services.Wrap(services.ErrValidation, "resolver", "resolve",
			fmt.Sprintf("invalid video id %q", videoID), media.ErrInvalidVideoID)
	}
	ctx = services.WithVideoID(ctx, videoID)
	ctx, span := tracer.Start(ctx, "resolver.resolve", trace.WithAttributes(attribute.String("video.id", videoID)))
	defer span.End()
	logger := logging.WithContext(ctx, p.logger)

	if video, ok := p.cached(ctx, logger, videoID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.String("strategy", video.Strategy))
		metrics.ResolutionsTotal.WithLabelValues("cached").Inc()
		p.transition(Status{VideoID: videoID, State: StateResolved, Strategy: video.Strategy, Video: video, FromCache: true})
		return video, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	ch := p.group.DoChan(videoID, func() (any, error) {
		return p.run(context.WithoutCancel(ctx), logger, videoID, pages)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			span.SetStatus(codes.Error, res.Err.Error())
			return nil, res.Err
		}
		video := res.Val.(*media.ResolvedVideo)
		span.SetAttributes(attribute.String("strategy", video.Strategy))
		return video, nil
	}
}

func (p *Pipeline) cached(ctx context.Context, logger *slog.Logger, videoID string) (*media.ResolvedVideo, bool) {
	video, ok, err := p.cache.Get(ctx, videoID)
	if err != nil {
		logging.WarnWithContext(logger, "cache lookup failed", "cache_get_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache backend connectivity"),
			logging.String(logging.FieldImpact, "resolution proceeds without cache"),
		)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	if !ok || video == nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	logger.Debug("served from cache", logging.String(logging.FieldStrategy, video.Strategy))
	return video, true
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, videoID string, pages PageSource) (*media.ResolvedVideo, error) {
	p.transition(Status{VideoID: videoID, State: StateResolving})
	metrics.InFlightResolutions.Inc()
	defer metrics.InFlightResolutions.Dec()

	page := buildPage(ctx, logger, videoID, pages)
	result, err := p.extractor.Extract(ctx, videoID, page)
	if err != nil {
		p.transition(Status{VideoID: videoID, State: StateFailed, Error: err.Error()})
		metrics.ResolutionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	video := Build(videoID, result.Document, result.Strategy)
	if err := p.cache.Set(ctx, videoID, video, p.ttl); err != nil {
		logging.WarnWithContext(logger, "cache write failed", "cache_set_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache backend connectivity"),
			logging.String(logging.FieldImpact, "next resolution for this video repeats extraction"),
		)
	}
	p.transition(Status{VideoID: videoID, State: StateResolved, Strategy: result.Strategy, Video: video})
	metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
	logger.Info("video resolved",
		logging.String(logging.FieldStrategy, result.Strategy),
		logging.Int("formats", len(video.Formats)),
		logging.Int("captions", len(video.Captions)),
	)
	return video, nil
}

func buildPage(ctx context.Context, logger *slog.Logger, videoID string, pages PageSource) extraction.Page {
	if pages == nil {
		return extraction.Page{}
	}
	page, err := pages(ctx, videoID)
	if err != nil {
		logger.Debug("page source failed; continuing with an empty page", logging.Error(err))
		return extraction.Page{}
	}
	return page
}

func (p *Pipeline) transition(status Status) {
	status.UpdatedAt = p.now()
	p.mu.Lock()
	p.states[status.VideoID] = status
	p.mu.Unlock()
	if p.listener != nil {
		p.listener(status)
	}
}

// State reports the lifecycle position of videoID. Unknown ids are Idle.
func (p *Pipeline) State(videoID string) Status {
	p.mu.RLock()
	status, ok := p.states[videoID]
	p.mu.RUnlock()
	if !ok {
		return Status{VideoID: videoID, State: StateIdle}
	}
	return status
}

// Snapshot lists every known id ordered by id.
func (p *Pipeline) Snapshot() []Status {
	p.mu.RLock()
	out := make([]Status, 0, len(p.states))
	for _, status := range p.states {
		out = append(out, status)
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out
}

// Resolved returns the most recent result of every id currently Resolved.
func (p *Pipeline) Resolved() []*media.ResolvedVideo {
	var out []*media.ResolvedVideo
	for _, status := range p.Snapshot() {
		if status.State == StateResolved && status.Video != nil {
			out = append(out, status.Video)
		}
	}
	return out
}

// Forget drops the cache entry and state for videoID.
func (p *Pipeline) Forget(ctx context.Context, videoID string) error {
	p.mu.Lock()
	delete(p.states, videoID)
	p.mu.Unlock()
	if err := p.cache.Delete(ctx, videoID); err != nil {
		return fmt.Errorf("resolver: forget %s: %w", videoID, err)
	}
	return nil
}

// IsExhausted reports whether err means every extraction strategy failed.
func IsExhausted(err error) bool {
	return errors.Is(err, services.ErrExtractionExhausted)
}
