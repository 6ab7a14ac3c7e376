package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vidresolve/internal/config"
	"vidresolve/internal/extraction"
	"vidresolve/internal/innertube"
	"vidresolve/internal/logging"
	"vidresolve/internal/metrics"
	"vidresolve/internal/resolvecache"
	"vidresolve/internal/resolver"
	"vidresolve/internal/retry"
	"vidresolve/internal/subtitles"
	"vidresolve/internal/watchpage"
)

// app holds the collaborators one command invocation needs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	cache     resolvecache.Cache
	extractor *extraction.Extractor
	pipeline  *resolver.Pipeline
	subtitles *subtitles.Fetcher
	watch     *watchpage.Fetcher
}

type appOptions struct {
	observers []extraction.Observer
	listener  resolver.Listener
}

func (c *commandContext) buildApp(opts appOptions) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	strategies, err := buildStrategies(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	observers := append(extraction.Observers{metrics.AttemptObserver{}}, opts.observers...)
	extractor := extraction.New(logger, observers, strategies...)

	cache, err := resolvecache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	pipeline := resolver.New(extractor, resolver.Options{
		Cache:    cache,
		CacheTTL: cfg.CacheTTL(),
		Logger:   logger,
		Listener: opts.listener,
	})

	a := &app{
		cfg:       cfg,
		logger:    logger,
		cache:     cache,
		extractor: extractor,
		pipeline:  pipeline,
		subtitles: subtitles.NewFetcher(subtitles.Config{
			HTTPClient: httpClient,
			Timeout:    cfg.SubtitleTimeout(),
			UserAgent:  cfg.Innertube.UserAgent,
			Validate:   cfg.Subtitles.Validate,
			Logger:     logger,
		}),
	}
	if cfg.Extraction.FetchWatchPage && cfg.StrategyEnabled(config.StrategyScript) {
		a.watch = watchpage.New(watchpage.Config{
			HTTPClient: httpClient,
			UserAgent:  cfg.Innertube.UserAgent,
		})
	}
	return a, nil
}

// Close releases the cache connection, if any.
func (a *app) Close() error {
	if closer, ok := a.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func buildStrategies(cfg *config.Config, httpClient *http.Client) ([]extraction.Strategy, error) {
	strategies := make([]extraction.Strategy, 0, len(cfg.Extraction.Strategies))
	for _, name := range cfg.Extraction.Strategies {
		switch name {
		case config.StrategyGlobal:
			strategies = append(strategies, extraction.GlobalStrategy{})
		case config.StrategyElement:
			strategies = append(strategies, extraction.ElementStrategy{})
		case config.StrategyScript:
			strategies = append(strategies, extraction.NewScriptStrategy(cfg.Extraction.Markers, cfg.Extraction.ScanBudget))
		case config.StrategyRemote:
			remote, err := buildRemote(cfg, httpClient)
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, remote)
		default:
			return nil, fmt.Errorf("unknown extraction strategy %q", name)
		}
	}
	return strategies, nil
}

func buildRemote(cfg *config.Config, httpClient *http.Client) (*extraction.RemoteStrategy, error) {
	client, err := innertube.New(innertube.Config{
		Endpoint:          cfg.Innertube.Endpoint,
		APIKey:            cfg.Innertube.APIKey,
		HL:                cfg.Innertube.HL,
		GL:                cfg.Innertube.GL,
		UserAgent:         cfg.Innertube.UserAgent,
		RequestsPerSecond: cfg.Innertube.RequestsPerSecond,
		HTTPClient:        httpClient,
	})
	if err != nil {
		return nil, err
	}
	profiles, err := innertube.LookupProfiles(cfg.Innertube.Clients)
	if err != nil {
		return nil, err
	}
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Innertube.RetryAttempts + 1
	return &extraction.RemoteStrategy{
		Client:   client,
		Profiles: profiles,
		Timeout:  cfg.InnertubeTimeout(),
		Retry:    retryCfg,
	}, nil
}

// pageInputs are host captures supplied on the command line.
type pageInputs struct {
	playerResponse  string
	elementResponse string
	html            string
}

func (in pageInputs) empty() bool {
	return in.playerResponse == "" && in.elementResponse == "" && in.html == ""
}

// pageSource builds the capability set for each id. Captured files take
// precedence; without them the watch page is fetched when enabled. A failed
// watch page fetch leaves the remote strategy to do the work.
func (a *app) pageSource(in pageInputs) (resolver.PageSource, error) {
	if !in.empty() {
		page, err := loadCapturedPage(in)
		if err != nil {
			return nil, err
		}
		return resolver.StaticPage(page), nil
	}
	if a.watch == nil {
		return nil, nil
	}
	watch := a.watch
	logger := a.logger
	return func(ctx context.Context, videoID string) (extraction.Page, error) {
		page, err := watch.Page(ctx, videoID)
		if err != nil {
			logger.Warn("watch page unavailable",
				logging.String(logging.FieldVideoID, videoID),
				logging.Error(err),
			)
			return extraction.Page{}, nil
		}
		return page, nil
	}, nil
}

func loadCapturedPage(in pageInputs) (extraction.Page, error) {
	var page extraction.Page
	if in.playerResponse != "" {
		data, err := readInput(in.playerResponse)
		if err != nil {
			return page, fmt.Errorf("read player response: %w", err)
		}
		page.Global = extraction.StaticGlobal(data)
	}
	if in.elementResponse != "" {
		data, err := readInput(in.elementResponse)
		if err != nil {
			return page, fmt.Errorf("read element response: %w", err)
		}
		page.Element = extraction.StaticElement(data)
	}
	if in.html != "" {
		data, err := readInput(in.html)
		if err != nil {
			return page, fmt.Errorf("read html: %w", err)
		}
		scripts, err := watchpage.Scripts(string(data))
		if err != nil {
			return page, fmt.Errorf("parse html: %w", err)
		}
		page.Scripts = extraction.StaticScripts(scripts)
	}
	return page, nil
}

func readInput(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("path is empty")
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
