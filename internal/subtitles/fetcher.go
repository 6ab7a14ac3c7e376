package subtitles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vidresolve/internal/logging"
	"vidresolve/internal/media"
	"vidresolve/internal/metrics"
	"vidresolve/internal/services"
	"vidresolve/internal/timedtext"
)

const (
	defaultTimeout   = 20 * time.Second
	maxSubtitleBytes = 8 << 20
)

// Config configures a Fetcher.
type Config struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	// Validate runs SRT diagnostics on converted output.
	Validate bool
	// MaxBytes caps the downloaded payload; larger bodies fail the fetch.
	MaxBytes int64
	Logger   *slog.Logger
}

// Fetcher downloads caption payloads.
type Fetcher struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	validate  bool
	maxBytes  int64
	logger    *slog.Logger
}

// NewFetcher builds a fetcher. Without an HTTP client, one with traced
// transport is created.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = maxSubtitleBytes
	}
	return &Fetcher{
		http:      client,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		validate:  cfg.Validate,
		maxBytes:  maxBytes,
		logger:    logging.NewComponentLogger(cfg.Logger, "subtitles"),
	}
}

// Request names the track to fetch and how to label the result.
type Request struct {
	Title string
	// DurationSeconds is used only by validation; zero skips the duration check.
	DurationSeconds int64
	Track           media.CaptionTrack
	Format          timedtext.Format
}

// RequestFor builds a request for the track matching lang in video.
func RequestFor(video *media.ResolvedVideo, lang string, format timedtext.Format) (Request, error) {
	if video == nil {
		return Request{}, services.Wrap(services.ErrValidation, "subtitles", "request", "video is required", nil)
	}
	track, ok := video.CaptionByLanguage(lang)
	if !ok {
		return Request{}, services.Wrap(services.ErrNotFound, "subtitles", "request",
			fmt.Sprintf("no caption track for language %q", lang), nil)
	}
	return Request{Title: video.Title, DurationSeconds: video.DurationSeconds, Track: track, Format: format}, nil
}

// Fetch downloads and, for SRT, converts the track in req.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (Artifact, error) {
	format := req.Format
	if format == "" {
		format = timedtext.FormatSRT
	}
	logger := logging.WithContext(ctx, f.logger).With(
		logging.String("language", req.Track.LanguageCode),
		logging.String("format", string(format)),
	)

	artifact, err := f.fetch(ctx, req, format)
	if err != nil {
		metrics.SubtitleFetchesTotal.WithLabelValues(string(format), "error").Inc()
		logging.WarnWithContext(logger, "subtitle fetch failed", "subtitle_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry later or choose another caption track"),
			logging.String(logging.FieldImpact, "subtitle not downloaded; metadata unaffected"),
		)
		return Artifact{}, err
	}
	metrics.SubtitleFetchesTotal.WithLabelValues(string(format), "ok").Inc()
	logger.Info("subtitle ready",
		logging.String("file", artifact.FileName),
		logging.Int("bytes", len(artifact.Content)),
		logging.Int("warnings", len(artifact.Warnings)),
	)
	return artifact, nil
}

func (f *Fetcher) fetch(ctx context.Context, req Request, format timedtext.Format) (Artifact, error) {
	endpoint, err := TrackURL(req.Track.BaseURL, format)
	if err != nil {
		return Artifact{}, fetchError("build url", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	body, err := f.get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Artifact{}, fetchError(fmt.Sprintf("timed out after %s", f.timeout), err)
		}
		return Artifact{}, fetchError("download", err)
	}
	if strings.TrimSpace(body) == "" {
		return Artifact{}, fetchError("download", errors.New("empty response body"))
	}

	content := body
	if format.NeedsConversion() {
		content, err = timedtext.ToSRT(body)
		if err != nil {
			return Artifact{}, fetchError("convert to srt", err)
		}
	}

	artifact := Artifact{
		FileName:     FileName(req.Title, req.Track.LanguageCode, format),
		Content:      content,
		Format:       format,
		LanguageCode: req.Track.LanguageCode,
	}
	if f.validate && format == timedtext.FormatSRT {
		artifact.Warnings = timedtext.ValidateSRT(content, float64(req.DurationSeconds))
	}
	return artifact, nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("subtitle payload exceeds %d bytes", f.maxBytes)
	}
	return string(data), nil
}

// TrackURL sets the fmt query parameter the format requires on baseURL,
// replacing any value already present.
func TrackURL(baseURL string, format timedtext.Format) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", errors.New("caption track has no base url")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("fmt", format.FetchParam())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func fetchError(msg string, err error) error {
	return services.Wrap(services.ErrSubtitleFetch, "subtitles", "fetch", msg, err)
}
