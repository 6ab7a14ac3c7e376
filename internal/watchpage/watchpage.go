// Package watchpage downloads a video's watch page and exposes its inline
// scripts as an extraction capability for hosts that have no live page.
package watchpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"vidresolve/internal/extraction"
	"vidresolve/internal/media"
)

const (
	defaultTimeout = 15 * time.Second
	maxPageBytes   = 8 << 20
)

// Config configures a Fetcher.
type Config struct {
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration
	// BaseURL replaces the watch URL host, for tests.
	BaseURL string
}

// Fetcher retrieves watch pages.
type Fetcher struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	baseURL   string
}

func New(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		http:      client,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

func (f *Fetcher) watchURL(videoID string) string {
	if f.baseURL == "" {
		return media.WatchURL(videoID)
	}
	return f.baseURL + "/watch?v=" + videoID
}

// Fetch returns the watch page HTML for videoID.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.watchURL(videoID), nil)
	if err != nil {
		return "", fmt.Errorf("watchpage: build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("watchpage: get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("watchpage: get: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("watchpage: read: %w", err)
	}
	return string(data), nil
}

// Page fetches the watch page and wraps its scripts as a capability set.
func (f *Fetcher) Page(ctx context.Context, videoID string) (extraction.Page, error) {
	body, err := f.Fetch(ctx, videoID)
	if err != nil {
		return extraction.Page{}, err
	}
	return PageFromHTML(body)
}

// PageFromHTML builds a capability set from page markup the caller already
// has.
func PageFromHTML(doc string) (extraction.Page, error) {
	scripts, err := Scripts(doc)
	if err != nil {
		return extraction.Page{}, err
	}
	return extraction.Page{Scripts: extraction.StaticScripts(scripts)}, nil
}

// Scripts returns the bodies of inline script elements in document order.
// Scripts loaded by src and empty scripts are skipped.
func Scripts(doc string) ([]string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("watchpage: parse html: %w", err)
	}
	var scripts []string
	for n := range root.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.Script || hasAttr(n, "src") {
			continue
		}
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		if body := strings.TrimSpace(b.String()); body != "" {
			scripts = append(scripts, body)
		}
	}
	return scripts, nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
