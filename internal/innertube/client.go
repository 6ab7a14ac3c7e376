// Package innertube calls the provider's player endpoint with a minimal
// client-identification payload.
package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint    = "https://www.youtube.com/youtubei/v1/player"
	defaultHTTPTimeout = 15 * time.Second
	maxResponseBytes   = 16 << 20
)

// Config describes the player endpoint client.
type Config struct {
	Endpoint  string
	APIKey    string
	HL        string
	GL        string
	UserAgent string
	// RequestsPerSecond throttles outgoing calls; zero disables throttling.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client posts player requests.
type Client struct {
	endpoint  *url.URL
	hl        string
	gl        string
	userAgent string
	limiter   *rate.Limiter
	http      *http.Client
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("innertube: status %d", e.Code)
	}
	return fmt.Sprintf("innertube: status %d: %s", e.Code, e.Body)
}

// Transient reports whether a retry may succeed.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("innertube: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("innertube: endpoint must be http(s), got %q", endpoint)
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		q := u.Query()
		q.Set("key", key)
		u.RawQuery = q.Encode()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	c := &Client{
		endpoint:  u,
		hl:        strings.TrimSpace(cfg.HL),
		gl:        strings.TrimSpace(cfg.GL),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      hc,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

type playerRequest struct {
	VideoID string         `json:"videoId"`
	Context requestContext `json:"context"`
}

type requestContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	HL                string `json:"hl"`
	GL                string `json:"gl,omitempty"`
	AndroidSDKVersion int    `json:"androidSdkVersion,omitempty"`
}

// Player posts a player request for videoID as profile and returns the raw
// response body. Non-2xx responses produce a *StatusError.
func (c *Client) Player(ctx context.Context, videoID string, profile ClientProfile) ([]byte, error) {
	if c == nil {
		return nil, errors.New("innertube: client is nil")
	}
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("innertube: video id is required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("innertube: rate limit: %w", err)
		}
	}

	payload := playerRequest{
		VideoID: videoID,
		Context: requestContext{Client: clientInfo{
			ClientName:        profile.Name,
			ClientVersion:     profile.Version,
			HL:                c.hl,
			GL:                c.gl,
			AndroidSDKVersion: profile.AndroidSDKVersion,
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("innertube: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("innertube: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	ua := profile.UserAgent
	if ua == "" {
		ua = c.userAgent
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if profile.ContextNameID > 0 {
		req.Header.Set("X-Youtube-Client-Name", strconv.Itoa(profile.ContextNameID))
		req.Header.Set("X-Youtube-Client-Version", profile.Version)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube: post player: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("innertube: read response: %w", err)
	}
	return data, nil
}
