package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vidresolve/internal/extraction"
	"vidresolve/internal/logging"
	"vidresolve/internal/media"
	"vidresolve/internal/resolver"
	"vidresolve/internal/services"
	"vidresolve/internal/subtitles"
	"vidresolve/internal/timedtext"
	"vidresolve/internal/watchpage"
)

const (
	sessionHeader   = "X-Session-ID"
	maxRequestBytes = 16 << 20
)

type apiServer struct {
	d      *Daemon
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(d *Daemon) *apiServer {
	s := &apiServer{d: d, logger: logging.NewComponentLogger(d.deps.Logger, "api-server")}
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *apiServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/resolve", s.handleResolve)
	mux.HandleFunc("GET /api/subtitle", s.handleSubtitle)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.Handle("GET /api/events", s.d.deps.Hub)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.d.deps.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var h http.Handler = mux
	h = authMiddleware(s.d.deps.Server.APIToken, h)
	h = rateLimitMiddleware(s.d.deps.Server.RateLimitPerSecond, s.d.deps.Server.RateLimitBurst, h)
	h = metricsMiddleware(h)
	h = recoveryMiddleware(s.logger, h)
	h = loggingMiddleware(s.logger, h)
	h = requestIDMiddleware(h)
	return otelhttp.NewHandler(h, "vidresolve",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !isUnlimitedPath(r.URL.Path) && r.URL.Path != "/api/events"
		}),
	)
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.d.deps.Server.Bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type resolveRequest struct {
	VideoID         string          `json:"videoId"`
	URL             string          `json:"url"`
	PlayerResponse  json.RawMessage `json:"playerResponse,omitempty"`
	ElementResponse json.RawMessage `json:"elementResponse,omitempty"`
	HTML            string          `json:"html,omitempty"`
}

type resolveResponse struct {
	SessionID string               `json:"sessionId"`
	Stale     bool                 `json:"stale"`
	Video     *media.ResolvedVideo `json:"video"`
}

type errorResponse struct {
	Error    string         `json:"error"`
	Attempts []AttemptEvent `json:"attempts,omitempty"`
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	input := strings.TrimSpace(req.VideoID)
	if input == "" {
		input = strings.TrimSpace(req.URL)
	}
	videoID, err := media.ParseVideoID(input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pages, err := s.pageFor(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := s.d.sessions.Get(strings.TrimSpace(r.Header.Get(sessionHeader)))
	ctx := services.WithSessionID(r.Context(), session.ID())
	video, current, err := session.Resolve(ctx, videoID, pages)
	w.Header().Set(sessionHeader, session.ID())
	if err != nil {
		s.writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{SessionID: session.ID(), Stale: !current, Video: video})
}

// pageFor builds the capability set from the request, falling back to the
// configured page source when the request carries nothing. The fallback only
// runs when the pipeline misses its cache.
func (s *apiServer) pageFor(req resolveRequest) (resolver.PageSource, error) {
	var page extraction.Page
	if isJSONValue(req.PlayerResponse) {
		page.Global = extraction.StaticGlobal(req.PlayerResponse)
	}
	if isJSONValue(req.ElementResponse) {
		page.Element = extraction.StaticElement(req.ElementResponse)
	}
	if strings.TrimSpace(req.HTML) != "" {
		fromHTML, err := watchpage.PageFromHTML(req.HTML)
		if err != nil {
			return nil, err
		}
		page.Scripts = fromHTML.Scripts
	}
	if page.Global != nil || page.Element != nil || page.Scripts != nil || s.d.deps.Pages == nil {
		return resolver.StaticPage(page), nil
	}
	return s.d.deps.Pages, nil
}

func isJSONValue(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

func (s *apiServer) writeResolveError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if errors.Is(err, context.Canceled) {
		status = 499
	}
	resp := errorResponse{Error: err.Error()}
	var exhausted *extraction.ExhaustedError
	if errors.As(err, &exhausted) {
		resp.Error = "unable to resolve video " + exhausted.VideoID
		for _, a := range exhausted.Attempts {
			resp.Attempts = append(resp.Attempts, AttemptEvent{
				VideoID:    a.VideoID,
				Strategy:   a.Strategy,
				Outcome:    string(a.Outcome),
				Error:      a.ErrorText(),
				DurationMs: a.Duration.Milliseconds(),
			})
		}
	}
	writeJSON(w, status, resp)
}

func (s *apiServer) handleSubtitle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	videoID, err := media.ParseVideoID(query.Get("videoId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := strings.TrimSpace(query.Get("lang"))
	if lang == "" {
		writeError(w, http.StatusBadRequest, "lang is required")
		return
	}
	format := timedtext.FormatSRT
	if raw := query.Get("format"); raw != "" {
		if format, err = timedtext.ParseFormat(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	pages, _ := s.pageFor(resolveRequest{})
	video, err := s.d.deps.Pipeline.ResolveFrom(r.Context(), videoID, pages)
	if err != nil {
		s.writeResolveError(w, err)
		return
	}
	req, err := subtitles.RequestFor(video, lang, format)
	if err != nil {
		writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	artifact, err := s.d.deps.Subtitles.Fetch(r.Context(), req)
	if err != nil {
		writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", artifact.MIMEType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, artifact.Content)
}

func (s *apiServer) handleState(w http.ResponseWriter, r *http.Request) {
	if id := strings.TrimSpace(r.URL.Query().Get("videoId")); id != "" {
		writeJSON(w, http.StatusOK, s.d.deps.Pipeline.State(id))
		return
	}
	writeJSON(w, http.StatusOK, s.d.deps.Pipeline.Snapshot())
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.d.Status())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
