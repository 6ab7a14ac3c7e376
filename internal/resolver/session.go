package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidresolve/internal/logging"
	"vidresolve/internal/media"
)

const sessionIdleTimeout = time.Hour

// Ticket identifies the navigation a resolution was started for.
type Ticket struct {
	SessionID string
	VideoID   string
}

// Session tracks the video a host is currently showing.
type Session struct {
	id       string
	pipeline *Pipeline

	mu       sync.Mutex
	current  string
	lastUsed time.Time
}

// NewSession starts a navigation session. An empty id gets a random one.
func (p *Pipeline) NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{id: id, pipeline: p, lastUsed: p.now()}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Current returns the video id the session last navigated to.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Navigate makes videoID the video of interest. Moving to a different id
// drops the previous id's cache entry.
func (s *Session) Navigate(ctx context.Context, videoID string) Ticket {
	s.mu.Lock()
	previous := s.current
	s.current = videoID
	s.lastUsed = s.pipeline.now()
	s.mu.Unlock()

	if previous != "" && previous != videoID {
		s.invalidate(ctx, previous)
	}
	return Ticket{SessionID: s.id, VideoID: videoID}
}

func (s *Session) invalidate(ctx context.Context, videoID string) {
	if err := s.pipeline.cache.Delete(context.WithoutCancel(ctx), videoID); err != nil {
		logging.WarnWithContext(s.pipeline.logger, "cache invalidation failed", "cache_delete_failed",
			logging.String(logging.FieldSessionID, s.id),
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale entry expires with its ttl"),
		)
	}
}

// IsCurrent reports whether t still refers to the video of interest.
func (s *Session) IsCurrent(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.SessionID == s.id && t.VideoID == s.current
}

// Resolve navigates to videoID and resolves it. current is false when the
// session moved to another video before the result arrived; callers should
// then discard the result. The abandoned id's cache entry, written by the
// finished run after Navigate already dropped it, is removed again.
func (s *Session) Resolve(ctx context.Context, videoID string, pages PageSource) (video *media.ResolvedVideo, current bool, err error) {
	ticket := s.Navigate(ctx, videoID)
	video, err = s.pipeline.ResolveFrom(ctx, videoID, pages)
	current = s.IsCurrent(ticket)
	if !current && s.Current() != videoID {
		s.invalidate(ctx, videoID)
	}
	return video, current, err
}

// Sessions is a registry of sessions keyed by id. Sessions idle for an hour
// are dropped.
type Sessions struct {
	pipeline *Pipeline

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions returns an empty registry over p.
func NewSessions(p *Pipeline) *Sessions {
	return &Sessions{pipeline: p, sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it when needed.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	if s, ok := r.sessions[id]; ok && id != "" {
		return s
	}
	s := r.pipeline.NewSession(id)
	r.sessions[s.id] = s
	return s
}

// Len reports the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Sessions) pruneLocked() {
	cutoff := r.pipeline.now().Add(-sessionIdleTimeout)
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
		}
	}
}
