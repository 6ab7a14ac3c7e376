package resolver

import (
	"time"

	"vidresolve/internal/media"
)

// State is a video id's position in the resolution lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
	StateFailed    State = "failed"
)

// Status is a point-in-time view of one id.
type Status struct {
	VideoID   string               `json:"videoId"`
	State     State                `json:"state"`
	Strategy  string               `json:"strategy,omitempty"`
	Error     string               `json:"error,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Video     *media.ResolvedVideo `json:"-"`
	// FromCache is set when the last transition was served from the cache.
	FromCache bool `json:"fromCache,omitempty"`
}

// Listener is told about every state transition. It must not block.
type Listener func(Status)
