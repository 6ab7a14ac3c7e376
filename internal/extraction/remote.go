package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidresolve/internal/innertube"
	"vidresolve/internal/playerdata"
	"vidresolve/internal/retry"
	"vidresolve/internal/services"
)

// DefaultRemoteTimeout bounds one profile's request, retries included.
const DefaultRemoteTimeout = 10 * time.Second

// PlayerClient posts a player request for one client profile.
type PlayerClient interface {
	Player(ctx context.Context, videoID string, profile innertube.ClientProfile) ([]byte, error)
}

// RemoteStrategy asks the provider's player endpoint directly, trying each
// profile in order until one returns streaming data.
type RemoteStrategy struct {
	Client   PlayerClient
	Profiles []innertube.ClientProfile
	Timeout  time.Duration
	Retry    retry.Config
}

func (r *RemoteStrategy) Name() string { return NameRemote }

func (r *RemoteStrategy) Extract(ctx context.Context, videoID string, _ Page) (*playerdata.Document, error) {
	if r.Client == nil {
		return nil, unavailable(NameRemote, "no player client configured")
	}
	profiles := r.Profiles
	if len(profiles) == 0 {
		profiles = []innertube.ClientProfile{innertube.ProfileWeb, innertube.ProfileAndroid}
	}

	var errs []error
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := r.tryProfile(ctx, videoID, profile)
		if err == nil {
			return doc, nil
		}
		errs = append(errs, err)
	}
	// The last profile's failure decides the classification.
	last := errs[len(errs)-1]
	if len(errs) == 1 {
		return nil, last
	}
	return nil, fmt.Errorf("%w (earlier: %w)", last, errors.Join(errs[:len(errs)-1]...))
}

func (r *RemoteStrategy) tryProfile(ctx context.Context, videoID string, profile innertube.ClientProfile) (*playerdata.Document, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := r.Retry
	if cfg.MaxAttempts == 0 {
		cfg = retry.Config{MaxAttempts: 1}
	}

	var body []byte
	err := retry.Do(callCtx, cfg, func(int) error {
		var callErr error
		body, callErr = r.Client.Player(callCtx, videoID, profile)
		return callErr
	})
	if err != nil {
		// A parent cancellation is not a strategy failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		op := "profile " + profile.Name
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrStrategyTransport, NameRemote, op,
				fmt.Sprintf("timed out after %s", timeout), err)
		}
		return nil, services.Wrap(services.ErrStrategyTransport, NameRemote, op, "request failed", err)
	}

	doc, err := playerdata.Parse(body)
	if err != nil {
		return nil, invalid(NameRemote, "profile "+profile.Name+": parse response", err)
	}
	if !doc.HasStreamingData() {
		msg := "profile " + profile.Name + ": response has no streaming data"
		if reason := doc.PlayabilityReason(); reason != "" {
			msg += " (playability: " + reason + ")"
		}
		return nil, invalid(NameRemote, msg, nil)
	}
	return doc, nil
}
