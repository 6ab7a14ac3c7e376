package extraction

import (
	"context"
	"errors"
	"fmt"

	"vidresolve/internal/playerdata"
	"vidresolve/internal/services"
)

// Strategy names.
const (
	NameGlobal  = "global"
	NameElement = "element"
	NameScript  = "script"
	NameRemote  = "remote"
)

// Strategy is one method of obtaining the player-response document.
type Strategy interface {
	Name() string
	// Extract returns a document that satisfies the strategy's own validity
	// rule, or an error tagged with a services strategy marker.
	Extract(ctx context.Context, videoID string, page Page) (*playerdata.Document, error)
}

func unavailable(name, message string) error {
	return services.Wrap(services.ErrStrategyUnavailable, name, "", message, nil)
}

func invalid(name, message string, err error) error {
	return services.Wrap(services.ErrStrategyInvalidResult, name, "", message, err)
}

// parseWithStreams parses data and requires non-empty streaming data.
func parseWithStreams(name string, data []byte) (*playerdata.Document, error) {
	doc, err := playerdata.Parse(data)
	if err != nil {
		return nil, invalid(name, "parse document", err)
	}
	if !doc.HasStreamingData() {
		msg := "document has no streaming data"
		if reason := doc.PlayabilityReason(); reason != "" {
			msg = fmt.Sprintf("%s (playability: %s)", msg, reason)
		}
		return nil, invalid(name, msg, nil)
	}
	return doc, nil
}

// GlobalStrategy reads the player response the host holds in memory.
type GlobalStrategy struct{}

func (GlobalStrategy) Name() string { return NameGlobal }

func (GlobalStrategy) Extract(_ context.Context, _ string, page Page) (*playerdata.Document, error) {
	if page.Global == nil {
		return nil, unavailable(NameGlobal, "host does not share the page context")
	}
	data, ok := page.Global()
	if !ok || len(data) == 0 {
		return nil, unavailable(NameGlobal, "player response not exposed")
	}
	return parseWithStreams(NameGlobal, data)
}

// ElementStrategy calls the host player element's accessor.
type ElementStrategy struct{}

func (ElementStrategy) Name() string { return NameElement }

func (ElementStrategy) Extract(ctx context.Context, _ string, page Page) (*playerdata.Document, error) {
	if page.Element == nil {
		return nil, unavailable(NameElement, "player element accessor missing")
	}
	data, err := page.Element(ctx)
	if err != nil {
		if services.IsStrategyFailure(err) {
			return nil, err
		}
		return nil, invalid(NameElement, "accessor failed", err)
	}
	if len(data) == 0 {
		return nil, invalid(NameElement, "accessor returned nothing", nil)
	}
	return parseWithStreams(NameElement, data)
}

// ErrNoMarker is wrapped when no inline script carries a known marker.
var ErrNoMarker = errors.New("no script contains a player response marker")
