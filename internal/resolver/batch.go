package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vidresolve/internal/extraction"
	"vidresolve/internal/media"
)

// BatchResult is one id's outcome from ResolveAll.
type BatchResult struct {
	VideoID string
	Video   *media.ResolvedVideo
	Err     error
}

// PageSource builds the capability set for one id. It may block, e.g. to
// fetch a watch page; errors leave the page empty.
type PageSource func(ctx context.Context, videoID string) (extraction.Page, error)

// StaticPage returns a PageSource that always yields page.
func StaticPage(page extraction.Page) PageSource {
	return func(context.Context, string) (extraction.Page, error) { return page, nil }
}

// ResolveAll resolves ids concurrently, at most limit at a time. One id's
// failure does not stop the others. Results keep the order of ids.
func (p *Pipeline) ResolveAll(ctx context.Context, ids []string, pages PageSource, limit int) []BatchResult {
	results := make([]BatchResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i].VideoID = id
			results[i].Video, results[i].Err = p.ResolveFrom(gctx, id, pages)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
