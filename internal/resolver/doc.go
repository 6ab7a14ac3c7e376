// Package resolver turns a video id into a ResolvedVideo.
//
// A Pipeline runs extraction, classification and caption normalization for
// one id at a time: concurrent calls for the same id share a single run,
// while different ids proceed independently. Successful results are cached
// by id; failures are never cached, so the next call retries every strategy.
//
// Session models a host that navigates between videos. Navigating away from
// an id invalidates its cache entry, and tickets let callers discard results
// that arrive after the user has moved on.
package resolver
