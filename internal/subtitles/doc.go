// Package subtitles fetches a caption track's timed text and turns it into a
// downloadable SRT or WebVTT artifact.
//
// Each fetch carries its own timeout and is independent of metadata
// resolution: a failed subtitle fetch is reported as
// services.ErrSubtitleFetch and never changes the video's resolution state.
package subtitles
