// Package media defines the normalized model produced by a resolution:
// MediaFormat, CaptionTrack, and the ResolvedVideo aggregate.
//
// Values are built once per resolution and never mutated afterwards. The
// package also parses video identifiers out of the URL shapes users paste and
// provides presentation helpers (quality badges, human sizes, download names)
// for hosts that render the model.
package media
