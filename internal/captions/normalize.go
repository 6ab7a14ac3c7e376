// Package captions maps raw caption-track descriptors to CaptionTrack
// records.
package captions

import (
	"strings"

	"vidresolve/internal/media"
	"vidresolve/internal/playerdata"
)

// KindASR marks automatic speech recognition tracks.
const KindASR = "asr"

// Normalize returns the caption tracks of doc in source order. A document
// without a caption list yields an empty, non-nil slice.
func Normalize(doc *playerdata.Document) []media.CaptionTrack {
	raw := doc.CaptionTracks()
	out := make([]media.CaptionTrack, 0, len(raw))
	for _, track := range raw {
		lang := strings.TrimSpace(track.LanguageCode)
		name := strings.TrimSpace(track.Name.String())
		if name == "" {
			name = lang
		}
		out = append(out, media.CaptionTrack{
			DisplayName:     name,
			LanguageCode:    lang,
			BaseURL:         track.BaseURL,
			IsAutoGenerated: track.Kind == KindASR,
		})
	}
	return out
}
