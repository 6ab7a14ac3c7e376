package media

import (
	"vidresolve/internal/language"
)

// Preference narrows format selection.
type Preference struct {
	// MaxHeight caps video height; zero means no cap.
	MaxHeight int
	// RequireAudio limits video choices to combined streams.
	RequireAudio bool
	// Container restricts choices when non-empty.
	Container Container
}

// BestVideo returns the first video format that satisfies pref. Formats are
// stored best-first, so the first match is the best one.
func (v *ResolvedVideo) BestVideo(pref Preference) (MediaFormat, bool) {
	for _, f := range v.VideoFormats() {
		if pref.MaxHeight > 0 && f.Height > pref.MaxHeight {
			continue
		}
		if pref.RequireAudio && !f.HasEmbeddedAudio {
			continue
		}
		if pref.Container != "" && f.Container != pref.Container {
			continue
		}
		return f, true
	}
	return MediaFormat{}, false
}

// BestAudio returns the highest bitrate audio format, preferring container
// when one is given and falling back to any audio format.
func (v *ResolvedVideo) BestAudio(container Container) (MediaFormat, bool) {
	audio := v.AudioFormats()
	if container != "" {
		for _, f := range audio {
			if f.Container == container {
				return f, true
			}
		}
	}
	if len(audio) == 0 {
		return MediaFormat{}, false
	}
	return audio[0], true
}

// CaptionByLanguage returns the track for code. Manual tracks are preferred
// over auto-generated ones in the same language.
func (v *ResolvedVideo) CaptionByLanguage(code string) (CaptionTrack, bool) {
	if v == nil {
		return CaptionTrack{}, false
	}
	var auto *CaptionTrack
	for i := range v.Captions {
		track := v.Captions[i]
		if !language.Matches(track.LanguageCode, code) {
			continue
		}
		if !track.IsAutoGenerated {
			return track, true
		}
		if auto == nil {
			auto = &v.Captions[i]
		}
	}
	if auto != nil {
		return *auto, true
	}
	return CaptionTrack{}, false
}
