// Package streams turns raw stream descriptors into ordered MediaFormat
// records.
package streams

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"vidresolve/internal/media"
	"vidresolve/internal/playerdata"
)

var codecsPattern = regexp.MustCompile(`codecs="([^"]+)"`)

// Classify collects the combined and adaptive lists of doc, drops entries that
// are neither audio nor video or that lack a direct URL, and returns the
// result with video first (height desc, bitrate desc) then audio (bitrate
// desc). A descriptor id seen in the combined list is not emitted again from
// the adaptive list. The input is not modified.
func Classify(doc *playerdata.Document) []media.MediaFormat {
	if doc == nil || doc.StreamingData == nil {
		return []media.MediaFormat{}
	}
	out := make([]media.MediaFormat, 0, len(doc.StreamingData.Formats)+len(doc.StreamingData.AdaptiveFormats))
	seen := make(map[string]struct{})
	add := func(list []playerdata.Descriptor, combined bool) {
		for _, d := range list {
			f, ok := classifyOne(d, combined)
			if !ok {
				continue
			}
			if f.ID != "" {
				if _, dup := seen[f.ID]; dup {
					continue
				}
				seen[f.ID] = struct{}{}
			}
			out = append(out, f)
		}
	}
	add(doc.StreamingData.Formats, true)
	add(doc.StreamingData.AdaptiveFormats, false)

	Sort(out)
	return out
}

// Sort orders formats in place: video before audio, video by height then
// bitrate descending, audio by bitrate descending. Ties keep input order.
func Sort(formats []media.MediaFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		a, b := formats[i], formats[j]
		if a.Kind != b.Kind {
			return a.Kind == media.KindVideo
		}
		if a.Kind == media.KindVideo && a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.BitrateBps > b.BitrateBps
	})
}

func classifyOne(d playerdata.Descriptor, combined bool) (media.MediaFormat, bool) {
	mime := strings.TrimSpace(d.MimeType)
	var kind media.Kind
	switch {
	case strings.HasPrefix(mime, "video/"):
		kind = media.KindVideo
	case strings.HasPrefix(mime, "audio/"):
		kind = media.KindAudio
	default:
		return media.MediaFormat{}, false
	}
	sourceURL := strings.TrimSpace(d.URL)
	if sourceURL == "" {
		return media.MediaFormat{}, false
	}

	f := media.MediaFormat{
		Kind:             kind,
		HasEmbeddedAudio: kind == media.KindVideo && combined,
		Height:           int(d.Height.Or(0)),
		Width:            int(d.Width.Or(0)),
		FPS:              int(d.FPS.Or(0)),
		BitrateBps:       d.Bitrate.Or(0),
		Codec:            codecOf(mime),
		Container:        containerOf(mime),
		MimeType:         mime,
		SourceURL:        sourceURL,
	}
	if d.Itag.Valid {
		f.ID = strconv.FormatInt(d.Itag.Value, 10)
	}
	if d.ContentLength.Valid && d.ContentLength.Value >= 0 {
		size := d.ContentLength.Value
		f.SizeBytes = &size
	}
	f.QualityLabel = qualityLabel(d, f)
	return f, true
}

func codecOf(mime string) string {
	if m := codecsPattern.FindStringSubmatch(mime); m != nil {
		return m[1]
	}
	return ""
}

func containerOf(mime string) media.Container {
	switch {
	case strings.Contains(mime, "mp4"):
		return media.ContainerMP4
	case strings.Contains(mime, "webm"):
		return media.ContainerWebM
	default:
		return media.ContainerOther
	}
}

func qualityLabel(d playerdata.Descriptor, f media.MediaFormat) string {
	if f.Kind == media.KindAudio {
		return strconv.FormatInt(int64(math.Round(float64(f.BitrateBps)/1000)), 10) + "kbps"
	}
	switch {
	case d.QualityLabel != "":
		return d.QualityLabel
	case f.Height > 0:
		return strconv.Itoa(f.Height) + "p"
	case d.Quality != "":
		return d.Quality
	default:
		return "unknown"
	}
}
