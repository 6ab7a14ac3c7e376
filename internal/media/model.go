package media

import (
	"strings"
)

// Kind partitions formats into video and audio renditions.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Container is derived from the MIME type.
type Container string

const (
	ContainerMP4   Container = "mp4"
	ContainerWebM  Container = "webm"
	ContainerOther Container = "other"
)

// MediaFormat is one selectable stream.
type MediaFormat struct {
	ID               string    `json:"id"`
	Kind             Kind      `json:"kind"`
	HasEmbeddedAudio bool      `json:"hasEmbeddedAudio"`
	QualityLabel     string    `json:"qualityLabel"`
	Height           int       `json:"height"`
	Width            int       `json:"width"`
	FPS              int       `json:"fps"`
	BitrateBps       int64     `json:"bitrateBps"`
	SizeBytes        *int64    `json:"sizeBytes,omitempty"`
	Codec            string    `json:"codec"`
	Container        Container `json:"container"`
	MimeType         string    `json:"mimeType"`
	SourceURL        string    `json:"sourceUrl"`
}

// CodecFamily returns the codec token before the first dot ("avc1" for
// "avc1.640028").
func (f MediaFormat) CodecFamily() string {
	codec := f.Codec
	if i := strings.IndexByte(codec, ','); i >= 0 {
		codec = codec[:i]
	}
	if i := strings.IndexByte(codec, '.'); i >= 0 {
		codec = codec[:i]
	}
	return strings.TrimSpace(codec)
}

// CaptionTrack is one normalized subtitle track.
type CaptionTrack struct {
	DisplayName     string `json:"displayName"`
	LanguageCode    string `json:"languageCode"`
	BaseURL         string `json:"baseUrl"`
	IsAutoGenerated bool   `json:"isAutoGenerated"`
}

// ResolvedVideo is the aggregate returned by one resolution.
type ResolvedVideo struct {
	VideoID         string         `json:"videoId"`
	Title           string         `json:"title"`
	Author          string         `json:"author"`
	DurationSeconds int64          `json:"durationSeconds"`
	ViewCount       *int64         `json:"viewCount,omitempty"`
	ThumbnailURL    string         `json:"thumbnailUrl,omitempty"`
	Formats         []MediaFormat  `json:"formats"`
	Captions        []CaptionTrack `json:"captions"`
	// Strategy names the extraction strategy that produced the document.
	Strategy string `json:"strategy,omitempty"`
}

// VideoFormats returns the video partition in its stored order.
func (v *ResolvedVideo) VideoFormats() []MediaFormat {
	return v.filter(func(f MediaFormat) bool { return f.Kind == KindVideo })
}

// AudioFormats returns the audio partition in its stored order.
func (v *ResolvedVideo) AudioFormats() []MediaFormat {
	return v.filter(func(f MediaFormat) bool { return f.Kind == KindAudio })
}

// CombinedFormats returns video formats that carry their own audio.
func (v *ResolvedVideo) CombinedFormats() []MediaFormat {
	return v.filter(func(f MediaFormat) bool { return f.Kind == KindVideo && f.HasEmbeddedAudio })
}

// FormatByID looks up a format by its stream identifier.
func (v *ResolvedVideo) FormatByID(id string) (MediaFormat, bool) {
	for _, f := range v.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return MediaFormat{}, false
}

func (v *ResolvedVideo) filter(keep func(MediaFormat) bool) []MediaFormat {
	if v == nil {
		return nil
	}
	var out []MediaFormat
	for _, f := range v.Formats {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
