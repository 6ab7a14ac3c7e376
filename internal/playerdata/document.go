package playerdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyDocument is returned by Parse for blank input or a JSON null.
var ErrEmptyDocument = errors.New("playerdata: empty document")

// Document is the subset of a player response the resolver consumes.
type Document struct {
	PlayabilityStatus *PlayabilityStatus `json:"playabilityStatus,omitempty"`
	VideoDetails      *VideoDetails      `json:"videoDetails,omitempty"`
	StreamingData     *StreamingData     `json:"streamingData,omitempty"`
	Captions          *Captions          `json:"captions,omitempty"`
}

type PlayabilityStatus struct {
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type VideoDetails struct {
	VideoID          string     `json:"videoId,omitempty"`
	Title            string     `json:"title,omitempty"`
	Author           string     `json:"author,omitempty"`
	ChannelID        string     `json:"channelId,omitempty"`
	LengthSeconds    FlexInt    `json:"lengthSeconds"`
	ViewCount        FlexInt    `json:"viewCount"`
	ShortDescription string     `json:"shortDescription,omitempty"`
	IsLiveContent    bool       `json:"isLiveContent,omitempty"`
	Thumbnail        *Thumbnail `json:"thumbnail,omitempty"`
}

type Thumbnail struct {
	Thumbnails []ThumbnailImage `json:"thumbnails,omitempty"`
}

type ThumbnailImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// StreamingData holds the combined ("formats") and adaptive stream lists.
type StreamingData struct {
	ExpiresInSeconds FlexInt      `json:"expiresInSeconds"`
	Formats          []Descriptor `json:"formats,omitempty"`
	AdaptiveFormats  []Descriptor `json:"adaptiveFormats,omitempty"`
}

// Descriptor is one raw stream rendition.
type Descriptor struct {
	Itag            FlexInt `json:"itag"`
	URL             string  `json:"url,omitempty"`
	MimeType        string  `json:"mimeType,omitempty"`
	Bitrate         FlexInt `json:"bitrate"`
	Width           FlexInt `json:"width"`
	Height          FlexInt `json:"height"`
	FPS             FlexInt `json:"fps"`
	ContentLength   FlexInt `json:"contentLength"`
	Quality         string  `json:"quality,omitempty"`
	QualityLabel    string  `json:"qualityLabel,omitempty"`
	AudioQuality    string  `json:"audioQuality,omitempty"`
	SignatureCipher string  `json:"signatureCipher,omitempty"`
	Cipher          string  `json:"cipher,omitempty"`
}

type Captions struct {
	Renderer *TracklistRenderer `json:"playerCaptionsTracklistRenderer,omitempty"`
}

type TracklistRenderer struct {
	CaptionTracks []RawCaptionTrack `json:"captionTracks,omitempty"`
}

// RawCaptionTrack is one caption-track descriptor.
type RawCaptionTrack struct {
	BaseURL      string    `json:"baseUrl,omitempty"`
	Name         *TextNode `json:"name,omitempty"`
	LanguageCode string    `json:"languageCode,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	VssID        string    `json:"vssId,omitempty"`
}

// TextNode is the provider's localized text container: either simpleText or
// a list of runs.
type TextNode struct {
	SimpleText string    `json:"simpleText,omitempty"`
	Runs       []TextRun `json:"runs,omitempty"`
}

type TextRun struct {
	Text string `json:"text"`
}

// String returns simpleText, falling back to the first run.
func (t *TextNode) String() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	if len(t.Runs) > 0 {
		return t.Runs[0].Text
	}
	return ""
}

// FlexInt decodes a JSON number or numeric string. Valid is false when the
// field was absent, null, or unparseable.
type FlexInt struct {
	Value int64
	Valid bool
}

// Int wraps v as a present FlexInt.
func Int(v int64) FlexInt { return FlexInt{Value: v, Valid: true} }

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = Int(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(text, 64); err == nil {
		*f = Int(int64(fl))
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Or returns the value, or fallback when absent.
func (f FlexInt) Or(fallback int64) int64 {
	if f.Valid {
		return f.Value
	}
	return fallback
}

// Parse decodes a player-response document. Malformed JSON is an error;
// missing sections are not.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("playerdata: decode: %w", err)
	}
	return &doc, nil
}

// HasStreamingData reports whether at least one stream descriptor exists in
// either list.
func (d *Document) HasStreamingData() bool {
	if d == nil || d.StreamingData == nil {
		return false
	}
	return len(d.StreamingData.Formats)+len(d.StreamingData.AdaptiveFormats) > 0
}

// HasPlayerFields reports whether streamingData or videoDetails is present.
func (d *Document) HasPlayerFields() bool {
	return d != nil && (d.StreamingData != nil || d.VideoDetails != nil)
}

// CaptionTracks returns the caption-track list, or nil when absent.
func (d *Document) CaptionTracks() []RawCaptionTrack {
	if d == nil || d.Captions == nil || d.Captions.Renderer == nil {
		return nil
	}
	return d.Captions.Renderer.CaptionTracks
}

// PlayabilityReason returns the provider's stated reason a video is not
// playable, or an empty string.
func (d *Document) PlayabilityReason() string {
	if d == nil || d.PlayabilityStatus == nil {
		return ""
	}
	if d.PlayabilityStatus.Reason != "" {
		return d.PlayabilityStatus.Reason
	}
	if d.PlayabilityStatus.Status != "" && d.PlayabilityStatus.Status != "OK" {
		return d.PlayabilityStatus.Status
	}
	return ""
}

// VideoID returns videoDetails.videoId when present.
func (d *Document) VideoID() string {
	if d == nil || d.VideoDetails == nil {
		return ""
	}
	return d.VideoDetails.VideoID
}
