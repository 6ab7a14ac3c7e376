package media_test

import (
	"errors"
	"testing"

	"vidresolve/internal/media"
)

func int64p(v int64) *int64 { return &v }

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=43s", "dQw4w9WgXcQ"},
		{"youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		got, err := media.ParseVideoID(tt.input)
		if err != nil {
			t.Fatalf("ParseVideoID(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseVideoID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseVideoIDRejectsOtherInput(t *testing.T) {
	for _, input := range []string{"", "short", "https://example.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/feed/trending"} {
		if _, err := media.ParseVideoID(input); !errors.Is(err, media.ErrInvalidVideoID) {
			t.Fatalf("ParseVideoID(%q) expected ErrInvalidVideoID, got %v", input, err)
		}
	}
}

func TestCodecFamily(t *testing.T) {
	cases := map[string]string{
		"avc1.640028":           "avc1",
		"vp9":                   "vp9",
		"avc1.42001E, mp4a.40.2": "avc1",
		"":                      "",
	}
	for codec, want := range cases {
		if got := (media.MediaFormat{Codec: codec}).CodecFamily(); got != want {
			t.Fatalf("CodecFamily(%q) = %q, want %q", codec, got, want)
		}
	}
}

func TestQualityBadge(t *testing.T) {
	cases := map[int]string{4320: "8K", 2160: "4K", 1080: "HD", 720: "HD", 480: ""}
	for height, want := range cases {
		if got := media.QualityBadge(height); got != want {
			t.Fatalf("QualityBadge(%d) = %q, want %q", height, got, want)
		}
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size *int64
		want string
	}{
		{nil, "unknown"},
		{int64p(512), "512 B"},
		{int64p(2048), "2.0 KB"},
		{int64p(5 * 1024 * 1024), "5.0 MB"},
		{int64p(3 * 1024 * 1024 * 1024), "3.00 GB"},
	}
	for _, tt := range tests {
		if got := media.HumanSize(tt.size); got != tt.want {
			t.Fatalf("HumanSize = %q, want %q", got, tt.want)
		}
	}
}

func TestDownloadName(t *testing.T) {
	video := media.MediaFormat{Kind: media.KindVideo, QualityLabel: "1080p"}
	if got := media.DownloadName("A/B: C", video); got != "A_B_ C_1080p.mp4" {
		t.Fatalf("unexpected video name %q", got)
	}
	audio := media.MediaFormat{Kind: media.KindAudio, QualityLabel: "128kbps"}
	if got := media.DownloadName("Song", audio); got != "Song_128kbps.m4a" {
		t.Fatalf("unexpected audio name %q", got)
	}
}

func TestDurationLabel(t *testing.T) {
	if got := media.DurationLabel(3725); got != "1:02:05" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := media.DurationLabel(65); got != "1:05" {
		t.Fatalf("unexpected label %q", got)
	}
}

func sampleVideo() *media.ResolvedVideo {
	return &media.ResolvedVideo{
		VideoID: "abcdefghijk",
		Formats: []media.MediaFormat{
			{ID: "137", Kind: media.KindVideo, Height: 1080, Container: media.ContainerMP4},
			{ID: "248", Kind: media.KindVideo, Height: 1080, Container: media.ContainerWebM},
			{ID: "22", Kind: media.KindVideo, Height: 720, HasEmbeddedAudio: true, Container: media.ContainerMP4},
			{ID: "251", Kind: media.KindAudio, BitrateBps: 160000, Container: media.ContainerWebM},
			{ID: "140", Kind: media.KindAudio, BitrateBps: 128000, Container: media.ContainerMP4},
		},
		Captions: []media.CaptionTrack{
			{LanguageCode: "en", DisplayName: "English (auto-generated)", IsAutoGenerated: true},
			{LanguageCode: "en", DisplayName: "English"},
			{LanguageCode: "de", DisplayName: "German"},
		},
	}
}

func TestSelection(t *testing.T) {
	v := sampleVideo()
	if f, ok := v.BestVideo(media.Preference{}); !ok || f.ID != "137" {
		t.Fatalf("BestVideo = %+v, %v", f, ok)
	}
	if f, ok := v.BestVideo(media.Preference{RequireAudio: true}); !ok || f.ID != "22" {
		t.Fatalf("BestVideo(require audio) = %+v, %v", f, ok)
	}
	if f, ok := v.BestVideo(media.Preference{Container: media.ContainerWebM}); !ok || f.ID != "248" {
		t.Fatalf("BestVideo(webm) = %+v, %v", f, ok)
	}
	if _, ok := v.BestVideo(media.Preference{MaxHeight: 360}); ok {
		t.Fatal("expected no video under 360p")
	}
	if f, ok := v.BestAudio(media.ContainerMP4); !ok || f.ID != "140" {
		t.Fatalf("BestAudio(mp4) = %+v, %v", f, ok)
	}
	if f, ok := v.BestAudio(""); !ok || f.ID != "251" {
		t.Fatalf("BestAudio = %+v, %v", f, ok)
	}
	if got := len(v.CombinedFormats()); got != 1 {
		t.Fatalf("expected one combined format, got %d", got)
	}
}

func TestCaptionByLanguagePrefersManualTrack(t *testing.T) {
	v := sampleVideo()
	track, ok := v.CaptionByLanguage("en")
	if !ok || track.IsAutoGenerated {
		t.Fatalf("expected manual English track, got %+v", track)
	}
	if _, ok := v.CaptionByLanguage("ja"); ok {
		t.Fatal("expected no Japanese track")
	}
}
