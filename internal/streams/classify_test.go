package streams_test

import (
	"reflect"
	"testing"

	"vidresolve/internal/media"
	"vidresolve/internal/playerdata"
	"vidresolve/internal/streams"
)

func desc(itag int64, mime string, height, bitrate int64, url string) playerdata.Descriptor {
	d := playerdata.Descriptor{
		Itag:     playerdata.Int(itag),
		MimeType: mime,
		Bitrate:  playerdata.Int(bitrate),
		URL:      url,
	}
	if height > 0 {
		d.Height = playerdata.Int(height)
	}
	return d
}

func TestClassifyEndToEndScenario(t *testing.T) {
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		Formats: []playerdata.Descriptor{
			desc(22, `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, 720, 1500000, "https://x/22"),
		},
		AdaptiveFormats: []playerdata.Descriptor{
			desc(248, `video/webm; codecs="vp9"`, 1080, 2500000, "https://x/248"),
			desc(140, `audio/mp4; codecs="mp4a.40.2"`, 0, 128000, "https://x/140"),
		},
	}}

	got := streams.Classify(doc)
	if len(got) != 3 {
		t.Fatalf("expected 3 formats, got %d", len(got))
	}
	if got[0].ID != "248" || got[0].Kind != media.KindVideo || got[0].HasEmbeddedAudio || got[0].Container != media.ContainerWebM {
		t.Fatalf("unexpected first format %+v", got[0])
	}
	if got[1].ID != "22" || !got[1].HasEmbeddedAudio || got[1].Container != media.ContainerMP4 || got[1].QualityLabel != "720p" {
		t.Fatalf("unexpected second format %+v", got[1])
	}
	if got[2].ID != "140" || got[2].Kind != media.KindAudio || got[2].QualityLabel != "128kbps" {
		t.Fatalf("unexpected audio format %+v", got[2])
	}
	if got[1].Codec != "avc1.64001F, mp4a.40.2" || got[1].CodecFamily() != "avc1" {
		t.Fatalf("unexpected codec %q", got[1].Codec)
	}
}

func TestClassifyDropsDescriptorsWithoutURL(t *testing.T) {
	ciphered := desc(137, `video/mp4; codecs="avc1"`, 1080, 4000000, "")
	ciphered.SignatureCipher = "s=abc&url=https%3A%2F%2Fx"
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		AdaptiveFormats: []playerdata.Descriptor{
			ciphered,
			desc(136, `video/mp4; codecs="avc1"`, 720, 2000000, "https://x/136"),
		},
	}}
	got := streams.Classify(doc)
	if len(got) != 1 || got[0].ID != "136" {
		t.Fatalf("expected only the URL-bearing descriptor, got %+v", got)
	}
}

func TestClassifyDiscardsUnknownKinds(t *testing.T) {
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		Formats: []playerdata.Descriptor{
			desc(1, "text/vtt", 0, 0, "https://x/1"),
			desc(2, "", 0, 0, "https://x/2"),
		},
	}}
	if got := streams.Classify(doc); len(got) != 0 {
		t.Fatalf("expected no formats, got %+v", got)
	}
}

func TestClassifyCountsSharedDescriptorAsCombinedOnce(t *testing.T) {
	shared := desc(18, `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, 360, 500000, "https://x/18")
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		Formats:         []playerdata.Descriptor{shared},
		AdaptiveFormats: []playerdata.Descriptor{shared},
	}}
	got := streams.Classify(doc)
	if len(got) != 1 {
		t.Fatalf("expected a single entry, got %d", len(got))
	}
	if !got[0].HasEmbeddedAudio {
		t.Fatal("descriptor sourced from the combined list must be marked as combined")
	}
}

func TestClassifyOrdering(t *testing.T) {
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		AdaptiveFormats: []playerdata.Descriptor{
			desc(140, `audio/mp4; codecs="mp4a.40.2"`, 0, 128000, "https://x/140"),
			desc(133, `video/mp4; codecs="avc1"`, 240, 250000, "https://x/133"),
			desc(251, `audio/webm; codecs="opus"`, 0, 160000, "https://x/251"),
			desc(137, `video/mp4; codecs="avc1"`, 1080, 4000000, "https://x/137"),
			desc(248, `video/webm; codecs="vp9"`, 1080, 2500000, "https://x/248"),
			desc(139, `audio/mp4; codecs="mp4a.40.5"`, 0, 48000, "https://x/139"),
		},
	}}
	got := streams.Classify(doc)
	var ids []string
	for _, f := range got {
		ids = append(ids, f.ID)
	}
	want := []string{"137", "248", "133", "251", "140", "139"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Kind == media.KindAudio && cur.Kind == media.KindVideo {
			t.Fatal("video must precede audio")
		}
		if prev.Kind == cur.Kind && cur.Kind == media.KindVideo {
			if cur.Height > prev.Height || (cur.Height == prev.Height && cur.BitrateBps > prev.BitrateBps) {
				t.Fatalf("video order violated at %d", i)
			}
		}
		if prev.Kind == cur.Kind && cur.Kind == media.KindAudio && cur.BitrateBps > prev.BitrateBps {
			t.Fatalf("audio order violated at %d", i)
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{
		Formats: []playerdata.Descriptor{desc(22, `video/mp4; codecs="avc1"`, 720, 1, "https://x/22")},
		AdaptiveFormats: []playerdata.Descriptor{
			desc(140, `audio/mp4; codecs="mp4a.40.2"`, 0, 128000, "https://x/140"),
			desc(248, `video/webm; codecs="vp9"`, 1080, 2, "https://x/248"),
		},
	}}
	doc.StreamingData.AdaptiveFormats[0].ContentLength = playerdata.Int(4096)
	first := streams.Classify(doc)
	second := streams.Classify(doc)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification is not idempotent:\n%+v\n%+v", first, second)
	}
	if doc.StreamingData.AdaptiveFormats[0].Itag.Value != 140 {
		t.Fatal("input order was mutated")
	}
}

func TestClassifyContentLength(t *testing.T) {
	withSize := desc(140, `audio/mp4; codecs="mp4a.40.2"`, 0, 128000, "https://x/140")
	withSize.ContentLength = playerdata.Int(3456789)
	noSize := desc(251, `audio/webm; codecs="opus"`, 0, 100000, "https://x/251")
	doc := &playerdata.Document{StreamingData: &playerdata.StreamingData{AdaptiveFormats: []playerdata.Descriptor{withSize, noSize}}}

	got := streams.Classify(doc)
	if got[0].SizeBytes == nil || *got[0].SizeBytes != 3456789 {
		t.Fatalf("expected parsed size, got %v", got[0].SizeBytes)
	}
	if got[1].SizeBytes != nil {
		t.Fatalf("expected unknown size, got %v", *got[1].SizeBytes)
	}
}

func TestClassifyHandlesMissingStreamingData(t *testing.T) {
	if got := streams.Classify(&playerdata.Document{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if got := streams.Classify(nil); got == nil || len(got) != 0 {
		t.Fatal("expected empty non-nil result for nil document")
	}
}
