package playerdata_test

import (
	"encoding/json"
	"errors"
	"testing"

	"vidresolve/internal/playerdata"
)

func TestParseReadsStringEncodedNumbers(t *testing.T) {
	doc, err := playerdata.Parse([]byte(`{
		"videoDetails": {"videoId": "abc", "title": "T", "lengthSeconds": "212", "viewCount": "1000"},
		"streamingData": {"formats": [{"itag": 18, "url": "https://x", "mimeType": "video/mp4", "bitrate": 500000, "height": 360, "contentLength": "12345"}]}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.HasStreamingData() || !doc.HasPlayerFields() {
		t.Fatal("expected streaming data and player fields")
	}
	if got := doc.VideoDetails.LengthSeconds; !got.Valid || got.Value != 212 {
		t.Fatalf("lengthSeconds = %+v", got)
	}
	f := doc.StreamingData.Formats[0]
	if f.ContentLength.Value != 12345 || f.Itag.Value != 18 || f.Height.Value != 360 {
		t.Fatalf("unexpected descriptor %+v", f)
	}
	if f.Width.Valid {
		t.Fatal("absent width should not be valid")
	}
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := playerdata.Parse([]byte("  ")); !errors.Is(err, playerdata.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := playerdata.Parse([]byte("null")); !errors.Is(err, playerdata.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument for null, got %v", err)
	}
	if _, err := playerdata.Parse([]byte("{broken")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHasStreamingDataRequiresDescriptors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"absent", `{"videoDetails": {}}`, false},
		{"empty object", `{"streamingData": {}}`, false},
		{"empty lists", `{"streamingData": {"formats": [], "adaptiveFormats": []}}`, false},
		{"adaptive only", `{"streamingData": {"adaptiveFormats": [{"itag": 140}]}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := playerdata.Parse([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := doc.HasStreamingData(); got != tt.want {
				t.Fatalf("HasStreamingData = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexIntToleratesGarbage(t *testing.T) {
	var holder struct {
		N playerdata.FlexInt `json:"n"`
	}
	for _, raw := range []string{`{"n": "abc"}`, `{"n": null}`, `{}`, `{"n": true}`} {
		if err := json.Unmarshal([]byte(raw), &holder); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if holder.N.Valid {
			t.Fatalf("expected invalid FlexInt for %s", raw)
		}
	}
	if err := json.Unmarshal([]byte(`{"n": 2.9}`), &holder); err != nil || holder.N.Value != 2 {
		t.Fatalf("expected float truncation, got %+v err=%v", holder.N, err)
	}
}

func TestTextNodeFallsBackToRuns(t *testing.T) {
	node := &playerdata.TextNode{Runs: []playerdata.TextRun{{Text: "English (auto-generated)"}}}
	if node.String() != "English (auto-generated)" {
		t.Fatalf("unexpected text %q", node.String())
	}
	var nilNode *playerdata.TextNode
	if nilNode.String() != "" {
		t.Fatal("nil node should render empty")
	}
}

func TestPlayabilityReason(t *testing.T) {
	doc, _ := playerdata.Parse([]byte(`{"playabilityStatus": {"status": "LOGIN_REQUIRED"}}`))
	if doc.PlayabilityReason() != "LOGIN_REQUIRED" {
		t.Fatalf("unexpected reason %q", doc.PlayabilityReason())
	}
	doc, _ = playerdata.Parse([]byte(`{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`))
	if doc.PlayabilityReason() != "Video unavailable" {
		t.Fatalf("unexpected reason %q", doc.PlayabilityReason())
	}
}
