package watchpage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidresolve/internal/extraction"
	"vidresolve/internal/watchpage"
)

const page = `<!DOCTYPE html><html><head>
<script src="/s/player/base.js"></script>
<script>var ytcfg = {"a":1};</script>
</head><body>
<script nonce="x">var ytInitialPlayerResponse = {"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"x < y"},"streamingData":{"formats":[{"itag":18,"url":"https://x/18","mimeType":"video/mp4"}]}};</script>
<script>   </script>
</body></html>`

func TestScriptsSkipsExternalAndEmpty(t *testing.T) {
	scripts, err := watchpage.Scripts(page)
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 2 {
		t.Fatalf("got %d scripts: %q", len(scripts), scripts)
	}
	if !strings.HasPrefix(scripts[1], "var ytInitialPlayerResponse") {
		t.Fatalf("unexpected second script: %q", scripts[1])
	}
}

func TestFetchedPageFeedsScriptStrategy(t *testing.T) {
	var gotUA, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotID = r.URL.Query().Get("v")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := watchpage.New(watchpage.Config{HTTPClient: srv.Client(), BaseURL: srv.URL, UserAgent: "test-agent"})
	p, err := f.Page(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}
	if gotUA != "test-agent" || gotID != "dQw4w9WgXcQ" {
		t.Fatalf("request ua=%q v=%q", gotUA, gotID)
	}
	doc, err := extraction.NewScriptStrategy(nil, 0).Extract(context.Background(), "dQw4w9WgXcQ", p)
	if err != nil {
		t.Fatalf("script strategy: %v", err)
	}
	if doc.VideoDetails.Title != "x < y" || !doc.HasStreamingData() {
		t.Fatalf("unexpected document: %+v", doc.VideoDetails)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	f := watchpage.New(watchpage.Config{HTTPClient: srv.Client(), BaseURL: srv.URL})
	if _, err := f.Fetch(context.Background(), "dQw4w9WgXcQ"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPageFromHTMLWithoutScripts(t *testing.T) {
	p, err := watchpage.PageFromHTML("<html><body>nothing</body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if p.Scripts != nil {
		t.Fatal("no scripts should mean no script capability")
	}
}
