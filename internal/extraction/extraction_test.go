package extraction_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vidresolve/internal/extraction"
	"vidresolve/internal/innertube"
	"vidresolve/internal/services"
)

const validDoc = `{"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"Demo"},` +
	`"streamingData":{"formats":[{"itag":18,"url":"https://x/18","mimeType":"video/mp4; codecs=\"avc1\"","height":360}]}}`

const noStreamsDoc = `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in"},"videoDetails":{"videoId":"dQw4w9WgXcQ"}}`

type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	respond func(profile innertube.ClientProfile) ([]byte, error)
}

func (f *fakeClient) Player(ctx context.Context, _ string, profile innertube.ClientProfile) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, profile.Name)
	f.mu.Unlock()
	return f.respond(profile)
}

func defaultStrategies(client extraction.PlayerClient) []extraction.Strategy {
	return []extraction.Strategy{
		extraction.GlobalStrategy{},
		extraction.ElementStrategy{},
		extraction.NewScriptStrategy(nil, 0),
		&extraction.RemoteStrategy{Client: client, Timeout: time.Second},
	}
}

func TestFallbackReachesRemoteStrategy(t *testing.T) {
	client := &fakeClient{respond: func(innertube.ClientProfile) ([]byte, error) {
		return []byte(validDoc), nil
	}}
	var observed []extraction.Attempt
	ex := extraction.New(nil, extraction.ObserverFunc(func(a extraction.Attempt) {
		observed = append(observed, a)
	}), defaultStrategies(client)...)

	page := extraction.Page{
		Element: func(context.Context) ([]byte, error) { return nil, errors.New("player element threw") },
		Scripts: extraction.StaticScripts([]string{"var analytics = {};", "console.log('hi')"}),
	}

	res, err := ex.Extract(context.Background(), "dQw4w9WgXcQ", page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Strategy != extraction.NameRemote {
		t.Fatalf("strategy = %q, want remote", res.Strategy)
	}
	if res.Document.VideoID() != "dQw4w9WgXcQ" || !res.Document.HasStreamingData() {
		t.Fatalf("unexpected document: %+v", res.Document)
	}
	want := []extraction.Outcome{
		extraction.OutcomeUnavailable,
		extraction.OutcomeInvalid,
		extraction.OutcomeInvalid,
		extraction.OutcomeOK,
	}
	if len(observed) != len(want) {
		t.Fatalf("observed %d attempts, want %d", len(observed), len(want))
	}
	for i, a := range observed {
		if a.Outcome != want[i] {
			t.Errorf("attempt %d (%s) outcome = %s, want %s", i, a.Strategy, a.Outcome, want[i])
		}
	}
	if !errors.Is(observed[2].Err, extraction.ErrNoMarker) {
		t.Errorf("script attempt should report missing marker, got %v", observed[2].Err)
	}
	if len(client.calls) != 1 || client.calls[0] != innertube.ProfileWeb.Name {
		t.Errorf("remote calls = %v, want only WEB", client.calls)
	}
}

func TestGlobalStrategyWinsFirst(t *testing.T) {
	client := &fakeClient{respond: func(innertube.ClientProfile) ([]byte, error) {
		t.Fatal("remote strategy must not run")
		return nil, nil
	}}
	ex := extraction.New(nil, nil, defaultStrategies(client)...)
	res, err := ex.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{
		Global: extraction.StaticGlobal([]byte(validDoc)),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Strategy != extraction.NameGlobal || len(res.Attempts) != 1 {
		t.Fatalf("got strategy %q after %d attempts", res.Strategy, len(res.Attempts))
	}
}

func TestGlobalWithoutStreamingDataFallsThrough(t *testing.T) {
	ex := extraction.New(nil, nil,
		extraction.GlobalStrategy{},
		extraction.ElementStrategy{},
	)
	_, err := ex.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{
		Global:  extraction.StaticGlobal([]byte(noStreamsDoc)),
		Element: extraction.StaticElement([]byte(`{"streamingData":{}}`)),
	})
	if !errors.Is(err, services.ErrExtractionExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
	var exhausted *extraction.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if exhausted.Attempts[0].Outcome != extraction.OutcomeInvalid {
		t.Fatalf("global outcome = %s", exhausted.Attempts[0].Outcome)
	}
	if !strings.Contains(exhausted.Attempts[0].ErrorText(), "Sign in") {
		t.Fatalf("playability reason missing: %s", exhausted.Attempts[0].ErrorText())
	}
}

func TestAllStrategiesFailIsExhausted(t *testing.T) {
	client := &fakeClient{respond: func(innertube.ClientProfile) ([]byte, error) {
		return nil, &innertube.StatusError{Code: 503}
	}}
	ex := extraction.New(nil, nil, defaultStrategies(client)...)

	_, err := ex.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{})
	if !errors.Is(err, services.ErrExtractionExhausted) {
		t.Fatalf("expected ErrExtractionExhausted, got %v", err)
	}
	if !errors.Is(err, services.ErrStrategyTransport) {
		t.Fatalf("last error should be the remote transport failure: %v", err)
	}
	if got := strings.Join(client.calls, ","); got != "WEB,ANDROID" {
		t.Fatalf("profiles tried = %s, want WEB,ANDROID", got)
	}
}

func TestStrategyPanicIsRecovered(t *testing.T) {
	ex := extraction.New(nil, nil,
		extraction.ElementStrategy{},
		extraction.GlobalStrategy{},
	)
	res, err := ex.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{
		Element: func(context.Context) ([]byte, error) { panic("boom") },
		Global:  extraction.StaticGlobal([]byte(validDoc)),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Attempts[0].Outcome != extraction.OutcomeInvalid {
		t.Fatalf("panicking strategy outcome = %s", res.Attempts[0].Outcome)
	}
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := extraction.New(nil, nil, extraction.GlobalStrategy{})
	_, err := ex.Extract(ctx, "dQw4w9WgXcQ", extraction.Page{Global: extraction.StaticGlobal([]byte(validDoc))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScriptStrategyBraceScan(t *testing.T) {
	// The non-greedy fast path stops at the inner "};" and the brace scan
	// recovers the full object.
	script := `var ytInitialPlayerResponse = {"videoDetails":{"videoId":"abc","title":"a};b"},` +
		`"streamingData":{"formats":[]}};var meta = {};`
	s := extraction.NewScriptStrategy(nil, 0)
	doc, err := s.Extract(context.Background(), "abc", extraction.Page{
		Scripts: extraction.StaticScripts([]string{"noise", script}),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.VideoID() != "abc" || doc.VideoDetails.Title != "a};b" {
		t.Fatalf("unexpected doc: %+v", doc.VideoDetails)
	}
}

func TestScriptStrategyAcceptsVideoDetailsOnly(t *testing.T) {
	script := `window["raw_player_response"] = {"videoDetails":{"videoId":"xyz"}};`
	doc, err := extraction.NewScriptStrategy(nil, 0).Extract(context.Background(), "xyz", extraction.Page{
		Scripts: extraction.StaticScripts([]string{script}),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.HasStreamingData() || doc.VideoID() != "xyz" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestScriptStrategyRejectsUnrelatedObject(t *testing.T) {
	script := `var ytInitialPlayerResponse = {"responseContext":{}};`
	_, err := extraction.NewScriptStrategy(nil, 0).Extract(context.Background(), "x", extraction.Page{
		Scripts: extraction.StaticScripts([]string{script}),
	})
	if !errors.Is(err, services.ErrStrategyInvalidResult) {
		t.Fatalf("expected invalid result, got %v", err)
	}
	if errors.Is(err, extraction.ErrNoMarker) {
		t.Fatal("marker was present; error should not claim otherwise")
	}
}

func TestScriptStrategyZeroValueUsesDefaults(t *testing.T) {
	var s extraction.ScriptStrategy
	doc, err := s.Extract(context.Background(), "abc", extraction.Page{
		Scripts: extraction.StaticScripts([]string{"var ytInitialPlayerResponse = " + validDoc + ";"}),
	})
	if err != nil || !doc.HasStreamingData() {
		t.Fatalf("zero-value strategy failed: %v", err)
	}
}

func TestMatchObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   string
		ok     bool
	}{
		{"simple", ` = {"a":1};`, 0, `{"a":1}`, true},
		{"nested", `x{"a":{"b":{}}} tail}`, 0, `{"a":{"b":{}}}`, true},
		{"braces in strings", `{"a":"}{","b":"\"}"}`, 0, `{"a":"}{","b":"\"}"}`, true},
		{"no brace", `nothing here`, 0, "", false},
		{"unterminated", `{"a":{"b":1}`, 0, "", false},
		{"budget exceeded", `{"a":"` + strings.Repeat("x", 100) + `"}`, 50, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extraction.MatchObject(tt.text, tt.budget)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("MatchObject = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRemoteStrategyFallsBackToSecondProfile(t *testing.T) {
	client := &fakeClient{respond: func(p innertube.ClientProfile) ([]byte, error) {
		if p.Name == innertube.ProfileWeb.Name {
			return []byte(noStreamsDoc), nil
		}
		return []byte(validDoc), nil
	}}
	r := &extraction.RemoteStrategy{Client: client}
	doc, err := r.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !doc.HasStreamingData() {
		t.Fatal("expected streaming data from ANDROID profile")
	}
	if got := strings.Join(client.calls, ","); got != "WEB,ANDROID" {
		t.Fatalf("calls = %s", got)
	}
}

func TestRemoteStrategyTimeoutIsTransport(t *testing.T) {
	client := &fakeClient{respond: func(innertube.ClientProfile) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}}
	r := &extraction.RemoteStrategy{
		Client:   client,
		Profiles: []innertube.ClientProfile{innertube.ProfileWeb},
		Timeout:  10 * time.Millisecond,
	}
	_, err := r.Extract(context.Background(), "dQw4w9WgXcQ", extraction.Page{})
	if !errors.Is(err, services.ErrStrategyTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout message, got %v", err)
	}
}

func TestRemoteStrategyWithoutClientIsUnavailable(t *testing.T) {
	_, err := (&extraction.RemoteStrategy{}).Extract(context.Background(), "x", extraction.Page{})
	if !errors.Is(err, services.ErrStrategyUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestDocumentFromGlobalParses(t *testing.T) {
	doc, err := extraction.GlobalStrategy{}.Extract(context.Background(), "x", extraction.Page{
		Global: extraction.StaticGlobal([]byte(validDoc)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.StreamingData.Formats) != 1 {
		t.Fatalf("formats = %d", len(doc.StreamingData.Formats))
	}
}
