package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vidresolve/internal/config"
	"vidresolve/internal/resolvecache"
	"vidresolve/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f).Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectoryMissingIsAdvisory(t *testing.T) {
	result := CheckOutputDirectory(filepath.Join(t.TempDir(), "later"))
	if result.Passed || !result.Advisory {
		t.Fatalf("expected advisory failure, got %+v", result)
	}
	if result.Failed() {
		t.Fatal("advisory result must not fail the run")
	}
}

type pinger struct {
	resolvecache.Nop
	err error
}

func (p pinger) Ping(context.Context) error { return p.err }

func TestCheckCache(t *testing.T) {
	cases := []struct {
		name    string
		backend string
		cache   resolvecache.Cache
		pass    bool
	}{
		{"memory", config.CacheBackendMemory, resolvecache.NewMemory(1), true},
		{"off", config.CacheBackendOff, resolvecache.Nop{}, true},
		{"redis up", config.CacheBackendRedis, pinger{}, true},
		{"redis down", config.CacheBackendRedis, pinger{err: errors.New("connection refused")}, false},
		{"redis missing", config.CacheBackendRedis, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CheckCache(context.Background(), tc.backend, tc.cache); got.Passed != tc.pass {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tc.pass, got.Detail)
			}
		})
	}
}

func TestCheckEndpoint(t *testing.T) {
	status := http.StatusMethodNotAllowed
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	if r := CheckEndpoint(context.Background(), "player", srv.URL, nil); !r.Passed {
		t.Fatalf("expected 405 to count as reachable, got %s", r.Detail)
	}
	status = http.StatusBadGateway
	if r := CheckEndpoint(context.Background(), "player", srv.URL, nil); r.Passed {
		t.Fatal("expected 502 to fail")
	}
	if r := CheckEndpoint(context.Background(), "player", "", nil); r.Passed {
		t.Fatal("expected missing url to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsEndpointWithoutRemote(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrategies(config.StrategyGlobal))
	mustMkdir(t, cfg.Paths.StateDir)
	mustMkdir(t, cfg.Paths.OutputDir)

	results := RunAll(context.Background(), cfg, Options{Cache: resolvecache.NewMemory(1)})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if AnyFailed(results) {
		t.Fatalf("unexpected failure: %+v", results)
	}
}

func TestRunAll_IncludesEndpointWhenRemoteEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithStrategies(config.StrategyGlobal, config.StrategyRemote),
		testsupport.WithInnertubeEndpoint(srv.URL),
	)
	mustMkdir(t, cfg.Paths.StateDir)

	results := RunAll(context.Background(), cfg, Options{Cache: resolvecache.NewMemory(1)})
	found := false
	for _, r := range results {
		if r.Name == "Player endpoint" {
			found = true
			if !r.Passed {
				t.Errorf("endpoint check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected endpoint check in results")
	}
	if AnyFailed(results) {
		t.Fatalf("missing output dir should be advisory: %+v", results)
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
}
