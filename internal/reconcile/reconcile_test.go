package reconcile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidresolve/internal/media"
	"vidresolve/internal/reconcile"
)

type staticSource struct {
	mu     sync.Mutex
	videos []*media.ResolvedVideo
}

func (s *staticSource) Resolved() []*media.ResolvedVideo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*media.ResolvedVideo(nil), s.videos...)
}

func TestReconcileOnceWritesAndSkips(t *testing.T) {
	dir := t.TempDir()
	src := &staticSource{videos: []*media.ResolvedVideo{
		{VideoID: "dQw4w9WgXcQ", Title: "One"},
		{VideoID: "bad"},
	}}
	loop := reconcile.New(src, reconcile.Config{Dir: dir})

	n, err := loop.ReconcileOnce()
	if err != nil || n != 1 {
		t.Fatalf("first pass = %d, %v", n, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dQw4w9WgXcQ.info.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got media.ResolvedVideo
	if err := json.Unmarshal(data, &got); err != nil || got.Title != "One" {
		t.Fatalf("sidecar = %s (%v)", data, err)
	}

	if n, _ := loop.ReconcileOnce(); n != 0 {
		t.Fatalf("unchanged sidecar rewritten, n=%d", n)
	}
}

func TestReconcileOnceDefersWhileDirMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	loop := reconcile.New(&staticSource{videos: []*media.ResolvedVideo{{VideoID: "dQw4w9WgXcQ"}}}, reconcile.Config{Dir: dir})
	n, err := loop.ReconcileOnce()
	if err != nil || n != 0 {
		t.Fatalf("missing dir pass = %d, %v", n, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("reconcile must not create the output directory")
	}
}

func TestRunRecreatesRemovedSidecar(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")
	src := &staticSource{videos: []*media.ResolvedVideo{{VideoID: "dQw4w9WgXcQ", Title: "One"}}}
	loop := reconcile.New(src, reconcile.Config{Dir: dir, Interval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	sidecar := filepath.Join(dir, reconcile.SidecarName("dQw4w9WgXcQ"))
	time.Sleep(50 * time.Millisecond)
	if _, err := os.Stat(sidecar); !os.IsNotExist(err) {
		t.Fatal("nothing should be written before the directory exists")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, err := os.Stat(sidecar); return err == nil })

	if err := os.Remove(sidecar); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, err := os.Stat(sidecar); return err == nil })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
