// Package reconcile keeps an info sidecar on disk for every video resolved
// during the process lifetime, recreating sidecars that disappear.
//
// The loop reacts to filesystem events in the output directory and also
// re-checks on a fixed interval. While the directory does not exist the loop
// waits; it never creates the directory itself.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"vidresolve/internal/fileutil"
	"vidresolve/internal/logging"
	"vidresolve/internal/media"
	"vidresolve/internal/metrics"
)

// SidecarSuffix ends every sidecar file name.
const SidecarSuffix = ".info.json"

const defaultInterval = time.Second

// Source lists the videos whose sidecars should exist.
type Source interface {
	Resolved() []*media.ResolvedVideo
}

// Config configures a Loop.
type Config struct {
	Dir      string
	Interval time.Duration
	Logger   *slog.Logger
}

// Loop re-asserts sidecars.
type Loop struct {
	source   Source
	dir      string
	interval time.Duration
	logger   *slog.Logger
}

// New builds a loop over source writing into cfg.Dir.
func New(source Source, cfg Config) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Loop{
		source:   source,
		dir:      cfg.Dir,
		interval: interval,
		logger:   logging.NewComponentLogger(cfg.Logger, "reconcile"),
	}
}

// SidecarName returns the file name used for videoID.
func SidecarName(videoID string) string {
	return videoID + SidecarSuffix
}

// Run reconciles until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if strings.TrimSpace(l.dir) == "" {
		return errors.New("reconcile: output directory is not configured")
	}
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var (
		watcher  *fsnotify.Watcher
		events   <-chan fsnotify.Event
		errs     <-chan error
		deferred bool
	)
	closeWatcher := func() {
		if watcher != nil {
			_ = watcher.Close()
			watcher, events, errs = nil, nil, nil
		}
	}
	defer closeWatcher()

	pass := func() {
		if !dirExists(l.dir) {
			if !deferred {
				l.logger.Info("output directory missing; waiting", logging.String("dir", l.dir))
				deferred = true
			}
			closeWatcher()
			return
		}
		if deferred {
			l.logger.Info("output directory available", logging.String("dir", l.dir))
			deferred = false
		}
		if watcher == nil {
			w, err := l.watch()
			if err != nil {
				logging.WarnWithContext(l.logger, "filesystem watch unavailable", "reconcile_watch_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "sidecars are re-checked on the interval only"),
				)
			} else {
				watcher, events, errs = w, w.Events, w.Errors
			}
		}
		if _, err := l.ReconcileOnce(); err != nil {
			logging.WarnWithContext(l.logger, "reconcile pass failed", "reconcile_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
			)
		}
	}

	pass()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pass()
		case ev, ok := <-events:
			if !ok {
				closeWatcher()
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				l.logger.Debug("structural change", logging.String("path", ev.Name), logging.String("op", ev.Op.String()))
				pass()
			}
		case err, ok := <-errs:
			if !ok {
				closeWatcher()
				continue
			}
			l.logger.Debug("watcher error", logging.Error(err))
		}
	}
}

func (l *Loop) watch() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(l.dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", l.dir, err)
	}
	return w, nil
}

// ReconcileOnce writes every missing or outdated sidecar and returns how
// many were written. A missing directory is not an error and writes nothing.
func (l *Loop) ReconcileOnce() (int, error) {
	if !dirExists(l.dir) {
		return 0, nil
	}
	var (
		written int
		errs    []error
	)
	for _, video := range l.source.Resolved() {
		if video == nil || !media.ValidVideoID(video.VideoID) {
			continue
		}
		changed, err := l.ensure(video)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed {
			written++
			metrics.SidecarsWrittenTotal.Inc()
			l.logger.Info("sidecar written", logging.String(logging.FieldVideoID, video.VideoID))
		}
	}
	return written, errors.Join(errs...)
}

func (l *Loop) ensure(video *media.ResolvedVideo) (bool, error) {
	data, err := json.MarshalIndent(video, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", video.VideoID, err)
	}
	data = append(data, '\n')
	path := filepath.Join(l.dir, SidecarName(video.VideoID))

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
