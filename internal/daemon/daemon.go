package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"vidresolve/internal/config"
	"vidresolve/internal/logging"
	"vidresolve/internal/resolver"
	"vidresolve/internal/subtitles"
)

// Background is a loop the daemon runs alongside the API, such as the
// reconcile loop. Run returns when ctx is done.
type Background interface {
	Run(ctx context.Context) error
}

// Deps are the collaborators a Daemon serves.
type Deps struct {
	Server    config.Server
	Pipeline  *resolver.Pipeline
	Subtitles *subtitles.Fetcher
	// Pages builds a capability set when a request carries none. Optional.
	Pages    resolver.PageSource
	Hub      *EventHub
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	// Background loops are started with the daemon and stopped with it.
	Background []Background
}

// Daemon owns the API server and the single-instance lock.
type Daemon struct {
	deps     Deps
	logger   *slog.Logger
	sessions *resolver.Sessions
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status is the daemon's runtime summary.
type Status struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	Address      string `json:"address,omitempty"`
	LockFilePath string `json:"lockFile"`
	Subscribers  int    `json:"subscribers"`
	Sessions     int    `json:"sessions"`
}

// New validates deps and builds a stopped daemon.
func New(deps Deps) (*Daemon, error) {
	if deps.Pipeline == nil || deps.Subtitles == nil {
		return nil, errors.New("daemon requires a resolver pipeline and a subtitle fetcher")
	}
	if deps.Hub == nil {
		deps.Hub = NewEventHub(deps.Logger)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	lockPath := deps.Server.LockPath
	if lockPath == "" {
		lockPath = filepath.Join(os.TempDir(), "vidresolve.lock")
	}
	d := &Daemon{
		deps:     deps,
		logger:   logging.NewComponentLogger(deps.Logger, "daemon"),
		sessions: resolver.NewSessions(deps.Pipeline),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(d)
	return d, nil
}

// Start acquires the lock, starts the event hub, the API listener and every
// background loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another vidresolve daemon holds %s", d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deps.Hub.Run()
	}()
	for _, bg := range d.deps.Background {
		if bg == nil {
			continue
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := bg.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logging.ErrorWithContext(d.logger, "background loop stopped", "background_failed", logging.Error(err))
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("vidresolve daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
	)
	return nil
}

// Stop shuts everything down and releases the lock. It waits for background
// loops to return. A stopped daemon cannot be started again.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.deps.Hub.Close()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("vidresolve daemon stopped")
}

// Serve starts the daemon and blocks until ctx is done.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Address:      d.api.addr(),
		LockFilePath: d.lockPath,
		Subscribers:  d.deps.Hub.Subscribers(),
		Sessions:     d.sessions.Len(),
	}
}

// Addr returns the bound listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Handler returns the API handler with its full middleware chain.
func (d *Daemon) Handler() http.Handler {
	return d.api.server.Handler
}
