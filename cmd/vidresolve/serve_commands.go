package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"vidresolve/internal/daemon"
	"vidresolve/internal/extraction"
	"vidresolve/internal/logging"
	"vidresolve/internal/metrics"
	"vidresolve/internal/preflight"
	"vidresolve/internal/reconcile"
	"vidresolve/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// withTelemetry installs tracing for the duration of fn.
func withTelemetry(ctx context.Context, a *app, fn func() error) error {
	shutdown, err := telemetry.Init(ctx, "vidresolve", version)
	if err != nil {
		a.logger.Warn("tracing disabled", logging.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			a.logger.Warn("trace flush failed", logging.Error(err))
		}
	}()
	return fn()
}

// logPreflight reports failed readiness checks. The daemon starts anyway:
// an unreachable cache only costs extra extractions.
func logPreflight(ctx context.Context, a *app) {
	for _, r := range preflight.RunAll(ctx, a.cfg, preflight.Options{Cache: a.cache}) {
		if r.Passed {
			continue
		}
		logging.WarnWithContext(a.logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.Bool("advisory", r.Advisory),
		)
	}
}

func newReconcileLoop(a *app, dir string) *reconcile.Loop {
	if dir == "" {
		dir = a.cfg.Paths.OutputDir
	}
	return reconcile.New(a.pipeline, reconcile.Config{
		Dir:      dir,
		Interval: a.cfg.ReconcileInterval(),
		Logger:   a.logger,
	})
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var noReconcile bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resolution API daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			hub := daemon.NewEventHub(logger)
			a, err := ctx.buildApp(appOptions{
				observers: []extraction.Observer{hub},
				listener:  hub.StatusListener(),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			return withTelemetry(signalCtx, a, func() error {
				logPreflight(signalCtx, a)

				registry := prometheus.NewRegistry()
				metrics.Register(registry)
				registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)

				pages, err := a.pageSource(pageInputs{})
				if err != nil {
					return err
				}
				server := a.cfg.Server
				if bind != "" {
					server.Bind = bind
				}
				var background []daemon.Background
				if !noReconcile {
					background = append(background, newReconcileLoop(a, ""))
				}

				d, err := daemon.New(daemon.Deps{
					Server:     server,
					Pipeline:   a.pipeline,
					Subtitles:  a.subtitles,
					Pages:      pages,
					Hub:        hub,
					Gatherer:   registry,
					Logger:     logger,
					Background: background,
				})
				if err != nil {
					return fmt.Errorf("create daemon: %w", err)
				}
				if err := d.Serve(signalCtx); err != nil {
					return err
				}
				logger.Info("vidresolve daemon shutting down")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&noReconcile, "no-reconcile", false, "Do not maintain .info.json sidecars")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var inputs pageInputs
	var dir string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch <id|url>...",
		Short: "Resolve videos and keep their .info.json sidecars in place",
		Long: "Resolve the given videos, then keep re-asserting a <videoId>.info.json sidecar " +
			"for each one in the output directory, recreating any that are removed. " +
			"While the directory does not exist the loop waits for it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseVideoIDs(args)
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := ctx.buildApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			return withTelemetry(signalCtx, a, func() error {
				pages, err := a.pageSource(inputs)
				if err != nil {
					return err
				}
				resolved := 0
				for _, r := range a.pipeline.ResolveAll(signalCtx, ids, pages, defaultResolveConcurrency) {
					if r.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.VideoID, r.Err)
						continue
					}
					resolved++
				}
				if resolved == 0 {
					return errors.New("no video resolved; nothing to watch")
				}

				loop := newReconcileLoop(a, dir)
				if once {
					written, err := loop.ReconcileOnce()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sidecar(s)\n", written)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %d sidecar(s); press Ctrl+C to stop\n", resolved)
				if err := loop.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		},
	}

	addPageFlags(cmd, &inputs)
	cmd.Flags().StringVar(&dir, "dir", "", "Sidecar directory (default: output_dir)")
	cmd.Flags().BoolVar(&once, "once", false, "Write sidecars once and exit")
	return cmd
}
