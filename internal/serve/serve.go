// Package serve runs the development server: initial build, filesystem
// watching with debounced rebuilds, SSE livereload, and operational endpoints.
package serve

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuild/internal/build"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/history"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// Run starts the development server and blocks until the context is cancelled.
func Run(ctx context.Context, cfg *config.Config, registry *plugin.Registry) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Serve.Metrics {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	store, err := history.Open(cfg.Serve.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	builder := build.NewBuilder(cfg, registry, "").WithRecorder(recorder)

	hub := NewLiveReloadHub(recorder)
	defer hub.Shutdown()

	watcher, err := NewFileWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Initial build. Failure is tolerated so the server still comes up and
	// rebuilds once the problem is fixed.
	recorder.IncRebuild("initial")
	if report, buildErr := builder.Build(ctx); buildErr != nil {
		slog.Error("Initial build failed", logfields.Error(buildErr))
		_ = store.RecordFailure(ctx, uuid.NewString(), buildErr, 0)
	} else {
		_ = store.RecordSuccess(ctx, report)
		hub.Broadcast(report.Hash)
	}

	watcher.Watch(builder.DocsDir())
	for _, hook := range registry.ServeHooks() {
		hook.OnServe(watcher, cfg)
	}

	server := NewHTTPServer(cfg, builder.OutputDir(), hub, store, metricsHandler)
	if err := server.Start(ctx); err != nil {
		return err
	}

	if interval, err := cfg.Serve.RebuildIntervalDuration(); err != nil {
		return err
	} else if interval > 0 {
		scheduler, err := NewScheduler()
		if err != nil {
			return err
		}
		if err := scheduler.SchedulePeriodicRebuild(interval, func() {
			recorder.IncRebuild("scheduled")
			watcher.TriggerRebuild()
		}); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer func() { _ = scheduler.Stop(ctx) }()
		slog.Info("Periodic rebuild enabled", slog.Duration("interval", interval))
	}

	go watcher.Run(ctx)
	runRebuildLoop(ctx, builder, watcher, hub, store, recorder)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

// runRebuildLoop processes rebuild requests one at a time. Requests arriving
// mid-build coalesce in the single-slot request channel and run as one
// followup build once the current one finishes.
func runRebuildLoop(ctx context.Context, builder *build.Builder, watcher *FileWatcher, hub *LiveReloadHub, store *history.Store, recorder metrics.Recorder) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher.RebuildRequests():
			rebuild(ctx, builder, hub, store, recorder)
		}
	}
}

func rebuild(ctx context.Context, builder *build.Builder, hub *LiveReloadHub, store *history.Store, recorder metrics.Recorder) {
	slog.Info("Change detected; rebuilding site")
	recorder.IncRebuild("fsevent")
	start := time.Now()
	report, err := builder.Build(ctx)
	if err != nil {
		slog.Warn("rebuild failed", logfields.Error(err))
		_ = store.RecordFailure(ctx, uuid.NewString(), err, time.Since(start))
		return
	}
	_ = store.RecordSuccess(ctx, report)
	hub.Broadcast(report.Hash)
}
