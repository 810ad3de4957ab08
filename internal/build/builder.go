package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuild/internal/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

// Builder orchestrates the full pipeline: discovery → plugin file hooks → render.
type Builder struct {
	cfg       *config.Config
	registry  *plugin.Registry
	outputDir string
	recorder  metrics.Recorder
}

// NewBuilder creates a builder for the given configuration and plugin registry.
// outputDir overrides the configured output directory when non-empty.
func NewBuilder(cfg *config.Config, registry *plugin.Registry, outputDir string) *Builder {
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}
	if registry == nil {
		registry = plugin.NewRegistry()
	}
	return &Builder{
		cfg:       cfg,
		registry:  registry,
		outputDir: outputDir,
		recorder:  metrics.NoopRecorder{},
	}
}

// WithRecorder injects a metrics recorder (for testing or when metrics are enabled).
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// DocsDir returns the absolute docs directory, resolving a relative
// configuration value against the configuration file's directory.
func (b *Builder) DocsDir() string {
	if filepath.IsAbs(b.cfg.DocsDir) {
		return b.cfg.DocsDir
	}
	return filepath.Join(b.cfg.ConfigDir(), b.cfg.DocsDir)
}

// OutputDir returns the build output directory.
func (b *Builder) OutputDir() string { return b.outputDir }

// Build runs one full build and returns its report.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	buildID := uuid.NewString()
	slog.Info("Starting build", logfields.BuildID(buildID), logfields.Path(b.DocsDir()))

	report, err := b.run(ctx, buildID)
	duration := time.Since(start)
	b.recorder.ObserveBuildDuration(duration)
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		slog.Error("Build failed", logfields.BuildID(buildID), logfields.Error(err))
		return nil, err
	}

	report.Duration = duration
	report.FinishedAt = time.Now()
	b.recorder.IncBuildOutcome("success")
	b.recorder.SetLastBuildFiles(report.Files)
	slog.Info("Build completed",
		logfields.BuildID(buildID),
		logfields.Count(report.Files),
		logfields.DurationMS(float64(duration.Milliseconds())))
	return report, nil
}

func (b *Builder) run(ctx context.Context, buildID string) (*Report, error) {
	collection, err := site.NewDiscovery(b.DocsDir()).Discover()
	if err != nil {
		return nil, sberrors.DiscoveryError(err)
	}

	for _, collector := range b.registry.FilesCollectors() {
		if err := collector.OnFiles(ctx, collection, b.cfg); err != nil {
			return nil, err
		}
	}

	if b.cfg.Output.Clean {
		if err := cleanDir(b.outputDir); err != nil {
			return nil, sberrors.BuildFailed("clean_output", err)
		}
	}

	renderer, err := NewRenderer(b.cfg, b.outputDir)
	if err != nil {
		return nil, sberrors.InternalError("renderer initialization failed", err)
	}
	rendered, copied, err := renderer.RenderAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	return &Report{
		BuildID:  buildID,
		Files:    collection.Len(),
		Rendered: rendered,
		Copied:   copied,
		Hash:     site.ComputeCollectionHash(collection.All()),
	}, nil
}

// cleanDir removes the directory's contents without removing the directory
// itself, so an already-running file server keeps a valid root.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
