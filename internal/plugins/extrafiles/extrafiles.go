// Package extrafiles copies externally located files (single files or
// glob-matched sets) into the generated site and registers them for
// live-reload watching during a dev-server session.
//
// The plugin hooks three lifecycle points:
//
//   - OnConfig: records the configuration directory used as the base for
//     resolving relative sources (no-op when the plugin is disabled).
//   - OnFiles: stages every resolved source into the host file collection,
//     replacing entries already present at the same destination. A declared
//     source missing from disk aborts the build.
//   - OnServe: registers existing sources with the dev-server watcher so
//     edits trigger rebuilds. Best effort; failures never surface.
package extrafiles

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

// PluginName is the registry identifier for this plugin.
const PluginName = "extrafiles"

// Plugin implements the extrafiles hooks. The base directory is set once
// during configuration and only read afterwards.
type Plugin struct {
	baseDir string
}

// New creates the plugin.
func New() *Plugin {
	return &Plugin{}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return PluginName }

// OnConfig records the directory of the loaded configuration file as the base
// for relative source resolution. When the plugin is disabled the input
// configuration is returned unchanged and no state is initialized.
func (p *Plugin) OnConfig(cfg *config.Config) (*config.Config, error) {
	if !cfg.Plugins.ExtraFiles.IsEnabled() {
		slog.Debug("Plugin is not enabled, skipping", logfields.Plugin(PluginName))
		return cfg, nil
	}

	p.baseDir = cfg.ConfigDir()
	slog.Debug("extrafiles configured",
		logfields.Plugin(PluginName),
		logfields.Path(p.baseDir))
	return cfg, nil
}

// OnFiles stages every resolved mapping into the file collection. An entry
// already present at a destination is removed first, so declared files take
// priority over content found by the docs tree scan; across mappings the last
// one wins. A missing source is a hard configuration error at build time.
func (p *Plugin) OnFiles(ctx context.Context, files *site.Collection, cfg *config.Config) error {
	ef := cfg.Plugins.ExtraFiles
	if !ef.IsEnabled() {
		return nil
	}

	pairs, err := expandMappings(ef.Files, p.baseDir)
	if err != nil {
		return err
	}

	staged := 0
	for _, pair := range pairs {
		if _, statErr := os.Stat(pair.srcPath); statErr != nil {
			return errors.SourceNotFound(pair.srcPath).WithContext("dest", pair.destURI)
		}

		files.Remove(pair.destURI)
		files.Add(site.NewGeneratedFile(pair.destURI, pair.srcPath))
		staged++
	}

	slog.Debug("extrafiles staged files for build",
		logfields.Plugin(PluginName),
		logfields.Count(staged))
	return nil
}

// OnServe registers every currently existing source with the watcher so the
// dev server rebuilds on change. Watching is opportunistic: missing sources
// are skipped and every failure, including expansion errors, is swallowed so
// the dev server keeps running.
func (p *Plugin) OnServe(w plugin.Watcher, cfg *config.Config) {
	defer func() {
		// Known weak error boundary, kept deliberately: a broken mapping must
		// not take down the dev server.
		_ = recover()
	}()

	ef := cfg.Plugins.ExtraFiles
	if !ef.IsEnabled() {
		return
	}

	pairs, err := expandMappings(ef.Files, p.baseDir)
	if err != nil {
		return
	}

	for _, pair := range pairs {
		if _, statErr := os.Stat(pair.srcPath); statErr == nil {
			w.Watch(pair.srcPath)
		}
	}
}
