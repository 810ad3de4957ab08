// Package plugin provides the hook-based plugin protocol for extending the
// sitebuild pipeline. A plugin is a registered value implementing Plugin plus
// any subset of the optional capability interfaces; the host detects
// capabilities by interface assertion and invokes them at fixed lifecycle
// points: configuration load, file-collection assembly, and dev-server startup.
package plugin

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

// Plugin is the minimal contract every plugin satisfies.
type Plugin interface {
	// Name is the unique plugin identifier (e.g., "extrafiles").
	Name() string
}

// Configurer is implemented by plugins that participate in configuration
// loading. OnConfig may return the input configuration unchanged.
type Configurer interface {
	Plugin

	OnConfig(cfg *config.Config) (*config.Config, error)
}

// FilesCollector is implemented by plugins that contribute to or rewrite the
// file collection after discovery and before rendering.
type FilesCollector interface {
	Plugin

	OnFiles(ctx context.Context, files *site.Collection, cfg *config.Config) error
}

// ServeHook is implemented by plugins that register paths with the dev-server
// watcher. OnServe must never fail: watching is best effort.
type ServeHook interface {
	Plugin

	OnServe(w Watcher, cfg *config.Config)
}

// Watcher registers filesystem paths to watch for changes during a dev-server
// session. Implemented by the serve package; edits to watched paths trigger
// rebuilds.
type Watcher interface {
	Watch(path string)
}
