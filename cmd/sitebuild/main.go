package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuild/internal/build"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuild/internal/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
	"git.home.luguber.info/inful/sitebuild/internal/plugins/extrafiles"
	"git.home.luguber.info/inful/sitebuild/internal/serve"
	"git.home.luguber.info/inful/sitebuild/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitebuild.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for the generated site"`
	} `cmd:"" help:"Build the site from the configured docs directory"`

	Serve struct {
		Port int `short:"p" help:"Override the configured dev server port"`
	} `cmd:"" help:"Serve the site locally with live reload"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	errAdapter := sberrors.NewCLIErrorAdapter(CLI.Verbose, logger)

	switch kctx.Command() {
	case "build":
		errAdapter.HandleError(runBuild())
	case "serve":
		errAdapter.HandleError(runServe())
	case "init":
		errAdapter.HandleError(config.Init(CLI.Config, CLI.Init.Force))
	case "version":
		fmt.Printf("sitebuild %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

// setupPlugins loads the configuration, registers all plugins, and runs their
// configuration hooks.
func setupPlugins() (*config.Config, *plugin.Registry, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, nil, err
	}

	registry := plugin.NewRegistry()
	if err := registry.Register(extrafiles.New()); err != nil {
		return nil, nil, err
	}

	for _, configurer := range registry.Configurers() {
		cfg, err = configurer.OnConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
	}
	return cfg, registry, nil
}

func runBuild() error {
	cfg, registry, err := setupPlugins()
	if err != nil {
		return err
	}

	builder := build.NewBuilder(cfg, registry, CLI.Build.Output)
	report, err := builder.Build(context.Background())
	if err != nil {
		return err
	}

	slog.Info("Site written",
		logfields.Path(builder.OutputDir()),
		logfields.Count(report.Files),
		logfields.BuildID(report.BuildID))
	return nil
}

func runServe() error {
	cfg, registry, err := setupPlugins()
	if err != nil {
		return err
	}
	if CLI.Serve.Port != 0 {
		cfg.Serve.Port = CLI.Serve.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve.Run(ctx, cfg, registry)
}
