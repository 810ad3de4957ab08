package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	DocsDir string        `yaml:"docs_dir,omitempty"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve,omitempty"`
	Plugins PluginsConfig `yaml:"plugins,omitempty"`

	// ConfigFilePath is the absolute path of the loaded configuration file.
	// Set by Load; not part of the YAML schema. Its directory is the base
	// for resolving relative source paths in plugin configuration.
	ConfigFilePath string `yaml:"-"`
}

// SiteConfig holds site-wide presentation settings
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// ServeConfig holds dev server settings
type ServeConfig struct {
	Port int `yaml:"port,omitempty"`
	// RebuildInterval, when set, triggers a periodic full rebuild in addition
	// to filesystem-event driven rebuilds. Duration string (e.g. "5m").
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
	// Metrics exposes a Prometheus /metrics endpoint on the dev server.
	Metrics bool `yaml:"metrics,omitempty"`
	// HistoryPath is the SQLite file for the build history store.
	// Empty selects an in-memory store that lives for the serve session.
	HistoryPath string `yaml:"history_path,omitempty"`
}

// RebuildIntervalDuration parses the configured rebuild interval.
// Returns 0 when unset.
func (s ServeConfig) RebuildIntervalDuration() (time.Duration, error) {
	if s.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid rebuild_interval %q: %w", s.RebuildInterval, err)
	}
	return d, nil
}

// PluginsConfig groups per-plugin configuration blocks
type PluginsConfig struct {
	ExtraFiles ExtraFilesConfig `yaml:"extrafiles,omitempty"`
}

// ExtraFilesConfig configures the extrafiles plugin: a declarative list of
// source-to-destination mappings staged into the generated site.
type ExtraFilesConfig struct {
	// Enabled defaults to true when the block is present; a nil pointer keeps
	// the default so `enabled: false` can be distinguished from absence.
	Enabled *bool         `yaml:"enabled,omitempty"`
	Files   []FileMapping `yaml:"files,omitempty"`
}

// IsEnabled reports whether the plugin should perform any work.
func (c ExtraFilesConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// FileMapping is one configured source-to-destination rule. Src is a literal
// path or a glob pattern; Dest is a relative destination (a directory, with
// trailing separator, when Src is a glob).
type FileMapping struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	config.ConfigFilePath = absPath

	return &config, nil
}

// applyDefaults fills unset fields with sensible defaults.
func applyDefaults(config *Config) {
	if config.Site.Title == "" {
		config.Site.Title = "Documentation Site"
	}
	if config.DocsDir == "" {
		config.DocsDir = "docs"
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "./site"
		config.Output.Clean = true
	}
	if config.Serve.Port == 0 {
		config.Serve.Port = 8080
	}
}

// ConfigDir returns the directory containing the loaded configuration file,
// falling back to the working directory when the path is unknown.
func (c *Config) ConfigDir() string {
	if c.ConfigFilePath != "" {
		return filepath.Dir(c.ConfigFilePath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	enabled := true
	exampleConfig := Config{
		Site: SiteConfig{
			Title:       "My Documentation Site",
			Description: "Documentation built with sitebuild",
			BaseURL:     "https://example.com",
		},
		DocsDir: "docs",
		Output: OutputConfig{
			Directory: "./site",
			Clean:     true,
		},
		Serve: ServeConfig{
			Port: 8080,
		},
		Plugins: PluginsConfig{
			ExtraFiles: ExtraFilesConfig{
				Enabled: &enabled,
				Files: []FileMapping{
					{Src: "README.md", Dest: "external/README.md"},
					{Src: "assets/**", Dest: "external/assets/"},
				},
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
