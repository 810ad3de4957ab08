package extrafiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/errors"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

// watchRecorder captures watch registrations from the plugin.
type watchRecorder struct {
	calls []string
}

func (w *watchRecorder) Watch(path string) { w.calls = append(w.calls, path) }

// panickingWatcher simulates a misbehaving host watch server.
type panickingWatcher struct{}

func (panickingWatcher) Watch(path string) { panic("boom") }

func testConfig(baseDir string, enabled bool, files ...config.FileMapping) *config.Config {
	return &config.Config{
		ConfigFilePath: filepath.Join(baseDir, "sitebuild.yaml"),
		Plugins: config.PluginsConfig{
			ExtraFiles: config.ExtraFilesConfig{
				Enabled: &enabled,
				Files:   files,
			},
		},
	}
}

func newTestPlugin(t *testing.T, cfg *config.Config) *Plugin {
	t.Helper()
	p := New()
	_, err := p.OnConfig(cfg)
	require.NoError(t, err)
	return p
}

func TestOnConfigSetsBaseDirFromConfigFile(t *testing.T) {
	baseDir := t.TempDir()
	cfg := testConfig(baseDir, true)

	p := New()
	out, err := p.OnConfig(cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, out)
	assert.Equal(t, baseDir, p.baseDir)
}

func TestOnConfigDisabledIsNoop(t *testing.T) {
	cfg := testConfig(t.TempDir(), false)

	p := New()
	out, err := p.OnConfig(cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, out)
	assert.Empty(t, p.baseDir, "base dir must not be initialized when disabled")
}

func TestOnFilesStagesLiteralEntry(t *testing.T) {
	baseDir := t.TempDir()
	src := filepath.Join(baseDir, "README.md")
	require.NoError(t, os.WriteFile(src, []byte("# docs"), 0o644))

	cfg := testConfig(baseDir, true, config.FileMapping{Src: "README.md", Dest: "external/README.md"})
	p := newTestPlugin(t, cfg)

	files := site.NewCollection()
	require.NoError(t, p.OnFiles(context.Background(), files, cfg))

	entry := files.Get("external/README.md")
	require.NotNil(t, entry)
	assert.Equal(t, src, entry.SrcPath)
	assert.True(t, entry.Generated)
}

func TestOnFilesReplacesExistingEntry(t *testing.T) {
	baseDir := t.TempDir()
	src := filepath.Join(baseDir, "README.md")
	require.NoError(t, os.WriteFile(src, []byte("# docs"), 0o644))

	cfg := testConfig(baseDir, true, config.FileMapping{Src: "README.md", Dest: "external/README.md"})
	p := newTestPlugin(t, cfg)

	existing := &site.File{SrcPath: "/discovered/README.md", DestURI: "external/README.md"}
	files := site.NewCollection()
	files.Add(existing)

	require.NoError(t, p.OnFiles(context.Background(), files, cfg))

	got := files.Get("external/README.md")
	require.NotNil(t, got)
	assert.NotSame(t, existing, got, "staged entry must be a new object")
	assert.Equal(t, src, got.SrcPath)
	assert.Equal(t, 1, files.Len())
}

func TestOnFilesMissingSourceFailsBeforeMutation(t *testing.T) {
	baseDir := t.TempDir()
	cfg := testConfig(baseDir, true, config.FileMapping{Src: "missing.txt", Dest: "external/missing.txt"})
	p := newTestPlugin(t, cfg)

	files := site.NewCollection()
	err := p.OnFiles(context.Background(), files, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileSystem))
	assert.Equal(t, 0, files.Len(), "collection must be untouched")
}

func TestOnFilesLastMappingWins(t *testing.T) {
	baseDir := t.TempDir()
	first := filepath.Join(baseDir, "first.md")
	second := filepath.Join(baseDir, "second.md")
	require.NoError(t, os.WriteFile(first, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("2"), 0o644))

	cfg := testConfig(baseDir, true,
		config.FileMapping{Src: "first.md", Dest: "external/page.md"},
		config.FileMapping{Src: "second.md", Dest: "external/page.md"},
	)
	p := newTestPlugin(t, cfg)

	files := site.NewCollection()
	require.NoError(t, p.OnFiles(context.Background(), files, cfg))

	require.Equal(t, 1, files.Len())
	assert.Equal(t, second, files.Get("external/page.md").SrcPath)
}

func TestOnFilesDisabledDoesNothing(t *testing.T) {
	baseDir := t.TempDir()
	cfg := testConfig(baseDir, false, config.FileMapping{Src: "missing.txt", Dest: "external/missing.txt"})
	p := newTestPlugin(t, cfg)

	files := site.NewCollection()
	require.NoError(t, p.OnFiles(context.Background(), files, cfg))
	assert.Equal(t, 0, files.Len())
}

func TestOnServeRegistersExistingSources(t *testing.T) {
	baseDir := t.TempDir()
	src := filepath.Join(baseDir, "example.txt")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	cfg := testConfig(baseDir, true, config.FileMapping{Src: "example.txt", Dest: "external/example.txt"})
	p := newTestPlugin(t, cfg)

	w := &watchRecorder{}
	p.OnServe(w, cfg)

	assert.Equal(t, []string{src}, w.calls)
}

func TestOnServeSkipsMissingSources(t *testing.T) {
	baseDir := t.TempDir()
	cfg := testConfig(baseDir, true, config.FileMapping{Src: "not-there.txt", Dest: "external/not-there.txt"})
	p := newTestPlugin(t, cfg)

	w := &watchRecorder{}
	p.OnServe(w, cfg)

	assert.Empty(t, w.calls)
}

func TestOnServeSwallowsExpansionErrors(t *testing.T) {
	baseDir := t.TempDir()
	// Absolute dest makes expansion fail; serve must stay silent.
	cfg := testConfig(baseDir, true, config.FileMapping{Src: "a.txt", Dest: "/absolute/a.txt"})
	p := newTestPlugin(t, cfg)

	w := &watchRecorder{}
	assert.NotPanics(t, func() { p.OnServe(w, cfg) })
	assert.Empty(t, w.calls)
}

func TestOnServeSwallowsWatcherPanics(t *testing.T) {
	baseDir := t.TempDir()
	src := filepath.Join(baseDir, "example.txt")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	cfg := testConfig(baseDir, true, config.FileMapping{Src: "example.txt", Dest: "external/example.txt"})
	p := newTestPlugin(t, cfg)

	assert.NotPanics(t, func() { p.OnServe(panickingWatcher{}, cfg) })
}
