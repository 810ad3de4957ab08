package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverWalksDocsTree(t *testing.T) {
	tmpDir := t.TempDir()
	docsDir := filepath.Join(tmpDir, "docs")
	guidesDir := filepath.Join(docsDir, "guides")
	imagesDir := filepath.Join(guidesDir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "index.md"), []byte("# Home"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(guidesDir, "tutorial.md"), []byte("# Guide"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "logo.png"), []byte("png"), 0o644))
	// Neither markdown nor asset: ignored.
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "build.log"), []byte("x"), 0o644))
	// Hidden file: ignored.
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, ".hidden.md"), []byte("x"), 0o644))

	collection, err := NewDiscovery(docsDir).Discover()
	require.NoError(t, err)
	require.Equal(t, 3, collection.Len())

	index := collection.Get("index.md")
	require.NotNil(t, index)
	assert.Equal(t, "", index.Section)
	assert.False(t, index.IsAsset)

	tutorial := collection.Get("guides/tutorial.md")
	require.NotNil(t, tutorial)
	assert.Equal(t, "guides", tutorial.Section)

	logo := collection.Get("guides/images/logo.png")
	require.NotNil(t, logo)
	assert.True(t, logo.IsAsset)
	assert.Equal(t, "guides/images", logo.Section)
	assert.True(t, filepath.IsAbs(logo.SrcPath))
}

func TestDiscoverSkipsHiddenDirectories(t *testing.T) {
	docsDir := t.TempDir()
	hidden := filepath.Join(docsDir, ".git")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "config.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "page.md"), []byte("# P"), 0o644))

	collection, err := NewDiscovery(docsDir).Discover()
	require.NoError(t, err)
	assert.Equal(t, 1, collection.Len())
	assert.NotNil(t, collection.Get("page.md"))
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope")).Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
