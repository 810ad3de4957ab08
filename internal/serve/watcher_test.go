package serve

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })
	return fw
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	fw := newTestWatcher(t)

	ignored := []string{
		"/docs/.hidden.md",
		"/docs/page.md~",
		"/docs/.page.md.swp",
		"/docs/.#page.md",
		"/docs/#page.md#",
		"/docs/Thumbs.db",
	}
	for _, path := range ignored {
		assert.True(t, fw.shouldIgnore(path), "expected %s to be ignored", path)
	}

	assert.False(t, fw.shouldIgnore("/docs/page.md"))
	assert.False(t, fw.shouldIgnore("/docs/guide/setup.md"))
}

func TestFileWatcher_RegisteredFileAlwaysPasses(t *testing.T) {
	fw := newTestWatcher(t)

	dir := t.TempDir()
	target := filepath.Join(dir, ".env-template")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	fw.Watch(target)

	// The registered file passes despite its hidden-file name.
	assert.False(t, fw.shouldIgnore(target))
	// A sibling in the same watched-for-one-file directory does not.
	assert.True(t, fw.shouldIgnore(filepath.Join(dir, "unrelated.txt")))
}

func TestFileWatcher_RegisteredFileInsideWatchedTree(t *testing.T) {
	fw := newTestWatcher(t)

	docsDir := t.TempDir()
	extra := filepath.Join(docsDir, "extra.txt")
	sibling := filepath.Join(docsDir, "index.md")
	require.NoError(t, os.WriteFile(extra, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(sibling, []byte("# Home"), 0o644))

	fw.Watch(docsDir)
	fw.Watch(extra)

	// A registered file sharing a directory with the docs tree must not
	// suppress its siblings.
	assert.False(t, fw.shouldIgnore(sibling),
		"editing a sibling markdown file in the docs root must still trigger a rebuild")
	assert.False(t, fw.shouldIgnore(extra))
}

func TestFileWatcher_WatchMissingPathIsHarmless(t *testing.T) {
	fw := newTestWatcher(t)
	fw.Watch("/does/not/exist")
}

func TestFileWatcher_DebouncedTrigger(t *testing.T) {
	fw := newTestWatcher(t)

	fw.trigger()
	fw.trigger()
	fw.trigger()

	select {
	case <-fw.RebuildRequests():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a rebuild request after debounce window")
	}

	// Bursts coalesce into one request.
	select {
	case <-fw.RebuildRequests():
		t.Fatal("expected a single coalesced rebuild request")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestFileWatcher_RequestsCoalesceUntilConsumed(t *testing.T) {
	fw := newTestWatcher(t)

	// Requests fired while a build is in flight collapse into one followup.
	fw.TriggerRebuild()
	fw.TriggerRebuild()
	fw.TriggerRebuild()

	<-fw.RebuildRequests()
	select {
	case <-fw.RebuildRequests():
		t.Fatal("expected a single coalesced rebuild request")
	default:
	}
}

func TestFileWatcher_TriggerRebuildBypassesDebounce(t *testing.T) {
	fw := newTestWatcher(t)

	fw.TriggerRebuild()
	select {
	case <-fw.RebuildRequests():
	case <-time.After(time.Second):
		t.Fatal("expected immediate rebuild request")
	}
}
