package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuild/internal/logfields"
)

const rebuildDebounce = 300 * time.Millisecond

// FileWatcher wraps fsnotify and debounces change events into rebuild
// requests. Directories are watched recursively; plugins may register
// individual files outside the docs tree via Watch.
type FileWatcher struct {
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	rebuildReq chan struct{}

	// watchedFiles holds individually registered file paths. fsnotify watches
	// their parent directories, so events must be filtered back to these.
	// recursiveRoots holds directory trees watched in full; events under them
	// follow the normal ignore rules even when a registered file shares the
	// directory.
	filesMu        sync.RWMutex
	watchedFiles   map[string]struct{}
	recursiveRoots []string
}

func NewFileWatcher() (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &FileWatcher{
		watcher:      w,
		rebuildReq:   make(chan struct{}, 1),
		watchedFiles: map[string]struct{}{},
	}, nil
}

// Watch registers a path for change notification. Directories are added
// recursively. For a file path, the parent directory is watched and events
// are filtered to the file itself.
func (fw *FileWatcher) Watch(path string) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		return
	}
	if info.IsDir() {
		fw.filesMu.Lock()
		fw.recursiveRoots = append(fw.recursiveRoots, filepath.Clean(path))
		fw.filesMu.Unlock()
		if err := fw.addDirsRecursive(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return
	}

	fw.filesMu.Lock()
	fw.watchedFiles[path] = struct{}{}
	fw.filesMu.Unlock()
	if err := fw.watcher.Add(filepath.Dir(path)); err != nil {
		slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
	}
}

func (fw *FileWatcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			if err := fw.watcher.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// RebuildRequests returns the channel that receives debounced rebuild signals.
func (fw *FileWatcher) RebuildRequests() <-chan struct{} { return fw.rebuildReq }

// Run processes filesystem events until the context is cancelled.
func (fw *FileWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(ev)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (fw *FileWatcher) handleEvent(ev fsnotify.Event) {
	if fw.shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = fw.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	fw.trigger()
}

// shouldIgnore filters out events for hidden, temp, and editor swap files.
// Individually watched files always pass, because their parent directory's
// event stream includes unrelated siblings.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	dir := filepath.Dir(path)
	fw.filesMu.RLock()
	_, registered := fw.watchedFiles[path]
	fileOnlyDir := fw.dirHasRegisteredFileLocked(dir) && !fw.underRecursiveRootLocked(dir)
	fw.filesMu.RUnlock()
	if registered {
		return false
	}
	// An event in a directory we watch only for a specific registered file is
	// noise. A directory that is also part of a recursively watched tree keeps
	// the normal rules so sibling edits still trigger rebuilds.
	if fileOnlyDir {
		return true
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}

func (fw *FileWatcher) underRecursiveRootLocked(dir string) bool {
	for _, root := range fw.recursiveRoots {
		if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) dirHasRegisteredFileLocked(dir string) bool {
	for f := range fw.watchedFiles {
		if filepath.Dir(f) == dir {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) trigger() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(rebuildDebounce, func() {
		select {
		case fw.rebuildReq <- struct{}{}:
		default:
		}
	})
}

// TriggerRebuild requests a rebuild directly, bypassing the debounce.
func (fw *FileWatcher) TriggerRebuild() {
	select {
	case fw.rebuildReq <- struct{}{}:
	default:
	}
}

func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}
