// Package watch reports changes to a documentation source tree so checks
// can be rerun while editing.
//
// Rapid changes are coalesced: every change within the debounce delay of
// the previous one lands in the same Batch.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay is the default delay for coalescing rapid writes
const DefaultDebounceDelay = 300 * time.Millisecond

// Batch is the set of paths changed within one debounce window.
type Batch struct {
	Paths []string
	At    time.Time
}

// Watcher watches a directory tree, skipping ignored directories, hidden
// files and editor backups.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	ignore  []string
	delay   time.Duration

	batches chan Batch
	errors  chan error
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	closed  bool
}

// New starts watching root and every directory below it except those in
// ignore (absolute paths). A delay <= 0 uses DefaultDebounceDelay.
func New(root string, ignore []string, delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: watcher,
		root:    filepath.Clean(root),
		delay:   delay,
		batches: make(chan Batch, 1),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		pending: make(map[string]bool),
	}
	for _, dir := range ignore {
		w.ignore = append(w.ignore, filepath.Clean(dir))
	}

	if err := w.addRecursive(w.root); err != nil {
		watcher.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Batches returns the channel of coalesced changes.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Errors returns the channel for receiving watch errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// Ignored reports whether changes to path are not reported.
func (w *Watcher) Ignored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignore {
		// the build lock file sits next to the build directory
		if path == dir || path == dir+".lock" || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	if path == w.root {
		return false
	}
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.Ignored(event.Name) {
		return
	}
	// chmod alone never changes what a build sees
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.sendError(err)
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

// flush sends the pending paths as one batch.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(paths)
	select {
	case w.batches <- Batch{Paths: paths, At: time.Now()}:
	case <-w.done:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// error channel full, drop the error
	}
}
