package filetree

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/glyphpad/internal/debounce"
)

// DefaultWatchDelay coalesces filesystem event bursts (saves, bulk
// copies) into one tree refresh.
const DefaultWatchDelay = 200 * time.Millisecond

// Watcher keeps the tree in sync with external filesystem changes.
// It watches the workspace root and every expanded directory and
// refreshes the manager after a quiet period.
type Watcher struct {
	mgr     *Manager
	fsw     *fsnotify.Watcher
	trigger *debounce.Trigger
	done    chan struct{}
}

// NewWatcher starts watching for the given manager. delay <= 0 selects
// DefaultWatchDelay.
func NewWatcher(mgr *Manager, delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	w := &Watcher{
		mgr:  mgr,
		fsw:  fsw,
		done: make(chan struct{}),
	}
	w.trigger = debounce.New(delay, w.refresh)

	// Re-sync the watch set whenever the tree changes shape, so newly
	// expanded directories are covered.
	mgr.OnChange(w.Sync)
	w.Sync()

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.trigger.Touch()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// A watch error means the view may be stale; refresh.
			w.trigger.Touch()
		}
	}
}

func (w *Watcher) refresh() {
	// Refresh failure leaves the previous tree in place; the next
	// event tries again.
	_ = w.mgr.Refresh()
}

// Sync reconciles the watched directory set with the manager's root
// and expanded directories. Unwatchable paths are skipped.
func (w *Watcher) Sync() {
	want := make(map[string]bool)
	if root := w.mgr.RootPath(); root != "" {
		want[root] = true
	}
	for _, dir := range w.mgr.ExpandedDirs() {
		want[dir] = true
	}

	for _, dir := range w.fsw.WatchList() {
		if !want[dir] {
			_ = w.fsw.Remove(dir)
		}
		delete(want, dir)
	}
	for dir := range want {
		_ = w.fsw.Add(dir)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	w.trigger.Stop()
	return w.fsw.Close()
}
