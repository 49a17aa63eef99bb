package session

import "sync"

// MaxRecent bounds the recent-files list.
const MaxRecent = 10

// RecentFiles is a most-recently-used list of file paths. Adding a
// path that is already present moves it to the front.
type RecentFiles struct {
	mu    sync.RWMutex
	paths []string

	onChange []func()
}

// NewRecentFiles creates an empty list.
func NewRecentFiles() *RecentFiles {
	return &RecentFiles{}
}

// Add promotes path to the front of the list, evicting the oldest
// entry past the cap. Empty paths are ignored.
func (r *RecentFiles) Add(path string) {
	if path == "" {
		return
	}

	r.mu.Lock()
	out := make([]string, 0, len(r.paths)+1)
	out = append(out, path)
	for _, p := range r.paths {
		if p == path {
			continue
		}
		out = append(out, p)
	}
	if len(out) > MaxRecent {
		out = out[:MaxRecent]
	}
	r.paths = out
	r.mu.Unlock()

	r.notify()
}

// Remove drops path from the list if present.
func (r *RecentFiles) Remove(path string) {
	r.mu.Lock()
	out := r.paths[:0]
	for _, p := range r.paths {
		if p != path {
			out = append(out, p)
		}
	}
	changed := len(out) != len(r.paths)
	r.paths = out
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// Paths returns a copy of the list, most recent first.
func (r *RecentFiles) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Restore replaces the list from persisted state, re-applying the cap.
func (r *RecentFiles) Restore(paths []string) {
	r.mu.Lock()
	if len(paths) > MaxRecent {
		paths = paths[:MaxRecent]
	}
	r.paths = make([]string, len(paths))
	copy(r.paths, paths)
	r.mu.Unlock()

	r.notify()
}

// OnChange registers a handler called after every mutation.
func (r *RecentFiles) OnChange(handler func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, handler)
}

func (r *RecentFiles) notify() {
	r.mu.RLock()
	handlers := make([]func(), len(r.onChange))
	copy(handlers, r.onChange)
	r.mu.RUnlock()

	for _, handler := range handlers {
		handler()
	}
}
