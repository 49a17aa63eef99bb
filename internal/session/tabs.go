// Package session manages the open documents: an ordered tab store
// with an active pointer, the recent-files list, and debounced
// persistence of both.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrTabNotFound indicates an operation referenced an unknown tab id.
// Callers are responsible for passing live ids; the store does not
// correct dangling references.
var ErrTabNotFound = errors.New("tab not found")

// DefaultTitle is the display name for tabs without a backing file.
const DefaultTitle = "Untitled"

// DefaultTemplate is the stock content seeded into new tabs.
const DefaultTemplate = `flowchart TD
    A[Start] --> B{Decide}
    B -->|Yes| C[Continue]
    B -->|No| D[Stop]
`

// Tab is one open document. Path is empty for unsaved documents.
type Tab struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"backingPath,omitempty"`
	Content string `json:"content"`
}

// Update carries a partial tab mutation; nil fields are left alone.
type Update struct {
	Title   *string
	Path    *string
	Content *string
}

// State is the persisted form of the store.
type State struct {
	Tabs     []Tab  `json:"tabs"`
	ActiveID string `json:"activeId"`
}

// Store holds the ordered open tabs and the active pointer. The store
// is never empty: closing the last tab immediately creates a fresh
// default one.
//
// Store is safe for concurrent use. Accessors return copies; all
// mutation goes through the store's methods.
type Store struct {
	mu       sync.RWMutex
	tabs     []*Tab
	activeID string

	onChange []func()
}

// NewStore creates a store seeded with one default tab.
func NewStore() *Store {
	s := &Store{}
	s.createLocked("", "", "")
	return s
}

// newID allocates a tab identifier. This is the only place ids are
// generated.
func newID() string {
	return uuid.NewString()
}

// Create allocates a new tab, appends it and makes it active. Empty
// content selects the stock template; an empty title is derived from
// the path's base name, or the default placeholder.
func (s *Store) Create(content, path, title string) Tab {
	s.mu.Lock()
	tab := s.createLocked(content, path, title)
	s.mu.Unlock()

	s.notify()
	return tab
}

func (s *Store) createLocked(content, path, title string) Tab {
	if content == "" {
		content = DefaultTemplate
	}
	if title == "" {
		title = DefaultTitle
		if path != "" {
			title = baseName(path)
		}
	}

	tab := &Tab{
		ID:      newID(),
		Title:   title,
		Path:    path,
		Content: content,
	}
	s.tabs = append(s.tabs, tab)
	s.activeID = tab.ID
	return *tab
}

// Apply merges non-nil fields of the update into the tab with the
// given id. No-op when the id is absent.
func (s *Store) Apply(id string, upd Update) {
	s.mu.Lock()
	tab := s.findLocked(id)
	if tab == nil {
		s.mu.Unlock()
		return
	}
	if upd.Title != nil {
		tab.Title = *upd.Title
	}
	if upd.Path != nil {
		tab.Path = *upd.Path
	}
	if upd.Content != nil {
		tab.Content = *upd.Content
	}
	s.mu.Unlock()

	s.notify()
}

// Close removes the tab with the given id. If it was active, the tab
// at the same index (clamped) becomes active. Closing the last tab
// replaces it with a fresh default tab; the store never becomes
// empty. No-op when the id is absent.
func (s *Store) Close(id string) {
	s.mu.Lock()
	idx := -1
	for i, tab := range s.tabs {
		if tab.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	wasActive := s.tabs[idx].ID == s.activeID
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)

	if len(s.tabs) == 0 {
		s.createLocked("", "", "")
	} else if wasActive {
		if idx >= len(s.tabs) {
			idx = len(s.tabs) - 1
		}
		s.activeID = s.tabs[idx].ID
	}
	s.mu.Unlock()

	s.notify()
}

// Activate switches the active pointer. Returns ErrTabNotFound for an
// unknown id without changing state.
func (s *Store) Activate(id string) error {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return ErrTabNotFound
	}
	s.activeID = id
	s.mu.Unlock()

	s.notify()
	return nil
}

// Get returns a copy of the tab with the given id.
func (s *Store) Get(id string) (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tab := s.findLocked(id)
	if tab == nil {
		return Tab{}, false
	}
	return *tab, true
}

// Active returns a copy of the active tab.
func (s *Store) Active() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tab := s.findLocked(s.activeID); tab != nil {
		return *tab
	}
	// Unreachable while the never-empty invariant holds.
	return Tab{}
}

// Tabs returns copies of all tabs in order.
func (s *Store) Tabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tab, len(s.tabs))
	for i, tab := range s.tabs {
		out[i] = *tab
	}
	return out
}

// Count returns the number of open tabs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tabs)
}

// FindByPath returns a copy of the tab backed by the given path.
// Used by the open flow to reactivate instead of duplicating.
func (s *Store) FindByPath(path string) (Tab, bool) {
	if path == "" {
		return Tab{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tab := range s.tabs {
		if tab.Path == path {
			return *tab, true
		}
	}
	return Tab{}, false
}

// IsUntouchedDefault reports whether the tab is a never-edited default
// tab: no backing path and content exactly equal to the stock
// template. The open flow repurposes such tabs in place.
func (t Tab) IsUntouchedDefault() bool {
	return t.Path == "" && t.Content == DefaultTemplate
}

// Snapshot returns the persistable state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Tabs:     make([]Tab, len(s.tabs)),
		ActiveID: s.activeID,
	}
	for i, tab := range s.tabs {
		st.Tabs[i] = *tab
	}
	return st
}

// Restore replaces the store contents from persisted state. Invalid
// state degrades to a single default tab; an unknown active id falls
// back to the first tab.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	s.tabs = nil
	for _, tab := range st.Tabs {
		if tab.ID == "" {
			tab.ID = newID()
		}
		if tab.Title == "" {
			tab.Title = DefaultTitle
		}
		copied := tab
		s.tabs = append(s.tabs, &copied)
	}

	if len(s.tabs) == 0 {
		s.createLocked("", "", "")
		s.mu.Unlock()
		s.notify()
		return
	}

	s.activeID = s.tabs[0].ID
	for _, tab := range s.tabs {
		if tab.ID == st.ActiveID {
			s.activeID = st.ActiveID
			break
		}
	}
	s.mu.Unlock()

	s.notify()
}

// OnChange registers a handler called after every store mutation.
func (s *Store) OnChange(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, handler)
}

func (s *Store) notify() {
	s.mu.RLock()
	handlers := make([]func(), len(s.onChange))
	copy(handlers, s.onChange)
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler()
	}
}

func (s *Store) findLocked(id string) *Tab {
	for _, tab := range s.tabs {
		if tab.ID == id {
			return tab
		}
	}
	return nil
}

// baseName returns the last path element without pulling in a vfs
// dependency; both separators are handled so persisted Windows paths
// restore with sensible titles.
func baseName(path string) string {
	last := 0
	for i, r := range path {
		if r == '/' || r == '\\' {
			last = i + 1
		}
	}
	if last >= len(path) {
		return path
	}
	return path[last:]
}
