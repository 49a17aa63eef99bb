package session

import (
	"time"

	"github.com/dshills/glyphpad/internal/debounce"
	"github.com/dshills/glyphpad/internal/persist"
)

// DefaultSaveDelay is how long the saver waits after the last store
// mutation before writing.
const DefaultSaveDelay = 500 * time.Millisecond

// Saver persists the tab store and recent-files list whenever they
// change, debounced so a burst of edits produces one write.
//
// Writes are best-effort: a failing store never surfaces an error to
// the editing flow, the in-memory state stays authoritative.
type Saver struct {
	store   persist.Store
	tabs    *Store
	recent  *RecentFiles
	trigger *debounce.Trigger
}

// NewSaver wires the saver to the given stores and starts observing
// them. delay <= 0 selects DefaultSaveDelay.
func NewSaver(store persist.Store, tabs *Store, recent *RecentFiles, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}

	s := &Saver{
		store:  store,
		tabs:   tabs,
		recent: recent,
	}
	s.trigger = debounce.New(delay, s.save)

	tabs.OnChange(s.trigger.Touch)
	recent.OnChange(s.trigger.Touch)
	return s
}

func (s *Saver) save() {
	// Errors are deliberately dropped; see package persist.
	_ = s.store.Set(persist.KeyTabs, s.tabs.Snapshot())
	_ = s.store.Set(persist.KeyRecentFiles, s.recent.Paths())
}

// Restore loads persisted state into the stores. Missing or corrupt
// entries leave the stores at their defaults.
func (s *Saver) Restore() {
	var st State
	if found, err := s.store.Get(persist.KeyTabs, &st); err == nil && found {
		s.tabs.Restore(st)
	}

	var paths []string
	if found, err := s.store.Get(persist.KeyRecentFiles, &paths); err == nil && found {
		s.recent.Restore(paths)
	}

	// Restoring mutated the stores; drop the pending write it queued.
	s.trigger.Cancel()
}

// Flush writes any pending state immediately.
func (s *Saver) Flush() {
	s.trigger.Flush()
}

// Close flushes pending state and stops the saver. The underlying
// persist.Store is not closed; the caller owns it.
func (s *Saver) Close() {
	s.trigger.Flush()
	s.trigger.Stop()
}
