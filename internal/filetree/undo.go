package filetree

import "sync"

// maxUndo bounds the undo history; the oldest entry is discarded when
// the stack is full.
const maxUndo = 50

// entry is a reversible tree operation: apply performs the inverse of
// what the user did.
type entry struct {
	label string
	apply func() error
}

// undoStack is a bounded LIFO of inverse operations. There is no redo;
// undoing an operation discards it.
type undoStack struct {
	mu      sync.Mutex
	entries []entry
	max     int
}

func newUndoStack(max int) *undoStack {
	return &undoStack{max: max}
}

func (u *undoStack) push(e entry) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.entries = append(u.entries, e)
	if len(u.entries) > u.max {
		u.entries = u.entries[len(u.entries)-u.max:]
	}
}

// pop removes and returns the most recent entry. The entry is gone
// regardless of whether the caller succeeds in applying it.
func (u *undoStack) pop() (entry, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.entries) == 0 {
		return entry{}, false
	}
	e := u.entries[len(u.entries)-1]
	u.entries = u.entries[:len(u.entries)-1]
	return e, true
}

func (u *undoStack) len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.entries)
}

func (u *undoStack) clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = nil
}
