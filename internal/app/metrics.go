package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks application activity counters.
type Metrics struct {
	// Document lifecycle
	filesOpened atomic.Uint64
	filesSaved  atomic.Uint64
	tabsCreated atomic.Uint64
	tabsClosed  atomic.Uint64

	// Edit activity
	edits atomic.Uint64

	// Tree operations
	treeOps   atomic.Uint64
	treeUndos atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFileOpened counts a file opened into a tab.
func (m *Metrics) RecordFileOpened() { m.filesOpened.Add(1) }

// RecordFileSaved counts a successful save.
func (m *Metrics) RecordFileSaved() { m.filesSaved.Add(1) }

// RecordTabCreated counts a new tab.
func (m *Metrics) RecordTabCreated() { m.tabsCreated.Add(1) }

// RecordTabClosed counts a closed tab.
func (m *Metrics) RecordTabClosed() { m.tabsClosed.Add(1) }

// RecordEdit counts one content update from the editor.
func (m *Metrics) RecordEdit() { m.edits.Add(1) }

// RecordTreeOp counts a filesystem operation made through the tree.
func (m *Metrics) RecordTreeOp() { m.treeOps.Add(1) }

// RecordTreeUndo counts an undone tree operation.
func (m *Metrics) RecordTreeUndo() { m.treeUndos.Add(1) }

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		FilesOpened: m.filesOpened.Load(),
		FilesSaved:  m.filesSaved.Load(),
		TabsCreated: m.tabsCreated.Load(),
		TabsClosed:  m.tabsClosed.Load(),
		Edits:       m.edits.Load(),
		TreeOps:     m.treeOps.Load(),
		TreeUndos:   m.treeUndos.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	FilesOpened uint64
	FilesSaved  uint64
	TabsCreated uint64
	TabsClosed  uint64
	Edits       uint64
	TreeOps     uint64
	TreeUndos   uint64
}
