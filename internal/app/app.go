package app

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/dshills/glyphpad/internal/config"
	"github.com/dshills/glyphpad/internal/export"
	"github.com/dshills/glyphpad/internal/filetree"
	"github.com/dshills/glyphpad/internal/persist"
	"github.com/dshills/glyphpad/internal/preprocess"
	"github.com/dshills/glyphpad/internal/render"
	"github.com/dshills/glyphpad/internal/session"
	"github.com/dshills/glyphpad/internal/vfs"
)

// Options configure the application.
type Options struct {
	// FS is the filesystem everything runs against. Defaults to the OS
	// filesystem.
	FS vfs.VFS

	// Renderer produces SVG from markup. Required.
	Renderer render.Renderer

	// StatePath is the location of the persistence database. Empty
	// disables durable persistence (state lives in memory only).
	StatePath string

	// ConfigPath is the optional preferences TOML file.
	ConfigPath string

	// Rasterizer and Clipboard back the export operations; either may
	// be nil.
	Rasterizer export.Rasterizer
	Clipboard  export.Clipboard

	// Logger defaults to a stderr logger at info level.
	Logger *Logger
}

// App coordinates the session, render pipeline, file tree and
// persistence. All methods are safe for concurrent use.
type App struct {
	fsys      vfs.VFS
	log       *Logger
	metrics   *Metrics
	notifier  *Notifier
	store     persist.Store
	tabs      *session.Store
	recent    *session.RecentFiles
	saver     *session.Saver
	scheduler *render.Scheduler
	tree      *filetree.Manager
	watcher   *filetree.Watcher
	exporter  *export.Exporter

	mu       sync.RWMutex
	prefs    config.Preferences
	darkMode bool
	script   *preprocess.Script
}

// New assembles the application. A state database that cannot be
// opened degrades to in-memory persistence; everything else keeps
// working.
func New(opts Options) (*App, error) {
	if opts.Renderer == nil {
		return nil, errors.New("app: renderer is required")
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = vfs.NewOSFS()
	}
	log := opts.Logger
	if log == nil {
		log = NewLogger(DefaultLoggerConfig())
	}

	var store persist.Store
	if opts.StatePath != "" {
		s, err := persist.OpenSQLite(opts.StatePath)
		if err != nil {
			log.Warn("state db unavailable, using in-memory store: %v", err)
			store = persist.NewMemStore()
		} else {
			store = s
		}
	} else {
		store = persist.NewMemStore()
	}

	prefs, err := config.Load(fsys, opts.ConfigPath, store)
	if err != nil {
		log.Warn("preferences: %v", err)
	}

	a := &App{
		fsys:     fsys,
		log:      log,
		metrics:  NewMetrics(),
		notifier: NewNotifier(),
		store:    store,
		tabs:     session.NewStore(),
		recent:   session.NewRecentFiles(),
		tree:     filetree.NewManager(fsys),
		exporter: export.New(fsys, opts.Rasterizer, opts.Clipboard),
		prefs:    prefs,
	}

	a.scheduler = render.NewScheduler(opts.Renderer,
		render.WithTransform(a.transformMarkup),
	)
	a.saver = session.NewSaver(store, a.tabs, a.recent, 0)
	a.saver.Restore()

	a.renderActive()
	return a, nil
}

// transformMarkup is the scheduler's pre-render pipeline: the
// workspace script if one is loaded, then the label quoting pass, so
// script output still gets auto-quoting.
func (a *App) transformMarkup(markup string) string {
	a.mu.RLock()
	script := a.script
	a.mu.RUnlock()

	if script != nil {
		markup = script.Transform(markup)
	}
	return preprocess.Preprocess(markup)
}

// Notifier exposes user-facing notifications for the UI to subscribe.
func (a *App) Notifier() *Notifier { return a.notifier }

// Scheduler exposes the render pipeline for the UI to subscribe to
// commit, error and clear events.
func (a *App) Scheduler() *render.Scheduler { return a.scheduler }

// Tabs exposes the tab store for read access and change subscription.
func (a *App) Tabs() *session.Store { return a.tabs }

// Tree exposes the file tree manager.
func (a *App) Tree() *filetree.Manager { return a.tree }

// Exporter exposes the export operations.
func (a *App) Exporter() *export.Exporter { return a.exporter }

// RecentFiles returns the recent-files list, most recent first.
func (a *App) RecentFiles() []string { return a.recent.Paths() }

// Metrics returns a snapshot of the activity counters.
func (a *App) Metrics() MetricsSnapshot { return a.metrics.Snapshot() }

// Preferences returns the current preferences.
func (a *App) Preferences() config.Preferences {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prefs
}

// SetPreferences replaces the preferences and persists them.
func (a *App) SetPreferences(prefs config.Preferences) {
	a.mu.Lock()
	a.prefs = prefs
	a.mu.Unlock()

	if err := config.Save(a.store, prefs); err != nil {
		a.log.Warn("save preferences: %v", err)
	}
	a.renderActive()
}

// theme returns the render theme for the current UI mode.
func (a *App) theme() render.Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.darkMode {
		return render.ThemeDark
	}
	return render.ThemeLight
}

// SetDarkMode switches the UI mode and re-renders the active document
// with the matching theme.
func (a *App) SetDarkMode(dark bool) {
	a.mu.Lock()
	changed := a.darkMode != dark
	a.darkMode = dark
	a.mu.Unlock()

	if changed {
		a.renderActive()
	}
}

// renderActive pushes the active tab's content into the scheduler.
func (a *App) renderActive() {
	a.scheduler.Update(a.tabs.Active().Content, a.theme())
}

// OpenFile loads a file into the session. A path that is already open
// just activates its tab; an untouched default tab is repurposed in
// place rather than spawning a new one.
func (a *App) OpenFile(path string) error {
	abs, err := a.fsys.Abs(path)
	if err != nil {
		return fmt.Errorf("app: open %s: %w", path, err)
	}

	if tab, ok := a.tabs.FindByPath(abs); ok {
		if err := a.tabs.Activate(tab.ID); err != nil {
			return err
		}
		a.recent.Add(abs)
		a.renderActive()
		return nil
	}

	data, err := a.fsys.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Persisted recent entries can outlive their files.
			a.recent.Remove(abs)
		}
		return fmt.Errorf("app: open %s: %w", path, err)
	}
	content := string(data)
	title := a.fsys.Base(abs)

	if active := a.tabs.Active(); active.IsUntouchedDefault() {
		a.tabs.Apply(active.ID, session.Update{
			Title:   &title,
			Path:    &abs,
			Content: &content,
		})
	} else {
		a.tabs.Create(content, abs, title)
	}

	a.recent.Add(abs)
	a.metrics.RecordFileOpened()
	a.log.Debug("opened %s", abs)
	a.renderActive()
	return nil
}

// NewTab opens a fresh tab seeded with the starter diagram.
func (a *App) NewTab() session.Tab {
	tab := a.tabs.Create("", "", "")
	a.metrics.RecordTabCreated()
	a.renderActive()
	return tab
}

// CloseTab closes the given tab. The session never becomes empty; see
// the tab store.
func (a *App) CloseTab(id string) {
	a.tabs.Close(id)
	a.metrics.RecordTabClosed()
	a.renderActive()
}

// SelectTab activates a tab and renders its content.
func (a *App) SelectTab(id string) error {
	if err := a.tabs.Activate(id); err != nil {
		return err
	}
	a.renderActive()
	return nil
}

// Edit replaces the active tab's content and schedules a render.
func (a *App) Edit(content string) {
	active := a.tabs.Active()
	a.tabs.Apply(active.ID, session.Update{Content: &content})
	a.metrics.RecordEdit()
	a.scheduler.Update(content, a.theme())
}

// SaveActive writes the active tab to its backing file. Fails if the
// tab has no path yet; use SaveActiveAs.
func (a *App) SaveActive() error {
	active := a.tabs.Active()
	if active.Path == "" {
		return errors.New("app: active tab has no file; use save-as")
	}
	return a.saveTab(active, active.Path)
}

// SaveActiveAs writes the active tab to path and rebinds the tab to
// it. On write failure the tab keeps its previous path and title.
func (a *App) SaveActiveAs(path string) error {
	abs, err := a.fsys.Abs(path)
	if err != nil {
		return fmt.Errorf("app: save %s: %w", path, err)
	}
	return a.saveTab(a.tabs.Active(), abs)
}

func (a *App) saveTab(tab session.Tab, path string) error {
	if err := a.fsys.WriteFile(path, []byte(tab.Content), 0o644); err != nil {
		return fmt.Errorf("app: save %s: %w", path, err)
	}

	title := a.fsys.Base(path)
	a.tabs.Apply(tab.ID, session.Update{Path: &path, Title: &title})
	a.recent.Add(path)
	a.metrics.RecordFileSaved()
	a.log.Debug("saved %s", path)
	return nil
}

// OpenWorkspace points the file tree at a directory, starts watching
// it for external changes, and loads the workspace preprocess script
// if one is present.
func (a *App) OpenWorkspace(path string) error {
	if err := a.tree.LoadRoot(path); err != nil {
		return err
	}

	if a.watcher == nil {
		w, err := filetree.NewWatcher(a.tree, 0)
		if err != nil {
			a.log.Warn("file watching unavailable: %v", err)
		} else {
			a.watcher = w
		}
	} else {
		a.watcher.Sync()
	}

	a.loadWorkspaceScript()
	a.log.Info("workspace %s", a.tree.RootPath())
	return nil
}

// loadWorkspaceScript installs the workspace preprocess script, or
// clears the previous one when the new workspace has none.
func (a *App) loadWorkspaceScript() {
	var script *preprocess.Script
	scriptPath := a.fsys.Join(a.tree.RootPath(), preprocess.ScriptFileName)
	if data, err := a.fsys.ReadFile(scriptPath); err == nil {
		script = preprocess.NewScript(string(data))
		a.log.Info("loaded %s", scriptPath)
	}

	a.mu.Lock()
	a.script = script
	a.mu.Unlock()

	a.renderActive()
}

// CreateFile creates a diagram file through the tree and opens it.
func (a *App) CreateFile(path string) error {
	if err := a.tree.CreateFile(path); err != nil {
		return err
	}
	a.metrics.RecordTreeOp()
	return a.OpenFile(path)
}

// CreateDir creates a directory through the tree.
func (a *App) CreateDir(path string) error {
	if err := a.tree.CreateDir(path); err != nil {
		return err
	}
	a.metrics.RecordTreeOp()
	return nil
}

// DeleteEntry deletes a file or directory through the tree. An open
// tab for the deleted file stays open and unsaved.
func (a *App) DeleteEntry(path string) error {
	if err := a.tree.Delete(path); err != nil {
		return err
	}
	a.metrics.RecordTreeOp()
	a.recent.Remove(path)

	// The tab keeps its content; only the file binding is stale now.
	if tab, ok := a.tabs.FindByPath(path); ok {
		empty := ""
		a.tabs.Apply(tab.ID, session.Update{Path: &empty})
	}
	return nil
}

// RenameEntry renames a file or directory through the tree and
// rebinds any open tab to the new path.
func (a *App) RenameEntry(path, newName string) error {
	newPath, err := a.tree.Rename(path, newName)
	if err != nil {
		return err
	}
	a.metrics.RecordTreeOp()

	if tab, ok := a.tabs.FindByPath(path); ok {
		title := a.fsys.Base(newPath)
		a.tabs.Apply(tab.ID, session.Update{Path: &newPath, Title: &title})
	}
	a.recent.Remove(path)
	a.recent.Add(newPath)
	return nil
}

// Undo reverses the most recent tree operation. The outcome is
// reported through the notifier either way.
func (a *App) Undo() {
	err := a.tree.Undo()
	switch {
	case err == nil:
		a.metrics.RecordTreeUndo()
		a.notifier.Publish(SeverityInfo, "undid last file operation")
	case errors.Is(err, filetree.ErrNothingToUndo):
		a.notifier.Publish(SeverityInfo, "nothing to undo")
	default:
		a.log.Error("undo: %v", err)
		a.notifier.Publish(SeverityError, "undo failed: "+err.Error())
	}
}

// Shutdown flushes pending state and releases resources.
func (a *App) Shutdown() {
	a.scheduler.Close()
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("close watcher: %v", err)
		}
	}
	a.saver.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn("close state db: %v", err)
	}
	a.log.Info("shutdown complete")
}
