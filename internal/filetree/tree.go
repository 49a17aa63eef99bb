// Package filetree maintains a lazily-loaded view of the workspace
// directory: diagram files and folders, expansion state, filesystem
// operations with undo, and change notification.
package filetree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/glyphpad/internal/vfs"
)

// Errors returned by tree operations.
var (
	ErrNoRoot        = errors.New("no workspace root loaded")
	ErrNotDir        = errors.New("not a directory")
	ErrExists        = errors.New("path already exists")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Diagram file extensions shown in the tree, lower case.
var diagramExts = map[string]bool{
	".mmd":     true,
	".mermaid": true,
}

// seededBody is written into files created through the tree so a new
// diagram renders immediately.
const seededBody = "flowchart TD\n    A[Start] --> B[End]\n"

// Node is one entry in the tree. For directories, Children is nil
// until the directory has been listed; a listed empty directory has a
// non-nil zero-length slice. Files always have nil Children.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Children []*Node
}

// Manager owns the tree for one workspace root.
//
// The tree is lazy: only the root and explicitly expanded directories
// are listed. Manager is safe for concurrent use; Root returns a deep
// copy so callers never observe partial updates.
type Manager struct {
	mu       sync.RWMutex
	fsys     vfs.VFS
	rootPath string
	root     *Node
	expanded map[string]bool

	undo *undoStack
	sf   singleflight.Group

	onChange []func()
}

// NewManager creates a manager over the given filesystem. No root is
// loaded yet.
func NewManager(fsys vfs.VFS) *Manager {
	return &Manager{
		fsys:     fsys,
		expanded: make(map[string]bool),
		undo:     newUndoStack(maxUndo),
	}
}

// LoadRoot points the tree at a workspace directory and lists its top
// level. Concurrent calls for the same path share one listing.
// Loading a new root drops expansion state and undo history.
func (m *Manager) LoadRoot(path string) error {
	abs, err := m.fsys.Abs(path)
	if err != nil {
		return fmt.Errorf("filetree: resolve root: %w", err)
	}
	if !m.fsys.IsDir(abs) {
		return fmt.Errorf("filetree: %s: %w", abs, ErrNotDir)
	}

	_, err, _ = m.sf.Do(abs, func() (any, error) {
		children, err := m.listDir(abs)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.rootPath = abs
		m.root = &Node{
			Name:     m.fsys.Base(abs),
			Path:     abs,
			IsDir:    true,
			Children: children,
		}
		m.expanded = make(map[string]bool)
		m.undo.clear()
		m.mu.Unlock()

		m.notify()
		return nil, nil
	})
	return err
}

// RootPath returns the loaded workspace root, empty if none.
func (m *Manager) RootPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rootPath
}

// Root returns a deep copy of the tree, or nil when no root is loaded.
func (m *Manager) Root() *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyNode(m.root)
}

// ExpandedDirs returns the paths of currently expanded directories.
func (m *Manager) ExpandedDirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.expanded))
	for p := range m.expanded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ToggleDir expands a collapsed directory (listing it on first
// expansion) or collapses an expanded one. Collapse keeps the cached
// children so re-expanding is instant.
func (m *Manager) ToggleDir(path string) error {
	m.mu.Lock()
	node := m.findLocked(path)
	if node == nil || !node.IsDir {
		m.mu.Unlock()
		return fmt.Errorf("filetree: %s: %w", path, ErrNotDir)
	}

	if m.expanded[path] {
		delete(m.expanded, path)
		m.mu.Unlock()
		m.notify()
		return nil
	}

	needsList := node.Children == nil
	m.expanded[path] = true
	m.mu.Unlock()

	if needsList {
		children, err := m.listDir(path)
		if err != nil {
			m.mu.Lock()
			delete(m.expanded, path)
			m.mu.Unlock()
			return err
		}
		m.mu.Lock()
		if node := m.findLocked(path); node != nil {
			node.Children = children
		}
		m.mu.Unlock()
	}

	m.notify()
	return nil
}

// Refresh re-lists the root and every expanded directory, keeping the
// expansion state. A directory that disappeared or fails to list
// degrades to an empty listing instead of failing the refresh.
func (m *Manager) Refresh() error {
	m.mu.RLock()
	rootPath := m.rootPath
	m.mu.RUnlock()

	if rootPath == "" {
		return ErrNoRoot
	}

	children, err := m.listDir(rootPath)
	if err != nil {
		return err
	}
	root := &Node{
		Name:     m.fsys.Base(rootPath),
		Path:     rootPath,
		IsDir:    true,
		Children: children,
	}

	m.mu.Lock()
	m.relistExpandedLocked(root)
	m.root = root
	// Drop expansion entries for directories that no longer exist in
	// the new tree.
	for p := range m.expanded {
		if m.findIn(root, p) == nil {
			delete(m.expanded, p)
		}
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

// relistExpandedLocked fills in children for every expanded directory
// under root, depth first so nested expansions resolve.
func (m *Manager) relistExpandedLocked(n *Node) {
	if n == nil || !n.IsDir {
		return
	}
	for _, child := range n.Children {
		if !child.IsDir || !m.expanded[child.Path] {
			continue
		}
		children, err := m.listDir(child.Path)
		if err != nil {
			children = []*Node{}
		}
		child.Children = children
		m.relistExpandedLocked(child)
	}
}

// CreateFile creates a new diagram file seeded with a starter body and
// refreshes the tree. The inverse operation is pushed on the undo
// stack.
func (m *Manager) CreateFile(path string) error {
	if m.fsys.Exists(path) {
		return fmt.Errorf("filetree: %s: %w", path, ErrExists)
	}
	if err := m.fsys.WriteFile(path, []byte(seededBody), 0o644); err != nil {
		return fmt.Errorf("filetree: create file: %w", err)
	}

	m.undo.push(entry{
		label: "create " + m.fsys.Base(path),
		apply: func() error { return m.fsys.Remove(path) },
	})
	return m.refreshAfterChange()
}

// CreateDir creates a new directory and refreshes the tree.
func (m *Manager) CreateDir(path string) error {
	if m.fsys.Exists(path) {
		return fmt.Errorf("filetree: %s: %w", path, ErrExists)
	}
	if err := m.fsys.Mkdir(path, 0o755); err != nil {
		return fmt.Errorf("filetree: create dir: %w", err)
	}

	m.undo.push(entry{
		label: "create " + m.fsys.Base(path),
		apply: func() error { return m.fsys.Remove(path) },
	})
	return m.refreshAfterChange()
}

// Delete removes a file or directory tree. For a readable single file
// the content is captured first and an undo action restoring it is
// pushed; directory deletions and unreadable files are not undoable.
func (m *Manager) Delete(path string) error {
	isDir := m.fsys.IsDir(path)

	var content []byte
	captured := false
	if !isDir {
		if data, err := m.fsys.ReadFile(path); err == nil {
			content = data
			captured = true
		}
	}

	if err := m.fsys.RemoveAll(path); err != nil {
		return fmt.Errorf("filetree: delete: %w", err)
	}

	if isDir {
		m.mu.Lock()
		for p := range m.expanded {
			if p == path || strings.HasPrefix(p, path+"/") {
				delete(m.expanded, p)
			}
		}
		m.mu.Unlock()
	}

	if captured {
		m.undo.push(entry{
			label: "delete " + m.fsys.Base(path),
			apply: func() error { return m.fsys.WriteFile(path, content, 0o644) },
		})
	}
	return m.refreshAfterChange()
}

// Rename renames an entry within its parent directory and returns the
// new path. newName is a bare name, not a path. Expansion state
// follows renamed directories.
func (m *Manager) Rename(path, newName string) (string, error) {
	if newName == "" || strings.ContainsAny(newName, "/\\") {
		return "", fmt.Errorf("filetree: invalid name %q", newName)
	}

	newPath := m.fsys.Join(m.fsys.Dir(path), newName)
	if newPath == path {
		return path, nil
	}
	if m.fsys.Exists(newPath) {
		return "", fmt.Errorf("filetree: %s: %w", newPath, ErrExists)
	}

	if err := m.fsys.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("filetree: rename: %w", err)
	}
	m.remapExpanded(path, newPath)

	m.undo.push(entry{
		label: "rename " + newName,
		apply: func() error {
			if err := m.fsys.Rename(newPath, path); err != nil {
				return err
			}
			m.remapExpanded(newPath, path)
			return nil
		},
	})
	return newPath, m.refreshAfterChange()
}

// remapExpanded rewrites expansion keys under oldPath to newPath.
func (m *Manager) remapExpanded(oldPath, newPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for p := range m.expanded {
		if p == oldPath {
			delete(m.expanded, p)
			m.expanded[newPath] = true
		} else if strings.HasPrefix(p, oldPath+"/") {
			delete(m.expanded, p)
			m.expanded[newPath+p[len(oldPath):]] = true
		}
	}
}

// Undo reverses the most recent tree operation. The entry is consumed
// even when reversing it fails, so a broken undo cannot wedge the
// stack. Returns ErrNothingToUndo when the stack is empty.
func (m *Manager) Undo() error {
	e, ok := m.undo.pop()
	if !ok {
		return ErrNothingToUndo
	}
	if err := e.apply(); err != nil {
		return fmt.Errorf("filetree: undo %s: %w", e.label, err)
	}
	return m.refreshAfterChange()
}

// CanUndo reports whether an operation is available to undo.
func (m *Manager) CanUndo() bool {
	return m.undo.len() > 0
}

// OnChange registers a handler called after every tree update.
func (m *Manager) OnChange(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, handler)
}

func (m *Manager) notify() {
	m.mu.RLock()
	handlers := make([]func(), len(m.onChange))
	copy(handlers, m.onChange)
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler()
	}
}

// refreshAfterChange refreshes when a root is loaded; mutations are
// legal before LoadRoot (the tree just has nothing to show yet).
func (m *Manager) refreshAfterChange() error {
	m.mu.RLock()
	loaded := m.rootPath != ""
	m.mu.RUnlock()

	if !loaded {
		return nil
	}
	return m.Refresh()
}

// listDir lists one directory level, applying the visibility filter
// and ordering directories before files.
func (m *Manager) listDir(path string) ([]*Node, error) {
	entries, err := m.fsys.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("filetree: list %s: %w", path, err)
	}

	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if !visible(e) {
			continue
		}
		nodes = append(nodes, &Node{
			Name:  e.Name(),
			Path:  m.fsys.Join(path, e.Name()),
			IsDir: e.IsDir(),
		})
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsDir != nodes[j].IsDir {
			return nodes[i].IsDir
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	return nodes, nil
}

// visible reports whether an entry belongs in the tree: hidden entries
// are excluded, and files must carry a diagram extension. Directories
// are always shown so users can navigate into them.
func visible(e vfs.FileInfo) bool {
	if strings.HasPrefix(e.Name(), ".") {
		return false
	}
	if e.IsDir() {
		return true
	}
	dot := strings.LastIndex(e.Name(), ".")
	if dot < 0 {
		return false
	}
	return diagramExts[strings.ToLower(e.Name()[dot:])]
}

func (m *Manager) findLocked(path string) *Node {
	return m.findIn(m.root, path)
}

func (m *Manager) findIn(n *Node, path string) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	for _, child := range n.Children {
		if found := m.findIn(child, path); found != nil {
			return found
		}
	}
	return nil
}

func copyNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:  n.Name,
		Path:  n.Path,
		IsDir: n.IsDir,
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = copyNode(child)
		}
	}
	return out
}
