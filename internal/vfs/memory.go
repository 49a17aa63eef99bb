package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS implements VFS using an in-memory file system.
// It is primarily used for testing.
//
// MemFS is safe for concurrent use. Paths are slash-separated and
// normalized to be absolute.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
}

type memFile struct {
	content []byte
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
	}
}

// Ensure MemFS implements VFS.
var _ VFS = (*MemFS)(nil)

func (m *MemFS) clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// AddFile creates a file and any missing parent directories.
// Intended for test setup.
func (m *MemFS) AddFile(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	m.addParentsLocked(p)
	m.files[p] = &memFile{content: []byte(content), modTime: time.Now()}
}

// AddDir creates a directory and any missing parents.
// Intended for test setup.
func (m *MemFS) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	m.addParentsLocked(p)
	m.dirs[p] = true
}

func (m *MemFS) addParentsLocked(p string) {
	for dir := path.Dir(p); dir != "/" && !m.dirs[dir]; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = m.clean(p)
	f, ok := m.files[p]
	if !ok {
		if m.dirs[p] {
			return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrInvalid}
		}
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}

	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

// WriteFile writes data to a file, creating it if necessary.
func (m *MemFS) WriteFile(p string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	if m.dirs[p] {
		return &fs.PathError{Op: "write", Path: p, Err: fs.ErrInvalid}
	}
	if !m.dirs[path.Dir(p)] {
		return &fs.PathError{Op: "write", Path: p, Err: fs.ErrNotExist}
	}

	content := make([]byte, len(data))
	copy(content, data)
	m.files[p] = &memFile{content: content, modTime: time.Now()}
	return nil
}

// ReadDir reads a directory and returns its entries sorted by name.
func (m *MemFS) ReadDir(p string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = m.clean(p)
	if !m.dirs[p] {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}

	var infos []FileInfo
	for dir := range m.dirs {
		if dir != p && path.Dir(dir) == p {
			infos = append(infos, NewFileInfo(path.Base(dir), 0, time.Time{}, true))
		}
	}
	for file, f := range m.files {
		if path.Dir(file) == p {
			infos = append(infos, NewFileInfo(path.Base(file), int64(len(f.content)), f.modTime, false))
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// Stat returns information about a file or directory.
func (m *MemFS) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = m.clean(p)
	if m.dirs[p] {
		return NewFileInfo(path.Base(p), 0, time.Time{}, true), nil
	}
	if f, ok := m.files[p]; ok {
		return NewFileInfo(path.Base(p), int64(len(f.content)), f.modTime, false), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

// Mkdir creates a directory.
func (m *MemFS) Mkdir(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	if m.dirs[p] || m.files[p] != nil {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	if !m.dirs[path.Dir(p)] {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrNotExist}
	}
	m.dirs[p] = true
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	if m.files[p] != nil {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	m.addParentsLocked(p)
	m.dirs[p] = true
	return nil
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		return nil
	}
	if m.dirs[p] {
		if m.hasChildrenLocked(p) {
			return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrInvalid}
		}
		delete(m.dirs, p)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
}

// RemoveAll removes a path and all its contents.
func (m *MemFS) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = m.clean(p)
	delete(m.files, p)
	delete(m.dirs, p)

	prefix := p + "/"
	for file := range m.files {
		if strings.HasPrefix(file, prefix) {
			delete(m.files, file)
		}
	}
	for dir := range m.dirs {
		if strings.HasPrefix(dir, prefix) {
			delete(m.dirs, dir)
		}
	}
	return nil
}

// Rename renames (moves) a file or directory.
func (m *MemFS) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath = m.clean(oldPath)
	newPath = m.clean(newPath)

	if f, ok := m.files[oldPath]; ok {
		delete(m.files, oldPath)
		m.files[newPath] = f
		return nil
	}

	if m.dirs[oldPath] {
		delete(m.dirs, oldPath)
		m.dirs[newPath] = true

		oldPrefix := oldPath + "/"
		newPrefix := newPath + "/"
		moveFiles := make(map[string]*memFile)
		for file, f := range m.files {
			if strings.HasPrefix(file, oldPrefix) {
				moveFiles[newPrefix+strings.TrimPrefix(file, oldPrefix)] = f
				delete(m.files, file)
			}
		}
		for file, f := range moveFiles {
			m.files[file] = f
		}
		moveDirs := make([]string, 0)
		for dir := range m.dirs {
			if strings.HasPrefix(dir, oldPrefix) {
				moveDirs = append(moveDirs, dir)
			}
		}
		for _, dir := range moveDirs {
			delete(m.dirs, dir)
			m.dirs[newPrefix+strings.TrimPrefix(dir, oldPrefix)] = true
		}
		return nil
	}

	return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = m.clean(p)
	return m.dirs[p] || m.files[p] != nil
}

// IsDir returns true if the path is a directory.
func (m *MemFS) IsDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[m.clean(p)]
}

// Abs returns the absolute path.
func (m *MemFS) Abs(p string) (string, error) {
	return m.clean(p), nil
}

// Join joins path elements.
func (m *MemFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// Dir returns the directory portion of a path.
func (m *MemFS) Dir(p string) string {
	return path.Dir(m.clean(p))
}

// Base returns the last element of a path.
func (m *MemFS) Base(p string) string {
	return path.Base(p)
}

// Ext returns the file extension.
func (m *MemFS) Ext(p string) string {
	return path.Ext(p)
}

func (m *MemFS) hasChildrenLocked(p string) bool {
	prefix := p + "/"
	for file := range m.files {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	for dir := range m.dirs {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	return false
}
