// Package vfs provides a file system abstraction for the editor core.
//
// The VFS interface allows swapping the underlying file system,
// enabling testing with an in-memory implementation.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the file system surface the editor depends on.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// ReadDir reads a directory and returns its entries.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns information about a file or directory.
	Stat(path string) (FileInfo, error)

	// Mkdir creates a directory.
	Mkdir(path string, perm fs.FileMode) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// RemoveAll removes a path and all its contents.
	RemoveAll(path string) error

	// Rename renames (moves) a file or directory.
	Rename(oldPath, newPath string) error

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// Join joins path elements.
	Join(elem ...string) string

	// Dir returns the directory portion of a path.
	Dir(path string) string

	// Base returns the last element of a path.
	Base(path string) string

	// Ext returns the file extension.
	Ext(path string) string
}

// FileInfo describes a file or directory entry.
type FileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(name string, size int64, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		name:    name,
		size:    size,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }
