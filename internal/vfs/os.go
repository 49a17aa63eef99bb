package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements VFS using the operating system's file system.
type OSFS struct{}

// NewOSFS creates a new OS file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Ensure OSFS implements VFS.
var _ VFS = (*OSFS)(nil)

// ReadFile reads the entire file content.
func (o *OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating it if necessary.
func (o *OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// ReadDir reads a directory and returns its entries.
func (o *OSFS) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Entry removed between ReadDir and Info; skip it.
			continue
		}
		infos = append(infos, NewFileInfo(entry.Name(), info.Size(), info.ModTime(), entry.IsDir()))
	}
	return infos, nil
}

// Stat returns information about a file or directory.
func (o *OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return NewFileInfo(info.Name(), info.Size(), info.ModTime(), info.IsDir()), nil
}

// Mkdir creates a directory.
func (o *OSFS) Mkdir(path string, perm fs.FileMode) error {
	return os.Mkdir(path, perm)
}

// MkdirAll creates a directory and all parent directories.
func (o *OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes a file or empty directory.
func (o *OSFS) Remove(path string) error {
	return os.Remove(path)
}

// RemoveAll removes a path and all its contents.
func (o *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Rename renames (moves) a file or directory.
func (o *OSFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Exists returns true if the path exists.
func (o *OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path is a directory.
func (o *OSFS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Abs returns the absolute path.
func (o *OSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Join joins path elements.
func (o *OSFS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Dir returns the directory portion of a path.
func (o *OSFS) Dir(path string) string {
	return filepath.Dir(path)
}

// Base returns the last element of a path.
func (o *OSFS) Base(path string) string {
	return filepath.Base(path)
}

// Ext returns the file extension.
func (o *OSFS) Ext(path string) string {
	return filepath.Ext(path)
}
