package filetree

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/glyphpad/internal/vfs"
)

func TestWatcher_RefreshesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mmd"), []byte("graph TD\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	m := NewManager(vfs.NewOSFS())
	if err := m.LoadRoot(dir); err != nil {
		t.Fatalf("LoadRoot failed: %v", err)
	}

	w, err := NewWatcher(m, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "b.mmd"), []byte("graph LR\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		root := m.Root()
		if root != nil && len(root.Children) == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("tree never picked up the new file; children = %v", names(root.Children))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
