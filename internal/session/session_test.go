package session

import (
	"testing"
	"time"

	"github.com/dshills/glyphpad/internal/persist"
)

func strPtr(s string) *string { return &s }

func TestStore_StartsWithDefaultTab(t *testing.T) {
	s := NewStore()

	tabs := s.Tabs()
	if len(tabs) != 1 {
		t.Fatalf("Count = %d, want 1", len(tabs))
	}
	if tabs[0].Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", tabs[0].Title, DefaultTitle)
	}
	if tabs[0].Content != DefaultTemplate {
		t.Errorf("Content = %q, want template", tabs[0].Content)
	}
	if s.Active().ID != tabs[0].ID {
		t.Error("new tab should be active")
	}
}

func TestStore_CreateDerivesTitleFromPath(t *testing.T) {
	s := NewStore()

	tab := s.Create("graph TD\n", "/work/diagrams/pipeline.mmd", "")
	if tab.Title != "pipeline.mmd" {
		t.Errorf("Title = %q, want pipeline.mmd", tab.Title)
	}
	if s.Active().ID != tab.ID {
		t.Error("created tab should become active")
	}
}

func TestStore_Apply(t *testing.T) {
	s := NewStore()
	tab := s.Active()

	s.Apply(tab.ID, Update{Content: strPtr("graph LR\n"), Title: strPtr("edited")})

	got, ok := s.Get(tab.ID)
	if !ok {
		t.Fatal("tab disappeared")
	}
	if got.Content != "graph LR\n" || got.Title != "edited" {
		t.Errorf("got %+v", got)
	}
	if got.Path != "" {
		t.Errorf("Path changed to %q", got.Path)
	}

	// Unknown id is a no-op.
	s.Apply("missing", Update{Title: strPtr("x")})
}

func TestStore_CloseActivatesAdjacent(t *testing.T) {
	s := NewStore()
	first := s.Active()
	second := s.Create("", "", "two")
	third := s.Create("", "", "three")

	// Close the middle tab while it is active; the tab that slid into
	// its index becomes active.
	if err := s.Activate(second.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	s.Close(second.ID)

	if s.Active().ID != third.ID {
		t.Errorf("active = %q, want %q", s.Active().Title, third.Title)
	}

	// Close the last tab in the list while active; activation clamps.
	if err := s.Activate(third.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	s.Close(third.ID)
	if s.Active().ID != first.ID {
		t.Errorf("active = %q, want %q", s.Active().Title, first.Title)
	}
}

func TestStore_CloseInactiveKeepsActive(t *testing.T) {
	s := NewStore()
	first := s.Active()
	second := s.Create("", "", "two")

	s.Close(first.ID)
	if s.Active().ID != second.ID {
		t.Error("closing an inactive tab changed the active tab")
	}
}

func TestStore_NeverEmpty(t *testing.T) {
	s := NewStore()
	only := s.Active()

	s.Close(only.ID)

	if s.Count() != 1 {
		t.Fatalf("Count = %d after closing the last tab, want 1", s.Count())
	}
	fresh := s.Active()
	if fresh.ID == only.ID {
		t.Error("expected a fresh tab, got the closed one")
	}
	if fresh.Content != DefaultTemplate {
		t.Error("replacement tab should carry the default template")
	}
}

func TestStore_ActivateUnknown(t *testing.T) {
	s := NewStore()
	active := s.Active()

	if err := s.Activate("nope"); err != ErrTabNotFound {
		t.Fatalf("err = %v, want ErrTabNotFound", err)
	}
	if s.Active().ID != active.ID {
		t.Error("failed activation changed the active tab")
	}
}

func TestStore_FindByPath(t *testing.T) {
	s := NewStore()
	s.Create("graph TD\n", "/tmp/a.mmd", "")

	if _, ok := s.FindByPath("/tmp/a.mmd"); !ok {
		t.Error("FindByPath missed an open path")
	}
	if _, ok := s.FindByPath("/tmp/b.mmd"); ok {
		t.Error("FindByPath matched an unopened path")
	}
	if _, ok := s.FindByPath(""); ok {
		t.Error("FindByPath matched the empty path")
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	s.Create("graph TD\n", "/tmp/a.mmd", "")
	kept := s.Create("pie\n", "", "chart")

	snap := s.Snapshot()
	if snap.ActiveID != kept.ID {
		t.Fatalf("snapshot active = %q, want %q", snap.ActiveID, kept.ID)
	}

	restored := NewStore()
	restored.Restore(snap)

	if restored.Count() != 3 {
		t.Fatalf("Count = %d after restore, want 3", restored.Count())
	}
	if restored.Active().ID != kept.ID {
		t.Error("restore lost the active pointer")
	}
	got, ok := restored.Get(kept.ID)
	if !ok || got.Content != "pie\n" {
		t.Errorf("restored tab = %+v", got)
	}
}

func TestStore_RestoreDegradesGracefully(t *testing.T) {
	s := NewStore()

	// Empty state: store re-seeds itself.
	s.Restore(State{})
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}

	// Unknown active id: first tab wins.
	s.Restore(State{
		Tabs:     []Tab{{ID: "a", Title: "one", Content: "x"}, {ID: "b", Title: "two", Content: "y"}},
		ActiveID: "missing",
	})
	if s.Active().ID != "a" {
		t.Errorf("active = %q, want a", s.Active().ID)
	}
}

func TestStore_OnChange(t *testing.T) {
	s := NewStore()
	calls := 0
	s.OnChange(func() { calls++ })

	tab := s.Create("", "", "")
	s.Apply(tab.ID, Update{Title: strPtr("x")})
	s.Close(tab.ID)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRecentFiles_MRUOrder(t *testing.T) {
	r := NewRecentFiles()
	r.Add("/a.mmd")
	r.Add("/b.mmd")
	r.Add("/a.mmd")

	got := r.Paths()
	if len(got) != 2 || got[0] != "/a.mmd" || got[1] != "/b.mmd" {
		t.Errorf("Paths = %v", got)
	}
}

func TestRecentFiles_Cap(t *testing.T) {
	r := NewRecentFiles()
	for i := 0; i < MaxRecent+5; i++ {
		r.Add("/f" + string(rune('a'+i)) + ".mmd")
	}

	got := r.Paths()
	if len(got) != MaxRecent {
		t.Fatalf("len = %d, want %d", len(got), MaxRecent)
	}
	if got[0] != "/fo.mmd" {
		t.Errorf("front = %q, want most recent", got[0])
	}
}

func TestRecentFiles_Remove(t *testing.T) {
	r := NewRecentFiles()
	r.Add("/a.mmd")
	r.Add("/b.mmd")
	r.Remove("/a.mmd")

	got := r.Paths()
	if len(got) != 1 || got[0] != "/b.mmd" {
		t.Errorf("Paths = %v", got)
	}
}

func TestSaver_DebouncedWrite(t *testing.T) {
	kv := persist.NewMemStore()
	tabs := NewStore()
	recent := NewRecentFiles()
	saver := NewSaver(kv, tabs, recent, 20*time.Millisecond)
	defer saver.Close()

	tabs.Create("graph TD\n", "/a.mmd", "")
	recent.Add("/a.mmd")

	// Nothing written before the delay elapses.
	var st State
	if found, _ := kv.Get(persist.KeyTabs, &st); found {
		t.Fatal("write happened before the debounce delay")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if found, _ := kv.Get(persist.KeyTabs, &st); found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced write never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if len(st.Tabs) != 2 {
		t.Errorf("persisted %d tabs, want 2", len(st.Tabs))
	}
	var paths []string
	if found, _ := kv.Get(persist.KeyRecentFiles, &paths); !found || len(paths) != 1 {
		t.Errorf("recent files = %v found=%v", paths, true)
	}
}

func TestSaver_RestoreRoundTrip(t *testing.T) {
	kv := persist.NewMemStore()

	tabs := NewStore()
	recent := NewRecentFiles()
	saver := NewSaver(kv, tabs, recent, time.Hour)
	opened := tabs.Create("graph LR\n", "/tmp/x.mmd", "")
	recent.Add("/tmp/x.mmd")
	saver.Flush()
	saver.Close()

	tabs2 := NewStore()
	recent2 := NewRecentFiles()
	saver2 := NewSaver(kv, tabs2, recent2, time.Hour)
	defer saver2.Close()
	saver2.Restore()

	if tabs2.Count() != 2 {
		t.Fatalf("Count = %d after restore, want 2", tabs2.Count())
	}
	if tabs2.Active().ID != opened.ID {
		t.Error("restore lost the active tab")
	}
	got := recent2.Paths()
	if len(got) != 1 || got[0] != "/tmp/x.mmd" {
		t.Errorf("recent = %v", got)
	}
}

func TestSaver_RestoreWithEmptyStore(t *testing.T) {
	kv := persist.NewMemStore()
	tabs := NewStore()
	recent := NewRecentFiles()
	saver := NewSaver(kv, tabs, recent, time.Hour)
	defer saver.Close()

	saver.Restore()

	if tabs.Count() != 1 {
		t.Errorf("Count = %d, want the default tab", tabs.Count())
	}
	if len(recent.Paths()) != 0 {
		t.Errorf("recent = %v, want empty", recent.Paths())
	}
}
