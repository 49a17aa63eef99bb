package config

import (
	"testing"

	"github.com/dshills/glyphpad/internal/persist"
	"github.com/dshills/glyphpad/internal/vfs"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	fsys := vfs.NewMemFS()

	prefs, err := Load(fsys, "/missing/glyphpad.toml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if prefs != Default() {
		t.Errorf("prefs = %+v, want defaults", prefs)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/etc/glyphpad.toml", `
light_theme = "neutral"
font_family = "Fira Code"
`)

	prefs, err := Load(fsys, "/etc/glyphpad.toml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if prefs.LightTheme != "neutral" {
		t.Errorf("LightTheme = %q", prefs.LightTheme)
	}
	if prefs.FontFamily != "Fira Code" {
		t.Errorf("FontFamily = %q", prefs.FontFamily)
	}
	// Unset keys keep their defaults.
	if prefs.DarkTheme != "dark" {
		t.Errorf("DarkTheme = %q, want dark", prefs.DarkTheme)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/etc/glyphpad.toml", "light_theme = [broken")

	if _, err := Load(fsys, "/etc/glyphpad.toml", nil); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestLoad_StoreOverlayWinsOverFile(t *testing.T) {
	fsys := vfs.NewMemFS()
	fsys.AddFile("/etc/glyphpad.toml", `light_theme = "neutral"`)

	store := persist.NewMemStore()
	defer store.Close()
	if err := Save(store, Preferences{LightTheme: "forest", CustomCSS: ".node { stroke: red }"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	prefs, err := Load(fsys, "/etc/glyphpad.toml", store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if prefs.LightTheme != "forest" {
		t.Errorf("LightTheme = %q, want overlay value", prefs.LightTheme)
	}
	if prefs.CustomCSS == "" {
		t.Error("CustomCSS lost")
	}
	// Fields the overlay leaves empty fall through to the file/defaults.
	if prefs.FontFamily != "sans-serif" {
		t.Errorf("FontFamily = %q", prefs.FontFamily)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := persist.NewMemStore()
	defer store.Close()

	want := Preferences{
		LightTheme: "base",
		DarkTheme:  "dark",
		FontFamily: "monospace",
		CustomCSS:  "svg { background: #fafafa }",
	}
	if err := Save(store, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(vfs.NewMemFS(), "", store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
