// Package config holds user preferences: defaults, an optional TOML
// file, and a key/value overlay persisted from in-app changes. Later
// layers win.
package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dshills/glyphpad/internal/persist"
	"github.com/dshills/glyphpad/internal/vfs"
)

// ConfigFileName is the preferences file looked up in the config
// directory.
const ConfigFileName = "glyphpad.toml"

// Preferences are the user-tunable settings. The zero value is not
// meaningful; start from Default.
type Preferences struct {
	// LightTheme and DarkTheme select the render theme per UI mode.
	LightTheme string `toml:"light_theme" json:"lightTheme"`
	DarkTheme  string `toml:"dark_theme" json:"darkTheme"`

	// FontFamily is injected into rendered diagrams.
	FontFamily string `toml:"font_family" json:"fontFamily"`

	// CustomCSS is appended verbatim to the preview styling.
	CustomCSS string `toml:"custom_css" json:"customCss"`
}

// Default returns the stock preferences.
func Default() Preferences {
	return Preferences{
		LightTheme: "default",
		DarkTheme:  "dark",
		FontFamily: "sans-serif",
	}
}

// Load assembles preferences from defaults, the TOML file at path (if
// it exists) and the persisted overlay. A missing file or store entry
// is not an error; a malformed file is.
func Load(fsys vfs.VFS, path string, store persist.Store) (Preferences, error) {
	prefs := Default()

	if path != "" && fsys.Exists(path) {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return prefs, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &prefs); err != nil {
			return prefs, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if store != nil {
		var overlay Preferences
		found, err := store.Get(persist.KeyPreferences, &overlay)
		if err == nil && found {
			prefs.merge(overlay)
		}
	}

	return prefs, nil
}

// Save writes the preferences overlay to the store.
func Save(store persist.Store, prefs Preferences) error {
	if store == nil {
		return nil
	}
	return store.Set(persist.KeyPreferences, prefs)
}

// merge overwrites fields set in the overlay, leaving empty overlay
// fields alone.
func (p *Preferences) merge(o Preferences) {
	if o.LightTheme != "" {
		p.LightTheme = o.LightTheme
	}
	if o.DarkTheme != "" {
		p.DarkTheme = o.DarkTheme
	}
	if o.FontFamily != "" {
		p.FontFamily = o.FontFamily
	}
	if o.CustomCSS != "" {
		p.CustomCSS = o.CustomCSS
	}
}
