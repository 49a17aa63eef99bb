// Package render drives the external diagram renderer: it debounces
// markup updates, orders in-flight renders with a generation counter,
// and cleans renderer error messages for display.
package render

import (
	"context"
	"fmt"
)

// Theme selects the renderer color scheme.
type Theme int

const (
	// ThemeLight renders with the light color scheme.
	ThemeLight Theme = iota
	// ThemeDark renders with the dark color scheme.
	ThemeDark
)

// String returns the theme name as the renderer expects it.
func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	default:
		return "light"
	}
}

// Options configure a single render invocation.
type Options struct {
	Theme Theme
}

// Renderer turns diagram markup into SVG text. Implementations are
// external engines; they may be slow, may complete out of call order,
// and may leave transient artifacts behind on both success and
// failure (see Scheduler's purge hook).
type Renderer interface {
	Render(ctx context.Context, markup string, opts Options) (string, error)
}

// Error is returned by renderers for invalid markup. The message may
// embed HTML fragments echoed from the input; use CleanMessage before
// showing it to the user.
type Error struct {
	Message string
}

// Error returns the raw renderer message.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a renderer error.
func NewError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
