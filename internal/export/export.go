// Package export writes the rendered graphic to files and the system
// clipboard.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/glyphpad/internal/vfs"
)

// ErrNoGraphic indicates an export was requested while no rendered
// graphic is available (empty document or failed render).
var ErrNoGraphic = errors.New("no rendered graphic to export")

// Rasterizer converts SVG markup into PNG bytes at the given scale
// factor (1.0 = natural size).
type Rasterizer interface {
	Rasterize(ctx context.Context, svg string, scale float64) ([]byte, error)
}

// Clipboard abstracts the system clipboard.
type Clipboard interface {
	WriteText(text string) error
	WriteImage(png []byte) error
}

// Exporter performs the export operations over the current graphic.
type Exporter struct {
	fsys      vfs.VFS
	raster    Rasterizer
	clipboard Clipboard
}

// New creates an exporter. raster and clipboard may be nil; the
// operations needing them then fail with a descriptive error.
func New(fsys vfs.VFS, raster Rasterizer, clipboard Clipboard) *Exporter {
	return &Exporter{fsys: fsys, raster: raster, clipboard: clipboard}
}

// SaveSVG writes the graphic as-is to path.
func (e *Exporter) SaveSVG(svg, path string) error {
	if svg == "" {
		return ErrNoGraphic
	}
	if err := e.fsys.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("export: save svg: %w", err)
	}
	return nil
}

// SavePNG rasterizes the graphic at the given scale and writes it to
// path.
func (e *Exporter) SavePNG(ctx context.Context, svg, path string, scale float64) error {
	if svg == "" {
		return ErrNoGraphic
	}
	if e.raster == nil {
		return errors.New("export: no rasterizer available")
	}
	png, err := e.raster.Rasterize(ctx, svg, scale)
	if err != nil {
		return fmt.Errorf("export: rasterize: %w", err)
	}
	if err := e.fsys.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("export: save png: %w", err)
	}
	return nil
}

// CopyImage rasterizes the graphic and places it on the clipboard.
func (e *Exporter) CopyImage(ctx context.Context, svg string) error {
	if svg == "" {
		return ErrNoGraphic
	}
	if e.raster == nil {
		return errors.New("export: no rasterizer available")
	}
	if e.clipboard == nil {
		return errors.New("export: no clipboard available")
	}
	png, err := e.raster.Rasterize(ctx, svg, 1.0)
	if err != nil {
		return fmt.Errorf("export: rasterize: %w", err)
	}
	if err := e.clipboard.WriteImage(png); err != nil {
		return fmt.Errorf("export: clipboard: %w", err)
	}
	return nil
}

// CopyMarkup places the document source on the clipboard. Unlike the
// graphic exports this works on unrendered documents too.
func (e *Exporter) CopyMarkup(markup string) error {
	if e.clipboard == nil {
		return errors.New("export: no clipboard available")
	}
	if err := e.clipboard.WriteText(markup); err != nil {
		return fmt.Errorf("export: clipboard: %w", err)
	}
	return nil
}
