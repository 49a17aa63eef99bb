// Package view maintains the zoom/pan transform applied to the
// rendered graphic. The transform is presentation-only: it never
// touches markup or the rendered SVG itself.
package view

import "sync"

// Zoom bounds and input steps.
const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 0.1

	// FitMargin is the padding kept on each axis by FitToView.
	FitMargin = 16.0
)

// Point is a 2D offset in presentation coordinates.
type Point struct {
	X float64
	Y float64
}

// Size is a 2D extent in presentation coordinates.
type Size struct {
	Width  float64
	Height float64
}

// Viewport holds the zoom/pan state for the rendered graphic.
// Zoom is clamped to [MinZoom, MaxZoom]; pan is unbounded.
//
// Viewport is safe for concurrent use.
type Viewport struct {
	mu   sync.Mutex
	zoom float64
	pan  Point

	panning   bool
	panStart  Point // pointer position when the drag began
	panOrigin Point // pan offset when the drag began
}

// New creates a viewport at zoom 1 with no pan offset.
func New() *Viewport {
	return &Viewport{zoom: 1}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// Pan returns the current pan offset.
func (v *Viewport) Pan() Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pan
}

// Panning returns true while a pan drag is active.
func (v *Viewport) Panning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panning
}

// ZoomIn increases zoom by one wheel step.
func (v *Viewport) ZoomIn() {
	v.zoomBy(ZoomStep)
}

// ZoomOut decreases zoom by one wheel step.
func (v *Viewport) ZoomOut() {
	v.zoomBy(-ZoomStep)
}

func (v *Viewport) zoomBy(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = clampZoom(v.zoom + delta)
}

// BeginPan starts a pan drag at the given pointer position.
func (v *Viewport) BeginPan(p Point) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.panning = true
	v.panStart = p
	v.panOrigin = v.pan
}

// MovePan updates the pan offset from the current pointer position.
// No-op unless a drag is active.
func (v *Viewport) MovePan(p Point) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.panning {
		return
	}
	v.pan = Point{
		X: v.panOrigin.X + (p.X - v.panStart.X),
		Y: v.panOrigin.Y + (p.Y - v.panStart.Y),
	}
}

// EndPan finishes a pan drag.
func (v *Viewport) EndPan() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panning = false
}

// Reset restores zoom 1 and a zero pan offset.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.zoom = 1
	v.pan = Point{}
	v.panning = false
}

// FitToView computes the largest zoom at which the content fits in
// the container minus FitMargin on each axis, clamps it, and resets
// the pan offset. No-op when no content is present.
func (v *Viewport) FitToView(content, container Size) {
	if content.Width <= 0 || content.Height <= 0 {
		return
	}

	availW := container.Width - 2*FitMargin
	availH := container.Height - 2*FitMargin

	zoom := MinZoom
	if availW > 0 && availH > 0 {
		zoom = availW / content.Width
		if z := availH / content.Height; z < zoom {
			zoom = z
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = clampZoom(zoom)
	v.pan = Point{}
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
