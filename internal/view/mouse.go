package view

import "github.com/gdamore/tcell/v2"

// EventKind classifies a pointer event for the viewport.
type EventKind int

const (
	// EventNone is an event the viewport ignores.
	EventNone EventKind = iota
	// EventWheelUp zooms in one step.
	EventWheelUp
	// EventWheelDown zooms out one step.
	EventWheelDown
	// EventPanStart begins a pan drag.
	EventPanStart
	// EventPanMove continues a pan drag.
	EventPanMove
	// EventPanEnd finishes a pan drag.
	EventPanEnd
)

// PointerEvent is a viewport-relevant pointer event.
type PointerEvent struct {
	Kind EventKind
	Pos  Point
}

// TranslateMouse converts a terminal mouse event into a viewport
// pointer event. The pan gesture is a secondary-button drag, or a
// primary-button drag with the Ctrl modifier held. panning is the
// viewport's current drag state.
func TranslateMouse(ev *tcell.EventMouse, panning bool) PointerEvent {
	x, y := ev.Position()
	pos := Point{X: float64(x), Y: float64(y)}
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		return PointerEvent{Kind: EventWheelUp, Pos: pos}
	case buttons&tcell.WheelDown != 0:
		return PointerEvent{Kind: EventWheelDown, Pos: pos}
	}

	panHeld := buttons&tcell.Button2 != 0 ||
		(buttons&tcell.Button1 != 0 && ev.Modifiers()&tcell.ModCtrl != 0)

	switch {
	case panHeld && !panning:
		return PointerEvent{Kind: EventPanStart, Pos: pos}
	case panHeld && panning:
		return PointerEvent{Kind: EventPanMove, Pos: pos}
	case panning:
		return PointerEvent{Kind: EventPanEnd, Pos: pos}
	default:
		return PointerEvent{Kind: EventNone, Pos: pos}
	}
}

// Apply feeds a pointer event into the viewport.
func Apply(v *Viewport, ev PointerEvent) {
	switch ev.Kind {
	case EventWheelUp:
		v.ZoomIn()
	case EventWheelDown:
		v.ZoomOut()
	case EventPanStart:
		v.BeginPan(ev.Pos)
	case EventPanMove:
		v.MovePan(ev.Pos)
	case EventPanEnd:
		v.EndPan()
	}
}

// HandleMouse translates and applies a terminal mouse event in one
// step.
func HandleMouse(v *Viewport, ev *tcell.EventMouse) {
	Apply(v, TranslateMouse(ev, v.Panning()))
}
