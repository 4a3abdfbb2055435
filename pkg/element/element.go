// Package element defines the host abstraction the motion runtime animates.
//
// The runtime never touches a DOM or widget tree directly. A host adapts its
// nodes to Handle, and every read and write goes through it.
package element

import "fmt"

// Rect is an axis-aligned box in viewport pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g, %g, %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// EventListener receives host events. The payload type depends on the event;
// pointer events carry a PointerEvent.
type EventListener func(payload any)

// Handle is an opaque reference to a host element.
type Handle interface {
	// Measure returns the element's current visual bounding box, including
	// any transform in effect.
	Measure() Rect
	// SetStyle writes an inline style property.
	SetStyle(property, value string)
	// RemoveStyle clears an inline style property.
	RemoveStyle(property string)
	// AddEventListener subscribes to a named event and returns a function
	// that removes the subscription.
	AddEventListener(event string, listener EventListener) (remove func())
}

// StyleReader is implemented by hosts that can report an element's current
// computed style. The engine uses it to resolve start values.
type StyleReader interface {
	Style(property string) (string, bool)
}

// Event names the runtime subscribes to.
const (
	EventPointerDown   = "pointerdown"
	EventPointerMove   = "pointermove"
	EventPointerUp     = "pointerup"
	EventPointerCancel = "pointercancel"
	EventPointerEnter  = "pointerenter"
	EventPointerLeave  = "pointerleave"
	EventClick         = "click"
	EventWheel         = "wheel"
	EventTransitionEnd = "transitionend"
)

// PointerEvent is the payload of pointer, click and wheel events.
type PointerEvent struct {
	// Type is one of the Event* names.
	Type string
	// PointerID distinguishes simultaneous pointers.
	PointerID int
	// X and Y are the pointer position in viewport pixels.
	X, Y float64
	// DeltaX and DeltaY carry wheel deltas.
	DeltaX, DeltaY float64
	// Time is the event timestamp in seconds on the animation clock.
	Time float64
}
