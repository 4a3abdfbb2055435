package flip

import (
	"fmt"
	"math"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
)

// Phase is where an element is in the FLIP protocol.
//
//	RecordFirst          RecordLastAndPlay        next Tick
//	Idle ──────────▶ First ──────────────▶ Inverted ──────────▶ Playing
//	                   ▲                                           │
//	                   │ RecordFirst (re-entry)                    │ transitionend
//	                   └──────────────────────────────── Completed ◀┘ or watchdog
type Phase int

const (
	Idle Phase = iota
	First
	Inverted
	Playing
	Completed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case First:
		return "first"
	case Inverted:
		return "inverted"
	case Playing:
		return "playing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Inverse is the transform that moves an element from its new layout box
// back onto its old one.
type Inverse struct {
	DX, DY float64
	SX, SY float64
	// Rotate is the rotation difference in degrees.
	Rotate float64
}

// ComputeInverse returns the inverse mapping last onto first. Scale ratios
// fall back to 1 when last has no width or height.
func ComputeInverse(first, last element.Rect, firstRotate, lastRotate float64) Inverse {
	inv := Inverse{
		DX:     first.X - last.X,
		DY:     first.Y - last.Y,
		SX:     1,
		SY:     1,
		Rotate: firstRotate - lastRotate,
	}
	if last.Width != 0 {
		inv.SX = first.Width / last.Width
	}
	if last.Height != 0 {
		inv.SY = first.Height / last.Height
	}
	return inv
}

// Transform returns the inverse as a transform applied with origin 0 0.
func (inv Inverse) Transform() animation.Transform {
	return animation.Identity().
		WithTranslate(inv.DX, inv.DY).
		WithRotate(inv.Rotate).
		WithScale(inv.SX, inv.SY)
}

// IsIdentity reports whether the element did not visibly move.
func (inv Inverse) IsIdentity() bool { return inv.Transform().IsIdentity() }

// Record is a snapshot of one element's FLIP state.
type Record struct {
	Element element.Handle
	Phase   Phase
	First   element.Rect
	Last    element.Rect
	Inverse Inverse
	Config  Config
	// StartedAt is the frame time play began, valid from Playing on.
	StartedAt float64
}

// visualRect returns the bounding box of last with t applied about its
// top-left corner.
func visualRect(last element.Rect, t animation.Transform) element.Rect {
	corners := [4][2]float64{{0, 0}, {last.Width, 0}, {0, last.Height}, {last.Width, last.Height}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := t.Apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return element.Rect{X: last.X + minX, Y: last.Y + minY, Width: maxX - minX, Height: maxY - minY}
}

// rotationOf reads the individual rotate property when the host exposes
// styles.
func rotationOf(el element.Handle) float64 {
	r, ok := el.(element.StyleReader)
	if !ok {
		return 0
	}
	s, ok := r.Style("rotate")
	if !ok {
		return 0
	}
	v := animation.ParseValue(s)
	if v.Kind() != animation.KindDegrees {
		return 0
	}
	f, _ := v.Float()
	return f
}
