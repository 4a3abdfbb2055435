package gestures

import (
	"math"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

const (
	// DefaultPower scales release velocity into the projected resting
	// point.
	DefaultPower = 0.8
	// DefaultRestitution is the fraction of speed kept after bouncing off a
	// bound.
	DefaultRestitution = 0.5
	// DragThreshold is how far, in pixels, the pointer must travel before a
	// press counts as a drag rather than a tap.
	DragThreshold = 3.0

	// MinScale and MaxScale bound pinch zoom.
	MinScale = 0.1
	MaxScale = 10.0

	// pinchSensitivity converts wheel delta into a scale factor.
	pinchSensitivity = 0.01
)

// DefaultSpring is the momentum spring. It rests within a tenth of a pixel.
var DefaultSpring = animation.SpringConfig{Stiffness: 200, Damping: 25, Mass: 1, RestDelta: 0.1, RestSpeed: 0.1}

// Point is a 2D offset or velocity in pixels (per second).
type Point struct{ X, Y float64 }

// Axis restricts dragging to one direction.
type Axis int

const (
	AxisBoth Axis = iota
	AxisX
	AxisY
)

// Constraints bound the drag offset.
type Constraints struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Constrain maps d into [lo, hi]. Outside the range the overshoot is scaled
// by elastic: 0 clamps hard and 1 leaves d unchanged.
func Constrain(d, lo, hi, elastic float64) float64 {
	switch {
	case d < lo:
		return lo + (d-lo)*elastic
	case d > hi:
		return hi + (d-hi)*elastic
	}
	return d
}

// Apply constrains both axes.
func (c Constraints) Apply(x, y, elastic float64) (float64, float64) {
	return Constrain(x, c.MinX, c.MaxX, elastic), Constrain(y, c.MinY, c.MaxY, elastic)
}

// Contains reports whether (x, y) is within the bounds.
func (c Constraints) Contains(x, y float64) bool {
	return x >= c.MinX && x <= c.MaxX && y >= c.MinY && y <= c.MaxY
}

// DragConfig configures dragging and release momentum.
type DragConfig struct {
	Axis Axis
	// Constraints bound the offset. Nil means unbounded.
	Constraints *Constraints
	// Elastic in [0, 1] lets a drag overshoot the bounds.
	Elastic float64
	// Momentum continues the motion after release with a spring.
	Momentum bool
	// Restitution in [0, 1] is kept on bounces. Zero uses
	// DefaultRestitution.
	Restitution float64
	// Power scales release velocity into the projected resting point. Zero
	// uses DefaultPower.
	Power float64
	// SnapPoints, when set, replace the projected resting point with the
	// nearest of them.
	SnapPoints []Point
	// Spring drives momentum. The zero value uses DefaultSpring.
	Spring animation.SpringConfig
	// ReturnDuration is the tween back into bounds when momentum is off.
	ReturnDuration float64
}

// Config selects the gestures recognized on an element.
type Config struct {
	Hover bool
	Tap   bool
	Pinch bool
	// Drag enables dragging when non-nil.
	Drag *DragConfig

	// WhileHover and WhileTap are tweened to during those gestures, and
	// Base is tweened back to afterwards.
	WhileHover animation.Target
	WhileTap   animation.Target
	Base       animation.Target

	HoverDuration float64
	TapDuration   float64
}

func unit(f float64) bool { return f >= 0 && f <= 1 }

func nonNegative(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0 }

// Validate reports an InvalidValue error for out-of-range settings.
func (c Config) Validate() error {
	_, err := c.withDefaults()
	return err
}

// withDefaults validates c and fills zero values.
func (c Config) withDefaults() (Config, error) {
	const op = "gestures.Attach"
	if !nonNegative(c.HoverDuration) || !nonNegative(c.TapDuration) {
		return c, errors.InvalidValue(op, "durations must be finite and non-negative")
	}
	if c.HoverDuration == 0 {
		c.HoverDuration = 0.2
	}
	if c.TapDuration == 0 {
		c.TapDuration = 0.1
	}
	if c.Drag == nil {
		return c, nil
	}
	d := *c.Drag
	switch {
	case d.Axis < AxisBoth || d.Axis > AxisY:
		return c, errors.InvalidValue(op, "unknown axis %d", d.Axis)
	case !unit(d.Elastic):
		return c, errors.InvalidValue(op, "elastic must be in [0, 1], got %v", d.Elastic)
	case !unit(d.Restitution):
		return c, errors.InvalidValue(op, "restitution must be in [0, 1], got %v", d.Restitution)
	case !nonNegative(d.Power) || !nonNegative(d.ReturnDuration):
		return c, errors.InvalidValue(op, "power and return duration must be finite and non-negative")
	case d.Constraints != nil && (d.Constraints.MinX > d.Constraints.MaxX || d.Constraints.MinY > d.Constraints.MaxY):
		return c, errors.InvalidValue(op, "constraint minimum exceeds maximum")
	}
	if d.Restitution == 0 {
		d.Restitution = DefaultRestitution
	}
	if d.Power == 0 {
		d.Power = DefaultPower
	}
	if d.Spring == (animation.SpringConfig{}) {
		d.Spring = DefaultSpring
	}
	if err := d.Spring.Validate(); err != nil {
		return c, err
	}
	if d.ReturnDuration == 0 {
		d.ReturnDuration = 0.3
	}
	c.Drag = &d
	return c, nil
}
