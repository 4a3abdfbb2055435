package engine

import (
	"math"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
)

// Config describes a property animation.
type Config struct {
	// ID is a caller label for logs and lookups. A random id is assigned
	// when empty.
	ID string
	// Target is the element receiving style writes. Handles must be
	// comparable; pointer types are.
	Target element.Handle
	// Properties are the end values.
	Properties animation.Target
	// From optionally sets start values. Properties without one start from
	// the last value the engine wrote, the element's current style, or the
	// neutral value of the property's kind, in that order.
	From animation.Target
	// Duration of one lap in seconds. Must be positive.
	Duration float64
	// Delay before the first lap in seconds.
	Delay float64
	// Ease shapes progress. The zero value is Linear.
	Ease animation.Easing
	// Repeat configures repetition.
	Repeat Repeat
	// OnComplete is called once after the animation completes. It is not
	// called for cancelled animations.
	OnComplete func()
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Validate reports an InvalidValue error for an unusable configuration.
func (c Config) Validate() error {
	const op = "engine.Start"
	switch {
	case c.Target == nil:
		return errors.InvalidValue(op, "target element is nil")
	case len(c.Properties) == 0:
		return errors.InvalidValue(op, "no properties to animate")
	case !finite(c.Duration) || c.Duration <= 0:
		return errors.InvalidValue(op, "duration must be finite and positive, got %v", c.Duration)
	case !finite(c.Delay) || c.Delay < 0:
		return errors.InvalidValue(op, "delay must be finite and non-negative, got %v", c.Delay)
	case c.Repeat.Mode < RepeatNever || c.Repeat.Mode > RepeatInfiniteReverse:
		return errors.InvalidValue(op, "unknown repeat mode %d", c.Repeat.Mode)
	case c.Repeat.Mode == RepeatCount && c.Repeat.Count < 1:
		return errors.InvalidValue(op, "repeat count must be at least 1, got %d", c.Repeat.Count)
	}
	for name, v := range c.Properties {
		if !v.IsFinite() {
			return errors.InvalidValue(op, "property %q has a non-finite value", name)
		}
	}
	for name, v := range c.From {
		if !v.IsFinite() {
			return errors.InvalidValue(op, "start value of %q is non-finite", name)
		}
	}
	return c.Ease.Validate()
}
