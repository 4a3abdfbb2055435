package animation

import "time"

// Clock provides time for animations as seconds on a monotonic timeline. The
// default implementation measures time since package initialization. Tests can
// inject a fake clock via SetClock to control animation timing
// deterministically.
type Clock interface {
	Now() float64
}

// realClock uses the monotonic reading of the system clock.
type realClock struct {
	origin time.Time
}

func (c realClock) Now() float64 { return time.Since(c.origin).Seconds() }

// clock is the package-level time source, replaceable for testing.
var clock Clock = realClock{origin: time.Now()}

// SetClock replaces the animation clock. Returns the previous clock
// so callers can restore it during cleanup.
func SetClock(c Clock) Clock {
	prev := clock
	clock = c
	return prev
}

// Now returns the current time in seconds from the active clock.
func Now() float64 { return clock.Now() }

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() float64

// Now calls f.
func (f ClockFunc) Now() float64 { return f() }
