package testing

import (
	"sync"
	"time"
)

// FakeClock provides controllable time for deterministic animation tests.
// Time is reported in seconds, matching animation.Clock. All methods are
// safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now float64
}

// NewFakeClock returns a FakeClock starting at zero.
func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

// Now returns the current fake time in seconds.
func (c *FakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) float64 {
	return c.AdvanceSeconds(d.Seconds())
}

// AdvanceSeconds moves the clock forward by s seconds and returns the new
// time.
func (c *FakeClock) AdvanceSeconds(s float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += s
	return c.now
}

// Set sets the clock to an exact time in seconds.
func (c *FakeClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
