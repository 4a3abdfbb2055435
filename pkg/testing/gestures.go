package testing

import (
	"github.com/go-drift/motion/pkg/element"
)

// PointerSim drives pointer event sequences into a FakeElement. Each move
// advances Clock by Frame seconds and, if set, calls OnFrame with the new
// time so the code under test can tick between events.
type PointerSim struct {
	El      *FakeElement
	Clock   *FakeClock
	Frame   float64
	OnFrame func(now float64)

	pointerID int
	x, y      float64
}

// NewPointerSim returns a simulator stepping at 60 Hz.
func NewPointerSim(el *FakeElement, clock *FakeClock) *PointerSim {
	return &PointerSim{El: el, Clock: clock, Frame: 1.0 / 60}
}

func (p *PointerSim) send(event string, x, y float64) error {
	p.x, p.y = x, y
	return p.El.Dispatch(event, element.PointerEvent{
		Type:      event,
		PointerID: p.pointerID,
		X:         x,
		Y:         y,
		Time:      p.Clock.Now(),
	})
}

func (p *PointerSim) frame() {
	now := p.Clock.AdvanceSeconds(p.Frame)
	if p.OnFrame != nil {
		p.OnFrame(now)
	}
}

// Position returns the last pointer position sent.
func (p *PointerSim) Position() (float64, float64) { return p.x, p.y }

// Enter sends a pointerenter at (x, y).
func (p *PointerSim) Enter(x, y float64) error { return p.send(element.EventPointerEnter, x, y) }

// Leave sends a pointerleave at the last position.
func (p *PointerSim) Leave() error { return p.send(element.EventPointerLeave, p.x, p.y) }

// Down sends a pointerdown at (x, y) with a fresh pointer id.
func (p *PointerSim) Down(x, y float64) error {
	p.pointerID++
	return p.send(element.EventPointerDown, x, y)
}

// MoveTo advances one frame and sends a pointermove to (x, y).
func (p *PointerSim) MoveTo(x, y float64) error {
	p.frame()
	return p.send(element.EventPointerMove, x, y)
}

// Up sends a pointerup at the last position.
func (p *PointerSim) Up() error { return p.send(element.EventPointerUp, p.x, p.y) }

// Tap sends pointerdown, pointerup and click at (x, y).
func (p *PointerSim) Tap(x, y float64) error {
	if err := p.Down(x, y); err != nil {
		return err
	}
	if err := p.Up(); err != nil {
		return err
	}
	return p.send(element.EventClick, x, y)
}

// DragFrom presses at (x, y), moves by (dx, dy) in steps equal frames and
// keeps the pointer down. Call Up to release.
func (p *PointerSim) DragFrom(x, y, dx, dy float64, steps int) error {
	if steps < 1 {
		steps = 1
	}
	if err := p.Down(x, y); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		if err := p.MoveTo(x+dx*f, y+dy*f); err != nil {
			return err
		}
	}
	return nil
}

// Drag is DragFrom followed by Up.
func (p *PointerSim) Drag(x, y, dx, dy float64, steps int) error {
	if err := p.DragFrom(x, y, dx, dy, steps); err != nil {
		return err
	}
	return p.Up()
}

// Wheel sends a wheel event with the given vertical delta.
func (p *PointerSim) Wheel(x, y, deltaY float64) error {
	p.x, p.y = x, y
	return p.El.Dispatch(element.EventWheel, element.PointerEvent{
		Type:   element.EventWheel,
		X:      x,
		Y:      y,
		DeltaY: deltaY,
		Time:   p.Clock.Now(),
	})
}
