package engine

import (
	"fmt"
	"math"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
)

type completion struct {
	handle     Handle
	onComplete func()
}

// progressCall is a timeline progress notification queued during a tick.
type progressCall struct {
	fn       func(float64)
	progress float64
}

func (p progressCall) call() {
	defer errors.Recover("engine.OnProgress")
	p.fn(p.progress)
}

// Tick advances every running animation to now, in seconds, and delivers
// the resulting style writes. Non-finite times are ignored and time never
// moves backwards. Tick implements scheduler.Client.
func (e *Engine) Tick(now float64) {
	if !finite(now) {
		return
	}

	e.mu.Lock()
	if now < e.now {
		now = e.now
	}
	e.now = now

	var b batch
	var reports []*errors.MotionError
	var progress []progressCall
	for _, h := range e.order {
		a := e.anims[h]
		if a.state != Running {
			continue
		}
		if a.snap {
			e.writeFinalLocked(a, &b)
			a.progress = 1
			a.finalWritten = true
			continue
		}
		elapsed := now - a.startedAt - a.cfg.Delay
		if elapsed < 0 {
			continue
		}
		a.elapsed = elapsed
		if a.timeline != nil {
			d := a.timeline.Duration()
			local, done := a.lap(elapsed, d)
			t := local * d
			e.writeTimelineLocked(a, t, &b)
			if a.onProgress != nil {
				p := 1.0
				if d > 0 {
					p = t / d
				}
				progress = append(progress, progressCall{a.onProgress, p})
			}
			a.finalWritten = done
			continue
		}
		local, done := a.lap(elapsed, a.cfg.Duration)
		eased := a.cfg.Ease.Evaluate(local)
		if done {
			eased = local
		}
		if err := e.writePropsLocked(a, eased, &b); err != nil {
			reports = append(reports, err)
		}
		a.finalWritten = done
	}
	e.rememberLocked(&b)
	sink := e.sink
	e.mu.Unlock()

	for _, err := range reports {
		errors.Report(err)
	}
	for _, el := range b.order {
		deliver(sink, el, b.byEl[el])
	}
	for _, p := range progress {
		p.call()
	}
	e.sweep()
}

// rememberLocked records the written values as the start values of later
// animations on the same element and property.
func (e *Engine) rememberLocked(b *batch) {
	for _, w := range b.flatten() {
		e.memory[memoryKey{w.Target, w.Property}] = w.Value
	}
}

func deliver(sink StyleSink, el element.Handle, writes []StyleWrite) {
	defer errors.Recover("engine.Apply")
	sink.Apply(el, writes)
}

// writePropsLocked interpolates every property at eased progress. A kind
// mismatch steps the property and is reported once per animation.
func (e *Engine) writePropsLocked(a *animationEntry, eased float64, b *batch) *errors.MotionError {
	var mismatch *errors.MotionError
	for _, p := range a.props {
		from, to := a.from[p], a.cfg.Properties[p]
		v, ok := animation.Interpolate(from, to, eased)
		if !ok && !a.mismatchReported {
			a.mismatchReported = true
			mismatch = &errors.MotionError{
				Op:     "engine.Tick",
				Kind:   errors.KindKindMismatch,
				Handle: uint64(a.handle),
				Err:    fmt.Errorf("property %q: cannot interpolate %s to %s", p, from.Kind(), to.Kind()),
			}
		}
		b.add(StyleWrite{Target: a.cfg.Target, Property: p, Value: v})
	}
	return mismatch
}

func (e *Engine) writeFinalLocked(a *animationEntry, b *batch) {
	if a.timeline != nil {
		e.writeTimelineLocked(a, a.timeline.Duration(), b)
		return
	}
	final := 1.0
	if a.cfg.Repeat.Mode == RepeatInfiniteReverse {
		final = 0
	}
	e.writePropsLocked(a, final, b)
}

func (e *Engine) writeTimelineLocked(a *animationEntry, t float64, b *batch) {
	targets := []element.Handle{a.cfg.Target}
	if e.resolver != nil {
		for _, id := range a.timeline.SynchronizedElements() {
			if el := e.resolver(id); el != nil && el != a.cfg.Target {
				targets = append(targets, el)
			}
		}
	}
	t = math.Max(0, math.Min(t, a.timeline.Duration()))
	for _, p := range a.props {
		v, ok := a.timeline.Sample(p, t)
		if !ok {
			continue
		}
		for _, el := range targets {
			b.add(StyleWrite{Target: el, Property: p, Value: v})
		}
	}
}

// sweep completes animations whose final values were written and removes
// finished entries, then runs callbacks outside the lock.
func (e *Engine) sweep() {
	e.mu.Lock()
	var done []completion
	for _, h := range e.order {
		a := e.anims[h]
		if a.state == Running && a.finalWritten {
			a.state = Completed
			e.active--
			done = append(done, completion{h, a.cfg.OnComplete})
		}
	}
	e.removeTerminalLocked()
	e.checkLocked()
	var listeners []StatusListener
	if len(done) > 0 {
		listeners = e.listenersLocked()
	}
	e.mu.Unlock()

	complete(done, listeners)
}

// complete runs completion callbacks and notifies listeners. It must be
// called without the engine's lock held.
func complete(done []completion, listeners []StatusListener) {
	for _, c := range done {
		if c.onComplete != nil {
			func() {
				defer errors.Recover("engine.OnComplete")
				c.onComplete()
			}()
		}
		notify(listeners, c.handle, Completed)
	}
}
