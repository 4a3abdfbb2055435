// Package gestures turns pointer input into motion.
//
// A Bridge listens to pointer events on attached elements and runs a small
// state machine per element. Hover and tap feedback are submitted to an
// engine.Engine as tweens. Drags write the element's transform directly, and
// releases continue with spring momentum stepped on every Tick.
package gestures

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/engine"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/perf"
	"github.com/go-drift/motion/pkg/scheduler"
)

// State is the gesture state of one element.
type State int

const (
	Idle State = iota
	Hovering
	Dragging
	Tapping
	Pinching
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	case Tapping:
		return "tapping"
	case Pinching:
		return "pinching"
	case Returning:
		return "returning"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// maxStep bounds a single momentum integration step.
const maxStep = 1.0 / 120

// staleVelocity is how long after the last move a release is treated as
// having no velocity.
const staleVelocity = 0.1

type tracked struct {
	el    element.Handle
	cfg   Config
	state State
	gen   uint64

	pos    Point
	scale  float64
	inside bool

	pointer  Point
	origin   Point
	lastMove Point
	lastTime float64
	velocity Point
	dragged  bool

	// baseReturn is set while Returning tweens back to Base, as opposed
	// to returning a drag into bounds.
	baseReturn bool

	springX, springY *animation.SpringSimulation
	lastTick         float64

	anim    engine.Handle
	removes []func()
}

// Bridge runs gesture state machines for attached elements.
type Bridge struct {
	mu     sync.Mutex
	eng    *engine.Engine
	clock  animation.Clock
	detach func()

	els   map[element.Handle]*tracked
	order []element.Handle
	gen   uint64

	momentumOff bool

	onStateChange func(el element.Handle, from, to State)
	onTap         func(el element.Handle)
	onDragEnd     func(el element.Handle, pos, vel Point)
}

// Option configures a Bridge.
type Option func(*bridgeOptions)

type bridgeOptions struct {
	clock         animation.Clock
	sched         *scheduler.Scheduler
	detached      bool
	onStateChange func(el element.Handle, from, to State)
	onTap         func(el element.Handle)
	onDragEnd     func(el element.Handle, pos, vel Point)
}

// WithClock sets the time source for momentum.
func WithClock(c animation.Clock) Option {
	return func(o *bridgeOptions) { o.clock = c }
}

// WithScheduler attaches the bridge to s instead of scheduler.Default.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *bridgeOptions) { o.sched = s }
}

// Detached creates a bridge the caller drives with Tick.
func Detached() Option {
	return func(o *bridgeOptions) { o.detached = true }
}

// OnStateChange is called after every state transition.
func OnStateChange(fn func(el element.Handle, from, to State)) Option {
	return func(o *bridgeOptions) { o.onStateChange = fn }
}

// OnTap is called when a click completes without a drag.
func OnTap(fn func(el element.Handle)) Option {
	return func(o *bridgeOptions) { o.onTap = fn }
}

// OnDragEnd is called on release with the offset and velocity.
func OnDragEnd(fn func(el element.Handle, pos, vel Point)) Option {
	return func(o *bridgeOptions) { o.onDragEnd = fn }
}

// New creates a bridge submitting tweens to eng.
func New(eng *engine.Engine, opts ...Option) *Bridge {
	var o bridgeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.detached {
		o.sched = nil
	} else if o.sched == nil {
		o.sched = scheduler.Default()
	}
	if o.clock == nil {
		if o.sched != nil {
			o.clock = o.sched
		} else {
			o.clock = animation.ClockFunc(animation.Now)
		}
	}
	b := &Bridge{
		eng:           eng,
		clock:         o.clock,
		els:           make(map[element.Handle]*tracked),
		onStateChange: o.onStateChange,
		onTap:         o.onTap,
		onDragEnd:     o.onDragEnd,
	}
	if o.sched != nil {
		b.detach = o.sched.Attach(b)
	}
	return b
}

// Close detaches every element and the bridge itself.
func (b *Bridge) Close() {
	b.mu.Lock()
	els := append([]element.Handle(nil), b.order...)
	detach := b.detach
	b.detach = nil
	b.mu.Unlock()
	for _, el := range els {
		b.Detach(el)
	}
	if detach != nil {
		detach()
	}
}

var listenedEvents = []string{
	element.EventPointerEnter,
	element.EventPointerLeave,
	element.EventPointerDown,
	element.EventPointerMove,
	element.EventPointerUp,
	element.EventPointerCancel,
	element.EventClick,
	element.EventWheel,
}

// Attach starts recognizing the gestures cfg enables on el. Attaching an
// element again replaces its configuration.
func (b *Bridge) Attach(el element.Handle, cfg Config) (detach func(), err error) {
	if el == nil {
		return nil, errors.InvalidValue("gestures.Attach", "element is nil")
	}
	cfg, err = cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	b.Detach(el)

	t := &tracked{el: el, cfg: cfg, scale: 1}
	for _, event := range listenedEvents {
		event := event
		t.removes = append(t.removes, el.AddEventListener(event, func(payload any) {
			if ev, ok := payload.(element.PointerEvent); ok {
				if ev.Type == "" {
					ev.Type = event
				}
				b.Handle(el, ev)
			}
		}))
	}

	b.mu.Lock()
	b.els[el] = t
	b.order = append(b.order, el)
	b.mu.Unlock()
	return func() { b.Detach(el) }, nil
}

// Detach stops recognizing gestures on el and cancels its tweens. The last
// written transform is left in place.
func (b *Bridge) Detach(el element.Handle) {
	b.mu.Lock()
	t, ok := b.els[el]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.els, el)
	for i, o := range b.order {
		if o == el {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	anim := t.anim
	b.mu.Unlock()

	for _, remove := range t.removes {
		remove()
	}
	if anim != 0 {
		_ = b.eng.Stop(anim)
	}
}

// State returns el's gesture state, Idle for unknown elements.
func (b *Bridge) State(el element.Handle) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.els[el]; ok {
		return t.state
	}
	return Idle
}

// Position returns el's drag offset and pinch scale.
func (b *Bridge) Position(el element.Handle) (Point, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.els[el]; ok {
		return t.pos, t.scale
	}
	return Point{}, 1
}

// Velocity returns el's current velocity in pixels per second: the pointer
// velocity while dragging, the spring velocity while returning.
func (b *Bridge) Velocity(el element.Handle) Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.els[el]
	if !ok {
		return Point{}
	}
	if t.springX != nil {
		return Point{t.springX.Velocity(), t.springY.Velocity()}
	}
	return t.velocity
}

// SetDegraded implements scheduler.QualityListener. While the policy
// disables momentum, releases tween straight back into bounds.
func (b *Bridge) SetDegraded(degraded bool, policy perf.Policy) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.momentumOff = degraded && policy.DisableMomentum
}

// effects collects work that must run after the lock is released.
type effects struct {
	changes []func()
	tweens  []tween
	stops   []engine.Handle
	calls   []func()
}

type tween struct {
	t    *tracked
	gen  uint64
	cfg  engine.Config
	then func()
}

func (b *Bridge) setState(t *tracked, to State, fx *effects) {
	if t.state == to {
		return
	}
	from := t.state
	t.state = to
	t.gen++
	t.baseReturn = false
	if fn := b.onStateChange; fn != nil {
		el := t.el
		fx.changes = append(fx.changes, func() { fn(el, from, to) })
	}
}

// Handle feeds one pointer event for el into the state machine. Attached
// elements receive events through their listeners; hosts dispatching events
// themselves may call Handle directly.
func (b *Bridge) Handle(el element.Handle, ev element.PointerEvent) {
	var fx effects
	b.mu.Lock()
	t, ok := b.els[el]
	if !ok {
		b.mu.Unlock()
		return
	}
	switch ev.Type {
	case element.EventPointerEnter:
		b.enter(t, &fx)
	case element.EventPointerLeave:
		b.leave(t, &fx)
	case element.EventPointerDown:
		b.down(t, ev, &fx)
	case element.EventPointerMove:
		b.move(t, ev)
	case element.EventPointerUp:
		b.up(t, ev, false, &fx)
	case element.EventPointerCancel:
		b.up(t, ev, true, &fx)
	case element.EventClick:
		b.click(t, &fx)
	case element.EventWheel:
		b.wheel(t, ev, &fx)
	}
	b.mu.Unlock()
	b.run(&fx)
}

func (b *Bridge) enter(t *tracked, fx *effects) {
	t.inside = true
	if !t.cfg.Hover {
		return
	}
	switch {
	case t.state == Idle:
	case t.state == Returning && t.baseReturn:
		b.stopMotion(t, fx)
	default:
		return
	}
	b.setState(t, Hovering, fx)
	b.tweenTo(t, t.cfg.WhileHover, t.cfg.HoverDuration, animation.EaseOut, nil, fx)
}

func (b *Bridge) leave(t *tracked, fx *effects) {
	t.inside = false
	switch t.state {
	case Hovering:
		b.returnToBase(t, fx)
	case Pinching:
		b.setState(t, Idle, fx)
	}
}

func (b *Bridge) down(t *tracked, ev element.PointerEvent, fx *effects) {
	t.dragged = false
	if t.cfg.Drag == nil {
		return
	}
	switch t.state {
	case Idle, Hovering, Returning:
	default:
		return
	}
	b.stopMotion(t, fx)
	b.setState(t, Dragging, fx)
	t.pointer = Point{ev.X, ev.Y}
	t.origin = t.pos
	t.lastMove = t.pointer
	t.lastTime = ev.Time
	t.velocity = Point{}
	t.el.SetStyle("transition", "none")
}

func (b *Bridge) move(t *tracked, ev element.PointerEvent) {
	if t.state != Dragging {
		return
	}
	d := t.cfg.Drag
	dx, dy := ev.X-t.pointer.X, ev.Y-t.pointer.Y
	if math.Hypot(dx, dy) >= DragThreshold {
		t.dragged = true
	}
	x, y := t.origin.X+dx, t.origin.Y+dy
	switch d.Axis {
	case AxisX:
		y = t.origin.Y
	case AxisY:
		x = t.origin.X
	}
	if d.Constraints != nil {
		x, y = d.Constraints.Apply(x, y, d.Elastic)
	}

	if dt := ev.Time - t.lastTime; dt > 0 {
		t.velocity = Point{(ev.X - t.lastMove.X) / dt, (ev.Y - t.lastMove.Y) / dt}
		t.lastMove = Point{ev.X, ev.Y}
		t.lastTime = ev.Time
	}
	switch d.Axis {
	case AxisX:
		t.velocity.Y = 0
	case AxisY:
		t.velocity.X = 0
	}
	t.pos = Point{x, y}
	b.writeTransform(t)
}

func (b *Bridge) up(t *tracked, ev element.PointerEvent, cancelled bool, fx *effects) {
	switch t.state {
	case Pinching:
		b.setState(t, Idle, fx)
		return
	case Dragging:
	default:
		return
	}
	if cancelled || ev.Time-t.lastTime > staleVelocity {
		t.velocity = Point{}
	}
	if fn := b.onDragEnd; fn != nil {
		el, pos, vel := t.el, t.pos, t.velocity
		fx.calls = append(fx.calls, func() { fn(el, pos, vel) })
	}
	b.release(t, fx)
}

// release hands a finished drag to momentum, a return tween, or straight to
// Idle when the element is already at rest in bounds.
func (b *Bridge) release(t *tracked, fx *effects) {
	d := t.cfg.Drag
	if d.Momentum && !b.momentumOff {
		eq := b.equilibrium(t)
		t.springX = animation.NewSpringSimulation(d.Spring, t.pos.X, t.velocity.X, eq.X)
		t.springY = animation.NewSpringSimulation(d.Spring, t.pos.Y, t.velocity.Y, eq.Y)
		t.lastTick = b.clock.Now()
		b.setState(t, Returning, fx)
		return
	}
	target := t.pos
	if c := d.Constraints; c != nil {
		target.X, target.Y = c.Apply(t.pos.X, t.pos.Y, 0)
	}
	t.velocity = Point{}
	if target == t.pos {
		b.settle(t, fx)
		return
	}
	b.setState(t, Returning, fx)
	from, to := t.transform(), t.transformAt(target)
	gen := t.gen
	fx.tweens = append(fx.tweens, tween{
		t:   t,
		gen: gen,
		cfg: engine.Config{
			Target:     t.el,
			From:       animation.Target{"transform": animation.TransformValue(from)},
			Properties: animation.Target{"transform": animation.TransformValue(to)},
			Duration:   d.ReturnDuration,
			Ease:       animation.EaseOut,
		},
		then: func() {
			b.mu.Lock()
			var fx effects
			if t.gen == gen {
				t.pos = target
				t.anim = 0
				b.settle(t, &fx)
			}
			b.mu.Unlock()
			b.run(&fx)
		},
	})
}

// equilibrium projects the release velocity, clamps it into bounds and
// snaps it to the nearest snap point.
func (b *Bridge) equilibrium(t *tracked) Point {
	d := t.cfg.Drag
	eq := Point{t.pos.X + t.velocity.X*d.Power, t.pos.Y + t.velocity.Y*d.Power}
	if c := d.Constraints; c != nil {
		eq.X, eq.Y = c.Apply(eq.X, eq.Y, 0)
	}
	if len(d.SnapPoints) > 0 {
		best, bestDist := d.SnapPoints[0], math.Inf(1)
		for _, p := range d.SnapPoints {
			dx, dy := p.X-eq.X, p.Y-eq.Y
			switch d.Axis {
			case AxisX:
				dy = 0
			case AxisY:
				dx = 0
			}
			if dist := math.Hypot(dx, dy); dist < bestDist {
				best, bestDist = p, dist
			}
		}
		switch d.Axis {
		case AxisX:
			best.Y = eq.Y
		case AxisY:
			best.X = eq.X
		}
		eq = best
	}
	return eq
}

func (b *Bridge) click(t *tracked, fx *effects) {
	if !t.cfg.Tap || t.dragged || t.state == Dragging || t.state == Pinching {
		return
	}
	if fn := b.onTap; fn != nil {
		el := t.el
		fx.calls = append(fx.calls, func() { fn(el) })
	}
	b.stopMotion(t, fx)
	b.setState(t, Tapping, fx)
	gen := t.gen
	b.tweenTo(t, t.cfg.WhileTap, t.cfg.TapDuration, animation.EaseOut, func() {
		var fx effects
		b.mu.Lock()
		if t.gen == gen {
			b.returnToBase(t, &fx)
		}
		b.mu.Unlock()
		b.run(&fx)
	}, fx)
}

func (b *Bridge) wheel(t *tracked, ev element.PointerEvent, fx *effects) {
	if !t.cfg.Pinch {
		return
	}
	switch t.state {
	case Idle, Hovering, Pinching:
	default:
		return
	}
	b.stopMotion(t, fx)
	b.setState(t, Pinching, fx)
	t.scale = math.Min(MaxScale, math.Max(MinScale, t.scale*(1-ev.DeltaY*pinchSensitivity)))
	b.writeTransform(t)
}

// returnToBase tweens back to Base and then settles.
func (b *Bridge) returnToBase(t *tracked, fx *effects) {
	b.setState(t, Returning, fx)
	t.baseReturn = true
	gen := t.gen
	b.tweenTo(t, t.cfg.Base, t.cfg.HoverDuration, animation.EaseOut, func() {
		var fx effects
		b.mu.Lock()
		if t.gen == gen {
			t.anim = 0
			b.settle(t, &fx)
		}
		b.mu.Unlock()
		b.run(&fx)
	}, fx)
}

// settle ends a gesture: back to Hovering if the pointer is still over a
// hover-enabled element, Idle otherwise.
func (b *Bridge) settle(t *tracked, fx *effects) {
	t.springX, t.springY = nil, nil
	t.velocity = Point{}
	if t.inside && t.cfg.Hover {
		b.setState(t, Hovering, fx)
		b.tweenTo(t, t.cfg.WhileHover, t.cfg.HoverDuration, animation.EaseOut, nil, fx)
		return
	}
	b.setState(t, Idle, fx)
}

// tweenTo submits a tween of props. With nothing to animate, then runs on
// the next effects flush.
func (b *Bridge) tweenTo(t *tracked, props animation.Target, duration float64, ease animation.Easing, then func(), fx *effects) {
	if len(props) == 0 {
		if then != nil {
			fx.calls = append(fx.calls, then)
		}
		return
	}
	fx.tweens = append(fx.tweens, tween{
		t:   t,
		gen: t.gen,
		cfg: engine.Config{
			Target:     t.el,
			Properties: props.Clone(),
			Duration:   duration,
			Ease:       ease,
		},
		then: then,
	})
}

// stopMotion cancels the running tween and momentum.
func (b *Bridge) stopMotion(t *tracked, fx *effects) {
	if t.anim != 0 {
		fx.stops = append(fx.stops, t.anim)
		t.anim = 0
	}
	t.springX, t.springY = nil, nil
}

func (t *tracked) transformAt(p Point) animation.Transform {
	return animation.Identity().WithTranslate(p.X, p.Y).WithScale(t.scale, t.scale)
}

func (t *tracked) transform() animation.Transform { return t.transformAt(t.pos) }

func (b *Bridge) writeTransform(t *tracked) {
	t.el.SetStyle("transform", t.transform().CSS())
}

// run applies collected effects outside the lock.
func (b *Bridge) run(fx *effects) {
	for _, h := range fx.stops {
		_ = b.eng.Stop(h)
	}
	for _, tw := range fx.tweens {
		cfg := tw.cfg
		if then := tw.then; then != nil {
			cfg.OnComplete = then
		}
		h, err := b.eng.Start(cfg)
		if err != nil {
			if me, ok := err.(*errors.MotionError); ok {
				errors.Report(me)
			}
			if tw.then != nil {
				tw.then()
			}
			continue
		}
		b.mu.Lock()
		if tw.t.gen == tw.gen {
			tw.t.anim = h
		}
		b.mu.Unlock()
	}
	for _, fn := range fx.changes {
		safeCall("gestures.OnStateChange", fn)
	}
	for _, fn := range fx.calls {
		safeCall("gestures.callback", fn)
	}
}

func safeCall(op string, fn func()) {
	defer errors.Recover(op)
	fn()
}

// Tick steps momentum springs to now. It implements scheduler.Client.
func (b *Bridge) Tick(now float64) {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return
	}
	var fx effects
	b.mu.Lock()
	for _, el := range b.order {
		t := b.els[el]
		if t.state != Returning || t.springX == nil {
			continue
		}
		dt := now - t.lastTick
		if dt <= 0 {
			continue
		}
		t.lastTick = now
		b.stepMomentum(t, dt)
		if t.springX.IsDone() && t.springY.IsDone() {
			t.springX.Snap()
			t.springY.Snap()
			t.pos = Point{t.springX.Position(), t.springY.Position()}
			b.writeTransform(t)
			b.settle(t, &fx)
			continue
		}
		b.writeTransform(t)
	}
	b.mu.Unlock()
	b.run(&fx)
}

// stepMomentum integrates both axes in steps of at most maxStep, bouncing
// off the constraint bounds.
func (b *Bridge) stepMomentum(t *tracked, dt float64) {
	d := t.cfg.Drag
	n := max(1, int(math.Ceil(dt/maxStep)))
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		x, vx := t.springX.Step(h)
		y, vy := t.springY.Step(h)
		if c := d.Constraints; c != nil {
			x, vx = bounce(x, vx, c.MinX, c.MaxX, d.Restitution)
			y, vy = bounce(y, vy, c.MinY, c.MaxY, d.Restitution)
			t.springX.SetState(x, vx)
			t.springY.SetState(y, vy)
		}
		switch d.Axis {
		case AxisX:
			t.springY.SetState(t.springY.Target(), 0)
		case AxisY:
			t.springX.SetState(t.springX.Target(), 0)
		}
	}
	t.pos = Point{t.springX.Position(), t.springY.Position()}
}

// bounce reflects x off [lo, hi], keeping restitution of the speed.
func bounce(x, v, lo, hi, restitution float64) (float64, float64) {
	switch {
	case x < lo:
		return lo, math.Abs(v) * restitution
	case x > hi:
		return hi, -math.Abs(v) * restitution
	}
	return x, v
}
