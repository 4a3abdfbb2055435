// Package flip animates layout changes with the First, Last, Invert, Play
// technique.
//
// The caller records an element's box, changes layout however it likes, then
// records the new box. The animator applies the inverse transform so the
// element appears not to have moved, and on the next frame lets it glide to
// its new position. Play uses a CSS transition by default; WithEngine drives
// the transform from an engine.Engine instead, for hosts without CSS
// transitions.
package flip

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/engine"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/perf"
	"github.com/go-drift/motion/pkg/scheduler"
)

// WatchdogFactor scales the duration to get the time Play may take before
// it is forced to complete.
const WatchdogFactor = 1.5

// Config controls one FLIP animation.
type Config struct {
	// Duration of the play phase in seconds.
	Duration float64
	Ease     animation.Easing
	// ZIndex raises the element while it animates. Zero leaves z-index
	// alone.
	ZIndex int
	// OnComplete runs after the element settles, including after a
	// watchdog timeout. It does not run for cancelled animations.
	OnComplete func(el element.Handle)
}

// DefaultConfig returns 0.3 s with ease-in-out.
func DefaultConfig() Config {
	return Config{Duration: 0.3, Ease: animation.EaseInOut}
}

// Validate reports an InvalidValue error for an unusable duration or easing.
func (c Config) Validate() error {
	if math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0) || c.Duration <= 0 {
		return errors.InvalidValue("flip.Config", "duration must be finite and positive, got %v", c.Duration)
	}
	return c.Ease.Validate()
}

type record struct {
	Record
	firstRotate float64

	gen         uint64
	pendingPlay bool
	deadline    float64
	layer       bool
	prevZ       string
	hadZ        bool

	removeListener func()
	anim           engine.Handle
	onDone         func()
}

// Animator runs FLIP animations for any number of elements.
type Animator struct {
	mu sync.Mutex

	cfg    Config
	eng    *engine.Engine
	layers *perf.LayerManager
	sched  *scheduler.Scheduler
	detach func()

	records map[element.Handle]*record
	order   []element.Handle
	gen     uint64
	now     float64

	watchdogs int
}

// Option configures an Animator.
type Option func(*animatorOptions)

type animatorOptions struct {
	cfg      Config
	eng      *engine.Engine
	layers   *perf.LayerManager
	sched    *scheduler.Scheduler
	detached bool
}

// WithConfig sets the configuration used by RecordFirst.
func WithConfig(cfg Config) Option {
	return func(o *animatorOptions) { o.cfg = cfg }
}

// WithEngine plays through e instead of CSS transitions.
func WithEngine(e *engine.Engine) Option {
	return func(o *animatorOptions) { o.eng = e }
}

// WithLayers sets the GPU layer manager. The default is the scheduler's.
func WithLayers(m *perf.LayerManager) Option {
	return func(o *animatorOptions) { o.layers = m }
}

// WithScheduler attaches the animator to s instead of scheduler.Default.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *animatorOptions) { o.sched = s }
}

// Detached creates an animator the caller drives with Tick.
func Detached() Option {
	return func(o *animatorOptions) { o.detached = true }
}

// New creates an animator. It returns an error when the configuration is
// invalid.
func New(opts ...Option) (*Animator, error) {
	o := animatorOptions{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.detached {
		o.sched = nil
	} else if o.sched == nil {
		o.sched = scheduler.Default()
	}
	if o.layers == nil {
		if o.sched != nil {
			o.layers = o.sched.Layers()
		} else {
			o.layers = perf.NewLayerManager(perf.DefaultBudget().MaxGPULayers)
		}
	}
	a := &Animator{
		cfg:     o.cfg,
		eng:     o.eng,
		layers:  o.layers,
		sched:   o.sched,
		records: make(map[element.Handle]*record),
	}
	if o.sched != nil {
		a.detach = o.sched.Attach(a)
	}
	return a, nil
}

// Close detaches the animator from its scheduler.
func (a *Animator) Close() {
	a.mu.Lock()
	detach := a.detach
	a.detach = nil
	a.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// RecordFirst snapshots el before a layout change. Calling it while el is
// still animating cancels that animation and records where el currently
// appears.
func (a *Animator) RecordFirst(el element.Handle) error {
	if el == nil {
		return errors.InvalidValue("flip.RecordFirst", "element is nil")
	}
	a.mu.Lock()
	first := el.Measure()
	var released []func()
	if r, ok := a.records[el]; ok && (r.Phase == Inverted || r.Phase == Playing) {
		first = a.visualLocked(r)
		released = a.interruptLocked(r)
	}
	a.putLocked(el, first, rotationOf(el), a.cfg)
	a.mu.Unlock()

	runAll(released)
	return nil
}

func (a *Animator) putLocked(el element.Handle, first element.Rect, firstRotate float64, cfg Config) *record {
	a.gen++
	if _, ok := a.records[el]; !ok {
		a.order = append(a.order, el)
	}
	r := &record{
		Record: Record{
			Element: el,
			Phase:   First,
			First:   first,
			Config:  cfg,
		},
		firstRotate: firstRotate,
		gen:         a.gen,
	}
	a.records[el] = r
	return r
}

// playFrom runs a FLIP on dst starting from src's box, as if dst had been
// at src. onDone runs when the play completes or is interrupted.
func (a *Animator) playFrom(src, dst element.Handle, cfg Config, onDone func()) {
	a.playFromRect(dst, src.Measure(), rotationOf(src), cfg, onDone)
}

// playFromRect runs a FLIP on el from first, a box el occupied before a
// layout change that has already been applied.
func (a *Animator) playFromRect(el element.Handle, first element.Rect, firstRotate float64, cfg Config, onDone func()) {
	a.mu.Lock()
	var released []func()
	if r, ok := a.records[el]; ok && (r.Phase == Inverted || r.Phase == Playing) {
		released = a.interruptLocked(r)
	}
	r := a.putLocked(el, first, firstRotate, cfg)
	r.onDone = onDone
	done := a.invertLocked(r, el.Measure(), rotationOf(el))
	a.mu.Unlock()

	runAll(released)
	runAll(done)
}

// busy reports whether el is between RecordFirst and the end of its play.
func (a *Animator) busy(el element.Handle) bool {
	switch a.Phase(el) {
	case First, Inverted, Playing:
		return true
	}
	return false
}

// RecordLastAndPlay snapshots el after the layout change, applies the
// inverse transform immediately and starts playing on the next Tick.
func (a *Animator) RecordLastAndPlay(el element.Handle) error {
	const op = "flip.RecordLastAndPlay"
	a.mu.Lock()
	r, ok := a.records[el]
	if !ok || r.Phase != First {
		a.mu.Unlock()
		return errors.InvalidValue(op, "RecordFirst must be called before RecordLastAndPlay")
	}
	done := a.invertLocked(r, el.Measure(), rotationOf(el))
	a.mu.Unlock()

	runAll(done)
	return nil
}

// invertLocked computes and applies the inverse. An element that did not
// move completes at once; its callbacks are returned.
func (a *Animator) invertLocked(r *record, last element.Rect, lastRotate float64) []func() {
	r.Last = last
	r.Inverse = ComputeInverse(r.First, last, r.firstRotate, lastRotate)
	if r.Inverse.IsIdentity() {
		return a.completeLocked(r)
	}
	el := r.Element
	if a.eng == nil {
		el.SetStyle("transition", "none")
	}
	el.SetStyle("transform-origin", "0 0")
	el.SetStyle("transform", r.Inverse.Transform().CSS())
	if a.layers.Request(el) {
		r.layer = true
		el.SetStyle("will-change", "transform")
	}
	if r.Config.ZIndex != 0 {
		if sr, ok := el.(element.StyleReader); ok {
			r.prevZ, r.hadZ = sr.Style("z-index")
		}
		el.SetStyle("z-index", strconv.Itoa(r.Config.ZIndex))
	}
	r.Phase = Inverted
	r.pendingPlay = true
	return nil
}

// Tick plays elements inverted since the last frame and enforces the play
// watchdog. It implements scheduler.Client.
func (a *Animator) Tick(now float64) {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return
	}
	type start struct {
		el  element.Handle
		gen uint64
		cfg engine.Config
	}
	var starts []start
	var done []func()
	var reports []*errors.MotionError

	a.mu.Lock()
	if now < a.now {
		now = a.now
	}
	a.now = now
	for _, el := range a.order {
		r := a.records[el]
		switch {
		case r.Phase == Inverted && r.pendingPlay:
			r.pendingPlay = false
			r.Phase = Playing
			r.StartedAt = now
			r.deadline = now + r.Config.Duration*WatchdogFactor
			if a.eng != nil {
				starts = append(starts, start{el, r.gen, a.engineConfig(r)})
				continue
			}
			el.SetStyle("transition", "transform "+strconv.FormatFloat(r.Config.Duration, 'f', -1, 64)+"s "+r.Config.Ease.CSS())
			el.SetStyle("transform", "none")
			gen := r.gen
			r.removeListener = el.AddEventListener(element.EventTransitionEnd, func(payload any) {
				a.onTransitionEnd(el, gen, payload)
			})
		case r.Phase == Playing && now >= r.deadline:
			a.watchdogs++
			reports = append(reports, &errors.MotionError{
				Op:   "flip.Tick",
				Kind: errors.KindWatchdog,
				Err:  fmt.Errorf("%v: play exceeded %gs without transitionend", el, r.Config.Duration*WatchdogFactor),
			})
			done = append(done, a.completeLocked(r)...)
		}
	}
	a.mu.Unlock()

	for _, s := range starts {
		h, err := a.eng.Start(s.cfg)
		a.mu.Lock()
		if r, ok := a.records[s.el]; ok && r.gen == s.gen {
			if err != nil {
				done = append(done, a.completeLocked(r)...)
			} else {
				r.anim = h
			}
		}
		a.mu.Unlock()
	}
	for _, err := range reports {
		errors.Report(err)
	}
	runAll(done)
}

func (a *Animator) engineConfig(r *record) engine.Config {
	el, gen := r.Element, r.gen
	return engine.Config{
		Target:     el,
		From:       animation.Target{"transform": animation.TransformValue(r.Inverse.Transform())},
		Properties: animation.Target{"transform": animation.TransformValue(animation.Identity())},
		Duration:   r.Config.Duration,
		Ease:       r.Config.Ease,
		OnComplete: func() { a.finish(el, gen) },
	}
}

func (a *Animator) onTransitionEnd(el element.Handle, gen uint64, payload any) {
	if prop, ok := payload.(string); ok && prop != "" && prop != "transform" {
		return
	}
	a.finish(el, gen)
}

func (a *Animator) finish(el element.Handle, gen uint64) {
	a.mu.Lock()
	r, ok := a.records[el]
	if !ok || r.gen != gen || r.Phase != Playing {
		a.mu.Unlock()
		return
	}
	done := a.completeLocked(r)
	a.mu.Unlock()
	runAll(done)
}

// completeLocked removes every style the animator set and marks r Completed.
func (a *Animator) completeLocked(r *record) []func() {
	a.cleanupLocked(r)
	r.Phase = Completed
	r.Inverse = Inverse{SX: 1, SY: 1}
	var done []func()
	if fn := r.Config.OnComplete; fn != nil {
		el := r.Element
		done = append(done, func() { fn(el) })
	}
	if r.onDone != nil {
		done = append(done, r.onDone)
		r.onDone = nil
	}
	return done
}

func (a *Animator) cleanupLocked(r *record) {
	el := r.Element
	if r.removeListener != nil {
		r.removeListener()
		r.removeListener = nil
	}
	if r.anim != 0 {
		_ = a.eng.Stop(r.anim)
		r.anim = 0
	}
	if a.eng == nil {
		el.RemoveStyle("transition")
	}
	el.RemoveStyle("transform")
	el.RemoveStyle("transform-origin")
	if r.layer {
		el.RemoveStyle("will-change")
		a.layers.Release(el)
		r.layer = false
	}
	if r.Config.ZIndex != 0 {
		if r.hadZ {
			el.SetStyle("z-index", r.prevZ)
		} else {
			el.RemoveStyle("z-index")
		}
	}
	r.pendingPlay = false
}

// interruptLocked stops r without running OnComplete. A pending release
// hook is returned so shared transitions free their elements.
func (a *Animator) interruptLocked(r *record) []func() {
	a.cleanupLocked(r)
	r.Phase = Idle
	if r.onDone == nil {
		return nil
	}
	done := []func(){r.onDone}
	r.onDone = nil
	return done
}

// visualLocked returns where r's element currently appears. CSS transitions
// are measured from the host; engine-driven plays are computed from the
// engine's progress.
func (a *Animator) visualLocked(r *record) element.Rect {
	switch {
	case r.Phase == Inverted:
		return visualRect(r.Last, r.Inverse.Transform())
	case a.eng != nil:
		progress := 0.0
		if snap, ok := a.eng.Snapshot(r.anim); ok {
			progress = snap.Progress
		}
		tw := animation.TweenTransform(r.Inverse.Transform(), animation.Identity())
		return visualRect(r.Last, tw.EvaluateEased(r.Config.Ease, progress))
	default:
		return r.Element.Measure()
	}
}

// Cancel stops el's animation, removes the styles the animator set and
// forgets the element.
func (a *Animator) Cancel(el element.Handle) error {
	a.mu.Lock()
	r, ok := a.records[el]
	if !ok {
		a.mu.Unlock()
		return &errors.MotionError{Op: "flip.Cancel", Kind: errors.KindNotFound, Err: fmt.Errorf("no FLIP record for %v", el)}
	}
	var released []func()
	if r.Phase == Inverted || r.Phase == Playing {
		released = a.interruptLocked(r)
	}
	a.removeLocked(el)
	a.mu.Unlock()

	runAll(released)
	return nil
}

func (a *Animator) removeLocked(el element.Handle) {
	delete(a.records, el)
	for i, o := range a.order {
		if o == el {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Prune forgets completed elements and returns how many were removed.
func (a *Animator) Prune() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, el := range append([]element.Handle(nil), a.order...) {
		if a.records[el].Phase == Completed {
			a.removeLocked(el)
			n++
		}
	}
	return n
}

// Record returns a snapshot of el's FLIP state.
func (a *Animator) Record(el element.Handle) (Record, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.records[el]
	if !ok {
		return Record{}, false
	}
	return r.Record, true
}

// Phase returns el's phase, Idle for unknown elements.
func (a *Animator) Phase(el element.Handle) Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.records[el]; ok {
		return r.Phase
	}
	return Idle
}

// ActiveCount returns the number of elements between First and Completed.
func (a *Animator) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.records {
		if r.Phase == First || r.Phase == Inverted || r.Phase == Playing {
			n++
		}
	}
	return n
}

// Metrics summarizes the animator.
type Metrics struct {
	Records   int
	Inverted  int
	Playing   int
	Completed int
	Watchdogs int
}

// Metrics returns counts by phase and the number of watchdog timeouts.
func (a *Animator) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	m := Metrics{Records: len(a.records), Watchdogs: a.watchdogs}
	for _, r := range a.records {
		switch r.Phase {
		case Inverted:
			m.Inverted++
		case Playing:
			m.Playing++
		case Completed:
			m.Completed++
		}
	}
	return m
}

func runAll(fns []func()) {
	for _, fn := range fns {
		func() {
			defer errors.Recover("flip.OnComplete")
			fn()
		}()
	}
}
