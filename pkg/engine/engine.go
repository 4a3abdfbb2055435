// Package engine runs declarative property animations.
//
// An Engine owns every animation started on it. Each frame it advances
// running animations, interpolates their properties and hands the results
// to a StyleSink in one batch per element. By default an engine attaches
// itself to scheduler.Default and reads time from it; hosts that drive
// frames themselves use Detached and call Tick.
package engine

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/perf"
	"github.com/go-drift/motion/pkg/scheduler"
	"github.com/go-drift/motion/pkg/timeline"
)

// maxRetired bounds how many finished handles State still answers for.
const maxRetired = 1024

const (
	bytesPerAnimation = 256
	bytesPerProperty  = 96
)

// Resolver maps a timeline element id to a host element.
type Resolver func(id string) element.Handle

type memoryKey struct {
	target   element.Handle
	property string
}

type animationEntry struct {
	handle Handle
	id     string
	cfg    Config
	props  []string
	from   animation.Target

	timeline   *timeline.Timeline
	onProgress func(float64)

	state     State
	startedAt float64
	pausedAt  float64
	elapsed   float64
	progress  float64

	snap             bool
	finalWritten     bool
	mismatchReported bool
}

// Engine runs animations. It is safe for concurrent use; style writes,
// completion callbacks and status listeners run on the goroutine calling
// Tick, never while the engine's lock is held.
type Engine struct {
	mu sync.Mutex

	clock    animation.Clock
	sink     StyleSink
	resolver Resolver
	sched    *scheduler.Scheduler
	detach   func()

	nextHandle Handle
	anims      map[Handle]*animationEntry
	order      []Handle
	active     int
	stable     bool

	retired      map[Handle]State
	retiredOrder []Handle

	baseCap  int
	capacity int
	degraded bool
	policy   perf.Policy

	memory map[memoryKey]animation.Value

	listeners    map[int]StatusListener
	nextListener int

	now float64
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	clock    animation.Clock
	sink     StyleSink
	resolver Resolver
	sched    *scheduler.Scheduler
	detached bool
	cap      int
	capSet   bool
}

// WithClock sets the time source used for start, pause and resume times.
func WithClock(c animation.Clock) Option {
	return func(o *engineOptions) { o.clock = c }
}

// WithSink sets where style writes go. The default writes CSS text to the
// target element.
func WithSink(s StyleSink) Option {
	return func(o *engineOptions) { o.sink = s }
}

// WithResolver sets how timeline element ids are resolved.
func WithResolver(r Resolver) Option {
	return func(o *engineOptions) { o.resolver = r }
}

// WithAnimationCap sets the number of concurrently active animations.
// Zero or less disables the cap.
func WithAnimationCap(n int) Option {
	return func(o *engineOptions) {
		o.cap = n
		o.capSet = true
	}
}

// WithScheduler attaches the engine to s instead of scheduler.Default.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(o *engineOptions) { o.sched = s }
}

// Detached creates an engine that is not attached to any scheduler. The
// caller drives it with Tick.
func Detached() Option {
	return func(o *engineOptions) { o.detached = true }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	var o engineOptions
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
	if o.sink == nil {
		o.sink = ElementSink{}
	}
	if !o.capSet {
		if o.sched != nil {
			o.cap = o.sched.Budget().MaxAnimations
		} else {
			o.cap = perf.DefaultBudget().MaxAnimations
		}
	}

	e := &Engine{
		clock:     o.clock,
		sink:      o.sink,
		resolver:  o.resolver,
		sched:     o.sched,
		anims:     make(map[Handle]*animationEntry),
		retired:   make(map[Handle]State),
		memory:    make(map[memoryKey]animation.Value),
		listeners: make(map[int]StatusListener),
		baseCap:   o.cap,
		capacity:  o.cap,
		stable:    true,
	}
	if e.sched != nil {
		e.detach = e.sched.Attach(e)
	}
	return e
}

// Close detaches the engine from its scheduler. Running animations stay
// registered and can still be driven with Tick.
func (e *Engine) Close() {
	e.mu.Lock()
	detach := e.detach
	e.detach = nil
	e.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Start validates cfg and registers a running animation. The first style
// write happens on the next tick.
//
// When the animation cap is reached the animation is still accepted but
// jumps to its end values on the next tick, and a budget error is reported.
func (e *Engine) Start(cfg Config) (Handle, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	now := e.clock.Now()

	e.mu.Lock()
	a := e.register(cfg, now)
	a.props = sortedKeys(cfg.Properties)
	a.from = make(animation.Target, len(a.props))
	for _, p := range a.props {
		a.from[p] = e.startValueLocked(cfg, p)
	}
	over := e.admitLocked(a)
	e.mu.Unlock()

	if over != nil {
		errors.Report(over)
	}
	return a.handle, nil
}

// StartTimeline plays tl on target. Every property the timeline defines is
// written to target and to each element its keyframes name through
// Keyframe.ElementID, resolved with the engine's Resolver.
//
// The engine plays a copy of tl, so later edits to tl do not affect the
// running animation. The progress callback registered on tl when it is
// submitted receives the playhead position every tick.
func (e *Engine) StartTimeline(tl *timeline.Timeline, target element.Handle, repeat Repeat) (Handle, error) {
	const op = "engine.StartTimeline"
	var onProgress func(float64)
	if tl != nil {
		onProgress = tl.ProgressCallback()
		tl = tl.Clone()
	}
	switch {
	case tl == nil || tl.Len() == 0:
		return 0, errors.InvalidValue(op, "timeline has no keyframes")
	case target == nil:
		return 0, errors.InvalidValue(op, "target element is nil")
	}
	cfg := Config{Target: target, Duration: tl.Duration(), Repeat: repeat}
	if cfg.Repeat.Mode == RepeatCount && cfg.Repeat.Count < 1 {
		return 0, errors.InvalidValue(op, "repeat count must be at least 1, got %d", cfg.Repeat.Count)
	}
	now := e.clock.Now()

	e.mu.Lock()
	a := e.register(cfg, now)
	a.timeline = tl
	a.onProgress = onProgress
	a.props = tl.Properties()
	over := e.admitLocked(a)
	e.mu.Unlock()

	if over != nil {
		errors.Report(over)
	}
	return a.handle, nil
}

func (e *Engine) register(cfg Config, now float64) *animationEntry {
	e.nextHandle++
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	a := &animationEntry{
		handle:    e.nextHandle,
		id:        id,
		cfg:       cfg,
		state:     Running,
		startedAt: now,
	}
	e.anims[a.handle] = a
	e.order = append(e.order, a.handle)
	return a
}

func (e *Engine) admitLocked(a *animationEntry) *errors.MotionError {
	var over *errors.MotionError
	if e.capacity > 0 && e.active >= e.capacity {
		a.snap = true
		over = &errors.MotionError{
			Op:     "engine.Start",
			Kind:   errors.KindBudgetExceeded,
			Handle: uint64(a.handle),
			Err:    fmt.Errorf("%d active animations at cap %d, snapping to end", e.active, e.capacity),
		}
	}
	e.active++
	return over
}

// startValueLocked resolves where property p starts.
func (e *Engine) startValueLocked(cfg Config, p string) animation.Value {
	to := cfg.Properties[p]
	if v, ok := cfg.From[p]; ok {
		return v
	}
	if v, ok := e.memory[memoryKey{cfg.Target, p}]; ok {
		return v
	}
	if r, ok := cfg.Target.(element.StyleReader); ok {
		if s, ok := r.Style(p); ok && s != "" {
			return coerce(animation.ParseValue(s), to.Kind())
		}
	}
	return animation.ZeroOf(to.Kind())
}

// coerce reinterprets a unitless number as the scalar kind the animation
// targets, so "0" can start a pixel animation.
func coerce(v animation.Value, k animation.Kind) animation.Value {
	if v.Kind() != animation.KindNumber {
		return v
	}
	f, _ := v.Float()
	switch k {
	case animation.KindPixels:
		return animation.Pixels(f)
	case animation.KindPercent:
		return animation.Percent(f)
	case animation.KindDegrees:
		return animation.Degrees(f)
	}
	return v
}

// Stop cancels h. Stopping a finished animation is a no-op; stopping a
// handle the engine never issued returns a NotFound error.
func (e *Engine) Stop(h Handle) error {
	e.mu.Lock()
	a, ok := e.anims[h]
	if !ok {
		_, retired := e.retired[h]
		e.mu.Unlock()
		if retired {
			return nil
		}
		return errors.NotFound("engine.Stop", uint64(h))
	}
	if a.state.IsTerminal() {
		e.mu.Unlock()
		return nil
	}
	a.state = Cancelled
	e.active--
	e.checkLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners, h, Cancelled)
	return nil
}

// Pause freezes a running animation at its current value.
func (e *Engine) Pause(h Handle) error {
	now := e.clock.Now()
	e.mu.Lock()
	a, err := e.lookupLocked("engine.Pause", h)
	if err != nil || a == nil || a.state != Running {
		e.mu.Unlock()
		return err
	}
	a.state = Paused
	a.pausedAt = now
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners, h, Paused)
	return nil
}

// Resume continues a paused animation from where it stopped.
func (e *Engine) Resume(h Handle) error {
	now := e.clock.Now()
	e.mu.Lock()
	a, err := e.lookupLocked("engine.Resume", h)
	if err != nil || a == nil || a.state != Paused {
		e.mu.Unlock()
		return err
	}
	if now > a.pausedAt {
		a.startedAt += now - a.pausedAt
	}
	a.state = Running
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners, h, Running)
	return nil
}

// lookupLocked returns the live entry for h, nil for a retired handle, or a
// NotFound error.
func (e *Engine) lookupLocked(op string, h Handle) (*animationEntry, error) {
	if a, ok := e.anims[h]; ok {
		return a, nil
	}
	if _, ok := e.retired[h]; ok {
		return nil, nil
	}
	return nil, errors.NotFound(op, uint64(h))
}

// State returns the state of h. Handles removed by cleanup keep reporting
// their final state for a while; unknown handles report false.
func (e *Engine) State(h Handle) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.anims[h]; ok {
		return a.state, true
	}
	s, ok := e.retired[h]
	return s, ok
}

// Snapshot is a read-only view of one animation.
type Snapshot struct {
	Handle Handle
	ID     string
	State  State
	// Elapsed is the time since the delay ended, as of the last tick.
	Elapsed float64
	// Progress is the fraction of the whole run completed, or of the
	// current lap for infinite repeats.
	Progress float64
}

// Snapshot returns a view of the live animation h.
func (e *Engine) Snapshot(h Handle) (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.anims[h]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{Handle: a.handle, ID: a.id, State: a.state, Elapsed: a.elapsed, Progress: a.progress}, true
}

// Lookup finds the live animation started with the given Config.ID.
func (e *Engine) Lookup(id string) (Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.order {
		if e.anims[h].id == id {
			return h, true
		}
	}
	return 0, false
}

// ActiveCount returns the number of running or paused animations.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// IsStable reports whether the engine's bookkeeping has stayed consistent.
// It turns false, and stays false, the first time the active count
// disagrees with the registry. Running animations do not affect it.
func (e *Engine) IsStable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stable
}

// checkLocked verifies the registry against the active count and clears the
// stable flag on the first mismatch.
func (e *Engine) checkLocked() {
	if !e.stable {
		return
	}
	live := 0
	for _, h := range e.order {
		a, ok := e.anims[h]
		if !ok {
			e.stable = false
			return
		}
		if !a.state.IsTerminal() {
			live++
		}
	}
	if e.active < 0 || e.active != live || len(e.order) != len(e.anims) {
		e.stable = false
	}
}

// Cap returns the current animation cap, which shrinks while degraded.
func (e *Engine) Cap() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capacity
}

// SetDegraded implements scheduler.QualityListener. While degraded the cap
// is scaled by the policy's factor; animations already running are kept.
func (e *Engine) SetDegraded(degraded bool, policy perf.Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.degraded = degraded
	e.policy = policy
	e.applyCapLocked()
}

// SetAnimationCap replaces the cap applied while not degraded. Zero or less
// disables it.
func (e *Engine) SetAnimationCap(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseCap = max(0, n)
	e.applyCapLocked()
}

func (e *Engine) applyCapLocked() {
	e.capacity = e.baseCap
	if e.degraded && e.baseCap > 0 {
		e.capacity = e.policy.Apply(perf.Budget{MaxAnimations: e.baseCap}).MaxAnimations
	}
}

// Usage implements scheduler.UsageReporter.
func (e *Engine) Usage() perf.Usage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return perf.Usage{ActiveAnimations: e.active, MemoryBytes: e.estimatedMemoryLocked()}
}

// EstimatedMemory approximates the bytes held by registered animations and
// remembered property values.
func (e *Engine) EstimatedMemory() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimatedMemoryLocked()
}

func (e *Engine) estimatedMemoryLocked() int64 {
	n := int64(len(e.memory)) * bytesPerProperty
	for _, a := range e.anims {
		n += bytesPerAnimation + int64(len(a.props))*bytesPerProperty
	}
	return n
}

// CleanupCompleted removes finished animations and returns how many were
// removed. Running animations whose whole run, delay included, has elapsed
// on the engine's clock are completed first: their end values are written
// and their completion callbacks run, as if a tick had reached them. Tick
// does this automatically.
func (e *Engine) CleanupCompleted() int {
	now := e.clock.Now()

	e.mu.Lock()
	var b batch
	var done []completion
	var progress []progressCall
	for _, h := range e.order {
		a := e.anims[h]
		if a.state != Running || !a.expired(now) {
			continue
		}
		if !a.finalWritten {
			e.writeFinalLocked(a, &b)
			a.finalWritten = true
		}
		a.progress = 1
		a.state = Completed
		e.active--
		done = append(done, completion{h, a.cfg.OnComplete})
		if a.onProgress != nil {
			progress = append(progress, progressCall{a.onProgress, 1})
		}
	}
	e.rememberLocked(&b)
	removed := e.removeTerminalLocked()
	e.checkLocked()
	var listeners []StatusListener
	if len(done) > 0 {
		listeners = e.listenersLocked()
	}
	sink := e.sink
	e.mu.Unlock()

	for _, el := range b.order {
		deliver(sink, el, b.byEl[el])
	}
	for _, p := range progress {
		p.call()
	}
	complete(done, listeners)
	return removed
}

// ForceCleanup cancels every animation, forgets remembered values and
// returns how many animations were cancelled.
func (e *Engine) ForceCleanup() int {
	e.mu.Lock()
	var cancelled []Handle
	for _, h := range e.order {
		a := e.anims[h]
		if !a.state.IsTerminal() {
			a.state = Cancelled
			cancelled = append(cancelled, h)
		}
	}
	e.active = 0
	e.removeTerminalLocked()
	e.checkLocked()
	clear(e.memory)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	for _, h := range cancelled {
		notify(listeners, h, Cancelled)
	}
	return len(cancelled)
}

func (e *Engine) removeTerminalLocked() int {
	kept := e.order[:0]
	removed := 0
	for _, h := range e.order {
		a := e.anims[h]
		if !a.state.IsTerminal() {
			kept = append(kept, h)
			continue
		}
		delete(e.anims, h)
		e.retireLocked(h, a.state)
		removed++
	}
	clear(e.order[len(kept):])
	e.order = kept
	return removed
}

func (e *Engine) retireLocked(h Handle, s State) {
	e.retired[h] = s
	e.retiredOrder = append(e.retiredOrder, h)
	if len(e.retiredOrder) > maxRetired {
		delete(e.retired, e.retiredOrder[0])
		e.retiredOrder = e.retiredOrder[1:]
	}
}

// AddStatusListener registers fn for every state change and returns a
// function that removes it.
func (e *Engine) AddStatusListener(fn StatusListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Engine) listenersLocked() []StatusListener {
	if len(e.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]StatusListener, len(ids))
	for i, id := range ids {
		out[i] = e.listeners[id]
	}
	return out
}

func notify(listeners []StatusListener, h Handle, s State) {
	for _, l := range listeners {
		func() {
			defer errors.Recover("engine.StatusListener")
			l(h, s)
		}()
	}
}

func sortedKeys(t animation.Target) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// expired reports whether a finite run has used up its delay and every lap
// by wall time now.
func (a *animationEntry) expired(now float64) bool {
	total := a.cfg.Duration * a.cfg.Repeat.laps()
	if math.IsInf(total, 1) {
		return false
	}
	return now-a.startedAt >= a.cfg.Delay+total
}

// lap maps elapsed time to the position within the current lap, in [0, 1],
// and reports whether the whole run has ended.
func (a *animationEntry) lap(elapsed, d float64) (float64, bool) {
	if d <= 0 {
		return 1, true
	}
	total := d * a.cfg.Repeat.laps()
	if elapsed >= total {
		a.progress = 1
		if a.cfg.Repeat.Mode == RepeatInfiniteReverse {
			return 0, true
		}
		return 1, true
	}
	n := math.Floor(elapsed / d)
	local := elapsed/d - n
	if math.IsInf(total, 1) {
		a.progress = local
	} else {
		a.progress = elapsed / total
	}
	if a.cfg.Repeat.Mode == RepeatInfiniteReverse && math.Mod(n, 2) == 1 {
		local = 1 - local
	}
	return local, false
}
