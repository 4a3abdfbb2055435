package flip

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/scheduler"
)

// ChangeThreshold is the smallest movement of any edge, in pixels, that
// counts as a layout change.
const ChangeThreshold = 0.1

// MaxHistory bounds the number of changes a Tracker remembers.
const MaxHistory = 1000

// ChangeKind classifies a layout change.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangePosition
	ChangeSize
	ChangePositionAndSize
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNone:
		return "none"
	case ChangePosition:
		return "position"
	case ChangeSize:
		return "size"
	case ChangePositionAndSize:
		return "position+size"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Impact grades how disruptive a layout change is.
type Impact int

const (
	ImpactLow Impact = iota
	ImpactMedium
	ImpactHigh
	ImpactCritical
)

func (i Impact) String() string {
	switch i {
	case ImpactLow:
		return "low"
	case ImpactMedium:
		return "medium"
	case ImpactHigh:
		return "high"
	case ImpactCritical:
		return "critical"
	default:
		return fmt.Sprintf("Impact(%d)", int(i))
	}
}

// Classify compares two boxes of the same element.
func Classify(prev, cur element.Rect) ChangeKind {
	moved := math.Abs(prev.X-cur.X) > ChangeThreshold || math.Abs(prev.Y-cur.Y) > ChangeThreshold
	resized := math.Abs(prev.Width-cur.Width) > ChangeThreshold || math.Abs(prev.Height-cur.Height) > ChangeThreshold
	switch {
	case moved && resized:
		return ChangePositionAndSize
	case moved:
		return ChangePosition
	case resized:
		return ChangeSize
	}
	return ChangeNone
}

// ImpactOf grades a change by the area gained or lost plus the distance
// moved: under 100 is low, under 1000 medium, under 10000 high.
func ImpactOf(prev, cur element.Rect) Impact {
	area := math.Abs(cur.Width*cur.Height - prev.Width*prev.Height)
	total := area + math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
	switch {
	case total < 100:
		return ImpactLow
	case total < 1000:
		return ImpactMedium
	case total < 10000:
		return ImpactHigh
	}
	return ImpactCritical
}

// LayoutChange records one element moving or resizing between two frames.
type LayoutChange struct {
	Element  element.Handle
	ID       string
	Previous element.Rect
	Current  element.Rect
	// Time is the frame time the change was seen, in seconds.
	Time   float64
	Kind   ChangeKind
	Impact Impact
}

// TrackerStats summarizes what a Tracker has seen.
type TrackerStats struct {
	Tracked           int
	TotalChanges      int
	ChangesLastSecond int
	ByImpact          map[Impact]int
}

type trackedElement struct {
	id      string
	rect    element.Rect
	changes int
}

// Tracker measures elements every frame and reports when their boxes
// change. With AutoAnimate it also plays a FLIP from the old box to the new
// one, so layout changes made anywhere animate without RecordFirst calls.
type Tracker struct {
	mu sync.Mutex

	animator *Animator
	onChange func(LayoutChange)
	detach   func()

	tracked  map[element.Handle]*trackedElement
	order    []element.Handle
	history  []LayoutChange
	total    int
	byImpact map[Impact]int
	disabled bool
	now      float64
}

// TrackerOption configures a Tracker.
type TrackerOption func(*trackerOptions)

type trackerOptions struct {
	animator *Animator
	onChange func(LayoutChange)
	sched    *scheduler.Scheduler
	detached bool
}

// AutoAnimate plays every detected change through a, using a's
// configuration.
func AutoAnimate(a *Animator) TrackerOption {
	return func(o *trackerOptions) { o.animator = a }
}

// OnLayoutChange registers fn for every detected change.
func OnLayoutChange(fn func(LayoutChange)) TrackerOption {
	return func(o *trackerOptions) { o.onChange = fn }
}

// TrackerScheduler attaches the tracker to s instead of scheduler.Default.
func TrackerScheduler(s *scheduler.Scheduler) TrackerOption {
	return func(o *trackerOptions) { o.sched = s }
}

// DetachedTracker creates a tracker the caller drives with Tick or Update.
func DetachedTracker() TrackerOption {
	return func(o *trackerOptions) { o.detached = true }
}

// NewTracker creates a tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	var o trackerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.detached {
		o.sched = nil
	} else if o.sched == nil {
		o.sched = scheduler.Default()
	}
	t := &Tracker{
		animator: o.animator,
		onChange: o.onChange,
		tracked:  make(map[element.Handle]*trackedElement),
		byImpact: make(map[Impact]int),
	}
	if o.sched != nil {
		t.detach = o.sched.Attach(t)
	}
	return t
}

// Close detaches the tracker from its scheduler.
func (t *Tracker) Close() {
	t.mu.Lock()
	detach := t.detach
	t.detach = nil
	t.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Track starts watching el and takes its current box as the baseline.
// Tracking an element again replaces its id and baseline.
func (t *Tracker) Track(el element.Handle, id string) error {
	if el == nil {
		return errors.InvalidValue("flip.Track", "element is nil")
	}
	rect := el.Measure()
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tracked[el]; !ok {
		t.order = append(t.order, el)
	}
	t.tracked[el] = &trackedElement{id: id, rect: rect}
	return nil
}

// Untrack stops watching el. Its history is kept.
func (t *Tracker) Untrack(el element.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tracked[el]; !ok {
		return &errors.MotionError{Op: "flip.Untrack", Kind: errors.KindNotFound, Err: fmt.Errorf("%v is not tracked", el)}
	}
	delete(t.tracked, el)
	for i, o := range t.order {
		if o == el {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetEnabled pauses or resumes measuring. Changes made while disabled are
// reported as one change when tracking resumes.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled = !enabled
}

// Tick implements scheduler.Client.
func (t *Tracker) Tick(now float64) {
	t.Update(now)
}

// Update measures every tracked element and returns the changes since the
// last update, in tracking order. Elements the auto-animator is still
// animating are skipped, since their measured box includes its transform.
func (t *Tracker) Update(now float64) []LayoutChange {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return nil
	}
	t.mu.Lock()
	if t.disabled {
		t.mu.Unlock()
		return nil
	}
	if now < t.now {
		now = t.now
	}
	t.now = now
	var changes []LayoutChange
	for _, el := range t.order {
		if t.animator != nil && t.animator.busy(el) {
			continue
		}
		te := t.tracked[el]
		cur := el.Measure()
		kind := Classify(te.rect, cur)
		if kind == ChangeNone {
			continue
		}
		ch := LayoutChange{
			Element:  el,
			ID:       te.id,
			Previous: te.rect,
			Current:  cur,
			Time:     now,
			Kind:     kind,
			Impact:   ImpactOf(te.rect, cur),
		}
		te.rect = cur
		te.changes++
		changes = append(changes, ch)
		t.recordLocked(ch)
	}
	animator, onChange := t.animator, t.onChange
	t.mu.Unlock()

	for _, ch := range changes {
		if animator != nil {
			animator.playFromRect(ch.Element, ch.Previous, rotationOf(ch.Element), animator.cfg, nil)
		}
		if onChange != nil {
			func() {
				defer errors.Recover("flip.OnLayoutChange")
				onChange(ch)
			}()
		}
	}
	return changes
}

func (t *Tracker) recordLocked(ch LayoutChange) {
	t.total++
	t.byImpact[ch.Impact]++
	t.history = append(t.history, ch)
	if n := len(t.history) - MaxHistory; n > 0 {
		clear(t.history[:n])
		t.history = t.history[n:]
	}
}

// Changes returns the remembered changes of el, oldest first.
func (t *Tracker) Changes(el element.Handle) []LayoutChange {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []LayoutChange
	for _, ch := range t.history {
		if ch.Element == el {
			out = append(out, ch)
		}
	}
	return out
}

// Recent returns up to n of the latest changes, oldest first.
func (t *Tracker) Recent(n int) []LayoutChange {
	t.mu.Lock()
	defer t.mu.Unlock()
	start := max(0, len(t.history)-max(0, n))
	return append([]LayoutChange(nil), t.history[start:]...)
}

// Stats returns counts of tracked elements and changes. ChangesLastSecond
// is relative to the latest update.
func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := TrackerStats{
		Tracked:      len(t.tracked),
		TotalChanges: t.total,
		ByImpact:     make(map[Impact]int, len(t.byImpact)),
	}
	for k, v := range t.byImpact {
		s.ByImpact[k] = v
	}
	for _, ch := range t.history {
		if ch.Time >= t.now-1 {
			s.ChangesLastSecond++
		}
	}
	return s
}
