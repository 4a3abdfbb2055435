// Package timeline samples keyframed property values over time.
//
// A Timeline holds keyframes sorted by time. Sampling a property finds the
// two keyframes around the requested time that define that property and
// interpolates between them using the later keyframe's easing. Times outside
// the keyframe range clamp to the first or last value.
package timeline

import (
	"math"
	"sort"
	"sync"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// MaxCacheEntries bounds the scalar sample cache. When full, the oldest
// entry is evicted.
const MaxCacheEntries = 1000

// Keyframe sets property values at a point in time. Ease shapes the segment
// that ends at this keyframe. ElementID optionally routes the keyframe's
// writes to a different element than the timeline's target.
type Keyframe struct {
	Time       float64
	Properties animation.Target
	Ease       animation.Easing
	ElementID  string
}

type cacheKey struct {
	property string
	time     float64
}

// Timeline is an ordered set of keyframes. The zero value is an empty,
// usable timeline.
type Timeline struct {
	mu         sync.Mutex
	keyframes  []Keyframe
	tracks     map[string][]int
	cache      map[cacheKey]float64
	ring       [MaxCacheEntries]cacheKey
	ringHead   int
	current    float64
	onProgress func(float64)
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// Add is a convenience that builds a timeline from keyframes, failing on the
// first invalid one.
func Add(keyframes ...Keyframe) (*Timeline, error) {
	tl := New()
	for _, kf := range keyframes {
		if err := tl.AddKeyframe(kf); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

func validateKeyframe(op string, kf Keyframe) error {
	if math.IsNaN(kf.Time) || math.IsInf(kf.Time, 0) || kf.Time < 0 {
		return errors.InvalidValue(op, "keyframe time must be finite and non-negative, got %v", kf.Time)
	}
	for name, v := range kf.Properties {
		if !v.IsFinite() {
			return errors.InvalidValue(op, "property %q has a non-finite value", name)
		}
	}
	return kf.Ease.Validate()
}

// AddKeyframe inserts kf after any existing keyframes with the same time, so
// the later insertion wins when times are equal.
func (tl *Timeline) AddKeyframe(kf Keyframe) error {
	if err := validateKeyframe("timeline.AddKeyframe", kf); err != nil {
		return err
	}
	kf.Properties = kf.Properties.Clone()

	tl.mu.Lock()
	defer tl.mu.Unlock()
	i := sort.Search(len(tl.keyframes), func(i int) bool { return tl.keyframes[i].Time > kf.Time })
	tl.keyframes = append(tl.keyframes, Keyframe{})
	copy(tl.keyframes[i+1:], tl.keyframes[i:])
	tl.keyframes[i] = kf
	tl.rebuildLocked()
	return nil
}

// RemoveKeyframe deletes the keyframe at index i in time order.
func (tl *Timeline) RemoveKeyframe(i int) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if i < 0 || i >= len(tl.keyframes) {
		return errors.InvalidValue("timeline.RemoveKeyframe", "index %d out of range [0, %d)", i, len(tl.keyframes))
	}
	tl.keyframes = append(tl.keyframes[:i], tl.keyframes[i+1:]...)
	tl.rebuildLocked()
	return nil
}

// RemoveKeyframesAt deletes every keyframe at exactly time and returns how
// many were removed.
func (tl *Timeline) RemoveKeyframesAt(time float64) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	kept := tl.keyframes[:0]
	for _, kf := range tl.keyframes {
		if kf.Time != time {
			kept = append(kept, kf)
		}
	}
	removed := len(tl.keyframes) - len(kept)
	tl.keyframes = kept
	if removed > 0 {
		tl.rebuildLocked()
	}
	return removed
}

// SetEasing replaces the easing of the keyframe at index i.
func (tl *Timeline) SetEasing(i int, e animation.Easing) error {
	if err := e.Validate(); err != nil {
		return err
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if i < 0 || i >= len(tl.keyframes) {
		return errors.InvalidValue("timeline.SetEasing", "index %d out of range [0, %d)", i, len(tl.keyframes))
	}
	tl.keyframes[i].Ease = e
	tl.clearCacheLocked()
	return nil
}

// Keyframes returns a copy of the keyframes in time order.
func (tl *Timeline) Keyframes() []Keyframe {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	out := make([]Keyframe, len(tl.keyframes))
	for i, kf := range tl.keyframes {
		kf.Properties = kf.Properties.Clone()
		out[i] = kf
	}
	return out
}

// Len returns the number of keyframes.
func (tl *Timeline) Len() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.keyframes)
}

// Duration returns the time of the last keyframe, or 0 when empty.
func (tl *Timeline) Duration() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.durationLocked()
}

func (tl *Timeline) durationLocked() float64 {
	if len(tl.keyframes) == 0 {
		return 0
	}
	return tl.keyframes[len(tl.keyframes)-1].Time
}

// Properties returns the sorted names of every property any keyframe sets.
func (tl *Timeline) Properties() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	names := make([]string, 0, len(tl.tracks))
	for name := range tl.tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rebuildLocked recomputes the per-property keyframe indices and drops the
// cache. Called after every structural change.
func (tl *Timeline) rebuildLocked() {
	tl.tracks = make(map[string][]int)
	for i, kf := range tl.keyframes {
		for name := range kf.Properties {
			tl.tracks[name] = append(tl.tracks[name], i)
		}
	}
	tl.clearCacheLocked()
}

func (tl *Timeline) clearCacheLocked() {
	tl.cache = nil
	tl.ringHead = 0
}

// sampleLocked interpolates property at time t among the keyframes that
// define it.
func (tl *Timeline) sampleLocked(property string, t float64) (animation.Value, bool) {
	track := tl.tracks[property]
	if len(track) == 0 {
		return animation.Value{}, false
	}
	timeAt := func(i int) float64 { return tl.keyframes[track[i]].Time }
	valueAt := func(i int) animation.Value { return tl.keyframes[track[i]].Properties[property] }

	after := sort.Search(len(track), func(i int) bool { return timeAt(i) > t })
	switch after {
	case len(track):
		return valueAt(len(track) - 1), true
	case 0:
		// Before the first keyframe: the last one sharing its time wins.
		first := timeAt(0)
		last := sort.Search(len(track), func(i int) bool { return timeAt(i) > first }) - 1
		return valueAt(last), true
	}
	before := after - 1
	tb, ta := timeAt(before), timeAt(after)
	progress := (t - tb) / (ta - tb)
	eased := tl.keyframes[track[after]].Ease.Evaluate(progress)
	v, _ := animation.Interpolate(valueAt(before), valueAt(after), eased)
	return v, true
}

// Sample returns the interpolated value of property at time t. The second
// result is false when no keyframe sets the property.
func (tl *Timeline) Sample(property string, t float64) (animation.Value, bool) {
	if math.IsNaN(t) {
		t = 0
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.sampleLocked(property, t)
}

// ValueAtTime returns the scalar value of property at time t. Properties no
// keyframe sets, and non-scalar values, read as 0. Results are cached until
// the timeline changes.
func (tl *Timeline) ValueAtTime(property string, t float64) float64 {
	if math.IsNaN(t) {
		t = 0
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()

	key := cacheKey{property: property, time: t}
	if v, ok := tl.cache[key]; ok {
		return v
	}
	v, _ := tl.sampleLocked(property, t)
	f, _ := v.Float()
	tl.storeLocked(key, f)
	return f
}

func (tl *Timeline) storeLocked(key cacheKey, v float64) {
	if tl.cache == nil {
		tl.cache = make(map[cacheKey]float64, 64)
	}
	if len(tl.cache) >= MaxCacheEntries {
		// The ring is full: its head is the oldest entry.
		delete(tl.cache, tl.ring[tl.ringHead])
	}
	tl.cache[key] = v
	tl.ring[tl.ringHead] = key
	tl.ringHead = (tl.ringHead + 1) % MaxCacheEntries
}

// CacheLen returns the number of cached samples.
func (tl *Timeline) CacheLen() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.cache)
}

// OnProgress registers the callback ScrubTo invokes with normalized progress.
// Pass nil to remove it.
func (tl *Timeline) OnProgress(fn func(progress float64)) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.onProgress = fn
}

// ProgressCallback returns the callback registered with OnProgress, or nil.
func (tl *Timeline) ProgressCallback() func(progress float64) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.onProgress
}

// ScrubTo moves the playhead to t, which must lie in [0, Duration()]. The
// cache is cleared and the progress callback receives t/Duration().
func (tl *Timeline) ScrubTo(t float64) error {
	tl.mu.Lock()
	d := tl.durationLocked()
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > d {
		tl.mu.Unlock()
		return errors.InvalidValue("timeline.ScrubTo", "time %v outside [0, %v]", t, d)
	}
	tl.current = t
	tl.clearCacheLocked()
	cb := tl.onProgress
	tl.mu.Unlock()

	if cb != nil {
		progress := 1.0
		if d > 0 {
			progress = t / d
		}
		cb(progress)
	}
	return nil
}

// CurrentTime returns the playhead set by ScrubTo.
func (tl *Timeline) CurrentTime() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.current
}

// Stop rewinds the playhead to zero.
func (tl *Timeline) Stop() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.current = 0
}

// SynchronizedElements returns the distinct element ids keyframes target, in
// keyframe order.
func (tl *Timeline) SynchronizedElements() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, kf := range tl.keyframes {
		if kf.ElementID != "" && !seen[kf.ElementID] {
			seen[kf.ElementID] = true
			ids = append(ids, kf.ElementID)
		}
	}
	return ids
}

// Clone returns a deep copy of the keyframes and playhead. The copy has no
// progress callback and an empty cache.
func (tl *Timeline) Clone() *Timeline {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	c := &Timeline{current: tl.current}
	c.keyframes = make([]Keyframe, len(tl.keyframes))
	for i, kf := range tl.keyframes {
		kf.Properties = kf.Properties.Clone()
		c.keyframes[i] = kf
	}
	c.rebuildLocked()
	return c
}

// Metrics describes a timeline's size.
type Metrics struct {
	Keyframes      int
	Properties     int
	Elements       int
	CacheEntries   int
	Duration       float64
	EstimatedBytes int
}

// Metrics reports the current size of tl.
func (tl *Timeline) Metrics() Metrics {
	elements := len(tl.SynchronizedElements())
	tl.mu.Lock()
	defer tl.mu.Unlock()
	props := 0
	for _, kf := range tl.keyframes {
		props += len(kf.Properties)
	}
	const (
		keyframeBytes = 96
		propertyBytes = 160
		cacheBytes    = 48
	)
	return Metrics{
		Keyframes:      len(tl.keyframes),
		Properties:     len(tl.tracks),
		Elements:       elements,
		CacheEntries:   len(tl.cache),
		Duration:       tl.durationLocked(),
		EstimatedBytes: len(tl.keyframes)*keyframeBytes + props*propertyBytes + len(tl.cache)*cacheBytes,
	}
}
