// Package scheduler drives the motion runtime one frame at a time.
//
// The host calls Tick once per display frame (requestAnimationFrame, a
// vsync callback, a game loop). The scheduler turns host timestamps into a
// virtual frame time that never runs backwards and never jumps more than
// MaxDelta, ticks every attached client in attach order, and polls the
// performance budget to decide when clients should shed work.
//
// Clients are typically animation engines, FLIP animators and gesture
// bridges. Everything a scheduler ticks runs on the caller's goroutine.
package scheduler

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/perf"
)

// MaxDelta caps the time a single frame may advance, in seconds. Larger gaps
// (a hidden tab, a debugger pause) are absorbed instead of replayed.
const MaxDelta = 0.1

// skipTolerance lets frames arriving slightly early still count toward a
// reduced frame rate.
const skipTolerance = 0.002

// Client is ticked once per processed frame with the virtual frame time in
// seconds.
type Client interface {
	Tick(now float64)
}

// UsageReporter is implemented by clients that contribute to the budget
// report.
type UsageReporter interface {
	Usage() perf.Usage
}

// QualityListener is implemented by clients that react to degradation.
type QualityListener interface {
	SetDegraded(degraded bool, policy perf.Policy)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(now float64)

// Tick calls f.
func (f ClientFunc) Tick(now float64) { f(now) }

// FrameInfo describes one call to Tick.
type FrameInfo struct {
	// Now is the virtual frame time after this tick.
	Now float64
	// Delta is the capped advance applied this tick.
	Delta float64
	// Skipped is true when clients were not ticked, either because the
	// timestamp was invalid or the reduced frame rate dropped this frame.
	Skipped bool
	// Report is the budget report built for this tick.
	Report perf.Report
	// Transition is the degradation change decided this tick.
	Transition perf.Transition
}

type entry struct {
	id     int
	client Client
}

// Scheduler ticks its clients and enforces the performance budget.
type Scheduler struct {
	mu            sync.Mutex
	clients       []entry
	nextID        int
	frameTime     float64
	lastHost      float64
	started       bool
	lastProcessed float64
	processedOnce bool
	frames        uint64

	budget   perf.Budget
	policy   perf.Policy
	monitor  *perf.Monitor
	governor *perf.Governor
	layers   *perf.LayerManager
	degraded bool
	report   perf.Report
	logger   *slog.Logger

	quality       map[int]QualityListener
	nextQualityID int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBudget sets the performance budget.
func WithBudget(b perf.Budget) Option {
	return func(s *Scheduler) { s.budget = b }
}

// WithPolicy sets the fallback applied while degraded.
func WithPolicy(p perf.Policy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// WithLogger sets the logger for degrade and restore events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New returns a scheduler with the default budget and policy.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		budget: perf.DefaultBudget(),
		policy: perf.DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.monitor = perf.NewMonitor(0, s.budget.MaxFrameTimeMs)
	s.governor = perf.NewGovernor(s.budget)
	s.layers = perf.NewLayerManager(s.budget.MaxGPULayers)
	return s
}

var (
	defaultOnce      sync.Once
	defaultScheduler *Scheduler
)

// Default returns the process-wide scheduler, creating it on first use.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultScheduler = New()
	})
	return defaultScheduler
}

// Attach registers c to be ticked after the clients already attached. The
// returned function detaches it.
func (s *Scheduler) Attach(c Client) (detach func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.clients = append(s.clients, entry{id: id, client: c})
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.clients {
				if e.id == id {
					s.clients = append(s.clients[:i], s.clients[i+1:]...)
					return
				}
			}
		})
	}
}

// OnQuality registers l for degrade and restore notifications without
// ticking it. Attached clients implementing QualityListener are notified
// automatically. The returned function removes l.
func (s *Scheduler) OnQuality(l QualityListener) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quality == nil {
		s.quality = make(map[int]QualityListener)
	}
	id := s.nextQualityID
	s.nextQualityID++
	s.quality[id] = l
	return func() {
		s.mu.Lock()
		delete(s.quality, id)
		s.mu.Unlock()
	}
}

// ClientCount returns the number of attached clients.
func (s *Scheduler) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Now returns the virtual frame time in seconds. Scheduler implements
// animation.Clock so attached engines share its timeline.
func (s *Scheduler) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameTime
}

// Budget returns the configured budget.
func (s *Scheduler) Budget() perf.Budget { return s.budget }

// Policy returns the configured fallback policy.
func (s *Scheduler) Policy() perf.Policy { return s.policy }

// Layers returns the GPU layer manager shared by the scheduler's clients.
func (s *Scheduler) Layers() *perf.LayerManager { return s.layers }

// Monitor returns the frame monitor.
func (s *Scheduler) Monitor() *perf.Monitor { return s.monitor }

// Degraded reports whether the fallback policy is in effect.
func (s *Scheduler) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// TargetFPS returns the frame rate clients are ticked at.
func (s *Scheduler) TargetFPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetFPSLocked()
}

func (s *Scheduler) targetFPSLocked() float64 {
	if s.degraded {
		return s.policy.Apply(s.budget).TargetFPS
	}
	return s.budget.TargetFPS
}

// LastReport returns the budget report of the most recent tick.
func (s *Scheduler) LastReport() perf.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Frames returns how many frames have ticked the clients.
func (s *Scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Tick advances the scheduler to the host timestamp now (seconds). Non-finite
// timestamps are ignored. Δt is never negative and never exceeds MaxDelta.
func (s *Scheduler) Tick(now float64) FrameInfo {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return FrameInfo{Now: s.Now(), Skipped: true}
	}

	s.mu.Lock()
	delta := 0.0
	if s.started {
		delta = min(max(now-s.lastHost, 0), MaxDelta)
	}
	s.started = true
	s.lastHost = now
	s.frameTime += delta
	frameTime := s.frameTime

	interval := 1 / s.targetFPSLocked()
	skipped := s.degraded && s.processedOnce && frameTime-s.lastProcessed < interval-skipTolerance
	var clients []Client
	if !skipped {
		s.lastProcessed = frameTime
		s.processedOnce = true
		s.frames++
		clients = make([]Client, len(s.clients))
		for i, e := range s.clients {
			clients[i] = e.client
		}
	}
	s.mu.Unlock()

	s.monitor.RecordTimestamp(now)
	for _, c := range clients {
		tickClient(c, frameTime)
	}

	report, transition := s.pollBudget(frameTime)
	return FrameInfo{
		Now:        frameTime,
		Delta:      delta,
		Skipped:    skipped,
		Report:     report,
		Transition: transition,
	}
}

func tickClient(c Client, now float64) {
	defer errors.Recover("scheduler.Tick")
	c.Tick(now)
}

// pollBudget scores this frame and broadcasts degrade or restore.
func (s *Scheduler) pollBudget(now float64) (perf.Report, perf.Transition) {
	s.mu.Lock()
	clients := make([]Client, len(s.clients))
	for i, e := range s.clients {
		clients[i] = e.client
	}
	ids := make([]int, 0, len(s.quality))
	for id := range s.quality {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]QualityListener, len(ids))
	for i, id := range ids {
		listeners[i] = s.quality[id]
	}
	s.mu.Unlock()

	usage := s.layers.Usage()
	for _, c := range clients {
		if r, ok := c.(UsageReporter); ok {
			usage = usage.Add(r.Usage())
		}
	}
	report := s.monitor.Report(now, usage, s.budget)

	s.mu.Lock()
	s.report = report
	transition := s.governor.Observe(report)
	switch transition {
	case perf.Degrade:
		s.degraded = true
	case perf.Restore:
		s.degraded = false
	}
	s.mu.Unlock()

	if transition == perf.Steady {
		return report, transition
	}
	degraded := transition == perf.Degrade
	if degraded {
		s.logger.Info("motion degraded",
			slog.Float64("frame_ms", report.FrameTimeMs),
			slog.Int("active_animations", report.ActiveAnimations),
			slog.Float64("utilization", report.Utilization))
	} else {
		s.logger.Info("motion restored", slog.Float64("frame_ms", report.FrameTimeMs))
	}
	for _, c := range clients {
		if l, ok := c.(QualityListener); ok {
			notifyQuality(l, degraded, s.policy)
		}
	}
	for _, l := range listeners {
		notifyQuality(l, degraded, s.policy)
	}
	return report, transition
}

func notifyQuality(l QualityListener, degraded bool, p perf.Policy) {
	defer errors.Recover("scheduler.SetDegraded")
	l.SetDegraded(degraded, p)
}

// Reset detaches every client and returns the scheduler to its initial
// state. Intended for tests sharing the default scheduler.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = nil
	s.quality = nil
	s.frameTime, s.lastHost, s.lastProcessed = 0, 0, 0
	s.started, s.processedOnce, s.degraded = false, false, false
	s.frames = 0
	s.report = perf.Report{}
	s.monitor.Reset()
	s.governor.Reset()
}
