package perf

import (
	"sync"
)

const (
	monitorSamplesDefault = 240
	// maxFrameGapMs discards intervals that span a suspension (hidden tab,
	// debugger pause) so one stall does not skew the average for seconds.
	maxFrameGapMs = 1000
)

// FrameSample is a single recorded frame.
type FrameSample struct {
	// Timestamp is the frame time in seconds.
	Timestamp float64
	// FrameMs is the interval since the previous frame.
	FrameMs float64
}

// Monitor stores recent frame samples in a ring buffer and counts frames
// slower than the budget threshold. All methods are safe for concurrent use.
type Monitor struct {
	mu          sync.RWMutex
	samples     []FrameSample
	index       int
	count       int
	dropped     int
	thresholdMs float64
	last        float64
	hasLast     bool
}

// NewMonitor creates a monitor keeping capacity samples. Frames slower than
// thresholdMs count as dropped.
func NewMonitor(capacity int, thresholdMs float64) *Monitor {
	if capacity <= 0 {
		capacity = monitorSamplesDefault
	}
	if thresholdMs <= 0 {
		thresholdMs = DefaultBudget().MaxFrameTimeMs
	}
	return &Monitor{
		samples:     make([]FrameSample, capacity),
		thresholdMs: thresholdMs,
	}
}

// Capacity returns the buffer capacity.
func (m *Monitor) Capacity() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

// SetThreshold updates the dropped frame threshold.
func (m *Monitor) SetThreshold(thresholdMs float64) {
	if thresholdMs <= 0 {
		thresholdMs = DefaultBudget().MaxFrameTimeMs
	}
	m.mu.Lock()
	m.thresholdMs = thresholdMs
	m.mu.Unlock()
}

// RecordTimestamp records a frame at now (seconds) and returns the interval
// since the previous one in milliseconds. The first call, and any call that
// does not move time forward, records nothing and returns false.
func (m *Monitor) RecordTimestamp(now float64) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasLast || now < m.last {
		m.last, m.hasLast = now, true
		return 0, false
	}
	if now == m.last {
		return 0, false
	}
	frameMs := (now - m.last) * 1000
	m.last = now
	if frameMs > maxFrameGapMs {
		return frameMs, true
	}
	m.addLocked(FrameSample{Timestamp: now, FrameMs: frameMs})
	return frameMs, true
}

// Add records a frame sample and updates the dropped frame count.
func (m *Monitor) Add(sample FrameSample) {
	m.mu.Lock()
	m.addLocked(sample)
	m.mu.Unlock()
}

func (m *Monitor) addLocked(sample FrameSample) {
	m.samples[m.index] = sample
	m.index = (m.index + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	if sample.FrameMs > m.thresholdMs {
		m.dropped++
	}
}

// Snapshot returns a chronological copy of the samples.
func (m *Monitor) Snapshot() []FrameSample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.count == 0 {
		return nil
	}
	result := make([]FrameSample, m.count)
	if m.count < len(m.samples) {
		copy(result, m.samples[:m.count])
	} else {
		copy(result, m.samples[m.index:])
		copy(result[len(m.samples)-m.index:], m.samples[:m.index])
	}
	return result
}

// DroppedFrames returns the number of recorded frames over the threshold.
func (m *Monitor) DroppedFrames() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

// AverageFrameMs returns the mean interval over the buffer, or 0 if empty.
func (m *Monitor) AverageFrameMs() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < m.count; i++ {
		sum += m.samples[i].FrameMs
	}
	return sum / float64(m.count)
}

// Report builds a report for the frame at now from the latest sample, the
// window average and the given usage, scored against budget.
func (m *Monitor) Report(now float64, usage Usage, budget Budget) Report {
	avg := m.AverageFrameMs()

	m.mu.RLock()
	latest := 0.0
	if m.count > 0 {
		latest = m.samples[(m.index-1+len(m.samples))%len(m.samples)].FrameMs
	}
	dropped := m.dropped
	m.mu.RUnlock()

	fps := 0.0
	if avg > 0 {
		fps = 1000 / avg
	}
	r := Report{
		Timestamp:          now,
		FrameTimeMs:        latest,
		AverageFrameTimeMs: avg,
		FPS:                fps,
		DroppedFrames:      dropped,
		Usage:              usage,
	}
	r.Utilization = budget.Utilization(r)
	return r
}

// Reset clears all samples and counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.samples)
	m.index, m.count, m.dropped = 0, 0, 0
	m.hasLast = false
}
