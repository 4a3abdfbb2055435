package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

func TestDefaultBudget(t *testing.T) {
	b := DefaultBudget()
	assert.Equal(t, 16.67, b.MaxFrameTimeMs)
	assert.Equal(t, 100, b.MaxAnimations)
	assert.Equal(t, int64(10*1024*1024), b.MaxMemoryBytes)
	assert.Equal(t, 50, b.MaxGPULayers)
	assert.Equal(t, 60.0, b.TargetFPS)
	assert.NoError(t, b.Validate())
}

func TestBudgetValidate(t *testing.T) {
	mutate := []func(*Budget){
		func(b *Budget) { b.MaxFrameTimeMs = 0 },
		func(b *Budget) { b.MaxAnimations = -1 },
		func(b *Budget) { b.MaxMemoryBytes = 0 },
		func(b *Budget) { b.MaxGPULayers = 0 },
		func(b *Budget) { b.TargetFPS = 0 },
	}
	for i, m := range mutate {
		b := DefaultBudget()
		m(&b)
		assert.True(t, errors.IsKind(b.Validate(), errors.KindInvalidValue), "case %d", i)
	}
}

func TestIsWithinBudget(t *testing.T) {
	b := DefaultBudget()
	ok := Report{FrameTimeMs: 16, AverageFrameTimeMs: 16, Usage: Usage{ActiveAnimations: 100, MemoryBytes: 1 << 20, GPULayers: 50}}
	assert.True(t, b.IsWithinBudget(ok))

	tests := []func(*Report){
		func(r *Report) { r.AverageFrameTimeMs = 17 },
		func(r *Report) { r.ActiveAnimations = 101 },
		func(r *Report) { r.MemoryBytes = 11 << 20 },
		func(r *Report) { r.GPULayers = 51 },
	}
	for i, m := range tests {
		r := ok
		m(&r)
		assert.False(t, b.IsWithinBudget(r), "case %d", i)
	}
}

func TestIsWithinBudgetUsesAverageFrameTime(t *testing.T) {
	b := DefaultBudget()
	assert.False(t, b.IsWithinBudget(Report{FrameTimeMs: 10, AverageFrameTimeMs: 40}))
	assert.True(t, b.IsWithinBudget(Report{FrameTimeMs: 40, AverageFrameTimeMs: 10}))
}

func TestGovernorScoresLatestFrame(t *testing.T) {
	g := NewGovernor(DefaultBudget())
	g.SetHysteresis(1)
	// A slow frame degrades even while the window average is still low.
	assert.Equal(t, Degrade, g.Observe(Report{FrameTimeMs: 40, AverageFrameTimeMs: 10}))
	assert.Equal(t, Restore, g.Observe(Report{FrameTimeMs: 10, AverageFrameTimeMs: 40}))
	assert.Equal(t, Degrade, g.Observe(Report{FrameTimeMs: 10, Usage: Usage{GPULayers: 51}}))
}

func TestUtilizationIsMaxOfNormalizedMetrics(t *testing.T) {
	b := DefaultBudget()
	r := Report{FrameTimeMs: b.MaxFrameTimeMs / 4, Usage: Usage{ActiveAnimations: 80, GPULayers: 5}}
	assert.InDelta(t, 0.8, b.Utilization(r), 1e-12)

	r.MemoryBytes = 100 << 20
	assert.Equal(t, 1.0, b.Utilization(r))

	assert.Equal(t, 0.0, b.Utilization(Report{}))
}

func TestPolicyApply(t *testing.T) {
	b := DefaultPolicy().Apply(DefaultBudget())
	assert.Equal(t, 50, b.MaxAnimations)
	assert.Equal(t, 30.0, b.TargetFPS)
	assert.Equal(t, 16.67, b.MaxFrameTimeMs)

	tiny := DefaultBudget()
	tiny.MaxAnimations = 1
	assert.Equal(t, 1, DefaultPolicy().Apply(tiny).MaxAnimations)
}

func TestMonitorRingBuffer(t *testing.T) {
	m := NewMonitor(3, 16.67)
	assert.Equal(t, 3, m.Capacity())
	assert.Nil(t, m.Snapshot())

	for i, ms := range []float64{10, 20, 30, 40} {
		m.Add(FrameSample{Timestamp: float64(i), FrameMs: ms})
	}
	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []float64{20, 30, 40}, []float64{snap[0].FrameMs, snap[1].FrameMs, snap[2].FrameMs})
	assert.Equal(t, 3, m.DroppedFrames())
	assert.InDelta(t, 30, m.AverageFrameMs(), 1e-12)

	m.Reset()
	assert.Zero(t, m.DroppedFrames())
	assert.Nil(t, m.Snapshot())
}

func TestMonitorRecordTimestamp(t *testing.T) {
	m := NewMonitor(0, 0)
	_, ok := m.RecordTimestamp(1)
	assert.False(t, ok)

	ms, ok := m.RecordTimestamp(1.016)
	assert.True(t, ok)
	assert.InDelta(t, 16, ms, 1e-9)

	_, ok = m.RecordTimestamp(1.016)
	assert.False(t, ok)

	// A long suspension is reported but not averaged.
	ms, ok = m.RecordTimestamp(6)
	assert.True(t, ok)
	assert.Greater(t, ms, 1000.0)
	assert.Len(t, m.Snapshot(), 1)

	r := m.Report(6, Usage{ActiveAnimations: 10}, DefaultBudget())
	assert.InDelta(t, 16, r.FrameTimeMs, 1e-9)
	assert.InDelta(t, 62.5, r.FPS, 1e-6)
	assert.Equal(t, 10, r.ActiveAnimations)
	assert.InDelta(t, 16/16.67, r.Utilization, 1e-9)
}

func TestGovernorHysteresis(t *testing.T) {
	g := NewGovernor(DefaultBudget())
	slow := Report{FrameTimeMs: 40}
	fast := Report{FrameTimeMs: 10}

	assert.Equal(t, Steady, g.Observe(slow))
	assert.Equal(t, Steady, g.Observe(slow))
	assert.Equal(t, Steady, g.Observe(fast))
	assert.Equal(t, Steady, g.Observe(slow))
	assert.Equal(t, Steady, g.Observe(slow))
	assert.Equal(t, Degrade, g.Observe(slow))
	assert.True(t, g.Degraded())
	assert.Equal(t, Steady, g.Observe(slow))

	assert.Equal(t, Steady, g.Observe(fast))
	assert.Equal(t, Steady, g.Observe(fast))
	assert.Equal(t, Steady, g.Observe(slow))
	assert.Equal(t, Steady, g.Observe(fast))
	assert.Equal(t, Steady, g.Observe(fast))
	assert.Equal(t, Restore, g.Observe(fast))
	assert.False(t, g.Degraded())

	g.SetHysteresis(1)
	assert.Equal(t, Degrade, g.Observe(slow))
	g.Reset()
	assert.False(t, g.Degraded())
}

func TestLayerManager(t *testing.T) {
	rec := motiontest.RecordErrors(t)
	m := NewLayerManager(2)
	a, b, c := new(int), new(int), new(int)

	assert.True(t, m.Request(a))
	assert.True(t, m.Request(a))
	assert.True(t, m.Request(b))
	assert.False(t, m.Request(c))
	assert.Equal(t, 1, rec.Count(errors.KindBudgetExceeded))
	assert.Equal(t, 2, m.Count())

	m.Release(a)
	assert.True(t, m.Request(c))
	assert.Equal(t, Usage{GPULayers: 2}, m.Usage())
}
