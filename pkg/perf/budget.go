// Package perf tracks frame timing and resource use against a performance
// budget, and decides when the runtime should shed work.
package perf

import (
	"math"

	"github.com/go-drift/motion/pkg/errors"
)

// Budget holds the limits the runtime tries to stay within.
type Budget struct {
	MaxFrameTimeMs float64 `yaml:"max_frame_time_ms"`
	MaxAnimations  int     `yaml:"max_animations"`
	MaxMemoryBytes int64   `yaml:"max_memory_bytes"`
	MaxGPULayers   int     `yaml:"max_gpu_layers"`
	TargetFPS      float64 `yaml:"target_fps"`
}

// DefaultBudget returns 16.67 ms frames, 100 animations, 10 MiB, 50 GPU
// layers and 60 fps.
func DefaultBudget() Budget {
	return Budget{
		MaxFrameTimeMs: 16.67,
		MaxAnimations:  100,
		MaxMemoryBytes: 10 << 20,
		MaxGPULayers:   50,
		TargetFPS:      60,
	}
}

// Validate reports an InvalidValue error for non-positive limits.
func (b Budget) Validate() error {
	const op = "perf.Budget"
	switch {
	case math.IsNaN(b.MaxFrameTimeMs) || math.IsInf(b.MaxFrameTimeMs, 0) || b.MaxFrameTimeMs <= 0:
		return errors.InvalidValue(op, "max frame time must be positive, got %v", b.MaxFrameTimeMs)
	case b.MaxAnimations <= 0:
		return errors.InvalidValue(op, "max animations must be positive, got %d", b.MaxAnimations)
	case b.MaxMemoryBytes <= 0:
		return errors.InvalidValue(op, "max memory must be positive, got %d", b.MaxMemoryBytes)
	case b.MaxGPULayers <= 0:
		return errors.InvalidValue(op, "max GPU layers must be positive, got %d", b.MaxGPULayers)
	case math.IsNaN(b.TargetFPS) || math.IsInf(b.TargetFPS, 0) || b.TargetFPS <= 0:
		return errors.InvalidValue(op, "target fps must be positive, got %v", b.TargetFPS)
	}
	return nil
}

// Usage is the resource use the runtime reports each tick.
type Usage struct {
	ActiveAnimations int
	MemoryBytes      int64
	GPULayers        int
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		ActiveAnimations: u.ActiveAnimations + o.ActiveAnimations,
		MemoryBytes:      u.MemoryBytes + o.MemoryBytes,
		GPULayers:        u.GPULayers + o.GPULayers,
	}
}

// Report is a point-in-time view of performance.
type Report struct {
	// Timestamp is the frame time in seconds the report was built for.
	Timestamp float64
	// FrameTimeMs is the most recent frame interval.
	FrameTimeMs float64
	// AverageFrameTimeMs is the mean over the monitor's window.
	AverageFrameTimeMs float64
	FPS                float64
	DroppedFrames      int
	Usage
	// Utilization is the largest normalized metric, in [0, 1].
	Utilization float64
}

// IsWithinBudget reports whether every metric of r is within its limit. The
// frame time limit applies to the window average, so a single slow frame
// does not put a report over budget.
func (b Budget) IsWithinBudget(r Report) bool {
	return r.AverageFrameTimeMs <= b.MaxFrameTimeMs && b.resourcesWithin(r)
}

func (b Budget) resourcesWithin(r Report) bool {
	return r.ActiveAnimations <= b.MaxAnimations &&
		r.MemoryBytes <= b.MaxMemoryBytes &&
		r.GPULayers <= b.MaxGPULayers
}

// Utilization returns the maximum of the normalized metrics of r, each
// clamped to [0, 1]. A value of 1 means at least one limit is reached.
func (b Budget) Utilization(r Report) float64 {
	ratios := [...]float64{
		ratio(r.FrameTimeMs, b.MaxFrameTimeMs),
		ratio(float64(r.ActiveAnimations), float64(b.MaxAnimations)),
		ratio(float64(r.MemoryBytes), float64(b.MaxMemoryBytes)),
		ratio(float64(r.GPULayers), float64(b.MaxGPULayers)),
	}
	u := 0.0
	for _, x := range ratios {
		u = math.Max(u, x)
	}
	return u
}

func ratio(v, limit float64) float64 {
	if limit <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v/limit, 0), 1)
}

// Policy is the fallback applied while the runtime is degraded.
type Policy struct {
	// AnimationCapFactor scales MaxAnimations.
	AnimationCapFactor float64 `yaml:"animation_cap_factor"`
	// DisableMomentum turns gesture momentum springs into direct settles.
	DisableMomentum bool `yaml:"disable_momentum"`
	// TargetFPS replaces the budget's frame rate.
	TargetFPS float64 `yaml:"target_fps"`
}

// DefaultPolicy halves the animation cap, disables momentum and drops to
// 30 fps.
func DefaultPolicy() Policy {
	return Policy{AnimationCapFactor: 0.5, DisableMomentum: true, TargetFPS: 30}
}

// Apply returns b with the policy's reductions.
func (p Policy) Apply(b Budget) Budget {
	if p.AnimationCapFactor > 0 {
		b.MaxAnimations = max(1, int(float64(b.MaxAnimations)*p.AnimationCapFactor))
	}
	if p.TargetFPS > 0 {
		b.TargetFPS = p.TargetFPS
	}
	return b
}
