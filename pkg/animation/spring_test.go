package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpringRegime(t *testing.T) {
	assert.Equal(t, CriticallyDamped, GentleSpring.Regime())
	assert.Equal(t, Underdamped, BouncySpring.Regime())
	assert.Equal(t, Underdamped, SnappySpring.Regime())
	assert.Equal(t, Overdamped, SlowSpring.Regime())
}

func TestSpringClosedFormStartsAtRest(t *testing.T) {
	for _, cfg := range SpringPresets {
		pos, vel := cfg.At(0, 1, 0, 0)
		assert.InDelta(t, 0, pos, 1e-12)
		assert.InDelta(t, 0, vel, 1e-12)
	}
}

func TestSpringClosedFormMatchesSimulation(t *testing.T) {
	for name, cfg := range SpringPresets {
		t.Run(name, func(t *testing.T) {
			sim := NewSpringSimulation(cfg, 0, 3, 1)
			const dt = 1.0 / 120
			for i := 0; i < 60; i++ {
				sim.Step(dt)
			}
			pos, vel := cfg.At(0, 1, 3, sim.Elapsed())
			assert.InDelta(t, pos, sim.Position(), 1e-6)
			assert.InDelta(t, vel, sim.Velocity(), 1e-6)
		})
	}
}

func TestSpringOvershootIsNotClamped(t *testing.T) {
	e := Spring(WobblySpring)
	peak := 0.0
	for i := 1; i < 100; i++ {
		peak = math.Max(peak, e.Evaluate(float64(i)/100))
	}
	assert.Greater(t, peak, 1.0)
}

func TestSpringSettleDuration(t *testing.T) {
	for name, cfg := range SpringPresets {
		d := cfg.SettleDuration()
		assert.Greater(t, d, 0.0, name)
		assert.Less(t, d, maxSettleTime, name)

		x, v := cfg.At(0, 1, 0, d)
		assert.InDelta(t, 1, x, cfg.restDelta(), name)
		assert.InDelta(t, 0, v, cfg.restSpeed(), name)
	}

	undamped := SpringConfig{Stiffness: 100, Mass: 1}
	assert.Equal(t, maxSettleTime, undamped.SettleDuration())
}

func TestSpringTrajectory(t *testing.T) {
	traj := BouncySpring.Trajectory(10)
	require.Len(t, traj, 11)
	assert.Equal(t, 0.0, traj[0])
	assert.Equal(t, 1.0, traj[10])
}

func TestSpringSimulationSettles(t *testing.T) {
	sim := NewSpringSimulation(SpringConfig{Stiffness: 200, Damping: 25, Mass: 1, RestDelta: 0.1, RestSpeed: 0.1}, 50, 200, 100)
	steps := 0
	for !sim.IsDone() {
		sim.Step(1.0 / 60)
		steps++
		require.Less(t, steps, 600)
	}
	assert.InDelta(t, 100, sim.Position(), 0.1)
	assert.Less(t, math.Abs(sim.Velocity()), 0.1)

	sim.Snap()
	assert.Equal(t, 100.0, sim.Position())
	assert.Zero(t, sim.Velocity())
}

func TestSpringSimulationIgnoresBadStep(t *testing.T) {
	sim := NewSpringSimulation(GentleSpring, 0, 0, 1)
	pos, vel := sim.Step(0)
	assert.Zero(t, pos)
	assert.Zero(t, vel)
	sim.Step(math.Inf(1))
	assert.Zero(t, sim.Elapsed())
}

func TestSpringIsSettled(t *testing.T) {
	for name, cfg := range SpringPresets {
		assert.False(t, cfg.IsSettled(0, 1, 0, 0), name)
		assert.True(t, cfg.IsSettled(0, 1, 0, cfg.SettleDuration()), name)
	}
}
