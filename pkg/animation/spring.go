package animation

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/go-drift/motion/pkg/errors"
)

const (
	defaultRestDelta = 0.01
	defaultRestSpeed = 0.01
	// maxSettleTime bounds every spring so a barely damped configuration
	// still finishes.
	maxSettleTime = 10.0
	settleStep    = 1.0 / 240
)

// SpringConfig describes a damped harmonic oscillator: stiffness k, damping
// c and mass m. Velocity is the initial velocity in units per second.
// RestDelta and RestSpeed are the distance and speed below which the spring
// counts as settled; zero selects 0.01.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	Velocity  float64
	RestDelta float64
	RestSpeed float64
}

// Spring presets.
var (
	GentleSpring = SpringConfig{Stiffness: 100, Damping: 20, Mass: 1}
	BouncySpring = SpringConfig{Stiffness: 200, Damping: 10, Mass: 1}
	SnappySpring = SpringConfig{Stiffness: 300, Damping: 30, Mass: 1}
	WobblySpring = SpringConfig{Stiffness: 180, Damping: 8, Mass: 1}
	SlowSpring   = SpringConfig{Stiffness: 50, Damping: 15, Mass: 1}
)

// SpringPresets maps preset names to configurations.
var SpringPresets = map[string]SpringConfig{
	"gentle": GentleSpring,
	"bouncy": BouncySpring,
	"snappy": SnappySpring,
	"wobbly": WobblySpring,
	"slow":   SlowSpring,
}

// Validate reports an InvalidValue error unless k > 0, m > 0, c >= 0 and all
// fields are finite.
func (c SpringConfig) Validate() error {
	const op = "animation.SpringConfig"
	switch {
	case !isFinite(c.Stiffness) || c.Stiffness <= 0:
		return errors.InvalidValue(op, "stiffness must be positive, got %v", c.Stiffness)
	case !isFinite(c.Mass) || c.Mass <= 0:
		return errors.InvalidValue(op, "mass must be positive, got %v", c.Mass)
	case !isFinite(c.Damping) || c.Damping < 0:
		return errors.InvalidValue(op, "damping must be non-negative, got %v", c.Damping)
	case !isFinite(c.Velocity):
		return errors.InvalidValue(op, "velocity must be finite, got %v", c.Velocity)
	case !isFinite(c.RestDelta) || c.RestDelta < 0 || !isFinite(c.RestSpeed) || c.RestSpeed < 0:
		return errors.InvalidValue(op, "rest thresholds must be non-negative")
	}
	return nil
}

func (c SpringConfig) restDelta() float64 {
	if c.RestDelta > 0 {
		return c.RestDelta
	}
	return defaultRestDelta
}

func (c SpringConfig) restSpeed() float64 {
	if c.RestSpeed > 0 {
		return c.RestSpeed
	}
	return defaultRestSpeed
}

// AngularFrequency returns the undamped natural frequency sqrt(k/m).
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// DampingRatio returns c / (2·sqrt(k·m)).
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// DampingRegime classifies a spring by its damping ratio.
type DampingRegime int

const (
	Underdamped DampingRegime = iota
	CriticallyDamped
	Overdamped
)

func (r DampingRegime) String() string {
	switch r {
	case Underdamped:
		return "underdamped"
	case CriticallyDamped:
		return "critically damped"
	case Overdamped:
		return "overdamped"
	default:
		return "unknown"
	}
}

// Regime returns the damping regime of c.
func (c SpringConfig) Regime() DampingRegime {
	z := c.DampingRatio()
	switch {
	case math.Abs(z-1) < 1e-9:
		return CriticallyDamped
	case z < 1:
		return Underdamped
	default:
		return Overdamped
	}
}

// displacement returns the offset from equilibrium and its derivative at
// time t for a spring released at offset e0 with velocity v0.
func (c SpringConfig) displacement(e0, v0, t float64) (float64, float64) {
	w := c.AngularFrequency()
	z := c.DampingRatio()
	switch c.Regime() {
	case Underdamped:
		wd := w * math.Sqrt(1-z*z)
		decay := math.Exp(-z * w * t)
		b := (v0 + z*w*e0) / wd
		sin, cos := math.Sincos(wd * t)
		return decay * (e0*cos + b*sin), decay * (v0*cos - (e0*wd+z*w*b)*sin)
	case CriticallyDamped:
		decay := math.Exp(-w * t)
		b := v0 + w*e0
		return decay * (e0 + b*t), decay * (v0 - w*b*t)
	default:
		s := w * math.Sqrt(z*z-1)
		r1, r2 := -z*w+s, -z*w-s
		c1 := (v0 - r2*e0) / (r1 - r2)
		c2 := e0 - c1
		e1, e2 := math.Exp(r1*t), math.Exp(r2*t)
		return c1*e1 + c2*e2, c1*r1*e1 + c2*r2*e2
	}
}

// At returns the closed-form position and velocity at time t of a spring
// moving from from to to, released with the given velocity.
func (c SpringConfig) At(from, to, velocity, t float64) (position, speed float64) {
	x, v := c.displacement(from-to, velocity, t)
	return to + x, v
}

// IsSettled reports whether the spring described by At has come within the
// rest thresholds of to by time t.
func (c SpringConfig) IsSettled(from, to, velocity, t float64) bool {
	x, v := c.At(from, to, velocity, t)
	return math.Abs(x-to) < c.restDelta() && math.Abs(v) < c.restSpeed()
}

// SettleDuration returns the time, in seconds, a unit step response needs to
// come within the rest thresholds. The result is capped at ten seconds.
func (c SpringConfig) SettleDuration() float64 {
	if c.Validate() != nil {
		return maxSettleTime
	}
	rd, rs := c.restDelta(), c.restSpeed()
	for i := 1; ; i++ {
		t := float64(i) * settleStep
		if t >= maxSettleTime {
			return maxSettleTime
		}
		x, v := c.displacement(-1, c.Velocity, t)
		if math.Abs(x) < rd && math.Abs(v) < rs {
			return t
		}
	}
}

// Trajectory samples the unit step response at n+1 evenly spaced instants
// over its settle duration.
func (c SpringConfig) Trajectory(n int) []float64 {
	if n < 1 {
		n = 1
	}
	d := c.SettleDuration()
	out := make([]float64, n+1)
	for i := range out {
		x, _ := c.displacement(-1, c.Velocity, d*float64(i)/float64(n))
		out[i] = 1 + x
	}
	out[n] = 1
	return out
}

// SpringSimulation integrates a spring frame by frame. It is used where the
// equilibrium or state can change mid-flight (gesture momentum, bounces),
// which the closed form cannot express.
type SpringSimulation struct {
	cfg      SpringConfig
	position float64
	velocity float64
	target   float64
	elapsed  float64

	dt      float64
	stepper harmonica.Spring
}

// NewSpringSimulation creates a simulation starting at position with the given
// velocity, settling toward target.
func NewSpringSimulation(cfg SpringConfig, position, velocity, target float64) *SpringSimulation {
	return &SpringSimulation{cfg: cfg, position: position, velocity: velocity, target: target}
}

// Step advances the simulation by dt seconds and returns the new position and
// velocity. Non-positive dt leaves the state unchanged.
func (s *SpringSimulation) Step(dt float64) (float64, float64) {
	if dt <= 0 || !isFinite(dt) {
		return s.position, s.velocity
	}
	if dt != s.dt {
		s.dt = dt
		s.stepper = harmonica.NewSpring(dt, s.cfg.AngularFrequency(), s.cfg.DampingRatio())
	}
	s.position, s.velocity = s.stepper.Update(s.position, s.velocity, s.target)
	s.elapsed += dt
	return s.position, s.velocity
}

// Position returns the current position.
func (s *SpringSimulation) Position() float64 { return s.position }

// Velocity returns the current velocity.
func (s *SpringSimulation) Velocity() float64 { return s.velocity }

// Target returns the equilibrium.
func (s *SpringSimulation) Target() float64 { return s.target }

// Elapsed returns the simulated time in seconds.
func (s *SpringSimulation) Elapsed() float64 { return s.elapsed }

// SetTarget moves the equilibrium without disturbing position or velocity.
func (s *SpringSimulation) SetTarget(target float64) { s.target = target }

// SetState overwrites position and velocity, e.g. after a bounce.
func (s *SpringSimulation) SetState(position, velocity float64) {
	s.position, s.velocity = position, velocity
}

// Snap places the simulation at rest on its target.
func (s *SpringSimulation) Snap() {
	s.position, s.velocity = s.target, 0
}

// IsDone reports whether both speed and distance to target are below the
// rest thresholds, or the simulation has run for ten seconds.
func (s *SpringSimulation) IsDone() bool {
	if s.elapsed >= maxSettleTime {
		return true
	}
	return math.Abs(s.velocity) < s.cfg.restSpeed() && math.Abs(s.position-s.target) < s.cfg.restDelta()
}
