package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Handle identifies a started animation. Handles increase monotonically and
// are never reused within an engine. The zero Handle is never issued.
type Handle uint64

func (h Handle) String() string { return "anim#" + strconv.FormatUint(uint64(h), 10) }

// State is the lifecycle state of an animation.
//
// The state follows this state machine:
//
//	          Pause()
//	Running ◄────────► Paused
//	   │      Resume()    │
//	   │                  │ Stop()
//	   ├──────────────────┼──────────► Cancelled
//	   │ Stop()           │
//	   │
//	   └─ end reached, swept ────────► Completed
//
// Completed and Cancelled are terminal.
type State int

const (
	// Running means the animation is advanced on every tick.
	Running State = iota
	// Paused means the animation holds its last value; elapsed time does
	// not accumulate.
	Paused
	// Completed means the animation reached its end and wrote its target.
	Completed
	// Cancelled means the animation was stopped before its end.
	Cancelled
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether s is Completed or Cancelled.
func (s State) IsTerminal() bool { return s == Completed || s == Cancelled }

// RepeatMode selects how an animation repeats.
type RepeatMode int

const (
	// RepeatNever plays once.
	RepeatNever RepeatMode = iota
	// RepeatCount plays Count times.
	RepeatCount
	// RepeatInfinite restarts from the beginning forever.
	RepeatInfinite
	// RepeatInfiniteReverse alternates direction forever.
	RepeatInfiniteReverse
)

// Repeat configures repetition. The zero value plays once.
type Repeat struct {
	Mode  RepeatMode
	Count int
}

// Times repeats an animation n times in total.
func Times(n int) Repeat { return Repeat{Mode: RepeatCount, Count: n} }

// Forever restarts an animation indefinitely.
var Forever = Repeat{Mode: RepeatInfinite}

// PingPong plays an animation back and forth indefinitely.
var PingPong = Repeat{Mode: RepeatInfiniteReverse}

// laps returns how many times the animation plays.
func (r Repeat) laps() float64 {
	switch r.Mode {
	case RepeatCount:
		return float64(r.Count)
	case RepeatInfinite, RepeatInfiniteReverse:
		return math.Inf(1)
	default:
		return 1
	}
}

// StatusListener observes state changes.
type StatusListener func(h Handle, state State)
