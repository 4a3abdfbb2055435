package perf

// Transition is a change in degradation state decided by a Governor.
type Transition int

const (
	// Steady means no change.
	Steady Transition = iota
	// Degrade means the runtime should apply its fallback policy.
	Degrade
	// Restore means the runtime should lift the fallback policy.
	Restore
)

func (t Transition) String() string {
	switch t {
	case Degrade:
		return "degrade"
	case Restore:
		return "restore"
	default:
		return "steady"
	}
}

// DefaultHysteresis is the number of consecutive ticks needed to degrade or
// restore.
const DefaultHysteresis = 3

// Governor turns a stream of reports into degrade and restore decisions.
// Over-budget ticks must be consecutive to degrade, and in-budget ticks must
// be consecutive to restore.
//
//	           Hysteresis over-budget ticks
//	  normal ──────────────────────────────▶ degraded
//	     ▲                                      │
//	     └──────────────────────────────────────┘
//	           Hysteresis in-budget ticks
type Governor struct {
	budget     Budget
	hysteresis int
	over       int
	under      int
	degraded   bool
}

// NewGovernor returns a governor scoring reports against budget.
func NewGovernor(budget Budget) *Governor {
	return &Governor{budget: budget, hysteresis: DefaultHysteresis}
}

// SetHysteresis changes the number of consecutive ticks required. Values
// below 1 are treated as 1.
func (g *Governor) SetHysteresis(n int) {
	g.hysteresis = max(1, n)
}

// Budget returns the budget reports are scored against.
func (g *Governor) Budget() Budget { return g.budget }

// Degraded reports whether the fallback policy is in effect.
func (g *Governor) Degraded() bool { return g.degraded }

// frameWithinBudget scores the latest frame rather than the window average,
// so consecutive slow frames are counted as they happen.
func (g *Governor) frameWithinBudget(r Report) bool {
	return r.FrameTimeMs <= g.budget.MaxFrameTimeMs && g.budget.resourcesWithin(r)
}

// Observe scores r and returns the resulting transition. Each report counts
// as one tick: its latest frame time and resource use are checked.
func (g *Governor) Observe(r Report) Transition {
	if g.frameWithinBudget(r) {
		g.over = 0
		g.under++
		if g.degraded && g.under >= g.hysteresis {
			g.degraded = false
			g.under = 0
			return Restore
		}
		return Steady
	}
	g.under = 0
	g.over++
	if !g.degraded && g.over >= g.hysteresis {
		g.degraded = true
		g.over = 0
		return Degrade
	}
	return Steady
}

// Reset returns the governor to the normal state.
func (g *Governor) Reset() {
	g.over, g.under, g.degraded = 0, 0, false
}
