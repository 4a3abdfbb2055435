package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/ease"

	"github.com/go-drift/motion/pkg/errors"
)

// EasingKind identifies an easing variant.
type EasingKind int

const (
	EasingLinear EasingKind = iota
	EasingIn
	EasingOut
	EasingInOut
	EasingCircIn
	EasingCircOut
	EasingCircInOut
	EasingBackIn
	EasingBackOut
	EasingBackInOut
	EasingCubicBezier
	EasingSpring
)

// Easing maps linear progress in [0, 1] to eased progress. Every variant
// returns exactly 0 at t = 0 and exactly 1 at t = 1; Back and Spring may
// leave [0, 1] in between. Evaluation is pure and deterministic.
//
// The zero Easing is Linear.
type Easing struct {
	kind   EasingKind
	bezier [4]float64
	spring SpringConfig
	settle float64
}

// Standard easings. EaseIn, EaseOut and EaseInOut are quadratic.
var (
	Linear    = Easing{kind: EasingLinear}
	EaseIn    = Easing{kind: EasingIn}
	EaseOut   = Easing{kind: EasingOut}
	EaseInOut = Easing{kind: EasingInOut}
	CircIn    = Easing{kind: EasingCircIn}
	CircOut   = Easing{kind: EasingCircOut}
	CircInOut = Easing{kind: EasingCircInOut}
	BackIn    = Easing{kind: EasingBackIn}
	BackOut   = Easing{kind: EasingBackOut}
	BackInOut = Easing{kind: EasingBackInOut}
)

// Ease is equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// Standard is the Material standard curve.
var Standard = CubicBezier(0.4, 0.0, 0.2, 1.0)

// IOSNavigation approximates iOS navigation transition easing.
var IOSNavigation = CubicBezier(0.22, 1.0, 0.36, 1.0)

// CubicBezier returns an easing matching CSS cubic-bezier(). The curve runs
// from (0,0) to (1,1) with control points (x1,y1) and (x2,y2); x1 and x2 must
// lie in [0, 1] for Validate to pass.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	return Easing{kind: EasingCubicBezier, bezier: [4]float64{x1, y1, x2, y2}}
}

// Spring returns an easing that follows the step response of a damped
// spring over its settle duration.
func Spring(cfg SpringConfig) Easing {
	e := Easing{kind: EasingSpring, spring: cfg, settle: 1}
	if cfg.Validate() == nil {
		e.settle = cfg.SettleDuration()
	}
	return e
}

// Kind returns the variant of e.
func (e Easing) Kind() EasingKind { return e.kind }

// Bezier returns the control points of a CubicBezier easing.
func (e Easing) Bezier() ([4]float64, bool) {
	return e.bezier, e.kind == EasingCubicBezier
}

// SpringConfig returns the configuration of a Spring easing.
func (e Easing) SpringConfig() (SpringConfig, bool) {
	return e.spring, e.kind == EasingSpring
}

// Validate reports an InvalidValue error for out of range parameters.
func (e Easing) Validate() error {
	switch e.kind {
	case EasingCubicBezier:
		for _, p := range e.bezier {
			if !isFinite(p) {
				return errors.InvalidValue("animation.CubicBezier", "control points must be finite, got %v", e.bezier)
			}
		}
		if e.bezier[0] < 0 || e.bezier[0] > 1 || e.bezier[2] < 0 || e.bezier[2] > 1 {
			return errors.InvalidValue("animation.CubicBezier", "x control points must lie in [0, 1], got %v", e.bezier)
		}
	case EasingSpring:
		return e.spring.Validate()
	case EasingLinear, EasingIn, EasingOut, EasingInOut,
		EasingCircIn, EasingCircOut, EasingCircInOut,
		EasingBackIn, EasingBackOut, EasingBackInOut:
	default:
		return errors.InvalidValue("animation.Easing", "unknown easing kind %d", e.kind)
	}
	return nil
}

// Evaluate returns eased progress for t. Inputs outside [0, 1] are clamped
// and NaN is treated as 0.
func (e Easing) Evaluate(t float64) float64 {
	if !(t > 0) {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch e.kind {
	// The quadratics are written out instead of using ease.InQuad and friends
	// so they evaluate the exact t², 1-(1-t)² and piecewise forms.
	case EasingIn:
		return t * t
	case EasingOut:
		inv := 1 - t
		return 1 - inv*inv
	case EasingInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		inv := -2*t + 2
		return 1 - inv*inv/2
	case EasingCircIn:
		return ease.InCirc(t)
	case EasingCircOut:
		return ease.OutCirc(t)
	case EasingCircInOut:
		return ease.InOutCirc(t)
	case EasingBackIn:
		return ease.InBack(t)
	case EasingBackOut:
		return ease.OutBack(t)
	case EasingBackInOut:
		return ease.InOutBack(t)
	case EasingCubicBezier:
		b := e.bezier
		return solveCubicBezier(b[0], b[1], b[2], b[3], t)
	case EasingSpring:
		x, _ := e.spring.displacement(-1, e.spring.Velocity, t*e.settle)
		return 1 + x
	default:
		return t
	}
}

// Func returns e as a plain curve function.
func (e Easing) Func() ease.Function {
	return e.Evaluate
}

// Duration returns the natural duration of a Spring easing in seconds, or
// zero for curves that take their duration from the animation.
func (e Easing) Duration() float64 {
	if e.kind == EasingSpring {
		return e.settle
	}
	return 0
}

var easingNames = map[EasingKind]string{
	EasingLinear:    "linear",
	EasingIn:        "ease-in",
	EasingOut:       "ease-out",
	EasingInOut:     "ease-in-out",
	EasingCircIn:    "circ-in",
	EasingCircOut:   "circ-out",
	EasingCircInOut: "circ-in-out",
	EasingBackIn:    "back-in",
	EasingBackOut:   "back-out",
	EasingBackInOut: "back-in-out",
}

// String returns the name ParseEasing accepts for e.
func (e Easing) String() string {
	switch e.kind {
	case EasingCubicBezier:
		b := e.bezier
		return fmt.Sprintf("cubic-bezier(%s, %s, %s, %s)", formatFloat(b[0]), formatFloat(b[1]), formatFloat(b[2]), formatFloat(b[3]))
	case EasingSpring:
		s := e.spring
		return fmt.Sprintf("spring(%s, %s, %s)", formatFloat(s.Stiffness), formatFloat(s.Damping), formatFloat(s.Mass))
	}
	if name, ok := easingNames[e.kind]; ok {
		return name
	}
	return "linear"
}

// cssCurves are cubic-bezier approximations of the closed-form curves.
var cssCurves = map[EasingKind]string{
	EasingIn:        "cubic-bezier(0.11, 0, 0.5, 0)",
	EasingOut:       "cubic-bezier(0.5, 1, 0.89, 1)",
	EasingInOut:     "cubic-bezier(0.45, 0, 0.55, 1)",
	EasingCircIn:    "cubic-bezier(0.55, 0, 1, 0.45)",
	EasingCircOut:   "cubic-bezier(0, 0.55, 0.45, 1)",
	EasingCircInOut: "cubic-bezier(0.85, 0, 0.15, 1)",
	EasingBackIn:    "cubic-bezier(0.36, 0, 0.66, -0.56)",
	EasingBackOut:   "cubic-bezier(0.34, 1.56, 0.64, 1)",
	EasingBackInOut: "cubic-bezier(0.68, -0.6, 0.32, 1.6)",
}

const cssSpringSamples = 20

// CSS returns a CSS timing function for e. Springs are sampled into a
// linear() function.
func (e Easing) CSS() string {
	switch e.kind {
	case EasingLinear:
		return "linear"
	case EasingCubicBezier:
		return e.String()
	case EasingSpring:
		parts := make([]string, cssSpringSamples+1)
		for i := range parts {
			parts[i] = formatFloat(e.Evaluate(float64(i) / cssSpringSamples))
		}
		return "linear(" + strings.Join(parts, ", ") + ")"
	}
	return cssCurves[e.kind]
}

// ParseEasing reads an easing name: linear, ease-in, ease-out, ease-in-out,
// the circ-* and back-* families, ease, standard, ios-navigation,
// cubic-bezier(x1, y1, x2, y2), spring(k, c, m[, v]) or a spring preset name.
func ParseEasing(s string) (Easing, error) {
	const op = "animation.ParseEasing"
	name := strings.ToLower(strings.TrimSpace(s))
	for kind, n := range easingNames {
		if n == name {
			return Easing{kind: kind}, nil
		}
	}
	switch name {
	case "ease":
		return Ease, nil
	case "standard":
		return Standard, nil
	case "ios-navigation":
		return IOSNavigation, nil
	}
	if cfg, ok := SpringPresets[name]; ok {
		return Spring(cfg), nil
	}

	fn, args, ok := parseCall(name)
	if !ok {
		return Easing{}, errors.InvalidValue(op, "unknown easing %q", s)
	}
	var e Easing
	switch {
	case fn == "cubic-bezier" && len(args) == 4:
		e = CubicBezier(args[0], args[1], args[2], args[3])
	case fn == "spring" && (len(args) == 3 || len(args) == 4):
		cfg := SpringConfig{Stiffness: args[0], Damping: args[1], Mass: args[2]}
		if len(args) == 4 {
			cfg.Velocity = args[3]
		}
		e = Spring(cfg)
	default:
		return Easing{}, errors.InvalidValue(op, "unknown easing %q", s)
	}
	if err := e.Validate(); err != nil {
		return Easing{}, err
	}
	return e, nil
}

// parseCall splits "name(a, b, c)" into its name and numeric arguments.
func parseCall(s string) (string, []float64, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	fields := strings.Split(s[open+1:len(s)-1], ",")
	args := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) {
			return "", nil, false
		}
		args = append(args, v)
	}
	return strings.TrimSpace(s[:open]), args, true
}
