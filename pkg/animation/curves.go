package animation

import "math"

const (
	bezierEpsilon        = 1e-7
	bezierNewtonSteps    = 8
	bezierBisectionSteps = 24
)

// solveCubicBezier evaluates the CSS cubic-bezier curve with control points
// (x1,y1) and (x2,y2) at input progress t. The curve starts at (0,0) and ends
// at (1,1).
func solveCubicBezier(x1, y1, x2, y2, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	u := t
	// Newton-Raphson converges quickly for most values.
	for i := 0; i < bezierNewtonSteps; i++ {
		x := sampleCurve(x1, x2, u) - t
		if math.Abs(x) < bezierEpsilon {
			return sampleCurve(y1, y2, clampUnit(u))
		}
		dx := sampleCurveDerivative(x1, x2, u)
		if math.Abs(dx) < bezierEpsilon {
			break
		}
		u -= x / dx
	}

	// Fall back to bisection to guarantee a stable solution in [0,1].
	lo, hi := 0.0, 1.0
	u = clampUnit(u)
	for i := 0; i < bezierBisectionSteps; i++ {
		x := sampleCurve(x1, x2, u) - t
		if math.Abs(x) < bezierEpsilon {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}

	return sampleCurve(y1, y2, u)
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
