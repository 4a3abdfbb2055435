package animation

import "golang.org/x/exp/constraints"

// Lerp linearly interpolates between a and b. At t == 0 and t == 1 the
// endpoints are returned exactly rather than through floating point
// arithmetic.
func Lerp[T constraints.Float](a, b T, t float64) T {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a + (b-a)*T(t)
}

// Interpolate blends two values at progress t. t is usually the eased
// progress and may leave [0, 1] for overshooting curves.
//
// Like kinds blend: scalars linearly, colors per channel in sRGB, transforms
// per component. Strings and mismatched kinds step: a is returned for t < 1
// and b from t >= 1. The second result is false only for a kind mismatch,
// which callers report but do not treat as fatal.
func Interpolate(a, b Value, t float64) (Value, bool) {
	if a.kind != b.kind {
		return step(a, b, t), false
	}
	switch a.kind {
	case KindNumber, KindPixels, KindPercent, KindDegrees:
		return Value{kind: a.kind, num: Lerp(a.num, b.num, t)}, true
	case KindColor:
		return ColorValue(LerpColor(a.color, b.color, t)), true
	case KindTransform:
		return TransformValue(LerpTransform(a.transform, b.transform, t)), true
	default:
		return step(a, b, t), true
	}
}

func step(a, b Value, t float64) Value {
	if t >= 1 {
		return b
	}
	return a
}
