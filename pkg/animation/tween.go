package animation

// Tween interpolates between Begin and End values based on progress.
//
// Tween maps the 0-1 range of an easing curve to any value range or type.
// Use the helper constructors ([TweenFloat64], [TweenColor],
// [TweenTransform], [TweenValue]) for common types, or create custom tweens
// with a Lerp function.
type Tween[T any] struct {
	// Begin is the starting value (when t = 0).
	Begin T
	// End is the ending value (when t = 1).
	End T
	// Lerp interpolates between Begin and End. Receives the begin value,
	// end value, and progress t. Returns the interpolated value.
	Lerp func(a, b T, t float64) T
}

// Evaluate returns the interpolated value at t.
func (tw *Tween[T]) Evaluate(t float64) T {
	if tw.Lerp == nil {
		return tw.End
	}
	return tw.Lerp(tw.Begin, tw.End, t)
}

// EvaluateEased applies e to the linear progress t before interpolating.
func (tw *Tween[T]) EvaluateEased(e Easing, t float64) T {
	return tw.Evaluate(e.Evaluate(t))
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return Lerp(a, b, t)
}

// TweenFloat64 creates a tween for float64 values.
func TweenFloat64(begin, end float64) *Tween[float64] {
	return &Tween[float64]{Begin: begin, End: end, Lerp: LerpFloat64}
}

// TweenColor creates a tween for Color values.
func TweenColor(begin, end Color) *Tween[Color] {
	return &Tween[Color]{Begin: begin, End: end, Lerp: LerpColor}
}

// TweenTransform creates a tween for Transform values.
func TweenTransform(begin, end Transform) *Tween[Transform] {
	return &Tween[Transform]{Begin: begin, End: end, Lerp: LerpTransform}
}

// TweenValue creates a tween over animatable values. Mismatched kinds step.
func TweenValue(begin, end Value) *Tween[Value] {
	return &Tween[Value]{
		Begin: begin,
		End:   end,
		Lerp: func(a, b Value, t float64) Value {
			v, _ := Interpolate(a, b, t)
			return v
		},
	}
}
