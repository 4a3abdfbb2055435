package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolateEndpointsAreBitIdentical(t *testing.T) {
	pairs := [][2]Value{
		{Number(0.1), Number(0.3)},
		{Pixels(-7.7), Pixels(1e9 + 0.1)},
		{Percent(1.0 / 3), Percent(2.0 / 3)},
		{Degrees(0.1), Degrees(359.9)},
		{ColorValue(Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}), ColorValue(Color{R: 0.7, G: 0.3, B: 0.9, A: 1})},
		{TransformValue(Translate(0.1, 0.2)), TransformValue(Scale(0.3, 0.7).WithRotate(0.1))},
	}
	for _, p := range pairs {
		got, ok := Interpolate(p[0], p[1], 0)
		assert.True(t, ok)
		assert.Equal(t, p[0], got)

		got, ok = Interpolate(p[0], p[1], 1)
		assert.True(t, ok)
		assert.Equal(t, p[1], got)
	}
}

func TestInterpolateSameValueIsStable(t *testing.T) {
	v := Pixels(0.1)
	for _, x := range []float64{0, 0.17, 0.5, 0.93, 1, 1.4} {
		got, _ := Interpolate(v, v, x)
		assert.Equal(t, v, got)
	}
}

func TestInterpolateMidpoints(t *testing.T) {
	got, ok := Interpolate(Number(0), Number(1), 0.5)
	assert.True(t, ok)
	assert.Equal(t, Number(0.5), got)

	got, _ = Interpolate(Degrees(0), Degrees(90), 1.2)
	f, _ := got.Float()
	assert.InDelta(t, 108, f, 1e-9)

	got, _ = Interpolate(ColorValue(RGB(255, 0, 0)), ColorValue(RGBA(0, 0, 255, 0)), 0.5)
	c, _ := got.Color()
	assert.InDelta(t, 0.5, c.R, 1e-9)
	assert.InDelta(t, 0.5, c.B, 1e-9)
	assert.InDelta(t, 0.5, c.A, 1e-9)

	got, _ = Interpolate(TransformValue(Identity()), TransformValue(Translate(100, 0).WithScale(2, 2)), 0.25)
	tr, _ := got.Transform()
	assert.InDelta(t, 25, tr.TranslateX, 1e-9)
	assert.InDelta(t, 1.25, tr.ScaleX, 1e-9)
}

func TestInterpolateSteps(t *testing.T) {
	a, b := String("block"), String("none")
	got, ok := Interpolate(a, b, 0.99)
	assert.True(t, ok)
	assert.Equal(t, a, got)
	got, _ = Interpolate(a, b, 1)
	assert.Equal(t, b, got)

	got, ok = Interpolate(Pixels(10), Percent(50), 0.5)
	assert.False(t, ok)
	assert.Equal(t, Pixels(10), got)
	got, ok = Interpolate(Pixels(10), Percent(50), 1)
	assert.False(t, ok)
	assert.Equal(t, Percent(50), got)
}

func TestLerpGeneric(t *testing.T) {
	assert.Equal(t, float32(0.3), Lerp(float32(0.1), float32(0.3), 1))
	assert.InDelta(t, 2.5, Lerp(0.0, 10.0, 0.25), 1e-12)
}

func TestLerpColorLinear(t *testing.T) {
	a, b := RGB(255, 0, 0), RGB(0, 255, 0)
	mid := LerpColorLinear(a, b, 0.5)
	srgb := LerpColor(a, b, 0.5)
	assert.Greater(t, mid.R, srgb.R)
	// Half of full intensity in linear light is about 0.735 in sRGB.
	assert.InDelta(t, 0.735, mid.R, 0.002)
	assert.InDelta(t, 0.735, mid.G, 0.002)
	assert.Equal(t, 0.0, mid.B)
	assert.Equal(t, b, LerpColorLinear(a, b, 1))
}
