package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCSS(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(0.5), "0.5"},
		{Number(-0.0), "0"},
		{Pixels(12), "12px"},
		{Percent(33.333333), "33.3333%"},
		{Degrees(45), "45deg"},
		{ColorValue(RGB(255, 0, 0)), "rgba(255, 0, 0, 1)"},
		{String("block"), "block"},
		{TransformValue(Identity()), "none"},
		{TransformValue(Translate(-50, -25).WithScale(0.5, 100.0/150)), "translate(-50px, -25px) scale(0.5, 0.6667)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.CSS())
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"0.25", Number(0.25)},
		{"12px", Pixels(12)},
		{" 50% ", Percent(50)},
		{"90deg", Degrees(90)},
		{"#00ff00", ColorValue(Color{R: 0, G: 1, B: 0, A: 1})},
		{"transparent", ColorValue(Color{})},
		{"auto", String("auto")},
		{"abcpx", String("abcpx")},
		{"NaN", String("NaN")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseValue(tt.in), tt.in)
	}

	rad := ParseValue("3.141592653589793rad")
	deg, ok := rad.Float()
	require.True(t, ok)
	assert.InDelta(t, 180, deg, 1e-9)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#f00", Color{R: 1, A: 1}},
		{"#0000ff80", Color{B: 1, A: 128.0 / 255}},
		{"rgb(255, 0, 0)", Color{R: 1, A: 1}},
		{"rgba(0, 0, 255, 0.5)", Color{B: 1, A: 0.5}},
		{"rgb(100% 0% 0% / 50%)", Color{R: 1, A: 0.5}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want.R, got.R, 1e-9, tt.in)
		assert.InDelta(t, tt.want.G, got.G, 1e-9, tt.in)
		assert.InDelta(t, tt.want.B, got.B, 1e-9, tt.in)
		assert.InDelta(t, tt.want.A, got.A, 1e-9, tt.in)
	}

	for _, bad := range []string{"red", "#12", "rgb(1,2)", "rgb 1 2 3"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestValueAccessors(t *testing.T) {
	f, ok := Pixels(3).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = String("x").Float()
	assert.False(t, ok)

	c, ok := ColorValue(RGB(0, 0, 255)).Color()
	assert.True(t, ok)
	assert.Equal(t, "#0000ff", c.Hex())

	tr, ok := TransformValue(Rotate(30)).Transform()
	assert.True(t, ok)
	assert.Equal(t, 30.0, tr.Rotate)

	assert.False(t, Number(math.Inf(1)).IsFinite())
	assert.True(t, String("x").IsFinite())
	assert.Equal(t, KindTransform, ZeroOf(KindTransform).Kind())
}

func TestTransformMatrix(t *testing.T) {
	// Last box 200x150 mapped back onto a 100x100 first box 50,25 up-left.
	inv := Translate(-50, -25).WithScale(100.0/200, 100.0/150)
	x, y := inv.Apply(0, 0)
	assert.InDelta(t, -50, x, 1e-9)
	assert.InDelta(t, -25, y, 1e-9)
	x, y = inv.Apply(200, 150)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 75, y, 1e-9)

	x, y = Rotate(90).Apply(1, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)

	assert.Equal(t, Identity().Matrix(), Scale(1, 1).Matrix())
}
