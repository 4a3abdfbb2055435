package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNumber is a unitless scalar (opacity, z-index).
	KindNumber Kind = iota
	// KindPixels is a length in CSS pixels.
	KindPixels
	// KindPercent is a percentage.
	KindPercent
	// KindDegrees is an angle in degrees.
	KindDegrees
	// KindColor is an RGBA color.
	KindColor
	// KindString is an opaque string that can only step.
	KindString
	// KindTransform is a composite 2D/3D transform.
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindPixels:
		return "pixels"
	case KindPercent:
		return "percent"
	case KindDegrees:
		return "degrees"
	case KindColor:
		return "color"
	case KindString:
		return "string"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an animatable style value. It is a closed sum type: build one with
// Number, Pixels, Percent, Degrees, ColorValue, String or TransformValue and
// switch on Kind to read it. The zero Value is Number(0).
type Value struct {
	kind      Kind
	num       float64
	color     Color
	str       string
	transform Transform
}

// Number returns a unitless scalar value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Pixels returns a length in pixels.
func Pixels(f float64) Value { return Value{kind: KindPixels, num: f} }

// Percent returns a percentage value.
func Percent(f float64) Value { return Value{kind: KindPercent, num: f} }

// Degrees returns an angle value.
func Degrees(f float64) Value { return Value{kind: KindDegrees, num: f} }

// ColorValue wraps a Color.
func ColorValue(c Color) Value { return Value{kind: KindColor, color: c} }

// String returns an opaque string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// TransformValue wraps a Transform.
func TransformValue(t Transform) Value { return Value{kind: KindTransform, transform: t} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Float returns the scalar of a Number, Pixels, Percent or Degrees value.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber, KindPixels, KindPercent, KindDegrees:
		return v.num, true
	}
	return 0, false
}

// Color returns the color of a Color value.
func (v Value) Color() (Color, bool) {
	return v.color, v.kind == KindColor
}

// Text returns the string of a String value.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Transform returns the transform of a Transform value.
func (v Value) Transform() (Transform, bool) {
	return v.transform, v.kind == KindTransform
}

// IsFinite reports whether every numeric component of v is finite.
func (v Value) IsFinite() bool {
	switch v.kind {
	case KindNumber, KindPixels, KindPercent, KindDegrees:
		return isFinite(v.num)
	case KindColor:
		return v.color.isFinite()
	case KindTransform:
		return v.transform.isFinite()
	}
	return true
}

// Equal reports whether v and o hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// CSS renders v as CSS text.
func (v Value) CSS() string {
	switch v.kind {
	case KindNumber:
		return formatFloat(v.num)
	case KindPixels:
		return formatFloat(v.num) + "px"
	case KindPercent:
		return formatFloat(v.num) + "%"
	case KindDegrees:
		return formatFloat(v.num) + "deg"
	case KindColor:
		return v.color.CSS()
	case KindString:
		return v.str
	case KindTransform:
		return v.transform.CSS()
	}
	return ""
}

func (v Value) String() string { return v.CSS() }

// ZeroOf returns the neutral value of kind k: 0 for scalars, transparent
// black, the empty string or the identity transform.
func ZeroOf(k Kind) Value {
	switch k {
	case KindPixels:
		return Pixels(0)
	case KindPercent:
		return Percent(0)
	case KindDegrees:
		return Degrees(0)
	case KindColor:
		return ColorValue(Color{})
	case KindString:
		return String("")
	case KindTransform:
		return TransformValue(Identity())
	default:
		return Number(0)
	}
}

// ParseValue reads CSS text back into a Value. Numbers with px, %, deg or
// rad suffixes and CSS colors are recognized; anything else becomes a String.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return String("")
	}
	if c, err := ParseColor(s); err == nil {
		return ColorValue(c)
	}
	suffixes := []struct {
		suffix string
		build  func(float64) Value
	}{
		{"px", Pixels},
		{"%", Percent},
		{"deg", Degrees},
		{"rad", func(f float64) Value { return Degrees(f * 180 / math.Pi) }},
	}
	for _, sf := range suffixes {
		if num, ok := strings.CutSuffix(s, sf.suffix); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(num), 64); err == nil && isFinite(f) {
				return sf.build(f)
			}
			return String(s)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isFinite(f) {
		return Number(f)
	}
	return String(s)
}

// Target is a set of property name to value pairs. Names are case-sensitive.
type Target map[string]Value

// Clone returns a shallow copy of t.
func (t Target) Clone() Target {
	if t == nil {
		return nil
	}
	out := make(Target, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// formatFloat prints f with at most four decimals and no trailing zeros.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
