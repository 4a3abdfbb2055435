package animation

import (
	"math"
	"strings"

	"golang.org/x/image/math/f64"
)

// Transform is a decomposed CSS transform. Components are interpolated
// independently, which keeps rotations and scales monotonic where a matrix
// blend would not.
//
// The zero Transform has zero scale; start from Identity.
type Transform struct {
	TranslateX, TranslateY, TranslateZ float64 // pixels
	Rotate, RotateX, RotateY           float64 // degrees; Rotate is about z
	ScaleX, ScaleY                     float64
	SkewX, SkewY                       float64 // degrees
}

// Identity returns the transform that leaves an element unchanged.
func Identity() Transform { return Transform{ScaleX: 1, ScaleY: 1} }

// Translate returns a pure translation.
func Translate(x, y float64) Transform { return Identity().WithTranslate(x, y) }

// Scale returns a pure scale about the transform origin.
func Scale(sx, sy float64) Transform { return Identity().WithScale(sx, sy) }

// Rotate returns a pure rotation in degrees about z.
func Rotate(deg float64) Transform { return Identity().WithRotate(deg) }

// WithTranslate returns t with its x/y translation replaced.
func (t Transform) WithTranslate(x, y float64) Transform {
	t.TranslateX, t.TranslateY = x, y
	return t
}

// WithScale returns t with its scale replaced.
func (t Transform) WithScale(sx, sy float64) Transform {
	t.ScaleX, t.ScaleY = sx, sy
	return t
}

// WithRotate returns t with its z rotation replaced.
func (t Transform) WithRotate(deg float64) Transform {
	t.Rotate = deg
	return t
}

// IsIdentity reports whether t has no visual effect.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

func (t Transform) isFinite() bool {
	for _, f := range [...]float64{t.TranslateX, t.TranslateY, t.TranslateZ, t.Rotate, t.RotateX, t.RotateY, t.ScaleX, t.ScaleY, t.SkewX, t.SkewY} {
		if !isFinite(f) {
			return false
		}
	}
	return true
}

// CSS renders t as a CSS transform list, or "none" for the identity.
func (t Transform) CSS() string {
	if t.IsIdentity() {
		return "none"
	}
	var parts []string
	switch {
	case t.TranslateZ != 0:
		parts = append(parts, "translate3d("+formatFloat(t.TranslateX)+"px, "+formatFloat(t.TranslateY)+"px, "+formatFloat(t.TranslateZ)+"px)")
	case t.TranslateX != 0 || t.TranslateY != 0:
		parts = append(parts, "translate("+formatFloat(t.TranslateX)+"px, "+formatFloat(t.TranslateY)+"px)")
	}
	if t.Rotate != 0 {
		parts = append(parts, "rotate("+formatFloat(t.Rotate)+"deg)")
	}
	if t.RotateX != 0 {
		parts = append(parts, "rotateX("+formatFloat(t.RotateX)+"deg)")
	}
	if t.RotateY != 0 {
		parts = append(parts, "rotateY("+formatFloat(t.RotateY)+"deg)")
	}
	if t.SkewX != 0 || t.SkewY != 0 {
		parts = append(parts, "skew("+formatFloat(t.SkewX)+"deg, "+formatFloat(t.SkewY)+"deg)")
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		parts = append(parts, "scale("+formatFloat(t.ScaleX)+", "+formatFloat(t.ScaleY)+")")
	}
	return strings.Join(parts, " ")
}

func (t Transform) String() string { return t.CSS() }

// Matrix returns the 2D affine matrix of t, composed in CSS order
// (translate, rotate, skew, scale). The x/y rotations and z translation are
// ignored since they have no 2D projection without perspective.
func (t Transform) Matrix() f64.Aff3 {
	sin, cos := math.Sincos(t.Rotate * math.Pi / 180)
	translate := f64.Aff3{1, 0, t.TranslateX, 0, 1, t.TranslateY}
	rotate := f64.Aff3{cos, -sin, 0, sin, cos, 0}
	skew := f64.Aff3{1, math.Tan(t.SkewX * math.Pi / 180), 0, math.Tan(t.SkewY * math.Pi / 180), 1, 0}
	scale := f64.Aff3{t.ScaleX, 0, 0, 0, t.ScaleY, 0}
	return mulAff3(mulAff3(mulAff3(translate, rotate), skew), scale)
}

// Apply maps the point (x, y), relative to the transform origin, through t.
func (t Transform) Apply(x, y float64) (float64, float64) {
	m := t.Matrix()
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

func mulAff3(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// LerpTransform interpolates each component of a and b independently.
func LerpTransform(a, b Transform, t float64) Transform {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return Transform{
		TranslateX: Lerp(a.TranslateX, b.TranslateX, t),
		TranslateY: Lerp(a.TranslateY, b.TranslateY, t),
		TranslateZ: Lerp(a.TranslateZ, b.TranslateZ, t),
		Rotate:     Lerp(a.Rotate, b.Rotate, t),
		RotateX:    Lerp(a.RotateX, b.RotateX, t),
		RotateY:    Lerp(a.RotateY, b.RotateY, t),
		ScaleX:     Lerp(a.ScaleX, b.ScaleX, t),
		ScaleY:     Lerp(a.ScaleY, b.ScaleY, t),
		SkewX:      Lerp(a.SkewX, b.SkewX, t),
		SkewY:      Lerp(a.SkewY, b.SkewY, t),
	}
}
