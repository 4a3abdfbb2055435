package animation

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha sRGB color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGBA builds a color from 8-bit channels and an alpha in [0, 1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: a}
}

// RGB builds an opaque color from 8-bit channels.
func RGB(r, g, b uint8) Color { return RGBA(r, g, b, 1) }

// ParseColor parses #rgb, #rrggbb, #rrggbbaa, rgb(), rgba() and transparent.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "transparent":
		return Color{}, nil
	case strings.HasPrefix(s, "#"):
		alpha := 1.0
		if len(s) == 9 {
			a, err := strconv.ParseUint(s[7:], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("parse color %q: %w", s, err)
			}
			alpha = float64(a) / 255
			s = s[:7]
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
	case strings.HasPrefix(s, "rgb"):
		lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
		if lp < 0 || rp < lp {
			return Color{}, fmt.Errorf("parse color %q: missing parentheses", s)
		}
		parts := strings.FieldsFunc(s[lp+1:rp], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(parts) != 3 && len(parts) != 4 {
			return Color{}, fmt.Errorf("parse color %q: want 3 or 4 components, got %d", s, len(parts))
		}
		var ch [4]float64
		ch[3] = 1
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return Color{}, fmt.Errorf("parse color %q: %w", s, err)
			}
			switch {
			case strings.HasSuffix(p, "%"):
				f /= 100
			case i < 3:
				f /= 255
			}
			ch[i] = f
		}
		return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
	}
	return Color{}, fmt.Errorf("parse color %q: unsupported syntax", s)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// Hex returns the #rrggbb form, dropping alpha.
func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

// CSS renders c as rgba().
func (c Color) CSS() string {
	r, g, b := c.colorful().Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(clampUnit(c.A)))
}

func (c Color) isFinite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B) && isFinite(c.A)
}

// LerpColor blends a and b per channel in sRGB space, alpha linearly.
// The endpoints are returned unchanged.
func LerpColor(a, b Color, t float64) Color {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	m := a.colorful().BlendRgb(b.colorful(), t)
	return Color{R: m.R, G: m.G, B: m.B, A: Lerp(a.A, b.A, t)}
}

// LerpColorLinear blends in linear RGB, which avoids the dark band sRGB
// blending produces between saturated hues.
func LerpColorLinear(a, b Color, t float64) Color {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	r1, g1, b1 := a.colorful().LinearRgb()
	r2, g2, b2 := b.colorful().LinearRgb()
	m := colorful.LinearRgb(Lerp(r1, r2, t), Lerp(g1, g2, t), Lerp(b1, b2, t)).Clamped()
	return Color{R: m.R, G: m.G, B: m.B, A: Lerp(a.A, b.A, t)}
}
