package graphics

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// NamedColor pairs a display name with a color for palette pickers.
type NamedColor struct {
	Name  string
	Color color.NRGBA
}

// Palette is the fixed set of text and ink colors offered by the editor.
var Palette = []NamedColor{
	{"Black", color.NRGBA{0, 0, 0, 255}},
	{"White", color.NRGBA{255, 255, 255, 255}},
	{"Red", color.NRGBA{255, 59, 48, 255}},
	{"Orange", color.NRGBA{255, 149, 0, 255}},
	{"Yellow", color.NRGBA{255, 204, 0, 255}},
	{"Green", color.NRGBA{52, 199, 89, 255}},
	{"Blue", color.NRGBA{0, 122, 255, 255}},
	{"Purple", color.NRGBA{175, 82, 222, 255}},
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa (the leading # is optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// HexColor formats c as #rrggbb, or #rrggbbaa when it is not opaque.
func HexColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha scaled by alpha in [0, 1].
func WithAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp(alpha, 0, 1)))
	return c
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// BlendMode represents a separable blend mode for compositing.
type BlendMode string

const (
	BlendNormal     BlendMode = "Normal"
	BlendMultiply   BlendMode = "Multiply"
	BlendScreen     BlendMode = "Screen"
	BlendOverlay    BlendMode = "Overlay"
	BlendDarken     BlendMode = "Darken"
	BlendLighten    BlendMode = "Lighten"
	BlendDifference BlendMode = "Difference"
)

// BlendChannel blends one normalized channel of backdrop b with source s.
func BlendChannel(mode BlendMode, b, s float64) float64 {
	switch mode {
	case BlendMultiply:
		return b * s
	case BlendScreen:
		return 1 - (1-b)*(1-s)
	case BlendOverlay:
		if b < 0.5 {
			return 2 * b * s
		}
		return 1 - 2*(1-b)*(1-s)
	case BlendDarken:
		return math.Min(b, s)
	case BlendLighten:
		return math.Max(b, s)
	case BlendDifference:
		return math.Abs(b - s)
	default: // Normal
		return s
	}
}
