// Package font provides font loading, text measurement and glyph outlines.
package font

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"inkframe/pkg/graphics"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Renderer converts text to glyph paths and measures it. A Renderer is safe
// for concurrent use; every call works on its own sfnt.Buffer.
type Renderer struct {
	font *sfnt.Font
}

// NewRenderer parses a TrueType or OpenType font.
func NewRenderer(data []byte) (*Renderer, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{font: f}, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns a renderer for the bundled Go Regular font.
func Default() *Renderer {
	defaultOnce.Do(func() {
		r, err := NewRenderer(goregular.TTF)
		if err != nil {
			panic(err)
		}
		defaultRenderer = r
	})
	return defaultRenderer
}

// Metrics holds font metrics in container units for one font size.
type Metrics struct {
	Ascender   float64
	Descender  float64
	LineHeight float64
	XHeight    float64
	CapHeight  float64
}

func ppem(size float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(size * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Metrics returns the font metrics at the given size.
func (r *Renderer) Metrics(size float64) Metrics {
	if !(size > 0) {
		return Metrics{}
	}
	var b sfnt.Buffer
	m, err := r.font.Metrics(&b, ppem(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascender:   fromFixed(m.Ascent),
		Descender:  fromFixed(m.Descent),
		LineHeight: fromFixed(m.Height),
		XHeight:    fromFixed(m.XHeight),
		CapHeight:  fromFixed(m.CapHeight),
	}
}

// StringWidth returns the advance width of a single line, kerning included.
func (r *Renderer) StringWidth(s string, size float64) float64 {
	if !(size > 0) {
		return 0
	}
	var b sfnt.Buffer
	return r.lineWidth(&b, s, ppem(size))
}

func (r *Renderer) lineWidth(b *sfnt.Buffer, s string, em fixed.Int26_6) float64 {
	var (
		width fixed.Int26_6
		prev  sfnt.GlyphIndex
	)
	for i, ch := range []rune(s) {
		idx, err := r.font.GlyphIndex(b, ch)
		if err != nil {
			continue
		}
		if i > 0 {
			// ErrNotFound just means the pair has no kerning.
			if k, err := r.font.Kern(b, prev, idx, em, xfont.HintingNone); err == nil {
				width += k
			}
		}
		if adv, err := r.font.GlyphAdvance(b, idx, em, xfont.HintingNone); err == nil {
			width += adv
		}
		prev = idx
	}
	return fromFixed(width)
}

// Measure returns the bounding box of text laid out one line per "\n".
// The width is the widest line; the height is the line count times the
// line height.
func (r *Renderer) Measure(text string, size float64) graphics.Size {
	if text == "" || !(size > 0) {
		return graphics.Size{}
	}
	var b sfnt.Buffer
	em := ppem(size)
	lines := strings.Split(text, "\n")

	var width float64
	for _, line := range lines {
		width = math.Max(width, r.lineWidth(&b, line, em))
	}
	return graphics.Size{
		Width:  width,
		Height: float64(len(lines)) * r.Metrics(size).LineHeight,
	}
}

// TextPath returns the outline of text centered on the origin. Lines are
// stacked top to bottom and each is centered horizontally.
func (r *Renderer) TextPath(text string, size float64) *graphics.Path {
	result := graphics.NewPath()
	if text == "" || !(size > 0) {
		return result
	}

	var b sfnt.Buffer
	em := ppem(size)
	m := r.Metrics(size)
	lines := strings.Split(text, "\n")
	top := -float64(len(lines)) * m.LineHeight / 2

	for i, line := range lines {
		x := -r.lineWidth(&b, line, em) / 2
		baseline := top + float64(i)*m.LineHeight + m.Ascender
		r.appendLine(result, &b, line, em, x, baseline)
	}
	return result
}

func (r *Renderer) appendLine(dst *graphics.Path, b *sfnt.Buffer, s string, em fixed.Int26_6, x, y float64) {
	var prev sfnt.GlyphIndex
	for i, ch := range []rune(s) {
		idx, err := r.font.GlyphIndex(b, ch)
		if err != nil {
			continue
		}
		if i > 0 {
			if k, err := r.font.Kern(b, prev, idx, em, xfont.HintingNone); err == nil {
				x += fromFixed(k)
			}
		}
		if segs, err := r.font.LoadGlyph(b, idx, em, nil); err == nil {
			appendSegments(dst, segs, x, y)
		}
		if adv, err := r.font.GlyphAdvance(b, idx, em, xfont.HintingNone); err == nil {
			x += fromFixed(adv)
		}
		prev = idx
	}
}

// appendSegments copies glyph segments into dst, offset by (dx, dy).
// Glyph coordinates are already y-down relative to the baseline origin.
func appendSegments(dst *graphics.Path, segs sfnt.Segments, dx, dy float64) {
	pt := func(p fixed.Point26_6) (float64, float64) {
		return fromFixed(p.X) + dx, fromFixed(p.Y) + dy
	}
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				dst.Close()
			}
			x, y := pt(seg.Args[0])
			dst.MoveTo(x, y)
			open = true
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			dst.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			dst.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			dst.CurveTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if open {
		dst.Close()
	}
}
