// Package ink is the freehand drawing layer: vector strokes captured in
// container space that can render themselves into any pixel region.
package ink

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"inkframe/pkg/graphics"
	pathpkg "inkframe/pkg/path"
	"inkframe/pkg/raster"
)

// Tool selects what a stroke gesture does.
type Tool int

const (
	Pen Tool = iota
	Marker
	Eraser
)

// EraserRadius is how close the eraser must pass to a stroke to remove it.
const EraserRadius = 8

var toolNames = [...]string{"pen", "marker", "eraser"}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool parses a tool name, ignoring case.
func ParseTool(s string) (Tool, error) {
	for i, name := range toolNames {
		if strings.EqualFold(s, name) {
			return Tool(i), nil
		}
	}
	return Pen, fmt.Errorf("unknown ink tool %q", s)
}

// DefaultWidth returns the stroke width a tool draws with.
func (t Tool) DefaultWidth() float64 {
	switch t {
	case Marker:
		return 12
	case Eraser:
		return EraserRadius * 2
	default:
		return 3
	}
}

// Stroke is one continuous line.
type Stroke struct {
	Tool   Tool
	Color  color.NRGBA
	Width  float64
	Points []graphics.Point
}

// RenderColor returns the color the stroke is painted with. Markers are
// translucent.
func (s Stroke) RenderColor() color.NRGBA {
	if s.Tool == Marker {
		return graphics.WithAlpha(s.Color, 0.5)
	}
	return s.Color
}

func (s Stroke) clone() Stroke {
	s.Points = append([]graphics.Point(nil), s.Points...)
	return s
}

// Layer is the set of strokes drawn over the image.
type Layer struct {
	strokes []Stroke
	current *Stroke

	tool  Tool
	color color.NRGBA
	width float64
}

// NewLayer returns an empty layer with a black pen.
func NewLayer() *Layer {
	return &Layer{color: color.NRGBA{0, 0, 0, 255}}
}

// SetTool selects the tool for the next stroke.
func (l *Layer) SetTool(t Tool) {
	l.tool = t
}

// Tool returns the active tool.
func (l *Layer) Tool() Tool {
	return l.tool
}

// SetColor sets the color for the next stroke.
func (l *Layer) SetColor(c color.NRGBA) {
	l.color = c
}

// Color returns the active color.
func (l *Layer) Color() color.NRGBA {
	return l.color
}

// SetWidth overrides the tool's default width. Zero restores the default.
func (l *Layer) SetWidth(w float64) {
	if w < 0 {
		w = 0
	}
	l.width = w
}

// Width returns the width the next stroke will use.
func (l *Layer) Width() float64 {
	if l.width > 0 {
		return l.width
	}
	return l.tool.DefaultWidth()
}

// Begin starts a stroke at p. With the eraser it erases at p instead.
func (l *Layer) Begin(p graphics.Point) {
	l.End()
	if l.tool == Eraser {
		l.EraseAt(p, l.Width()/2)
		return
	}
	l.current = &Stroke{
		Tool:   l.tool,
		Color:  l.color,
		Width:  l.Width(),
		Points: []graphics.Point{p},
	}
}

// Extend adds p to the stroke in progress.
func (l *Layer) Extend(p graphics.Point) {
	if l.tool == Eraser {
		l.EraseAt(p, l.Width()/2)
		return
	}
	if l.current == nil {
		l.Begin(p)
		return
	}
	if last := l.current.Points[len(l.current.Points)-1]; last == p {
		return
	}
	l.current.Points = append(l.current.Points, p)
}

// End commits the stroke in progress.
func (l *Layer) End() {
	if l.current == nil {
		return
	}
	l.strokes = append(l.strokes, *l.current)
	l.current = nil
}

// EraseAt removes every committed stroke passing within radius of p and
// reports how many were removed.
func (l *Layer) EraseAt(p graphics.Point, radius float64) int {
	kept := l.strokes[:0]
	removed := 0
	for _, s := range l.strokes {
		if s.near(p, radius) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	// Drop references held past the new length.
	for i := len(kept); i < len(l.strokes); i++ {
		l.strokes[i] = Stroke{}
	}
	l.strokes = kept
	return removed
}

func (s Stroke) near(p graphics.Point, radius float64) bool {
	reach := radius + s.Width/2
	if len(s.Points) == 1 {
		return s.Points[0].Sub(p).Length() <= reach
	}
	for i := 1; i < len(s.Points); i++ {
		if segmentDistance(p, s.Points[i-1], s.Points[i]) <= reach {
			return true
		}
	}
	return false
}

func segmentDistance(p, a, b graphics.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := graphics.Clamp(((p.X-a.X)*ab.X+(p.Y-a.Y)*ab.Y)/l2, 0, 1)
	return p.Sub(a.Add(ab.Scale(t))).Length()
}

// Clear removes every stroke.
func (l *Layer) Clear() {
	l.strokes = nil
	l.current = nil
}

// IsEmpty reports whether there is nothing to draw.
func (l *Layer) IsEmpty() bool {
	return len(l.strokes) == 0 && l.current == nil
}

// Strokes returns a deep copy of the strokes, the one in progress last.
func (l *Layer) Strokes() []Stroke {
	out := make([]Stroke, 0, len(l.strokes)+1)
	for _, s := range l.strokes {
		out = append(out, s.clone())
	}
	if l.current != nil {
		out = append(out, l.current.clone())
	}
	return out
}

// RenderToImage rasterizes the strokes inside rect at scale pixels per
// container unit. The result is transparent where nothing is drawn and
// sized ceil(rect * scale).
func (l *Layer) RenderToImage(rect graphics.Rect, scale float64) *image.RGBA {
	if !(scale > 0) || rect.Size().IsEmpty() {
		return image.NewRGBA(image.Rectangle{})
	}
	w := int(math.Ceil(rect.Width * scale))
	h := int(math.Ceil(rect.Height * scale))
	c := raster.NewCanvasWithBackground(w, h, nil)

	m := graphics.Translate(-rect.X, -rect.Y).Multiply(graphics.Scale(scale, scale))
	for _, s := range l.Strokes() {
		pts := make([]graphics.Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = m.TransformPoint(p)
		}
		// One path per stroke so a translucent stroke does not darken
		// where it crosses itself.
		outline := pathpkg.NewBuilder().Polyline(pts, s.Width*scale).Build()
		c.Fill(outline, s.RenderColor())
	}
	return c.Image()
}
