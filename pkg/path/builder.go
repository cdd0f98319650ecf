// Package path provides path construction utilities for the rasterizer.
package path

import (
	"math"

	"inkframe/pkg/graphics"

	"golang.org/x/image/vector"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498307936

// ToVector converts a graphics.Path to a golang.org/x/image/vector path.
func ToVector(p *graphics.Path, rasterizer *vector.Rasterizer) {
	for _, seg := range p.Segments {
		switch seg.Op {
		case graphics.PathOpMoveTo:
			if len(seg.Points) >= 1 {
				rasterizer.MoveTo(
					float32(seg.Points[0].X),
					float32(seg.Points[0].Y),
				)
			}
		case graphics.PathOpLineTo:
			if len(seg.Points) >= 1 {
				rasterizer.LineTo(
					float32(seg.Points[0].X),
					float32(seg.Points[0].Y),
				)
			}
		case graphics.PathOpCurveTo:
			if len(seg.Points) >= 3 {
				rasterizer.CubeTo(
					float32(seg.Points[0].X), float32(seg.Points[0].Y),
					float32(seg.Points[1].X), float32(seg.Points[1].Y),
					float32(seg.Points[2].X), float32(seg.Points[2].Y),
				)
			}
		case graphics.PathOpClose:
			rasterizer.ClosePath()
		}
	}
}

// Builder provides a fluent interface for building paths.
//
// The rasterizer accumulates signed coverage and takes its absolute value,
// so overlapping shapes only merge when they share an orientation. Every
// closed shape the builder emits winds the same way as Rect (positive
// shoelace area in y-down space).
type Builder struct {
	path *graphics.Path
}

// NewBuilder creates a new path builder.
func NewBuilder() *Builder {
	return &Builder{
		path: graphics.NewPath(),
	}
}

// MoveTo starts a new subpath.
func (b *Builder) MoveTo(x, y float64) *Builder {
	b.path.MoveTo(x, y)
	return b
}

// LineTo draws a line to the given point.
func (b *Builder) LineTo(x, y float64) *Builder {
	b.path.LineTo(x, y)
	return b
}

// CurveTo draws a cubic Bezier curve.
func (b *Builder) CurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) *Builder {
	b.path.CurveTo(cp1x, cp1y, cp2x, cp2y, x, y)
	return b
}

// QuadTo draws a quadratic Bezier curve (converted to cubic).
func (b *Builder) QuadTo(cpx, cpy, x, y float64) *Builder {
	b.path.QuadTo(cpx, cpy, x, y)
	return b
}

// Close closes the current subpath.
func (b *Builder) Close() *Builder {
	b.path.Close()
	return b
}

// Rect adds a rectangle to the path.
func (b *Builder) Rect(x, y, w, h float64) *Builder {
	b.path.Rect(x, y, w, h)
	return b
}

// RoundRect adds a rounded rectangle to the path.
func (b *Builder) RoundRect(x, y, w, h, rx, ry float64) *Builder {
	if rx > w/2 {
		rx = w / 2
	}
	if ry > h/2 {
		ry = h / 2
	}

	b.MoveTo(x+rx, y)
	b.LineTo(x+w-rx, y)
	b.CurveTo(x+w-rx+rx*kappa, y, x+w, y+ry-ry*kappa, x+w, y+ry)
	b.LineTo(x+w, y+h-ry)
	b.CurveTo(x+w, y+h-ry+ry*kappa, x+w-rx+rx*kappa, y+h, x+w-rx, y+h)
	b.LineTo(x+rx, y+h)
	b.CurveTo(x+rx-rx*kappa, y+h, x, y+h-ry+ry*kappa, x, y+h-ry)
	b.LineTo(x, y+ry)
	b.CurveTo(x, y+ry-ry*kappa, x+rx-rx*kappa, y, x+rx, y)
	b.Close()

	return b
}

// Circle adds a circle to the path.
func (b *Builder) Circle(cx, cy, r float64) *Builder {
	return b.Ellipse(cx, cy, r, r)
}

// Ellipse adds an ellipse to the path.
func (b *Builder) Ellipse(cx, cy, rx, ry float64) *Builder {
	b.MoveTo(cx+rx, cy)
	b.CurveTo(cx+rx, cy+ry*kappa, cx+rx*kappa, cy+ry, cx, cy+ry)
	b.CurveTo(cx-rx*kappa, cy+ry, cx-rx, cy+ry*kappa, cx-rx, cy)
	b.CurveTo(cx-rx, cy-ry*kappa, cx-rx*kappa, cy-ry, cx, cy-ry)
	b.CurveTo(cx+rx*kappa, cy-ry, cx+rx, cy-ry*kappa, cx+rx, cy)
	b.Close()

	return b
}

// Polyline outlines a polyline of the given width with round joins and caps.
// Each segment becomes a quad and each vertex a disc; a single point becomes a
// dot.
func (b *Builder) Polyline(pts []graphics.Point, width float64) *Builder {
	if len(pts) == 0 || !(width > 0) {
		return b
	}
	hw := width / 2

	for i := 1; i < len(pts); i++ {
		s, e := pts[i-1], pts[i]
		dx, dy := e.X-s.X, e.Y-s.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Left normal scaled to the half width.
		nx := -dy / length * hw
		ny := dx / length * hw

		b.MoveTo(s.X+nx, s.Y+ny)
		b.LineTo(s.X-nx, s.Y-ny)
		b.LineTo(e.X-nx, e.Y-ny)
		b.LineTo(e.X+nx, e.Y+ny)
		b.Close()
	}

	for i, p := range pts {
		if i > 0 && p == pts[i-1] {
			continue
		}
		b.Circle(p.X, p.Y, hw)
	}

	return b
}

// Build returns the constructed path.
func (b *Builder) Build() *graphics.Path {
	return b.path
}

// Clear resets the builder for reuse.
func (b *Builder) Clear() *Builder {
	b.path.Clear()
	return b
}
