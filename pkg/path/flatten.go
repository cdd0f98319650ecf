package path

import "inkframe/pkg/graphics"

// curveSteps is the number of line segments a cubic is split into.
const curveSteps = 16

// Flatten converts a path into polylines, one per subpath. Curves are
// sampled at a fixed step count so the result is deterministic. A closed
// subpath ends with a copy of its first point.
func Flatten(p *graphics.Path) [][]graphics.Point {
	var (
		lines   [][]graphics.Point
		current []graphics.Point
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, current)
		}
		current = nil
	}

	for _, seg := range p.Segments {
		switch seg.Op {
		case graphics.PathOpMoveTo:
			flush()
			if len(seg.Points) >= 1 {
				current = []graphics.Point{seg.Points[0]}
			}
		case graphics.PathOpLineTo:
			if len(seg.Points) >= 1 {
				current = append(current, seg.Points[0])
			}
		case graphics.PathOpCurveTo:
			if len(seg.Points) < 3 || len(current) == 0 {
				continue
			}
			p0 := current[len(current)-1]
			p1, p2, p3 := seg.Points[0], seg.Points[1], seg.Points[2]
			for i := 1; i <= curveSteps; i++ {
				current = append(current, cubicAt(p0, p1, p2, p3, float64(i)/curveSteps))
			}
		case graphics.PathOpClose:
			if len(current) > 1 && current[len(current)-1] != current[0] {
				current = append(current, current[0])
			}
			flush()
		}
	}
	flush()
	return lines
}

func cubicAt(p0, p1, p2, p3 graphics.Point, t float64) graphics.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return graphics.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
