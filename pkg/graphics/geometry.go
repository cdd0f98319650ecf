package graphics

import "math"

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RotatePoint rotates p around center by angle radians.
func RotatePoint(p, center Point, angle float64) Point {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// RotatedBoundingSize returns the axis-aligned bounding box of a rectangle
// of the given size rotated by angle radians.
func RotatedBoundingSize(size Size, angle float64) Size {
	cos := math.Abs(math.Cos(angle))
	sin := math.Abs(math.Sin(angle))
	return Size{
		Width:  size.Width*cos + size.Height*sin,
		Height: size.Height*cos + size.Width*sin,
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeDegrees wraps an angle into (-180, 180].
func NormalizeDegrees(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r <= -180 {
		r += 360
	} else if r > 180 {
		r -= 360
	}
	return r
}
