// Package transform holds the canvas transform: the uniform zoom, rotation
// and pan applied to the image and ink layers, with the accumulation and
// clamping rules the gesture handlers rely on.
//
// Every operation that depends on the viewport takes the container size as
// an argument. A degenerate container (zero or negative extent) is a normal
// transient state: bounds collapse to zero and the fill scale to one.
package transform

import (
	"math"

	"inkframe/pkg/graphics"
)

// Rotator is anything whose anchored positions turn with the canvas.
type Rotator interface {
	RotateAround(center graphics.Point, radians float64)
}

// State is the canvas transform of one editing session.
type State struct {
	// Scale is the uniform zoom, never below 1.
	Scale float64
	// Rotation is the display rotation in degrees, in (-180, 180].
	Rotation float64
	// AccumulatedRotation is the unbounded sum of applied rotation deltas.
	AccumulatedRotation float64
	// Offset is the pan translation in container space.
	Offset graphics.Point
	// LastOffset is the offset committed at the end of the previous pan.
	LastOffset graphics.Point
	// LastScale is the pinch baseline, stored as scale - 1.
	LastScale float64
}

// New returns the identity transform.
func New() *State {
	return &State{Scale: 1}
}

// Reset restores the identity transform.
func (s *State) Reset() {
	*s = State{Scale: 1}
}

// ApplyRotation turns the canvas by delta degrees. Anchored positions
// (text elements) are rotated by the same delta around the container
// center, then the scale is refit to cover the container and the offset is
// clamped. anchors may be nil.
func (s *State) ApplyRotation(delta float64, container graphics.Size, anchors Rotator) {
	s.AccumulatedRotation += delta
	s.Rotation = graphics.NormalizeDegrees(s.AccumulatedRotation)

	if anchors != nil {
		anchors.RotateAround(container.Center(), graphics.Radians(delta))
	}

	s.AdjustScaleForRotation(container)
	s.ClampOffset(container)
}

// AdjustScaleForRotation sets the scale to the fill scale for the current
// rotation and recenters the view. The pinch baseline follows the new
// scale so the next pinch starts from it.
func (s *State) AdjustScaleForRotation(container graphics.Size) {
	s.Scale = s.FillScale(container)
	s.LastScale = s.Scale - 1
	s.Offset = graphics.Point{}
	s.LastOffset = graphics.Point{}
}

// FillScale returns the smallest zoom at which the content, rotated by the
// accumulated rotation, still covers the whole container. It is never
// below 1.
func (s *State) FillScale(container graphics.Size) float64 {
	if container.IsEmpty() {
		return 1
	}
	rotated := graphics.RotatedBoundingSize(container, graphics.Radians(s.AccumulatedRotation))
	fill := math.Max(rotated.Width/container.Width, rotated.Height/container.Height)
	return math.Max(fill, 1)
}

// MaxOffset returns how far the content may be panned on each axis: half
// the difference between the rotated, scaled bounding box and the
// container, floored at zero.
func (s *State) MaxOffset(container graphics.Size) graphics.Point {
	if container.IsEmpty() {
		return graphics.Point{}
	}
	rotated := graphics.RotatedBoundingSize(container, graphics.Radians(s.Rotation))
	return graphics.Point{
		X: math.Max(0, (rotated.Width*s.Scale-container.Width)/2),
		Y: math.Max(0, (rotated.Height*s.Scale-container.Height)/2),
	}
}

// ClampOffset limits the offset componentwise to [-MaxOffset, MaxOffset].
func (s *State) ClampOffset(container graphics.Size) {
	m := s.MaxOffset(container)
	s.Offset.X = graphics.Clamp(s.Offset.X, -m.X, m.X)
	s.Offset.Y = graphics.Clamp(s.Offset.Y, -m.Y, m.Y)
}

// HandleMagnificationChange applies a live pinch value (1 at gesture start)
// on top of the committed baseline. The scale never drops below the fill
// scale, which is 1 for an unrotated canvas.
func (s *State) HandleMagnificationChange(value float64, container graphics.Size) {
	scale := s.LastScale + value
	if floor := s.FillScale(container); scale < floor {
		scale = floor
	}
	s.Scale = scale
	s.ClampOffset(container)
}

// HandleMagnificationEnded commits the pinch. A pinch that ends at or below
// the floor (the fill scale, never less than 1) settles there with the pan
// discarded.
func (s *State) HandleMagnificationEnded(container graphics.Size) {
	if floor := math.Max(s.FillScale(container), 1); s.Scale <= floor {
		s.Scale = floor
		s.Offset = graphics.Point{}
	}
	s.LastScale = s.Scale - 1
	s.ClampOffset(container)
	s.LastOffset = s.Offset
}

// HandleDragChange tracks a live pan. Panning is only possible when zoomed
// in; at scale 1 the offset is pinned to zero.
func (s *State) HandleDragChange(translation graphics.Point) {
	if s.Scale > 1 {
		s.Offset = translation.Add(s.LastOffset)
		return
	}
	s.Offset = graphics.Point{}
}

// HandleDragEnded clamps the offset and commits it as the pan baseline.
func (s *State) HandleDragEnded(container graphics.Size) {
	s.ClampOffset(container)
	s.LastOffset = s.Offset
}

// Matrix returns the canvas transform chain for the given container:
// move the center to the origin, scale, rotate, move back, then pan.
// The live view and the compositor both draw the image and ink layers
// through this matrix.
func (s *State) Matrix(container graphics.Size) graphics.Matrix {
	c := container.Center()
	return graphics.Translate(-c.X, -c.Y).
		Multiply(graphics.Scale(s.Scale, s.Scale)).
		Multiply(graphics.RotateDeg(s.Rotation)).
		Multiply(graphics.Translate(c.X+s.Offset.X, c.Y+s.Offset.Y))
}

// ToCanvas maps a container-space point on screen back to the untransformed
// canvas, the inverse of Matrix.
func (s *State) ToCanvas(p graphics.Point, container graphics.Size) graphics.Point {
	return s.Matrix(container).Inverse().TransformPoint(p)
}

// MapTextPosition remaps a text anchor through the canvas scale and pan.
// Rotation is not applied: anchors already turn with the canvas in
// ApplyRotation.
func (s *State) MapTextPosition(p graphics.Point, container graphics.Size) graphics.Point {
	c := container.Center()
	return p.Sub(c).Scale(s.Scale).Add(c).Add(s.Offset)
}
