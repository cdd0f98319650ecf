// Package compositor flattens the image, ink and text layers of an editing
// session into one raster, using the same transform the live view draws
// with.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"inkframe/pkg/font"
	"inkframe/pkg/graphics"
	"inkframe/pkg/raster"
	"inkframe/pkg/textlayer"
	"inkframe/pkg/transform"
)

var (
	// ErrRenderingFailed is wrapped by every error Render returns.
	ErrRenderingFailed = errors.New("rendering failed")

	// ErrNoBaseImage is returned when the scene has no image to draw under
	// the other layers.
	ErrNoBaseImage = fmt.Errorf("%w: no base image", ErrRenderingFailed)

	// ErrEmptyContainer is returned when the container has no area, so the
	// output would have a zero dimension.
	ErrEmptyContainer = fmt.Errorf("%w: empty container", ErrRenderingFailed)
)

// InkLayer is the freehand drawing collaborator.
type InkLayer interface {
	IsEmpty() bool
	RenderToImage(rect graphics.Rect, scale float64) *image.RGBA
}

// Scene is everything that ends up in the flattened image.
type Scene struct {
	Base      image.Image
	Container graphics.Size
	Transform transform.State
	Ink       InkLayer // may be nil
	Texts     []textlayer.Element
}

// Compositor renders scenes with fixed options.
type Compositor struct {
	opts Options
}

// New creates a compositor.
func New(opts ...Option) *Compositor {
	return &Compositor{opts: NewOptions(opts...)}
}

// Options returns the compositor's options.
func (c *Compositor) Options() Options {
	return c.opts
}

// Render flattens s with default options.
func Render(s Scene) (*image.RGBA, error) {
	return New().Render(s)
}

// Render flattens s. The output is ceil(container * pixel scale) pixels and
// identical scenes produce identical pixels.
func (c *Compositor) Render(s Scene) (*image.RGBA, error) {
	if s.Base == nil || s.Base.Bounds().Empty() {
		return nil, ErrNoBaseImage
	}
	if s.Container.IsEmpty() {
		return nil, ErrEmptyContainer
	}
	ps := c.opts.PixelScale
	if !(ps > 0) || math.IsInf(ps, 0) {
		return nil, fmt.Errorf("%w: invalid pixel scale %v", ErrRenderingFailed, ps)
	}
	interp, err := Interpolator(c.opts.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}
	face := c.opts.Font
	if face == nil {
		face = font.Default()
	}

	w := int(math.Ceil(s.Container.Width * ps))
	h := int(math.Ceil(s.Container.Height * ps))
	out := raster.NewCanvasWithBackground(w, h, c.opts.Background)

	stack := graphics.NewMatrixStack()
	stack.Scale(ps, ps)

	stack.Push()
	stack.Concat(s.Transform.Matrix(s.Container))

	// Image pixels are stretched onto the container rect.
	b := s.Base.Bounds()
	stack.Push()
	stack.Scale(s.Container.Width/float64(b.Dx()), s.Container.Height/float64(b.Dy()))
	out.DrawImageTransformed(s.Base, stack.Current(), interp)
	stack.Pop()

	if s.Ink != nil && !s.Ink.IsEmpty() {
		// The ink raster is already at pixel scale.
		layer := s.Ink.RenderToImage(graphics.RectFromSize(s.Container), ps)
		stack.Push()
		stack.Scale(1/ps, 1/ps)
		out.DrawImageTransformed(layer, stack.Current(), interp)
		stack.Pop()
	}
	stack.Pop()

	// Text positions already follow the canvas rotation, so they get the
	// scale and pan remap only.
	for _, e := range s.Texts {
		if e.IsEditing || e.Text == "" {
			continue
		}
		scale := e.Scale
		if !(scale > 0) {
			scale = 1
		}
		pos := s.Transform.MapTextPosition(e.Position, s.Container)

		stack.Push()
		stack.Translate(pos.X, pos.Y)
		stack.Rotate(graphics.Radians(s.Transform.Rotation + e.Rotation))
		stack.Scale(scale, scale)
		out.FillTransformed(face.TextPath(e.Text, e.FontSize), stack.Current(), e.Color)
		stack.Pop()
	}

	return out.Image(), nil
}
