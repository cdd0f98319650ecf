package compositor

import (
	"fmt"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"

	"inkframe/pkg/font"
)

// Options contains options for flattening a scene.
type Options struct {
	// PixelScale is the number of output pixels per container unit.
	PixelScale float64

	// Interpolation is "nearest", "bilinear" or "catmullrom".
	Interpolation string

	// Background fills the output before any layer is drawn.
	Background color.Color

	// Font draws text elements. Nil uses the bundled Go Regular face.
	Font *font.Renderer
}

// DefaultOptions returns default render options.
func DefaultOptions() Options {
	return Options{
		PixelScale:    1,
		Interpolation: "bilinear",
		Background:    color.White,
	}
}

// Option is a functional option for rendering.
type Option func(*Options)

// WithPixelScale sets the output pixels per container unit.
func WithPixelScale(scale float64) Option {
	return func(o *Options) {
		o.PixelScale = scale
	}
}

// WithInterpolation sets the resampling used for the image and ink layers.
func WithInterpolation(name string) Option {
	return func(o *Options) {
		o.Interpolation = name
	}
}

// WithBackground sets the background color.
func WithBackground(c color.Color) Option {
	return func(o *Options) {
		o.Background = c
	}
}

// WithFont sets the face used for text elements.
func WithFont(r *font.Renderer) Option {
	return func(o *Options) {
		o.Font = r
	}
}

// NewOptions creates options with the given modifiers.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Interpolator returns the resampler for a name.
func Interpolator(name string) (xdraw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "", "bilinear":
		return xdraw.BiLinear, nil
	case "nearest":
		return xdraw.NearestNeighbor, nil
	case "catmullrom":
		return xdraw.CatmullRom, nil
	}
	return nil, fmt.Errorf("unknown interpolation %q", name)
}
