// Package raster provides the RGBA drawing surface the compositor flattens
// layers onto.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"inkframe/pkg/graphics"
	pathpkg "inkframe/pkg/path"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Canvas represents a drawing surface for rasterization.
type Canvas struct {
	img    *image.RGBA
	width  int
	height int

	// Default background
	background color.Color
}

// NewCanvas creates a new canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	return NewCanvasWithBackground(width, height, color.White)
}

// NewCanvasWithBackground creates a canvas filled with bg. A nil bg leaves
// the canvas transparent.
func NewCanvasWithBackground(width, height int, bg color.Color) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		width:      width,
		height:     height,
		background: bg,
	}
	c.Clear()
	return c
}

// NewCanvasFromImage draws onto an existing image. Path coordinates are
// relative to the image's top-left corner. Clear fills it with white.
func NewCanvasFromImage(img *image.RGBA) *Canvas {
	b := img.Bounds()
	return &Canvas{
		img:        img,
		width:      b.Dx(),
		height:     b.Dy(),
		background: color.White,
	}
}

// Image returns the underlying RGBA image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.height
}

// Clear fills the canvas with the background color.
func (c *Canvas) Clear() {
	if c.background == nil {
		draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		return
	}
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{c.background}, image.Point{}, draw.Src)
}

// Fill fills a path with the given color.
func (c *Canvas) Fill(path *graphics.Path, col color.Color) {
	if path.IsEmpty() || c.width == 0 || c.height == 0 {
		return
	}

	r := vector.NewRasterizer(c.width, c.height)
	pathpkg.ToVector(path, r)
	r.Draw(c.img, c.img.Bounds(), &image.Uniform{col}, image.Point{})
}

// FillTransformed fills path after mapping it through m.
func (c *Canvas) FillTransformed(path *graphics.Path, m graphics.Matrix, col color.Color) {
	c.Fill(path.Transform(m), col)
}

// StrokeTransformed strokes path after mapping it through m. The width is
// in output pixels.
func (c *Canvas) StrokeTransformed(path *graphics.Path, m graphics.Matrix, col color.Color, width float64) {
	c.Stroke(path.Transform(m), col, width)
}

// Stroke draws the outline of a path with round joins and caps.
func (c *Canvas) Stroke(path *graphics.Path, col color.Color, width float64) {
	if path.IsEmpty() {
		return
	}

	b := pathpkg.NewBuilder()
	for _, line := range pathpkg.Flatten(path) {
		b.Polyline(line, width)
	}
	c.Fill(b.Build(), col)
}

// GetPixel gets a pixel color.
func (c *Canvas) GetPixel(x, y int) color.RGBA {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		return c.img.RGBAAt(x, y)
	}
	return color.RGBA{}
}

// DrawImageTransformed composites img over the canvas with m mapping source
// pixel coordinates (relative to img.Bounds().Min) to canvas pixels.
func (c *Canvas) DrawImageTransformed(img image.Image, m graphics.Matrix, interp xdraw.Interpolator) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	if interp == nil {
		interp = xdraw.BiLinear
	}
	sr := img.Bounds()
	// x/image/draw maps source coordinates in sr's own space.
	m = graphics.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)).Multiply(m)
	interp.Transform(c.img, m.Aff3(), img, sr, xdraw.Over, nil)
}
