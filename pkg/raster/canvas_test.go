package raster

import (
	"image"
	"image/color"
	"testing"

	"inkframe/pkg/graphics"

	xdraw "golang.org/x/image/draw"
)

func TestNewCanvasIsWhite(t *testing.T) {
	c := NewCanvas(4, 3)
	if c.Width() != 4 || c.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", c.Width(), c.Height())
	}
	want := color.RGBA{255, 255, 255, 255}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got := c.GetPixel(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestNilBackgroundIsTransparent(t *testing.T) {
	c := NewCanvasWithBackground(2, 2, nil)
	if got := c.GetPixel(1, 1); got.A != 0 {
		t.Errorf("alpha = %d, want 0", got.A)
	}
}

func TestFillRect(t *testing.T) {
	c := NewCanvas(10, 10)
	p := graphics.NewPath()
	p.Rect(2, 2, 4, 4)
	c.Fill(p, color.Black)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{3, 3, color.RGBA{0, 0, 0, 255}},
		{5, 5, color.RGBA{0, 0, 0, 255}},
		{1, 1, color.RGBA{255, 255, 255, 255}},
		{6, 6, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := c.GetPixel(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestStrokeLeavesInteriorUntouched(t *testing.T) {
	c := NewCanvas(40, 40)
	p := graphics.NewPath()
	p.Rect(5, 5, 30, 30)
	c.Stroke(p, color.Black, 2)

	if got := c.GetPixel(20, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("interior = %v, want white", got)
	}
	if got := c.GetPixel(20, 5); got.R > 5 {
		t.Errorf("edge = %v, want black", got)
	}
}

func TestDrawImageTransformed(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 12))
	for y := 10; y < 12; y++ {
		for x := 10; x < 12; x++ {
			src.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	c := NewCanvas(10, 10)
	c.DrawImageTransformed(src, graphics.Scale(2, 2).Multiply(graphics.Translate(3, 3)), xdraw.NearestNeighbor)

	if got := c.GetPixel(4, 4); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside = %v, want red", got)
	}
	if got := c.GetPixel(8, 8); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outside = %v, want white", got)
	}
}

func TestColorConversions(t *testing.T) {
	h, s, v := RGBToHSV(1, 0, 0)
	r, g, b := HSVToRGB(h, s, v)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("HSV round trip = (%v, %v, %v)", r, g, b)
	}
	if c := FromNormalized(1.2, -0.1, 0.5, 1); c != (color.NRGBA{255, 0, 128, 255}) {
		t.Errorf("FromNormalized = %v", c)
	}
}

func TestCanvasFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	c := NewCanvasFromImage(img)
	if c.Width() != 20 || c.Height() != 20 {
		t.Fatalf("size = %dx%d", c.Width(), c.Height())
	}
	box := graphics.NewPath()
	box.Rect(-4, -4, 8, 8)
	c.StrokeTransformed(box, graphics.Translate(10, 10), color.RGBA{0, 0, 255, 255}, 2)

	if got := img.RGBAAt(6, 10); got.B < 200 {
		t.Errorf("outline pixel = %v, want blue", got)
	}
	if got := img.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("inside pixel = %v, want untouched", got)
	}
}
