package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"inkframe/pkg/graphics"
	"inkframe/pkg/ink"
	"inkframe/pkg/textlayer"
	"inkframe/pkg/transform"
)

var black = color.NRGBA{0, 0, 0, 255}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func scene(base image.Image, container graphics.Size) Scene {
	return Scene{Base: base, Container: container, Transform: *transform.New()}
}

// darkBounds returns the bounding box of pixels darker than the threshold.
func darkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).R < 100 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		s    Scene
		opts []Option
		want error
	}{
		{"no base image", scene(nil, graphics.Sz(10, 10)), nil, ErrNoBaseImage},
		{"empty base image", scene(image.NewNRGBA(image.Rectangle{}), graphics.Sz(10, 10)), nil, ErrNoBaseImage},
		{"empty container", scene(solid(4, 4, black), graphics.Size{}), nil, ErrEmptyContainer},
		{"bad pixel scale", scene(solid(4, 4, black), graphics.Sz(4, 4)), []Option{WithPixelScale(0)}, ErrRenderingFailed},
		{"bad interpolation", scene(solid(4, 4, black), graphics.Sz(4, 4)), []Option{WithInterpolation("lanczos")}, ErrRenderingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(tt.opts...).Render(tt.s)
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrRenderingFailed) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if img != nil {
				t.Error("image returned with error")
			}
		})
	}
}

func TestRenderSizeAndBase(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	tests := []struct {
		name  string
		scale float64
		w, h  int
	}{
		{"unit", 1, 30, 40},
		{"retina", 2, 60, 80},
		{"fractional", 1.5, 45, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(WithPixelScale(tt.scale)).Render(scene(solid(60, 80, red), graphics.Sz(30, 40)))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Fatalf("size = %v, want %dx%d", b, tt.w, tt.h)
			}
			if got := img.RGBAAt(tt.w/2, tt.h/2); got.R != 255 || got.G != 0 || got.A != 255 {
				t.Errorf("center = %v, want red", got)
			}
		})
	}
}

func TestWhiteBackgroundShowsThroughTransparency(t *testing.T) {
	img, err := Render(scene(image.NewNRGBA(image.Rect(0, 0, 5, 5)), graphics.Sz(5, 5)))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range img.Pix {
		if v != 255 {
			t.Fatalf("byte %d = %d, want white", i, v)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for i := range base.Pix {
		base.Pix[i] = uint8(i * 7)
	}
	l := ink.NewLayer()
	l.Begin(graphics.Pt(2, 2))
	l.Extend(graphics.Pt(20, 14))
	l.End()

	s := scene(base, graphics.Sz(32, 24))
	s.Transform.ApplyRotation(30, s.Container, nil)
	s.Ink = l
	s.Texts = []textlayer.Element{{Text: "Hi", Position: graphics.Pt(10, 10), Scale: 1, Color: black, FontSize: 12}}

	a, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two renders of the same scene differ")
	}
}

func TestRotatedImageCoversContainer(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	for _, deg := range []float64{90, 45, -30, 180} {
		s := scene(solid(30, 40, red), graphics.Sz(30, 40))
		s.Transform.ApplyRotation(deg, s.Container, nil)
		img, err := Render(s)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range []image.Point{{2, 2}, {27, 2}, {2, 37}, {27, 37}} {
			if got := img.RGBAAt(p.X, p.Y); got.G > 20 {
				t.Errorf("rotation %v: pixel %v = %v, background visible", deg, p, got)
			}
		}
	}
}

func TestInkFollowsCanvasTransform(t *testing.T) {
	green := color.NRGBA{0, 255, 0, 255}
	l := ink.NewLayer()
	l.SetColor(green)
	l.Begin(graphics.Pt(8, 20))
	l.Extend(graphics.Pt(12, 20))
	l.End()

	s := scene(solid(40, 40, color.NRGBA{255, 255, 255, 255}), graphics.Sz(40, 40))
	s.Ink = l
	s.Transform.Scale = 2
	s.Transform.Offset = graphics.Pt(5, 0)

	img, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	// (10, 20) lands at (10-20)*2 + 20 + 5 = 5.
	if got := img.RGBAAt(5, 20); got.G < 200 || got.R > 80 {
		t.Errorf("ink pixel = %v, want green", got)
	}
	if got := img.RGBAAt(30, 20); got.R != 255 {
		t.Errorf("pixel away from the ink = %v, want white", got)
	}
}

func TestEmptyInkIsSkipped(t *testing.T) {
	s := scene(solid(4, 4, black), graphics.Sz(4, 4))
	s.Ink = ink.NewLayer()
	img, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(2, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("pixel = %v, want black", got)
	}
}

func TestTextIsRemappedNotRotatedTwice(t *testing.T) {
	white := solid(100, 100, color.NRGBA{255, 255, 255, 255})
	s := scene(white, graphics.Sz(100, 100))
	s.Transform.Scale = 2
	s.Transform.Offset = graphics.Pt(10, 0)
	s.Texts = []textlayer.Element{
		{ID: 1, Text: "IIIIII", Position: graphics.Pt(30, 50), Scale: 1, Color: black, FontSize: 20},
		{ID: 2, Text: "IIIIII", Position: graphics.Pt(45, 70), Scale: 1, Color: black, FontSize: 20, IsEditing: true},
	}

	img, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	r := darkBounds(img)
	if r.Empty() {
		t.Fatal("no text drawn")
	}
	// (30-50)*2 + 50 + 10 = 20.
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	if cx < 17 || cx > 23 || cy < 42 || cy > 58 {
		t.Errorf("text centered at (%d, %d), want near (20, 50)", cx, cy)
	}
	if r.Dx() <= r.Dy() {
		t.Errorf("unrotated text bounds %v are not wide", r)
	}
	if r.Max.X > 60 || r.Max.Y > 70 {
		t.Errorf("editing element was drawn: bounds %v", r)
	}

	s.Transform.Scale = 1
	s.Transform.Offset = graphics.Point{}
	s.Transform.Rotation = 90
	s.Texts[0].Position = graphics.Pt(50, 50)
	img, err = Render(s)
	if err != nil {
		t.Fatal(err)
	}
	if r := darkBounds(img); r.Dy() <= r.Dx() {
		t.Errorf("text rotated with the canvas has bounds %v, want tall", r)
	}
}

func TestTextElementScale(t *testing.T) {
	white := solid(100, 100, color.NRGBA{255, 255, 255, 255})
	s := scene(white, graphics.Sz(100, 100))
	s.Texts = []textlayer.Element{{Text: "II", Position: graphics.Pt(50, 50), Scale: 1, Color: black, FontSize: 16}}
	small, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	s.Texts[0].Scale = 2
	big, err := Render(s)
	if err != nil {
		t.Fatal(err)
	}
	a, b := darkBounds(small), darkBounds(big)
	if b.Dy() < a.Dy()*3/2 {
		t.Errorf("scaled text height %d, unscaled %d", b.Dy(), a.Dy())
	}
}

func TestInterpolator(t *testing.T) {
	for _, name := range []string{"", "nearest", "bilinear", "CatmullRom"} {
		if _, err := Interpolator(name); err != nil {
			t.Errorf("Interpolator(%q): %v", name, err)
		}
	}
	if _, err := Interpolator("box"); err == nil {
		t.Error("Interpolator(box) succeeded")
	}
}
