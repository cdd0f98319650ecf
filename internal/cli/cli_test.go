package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkframe/internal/config"
	"inkframe/pkg/api"
	"inkframe/pkg/filter"
	"inkframe/pkg/graphics"
	"inkframe/pkg/imagesource"
)

func writePhoto(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 30, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 30; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Dir = filepath.Join(dir, "exports")
	path := filepath.Join(dir, "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRenderArgs(t *testing.T) {
	r, err := ParseRenderArgs([]string{
		"in.png", "-o", "out.jpg", "-filter", "Sepia",
		"-rotate", "15", "-rotate", "-90", "-zoom", "2",
		"-pan", "10,-5", "-text", "Hello", "-text", "World",
		"-color", "#ff0000", "-size", "32", "-draw", "1,2,3,4", "-scale", "2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Input != "in.png" || r.Output != "out.jpg" || r.Filter != filter.Sepia {
		t.Errorf("got %+v", r)
	}
	if len(r.Rotations) != 2 || r.Rotations[1] != -90 || r.Zoom != 2 {
		t.Errorf("transform args = %v %v", r.Rotations, r.Zoom)
	}
	if r.Pan != graphics.Pt(10, -5) {
		t.Errorf("pan = %v", r.Pan)
	}
	if len(r.Texts) != 2 || r.Color != "#ff0000" || r.Size != 32 {
		t.Errorf("text args = %v %q %v", r.Texts, r.Color, r.Size)
	}
	if len(r.Strokes) != 1 || r.Strokes[0][1] != graphics.Pt(3, 4) || r.PixelScale != 2 {
		t.Errorf("strokes = %v, scale = %v", r.Strokes, r.PixelScale)
	}
}

func TestParseRenderArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"flag as input", []string{"-o", "x.png"}},
		{"missing value", []string{"in.png", "-o"}},
		{"unknown flag", []string{"in.png", "-blur", "3"}},
		{"bad filter", []string{"in.png", "-filter", "posterize"}},
		{"bad rotation", []string{"in.png", "-rotate", "left"}},
		{"bad pan", []string{"in.png", "-pan", "1,2,3"}},
		{"bad color", []string{"in.png", "-color", "red"}},
		{"zero size", []string{"in.png", "-size", "0"}},
		{"odd stroke", []string{"in.png", "-draw", "1,2,3"}},
		{"negative scale", []string{"in.png", "-scale", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRenderArgs(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEditWithoutFilter(t *testing.T) {
	img, err := imagesource.Load(writePhoto(t, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args func() RenderArgs
	}{
		{"parsed", func() RenderArgs {
			r, err := ParseRenderArgs([]string{"in.png", "-o", "out.png"})
			if err != nil {
				t.Fatal(err)
			}
			if r.Filter != filter.None {
				t.Errorf("default filter = %q, want %q", r.Filter, filter.None)
			}
			return r
		}},
		{"zero value", func() RenderArgs { return RenderArgs{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := api.NewSession(api.WithScreen(graphics.Sz(300, 610)))
			if err := Edit(s, img, tt.args()); err != nil {
				t.Fatalf("Edit: %v", err)
			}
			if s.Filter() != filter.None {
				t.Errorf("filter = %q", s.Filter())
			}
		})
	}
}

func TestEdit(t *testing.T) {
	img, err := imagesource.Load(writePhoto(t, t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	s := api.NewSession(api.WithScreen(graphics.Sz(300, 610)))
	err = Edit(s, img, RenderArgs{
		Filter:    filter.Noir,
		Rotations: []float64{90},
		Texts:     []string{"Hi", "  "},
		Color:     "#00ff00",
		Strokes:   [][]graphics.Point{{graphics.Pt(10, 10), graphics.Pt(50, 50)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Filter() != filter.Noir {
		t.Errorf("filter = %q", s.Filter())
	}
	if got := s.Transform().Rotation; got != 90 {
		t.Errorf("rotation = %v", got)
	}
	texts := s.Texts()
	if len(texts) != 1 || texts[0].Color != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("texts = %+v", texts)
	}
	if len(s.Ink().Strokes()) != 1 || s.DrawingEnabled() {
		t.Error("stroke not recorded or drawing left on")
	}
}

func TestRenderToOutput(t *testing.T) {
	dir := t.TempDir()
	in, cfg := writePhoto(t, dir), writeConfig(t, dir)
	out := filepath.Join(dir, "out", "edit.jpg")

	var buf bytes.Buffer
	err := Render(context.Background(), &buf, []string{in, "-config", cfg, "-o", out, "-scale", "2", "-text", "Hi"})
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() == 0 || !strings.Contains(buf.String(), "Saved "+out) {
		t.Errorf("bounds = %v, output = %q", img.Bounds(), buf.String())
	}
}

func TestRenderToExportDir(t *testing.T) {
	dir := t.TempDir()
	in, cfg := writePhoto(t, dir), writeConfig(t, dir)

	var buf bytes.Buffer
	if err := Render(context.Background(), &buf, []string{in, "-config", cfg}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "exports"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Errorf("exports = %v", entries)
	}
}

func TestRenderMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := Render(context.Background(), &bytes.Buffer{}, []string{filepath.Join(dir, "nope.png"), "-config", writeConfig(t, dir)})
	if err == nil {
		t.Error("expected error for a missing image")
	}
}

func TestInfoAndFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Info(&buf, writePhoto(t, t.TempDir()), config.Default()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Format: png", "Size: 30 × 40 pixels", "Container:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("info output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	Filters(&buf)
	if lines := strings.Count(buf.String(), "\n"); lines != len(filter.IDs()) {
		t.Errorf("filters printed %d lines", lines)
	}

	buf.Reset()
	PrintUsage(&buf, "inkframe", true)
	if !strings.Contains(buf.String(), "gui [image]") {
		t.Error("usage missing gui command")
	}
}
