// Package cli implements the inkframe subcommands shared by the desktop
// and headless binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"inkframe/internal/config"
	"inkframe/internal/logging"
	"inkframe/pkg/api"
	"inkframe/pkg/export"
	"inkframe/pkg/filter"
	"inkframe/pkg/graphics"
	"inkframe/pkg/imagesource"
)

// PrintUsage writes the command summary. gui adds the desktop commands.
func PrintUsage(w io.Writer, name string, gui bool) {
	fmt.Fprintf(w, `inkframe - layered photo editor

Usage:
  %[1]s <command> [arguments]

Commands:
  info <image>                 Show image format, size and canvas fit
  filters                      List the available filters
  render <image> [options]     Flatten an edit to an image file
    -o <output>                Output file, .png or .jpg (default: export dir)
    -config <file>             Config file (default: user config dir)
    -filter <name>             Filter to apply
    -rotate <degrees>          Rotate the canvas, repeatable
    -zoom <factor>             Zoom, at least the fill scale
    -pan <dx,dy>               Pan in canvas points
    -text <string>             Add a centered label, repeatable
    -color <#rrggbb>           Label color
    -size <points>             Label font size
    -draw <x,y,x,y,...>        Add a stroke with the configured ink
    -scale <factor>            Output pixel scale
`, name)
	if gui {
		fmt.Fprint(w, `  gui [image]                  Open the editor
  <image>                      Open the editor with an image
`)
	}
	fmt.Fprintf(w, `
Examples:
  %[1]s info photo.jpg
  %[1]s render photo.jpg -filter sepia -rotate 15 -text "Hello" -o out.png
`, name)
}

// LoadConfig reads path, or the default config file when path is empty,
// and installs a logger at the configured level.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.SetLogger(logging.NewTextLogger(os.Stderr, level))
	return cfg, nil
}

// Info prints what the editor would do with the image at path.
func Info(w io.Writer, path string, cfg *config.Config) error {
	img, err := imagesource.Load(path)
	if err != nil {
		return err
	}
	s := api.NewSession(cfg.SessionOptions()...)
	s.SetImage(img)
	c := s.ContainerSize()

	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintf(w, "Format: %s\n", img.Format)
	fmt.Fprintf(w, "Size: %d × %d pixels\n", int(img.Size.Width), int(img.Size.Height))
	fmt.Fprintf(w, "Bytes: %d\n", len(img.Encoded))
	fmt.Fprintf(w, "Fingerprint: %016x\n", img.Fingerprint)
	screen := cfg.Layout().Screen
	fmt.Fprintf(w, "\nCanvas on %.0f × %.0f screen:\n", screen.Width, screen.Height)
	fmt.Fprintf(w, "  Container: %.1f × %.1f points\n", c.Width, c.Height)
	return nil
}

// Filters lists filter names and labels.
func Filters(w io.Writer) {
	for _, id := range filter.IDs() {
		fmt.Fprintf(w, "%-10s %s\n", id, id.Label())
	}
}

// RenderArgs are the parsed render options.
type RenderArgs struct {
	Input      string
	Output     string
	Config     string
	Filter     filter.ID
	Rotations  []float64
	Zoom       float64
	Pan        graphics.Point
	Texts      []string
	Color      string
	Size       float64
	Strokes    [][]graphics.Point
	PixelScale float64
}

// ParseRenderArgs parses the arguments after "render".
func ParseRenderArgs(args []string) (RenderArgs, error) {
	r := RenderArgs{Filter: filter.None}
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return r, errors.New("missing input image")
	}
	r.Input = args[0]

	for i := 1; i < len(args); i++ {
		flag := args[i]
		if i+1 >= len(args) {
			return r, fmt.Errorf("%s needs a value", flag)
		}
		val := args[i+1]
		i++

		var err error
		switch flag {
		case "-o":
			r.Output = val
		case "-config":
			r.Config = val
		case "-filter":
			r.Filter, err = filter.Parse(val)
		case "-rotate":
			var deg float64
			deg, err = strconv.ParseFloat(val, 64)
			r.Rotations = append(r.Rotations, deg)
		case "-zoom":
			r.Zoom, err = strconv.ParseFloat(val, 64)
		case "-pan":
			var pts []graphics.Point
			pts, err = parsePoints(val)
			if err == nil && len(pts) != 1 {
				err = errors.New("want dx,dy")
			}
			if err == nil {
				r.Pan = pts[0]
			}
		case "-text":
			r.Texts = append(r.Texts, val)
		case "-color":
			r.Color = val
			_, err = graphics.ParseHexColor(val)
		case "-size":
			r.Size, err = strconv.ParseFloat(val, 64)
			if err == nil && r.Size <= 0 {
				err = errors.New("must be positive")
			}
		case "-draw":
			var pts []graphics.Point
			pts, err = parsePoints(val)
			r.Strokes = append(r.Strokes, pts)
		case "-scale":
			r.PixelScale, err = strconv.ParseFloat(val, 64)
			if err == nil && r.PixelScale <= 0 {
				err = errors.New("must be positive")
			}
		default:
			return r, fmt.Errorf("unknown option %s", flag)
		}
		if err != nil {
			return r, fmt.Errorf("%s %q: %w", flag, val, err)
		}
	}
	return r, nil
}

// parsePoints parses "x,y,x,y,...".
func parsePoints(s string) ([]graphics.Point, error) {
	fields := strings.Split(s, ",")
	if len(fields)%2 != 0 {
		return nil, errors.New("odd number of coordinates")
	}
	pts := make([]graphics.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, graphics.Pt(x, y))
	}
	return pts, nil
}

// Edit replays r on a session holding img.
func Edit(s *api.Session, img *imagesource.Image, r RenderArgs) error {
	s.SetImage(img)
	// The zero RenderArgs has no filter.
	if r.Filter != "" && r.Filter != filter.None {
		if err := s.ApplyFilter(r.Filter); err != nil {
			return err
		}
	}
	if r.Color != "" {
		c, _ := graphics.ParseHexColor(r.Color)
		s.SetTextColor(c)
	}
	if r.Size > 0 {
		s.SetFontSize(r.Size)
	}
	for _, text := range r.Texts {
		s.AddText(text)
	}
	for _, deg := range r.Rotations {
		s.ApplyRotation(deg)
	}
	if r.Zoom > 0 {
		s.HandleMagnificationChange(r.Zoom - s.Transform().LastScale)
		s.HandleMagnificationEnded()
	}
	if r.Pan != (graphics.Point{}) {
		s.HandleDragChange(r.Pan)
		s.HandleDragEnded()
	}
	if len(r.Strokes) > 0 {
		s.SetDrawingEnabled(true)
		for _, pts := range r.Strokes {
			if len(pts) == 0 {
				continue
			}
			s.BeginStroke(pts[0])
			for _, p := range pts[1:] {
				s.ExtendStroke(p)
			}
			s.EndStroke()
		}
		s.SetDrawingEnabled(false)
	}
	return nil
}

// Render runs the render command and prints where the result went.
func Render(ctx context.Context, w io.Writer, args []string) error {
	r, err := ParseRenderArgs(args)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(r.Config)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Opening %s...\n", r.Input)
	img, err := imagesource.Load(r.Input)
	if err != nil {
		return err
	}

	opts := cfg.SessionOptions()
	if r.PixelScale > 0 {
		opts = append(opts, api.WithPixelScale(r.PixelScale))
	}
	s := api.NewSession(opts...)
	if err := Edit(s, img, r); err != nil {
		return err
	}

	out, err := s.Render()
	if err != nil {
		return err
	}
	b := out.Bounds()
	if r.Output != "" {
		if err := export.WriteFile(r.Output, out, cfg.ExportOptions()); err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Saved %s (%dx%d pixels)\n", r.Output, b.Dx(), b.Dy())
		return nil
	}

	sink := export.NewFileSink(cfg.ExportDir(), cfg.ExportOptions())
	path, err := sink.SaveFile(ctx, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Saved %s (%dx%d pixels)\n", path, b.Dx(), b.Dy())
	return nil
}
