package api

import (
	"image/color"

	"inkframe/pkg/export"
	"inkframe/pkg/filter"
	"inkframe/pkg/font"
	"inkframe/pkg/graphics"
	"inkframe/pkg/ink"
	"inkframe/pkg/textlayer"
	"inkframe/pkg/viewport"
)

// Dispatcher runs f on the goroutine that owns the session. Async
// operations deliver their results through it.
type Dispatcher func(f func())

// Options configures a session.
type Options struct {
	// Layout is the screen and the chrome around the canvas.
	// Default: 390x844 with the standard panels
	Layout viewport.Layout

	// PixelScale is the number of exported pixels per container unit.
	// Default: 1.0
	PixelScale float64

	// Interpolation resamples the image and ink layers on export.
	// Default: bilinear
	Interpolation string

	// Background sets the export background color.
	// Default: white
	Background color.Color

	// Font draws text elements. Nil uses Go Regular.
	Font *font.Renderer

	// TextColor and FontSize seed the text entry.
	TextColor color.NRGBA
	FontSize  float64

	// Ink tool defaults. A zero InkWidth uses the tool's own width.
	InkTool  ink.Tool
	InkColor color.NRGBA
	InkWidth float64

	// Filters runs filter requests. Default: filter.NewService()
	Filters *filter.Service

	// Sink receives saved images. Default: a FileSink in the working
	// directory.
	Sink export.Sink

	// Dispatcher delivers async results. Default: nil, which queues them
	// on the session until RunPending or WaitPending.
	Dispatcher Dispatcher
}

// DefaultScreen is the screen size used when none is configured.
var DefaultScreen = graphics.Sz(390, 844)

// DefaultOptions returns session options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Layout:        viewport.DefaultLayout(DefaultScreen),
		PixelScale:    1.0,
		Interpolation: "bilinear",
		Background:    color.White,
		TextColor:     textlayer.DefaultColor,
		FontSize:      textlayer.DefaultFontSize,
		InkTool:       ink.Pen,
		InkColor:      color.NRGBA{0, 0, 0, 255},
	}
}

// Option is a functional option for configuring a session.
type Option func(*Options)

// WithLayout sets the screen layout.
func WithLayout(l viewport.Layout) Option {
	return func(o *Options) {
		o.Layout = l
	}
}

// WithScreen sets the screen size, keeping the standard panels.
func WithScreen(size graphics.Size) Option {
	return func(o *Options) {
		o.Layout = viewport.DefaultLayout(size)
	}
}

// WithPixelScale sets the export resolution.
func WithPixelScale(scale float64) Option {
	return func(o *Options) {
		o.PixelScale = scale
	}
}

// WithInterpolation sets the export resampler.
func WithInterpolation(name string) Option {
	return func(o *Options) {
		o.Interpolation = name
	}
}

// WithBackground sets the export background color.
func WithBackground(c color.Color) Option {
	return func(o *Options) {
		o.Background = c
	}
}

// WithFont sets the text face.
func WithFont(r *font.Renderer) Option {
	return func(o *Options) {
		o.Font = r
	}
}

// WithTextDefaults sets the initial text color and size.
func WithTextDefaults(c color.NRGBA, size float64) Option {
	return func(o *Options) {
		o.TextColor = c
		o.FontSize = size
	}
}

// WithInk sets the initial ink tool.
func WithInk(tool ink.Tool, c color.NRGBA, width float64) Option {
	return func(o *Options) {
		o.InkTool = tool
		o.InkColor = c
		o.InkWidth = width
	}
}

// WithFilterService sets the filter collaborator.
func WithFilterService(s *filter.Service) Option {
	return func(o *Options) {
		o.Filters = s
	}
}

// WithSink sets where Save writes.
func WithSink(s export.Sink) Option {
	return func(o *Options) {
		o.Sink = s
	}
}

// WithDispatcher sets how async results reach the session's goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(o *Options) {
		o.Dispatcher = d
	}
}

// NewOptions creates options with the given modifiers.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Filters == nil {
		o.Filters = filter.NewService()
	}
	if o.Sink == nil {
		o.Sink = export.NewFileSink(".", export.DefaultOptions())
	}
	if o.Font == nil {
		o.Font = font.Default()
	}
	if !(o.FontSize > 0) {
		o.FontSize = textlayer.DefaultFontSize
	}
	return o
}
