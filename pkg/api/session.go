// Package api is the entry point for front ends: a Session owns one photo
// being edited and everything layered on it.
package api

import (
	"context"
	"fmt"
	"image"
	"io"

	"inkframe/internal/logging"
	"inkframe/pkg/compositor"
	"inkframe/pkg/export"
	"inkframe/pkg/filter"
	"inkframe/pkg/graphics"
	"inkframe/pkg/imagesource"
	"inkframe/pkg/ink"
	"inkframe/pkg/textlayer"
	"inkframe/pkg/transform"
	"inkframe/pkg/viewport"
)

// Session is one editing session. It is not safe for concurrent use: call
// it from one goroutine. Async results come back through the Dispatcher,
// or through RunPending when there is none.
type Session struct {
	opts       Options
	layout     viewport.Layout
	compositor *compositor.Compositor

	transform *transform.State
	texts     *textlayer.Store
	ink       *ink.Layer
	drawing   bool

	image    *imagesource.Image
	filter   filter.ID
	filtered image.Image

	// Bumped whenever the image changes or a filter request is made.
	imageGen  uint64
	filterGen uint64

	pending *completionQueue
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	o := NewOptions(opts...)
	s := &Session{
		opts:   o,
		layout: o.Layout,
		compositor: compositor.New(
			compositor.WithPixelScale(o.PixelScale),
			compositor.WithInterpolation(o.Interpolation),
			compositor.WithBackground(o.Background),
			compositor.WithFont(o.Font),
		),
		transform: transform.New(),
		texts:     textlayer.NewStore(),
		ink:       ink.NewLayer(),
		drawing:   true,
		filter:    filter.None,
		pending:   newCompletionQueue(),
	}
	s.texts.SetEntryColor(o.TextColor)
	s.texts.SetEntryFontSize(o.FontSize)
	s.ink.SetTool(o.InkTool)
	s.ink.SetColor(o.InkColor)
	s.ink.SetWidth(o.InkWidth)
	return s
}

// Options returns the options the session was created with.
func (s *Session) Options() Options {
	return s.opts
}

// Layout returns the current screen layout.
func (s *Session) Layout() viewport.Layout {
	return s.layout
}

// SetLayout changes the space around the canvas. The pan is clamped to
// the new container.
func (s *Session) SetLayout(l viewport.Layout) {
	s.layout = l
	s.transform.ClampOffset(s.ContainerSize())
	s.transform.LastOffset = s.transform.Offset
}

// ContainerSize is the on-screen size of the image. It is zero while no
// image is loaded.
func (s *Session) ContainerSize() graphics.Size {
	if s.image == nil {
		return graphics.Size{}
	}
	return viewport.ContainerSize(s.image.Size, s.layout.Available())
}

// Image returns the loaded image, or nil.
func (s *Session) Image() *imagesource.Image {
	return s.image
}

// SetImage replaces the image. Picking the same image again changes
// nothing; a different image resets the transform, ink, text and filter.
// It reports whether the image changed.
func (s *Session) SetImage(img *imagesource.Image) bool {
	if img == nil || img.SameAs(s.image) {
		return false
	}
	s.image = img
	s.imageGen++
	s.filter = filter.None
	s.filtered = nil
	s.Reset()
	logging.Logger().Info("image changed",
		"format", img.Format,
		"width", img.Size.Width,
		"height", img.Size.Height,
		"fingerprint", fmt.Sprintf("%016x", img.Fingerprint))
	return true
}

// LoadImage reads, decodes and sets the image at path.
func (s *Session) LoadImage(path string) (bool, error) {
	img, err := imagesource.Load(path)
	if err != nil {
		return false, err
	}
	return s.SetImage(img), nil
}

// LoadImageAsync decodes path off the calling goroutine and sets the image
// back on the owner's goroutine. done may be nil.
func (s *Session) LoadImageAsync(path string, done func(changed bool, err error)) {
	go func() {
		img, err := imagesource.Load(path)
		s.dispatch(func() {
			changed := false
			if err == nil {
				changed = s.SetImage(img)
			} else {
				logging.Logger().Warn("image load failed", "path", path, "error", err)
			}
			if done != nil {
				done(changed, err)
			}
		})
	}()
}

// Filter returns the active filter.
func (s *Session) Filter() filter.ID {
	return s.filter
}

// DisplayedImage is the image the canvas shows: the filtered image when a
// filter is active, otherwise the original.
func (s *Session) DisplayedImage() image.Image {
	if s.image == nil {
		return nil
	}
	if s.filter != filter.None && s.filtered != nil {
		return s.filtered
	}
	return s.image.Bitmap
}

// ApplyFilter runs filter id over the original image. On failure the
// displayed image and active filter are left as they were.
func (s *Session) ApplyFilter(id filter.ID) error {
	const op = "apply filter"
	if s.image == nil {
		return &Error{Kind: KindFilterFailure, Op: op, Err: ErrNoImage}
	}
	s.filterGen++
	out, err := s.opts.Filters.Apply(id, s.image.Bitmap)
	if err != nil {
		logging.Logger().Warn("filter failed", "filter", string(id), "error", err)
		return wrap(op, err)
	}
	s.setFiltered(id, out)
	return nil
}

func (s *Session) setFiltered(id filter.ID, out image.Image) {
	s.filter = id
	if id == filter.None {
		s.filtered = nil
		return
	}
	s.filtered = out
}

// ApplyFilterAsync runs the filter off the calling goroutine. The result
// is applied back on the owner's goroutine unless the image changed or another
// filter was requested meanwhile, in which case done gets ErrSuperseded.
func (s *Session) ApplyFilterAsync(id filter.ID, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	if s.image == nil {
		done(&Error{Kind: KindFilterFailure, Op: "apply filter", Err: ErrNoImage})
		return
	}
	s.filterGen++
	imageGen, filterGen := s.imageGen, s.filterGen
	src, service := s.image.Bitmap, s.opts.Filters

	go func() {
		out, err := service.Apply(id, src)
		s.dispatch(func() {
			if s.imageGen != imageGen || s.filterGen != filterGen {
				logging.Logger().Debug("stale filter result dropped", "filter", string(id))
				done(ErrSuperseded)
				return
			}
			if err != nil {
				logging.Logger().Warn("filter failed", "filter", string(id), "error", err)
				done(wrap("apply filter", err))
				return
			}
			s.setFiltered(id, out)
			done(nil)
		})
	}()
}

// Transform returns a copy of the canvas transform.
func (s *Session) Transform() transform.State {
	return *s.transform
}

// ApplyRotation turns the canvas by delta degrees; text anchors turn with
// it.
func (s *Session) ApplyRotation(delta float64) {
	s.transform.ApplyRotation(delta, s.ContainerSize(), s.texts)
}

// HandleMagnificationChange tracks a pinch in progress.
func (s *Session) HandleMagnificationChange(value float64) {
	s.transform.HandleMagnificationChange(value, s.ContainerSize())
}

// HandleMagnificationEnded commits a pinch.
func (s *Session) HandleMagnificationEnded() {
	s.transform.HandleMagnificationEnded(s.ContainerSize())
}

// HandleDragChange tracks a pan in progress.
func (s *Session) HandleDragChange(translation graphics.Point) {
	s.transform.HandleDragChange(translation)
}

// HandleDragEnded commits a pan.
func (s *Session) HandleDragEnded() {
	s.transform.HandleDragEnded(s.ContainerSize())
}

// Reset restores the identity transform and removes all ink and text.
// The image, filter and text entry color and size stay.
func (s *Session) Reset() {
	s.transform.Reset()
	s.ink.Clear()
	s.texts.Clear()
}

// Ink returns the drawing layer, for tool and color changes.
func (s *Session) Ink() *ink.Layer {
	return s.ink
}

// ClearDrawing removes all ink.
func (s *Session) ClearDrawing() {
	s.ink.Clear()
}

// SetDrawingEnabled switches between drawing and manipulating the canvas.
func (s *Session) SetDrawingEnabled(on bool) {
	if !on {
		s.ink.End()
	}
	s.drawing = on
}

// DrawingEnabled reports whether pointer input draws ink.
func (s *Session) DrawingEnabled() bool {
	return s.drawing
}

// BeginStroke starts an ink stroke at screen point p. It does nothing while
// drawing is disabled.
func (s *Session) BeginStroke(p graphics.Point) {
	if s.drawing && s.image != nil {
		s.ink.Begin(s.transform.ToCanvas(p, s.ContainerSize()))
	}
}

// ExtendStroke continues the stroke to screen point p.
func (s *Session) ExtendStroke(p graphics.Point) {
	if s.drawing && s.image != nil {
		s.ink.Extend(s.transform.ToCanvas(p, s.ContainerSize()))
	}
}

// EndStroke finishes the stroke.
func (s *Session) EndStroke() {
	s.ink.End()
}

func (s *Session) scene() compositor.Scene {
	return compositor.Scene{
		Base:      s.DisplayedImage(),
		Container: s.ContainerSize(),
		Transform: *s.transform,
		Ink:       s.ink,
		Texts:     s.texts.Elements(),
	}
}

// Render flattens the displayed image, ink and text into one raster.
func (s *Session) Render() (*image.RGBA, error) {
	if s.image == nil {
		return nil, &Error{Kind: KindRenderingFailure, Op: "render", Err: ErrNoImage}
	}
	img, err := s.compositor.Render(s.scene())
	if err != nil {
		return nil, wrap("render", err)
	}
	return img, nil
}

// Share renders and writes the result to w as PNG.
func (s *Session) Share(ctx context.Context, w io.Writer) error {
	img, err := s.Render()
	if err != nil {
		return err
	}
	return wrap("share", export.WriterSink{W: w, Options: export.PNG()}.Save(ctx, img))
}

// Save renders and hands the result to the sink.
func (s *Session) Save(ctx context.Context) error {
	img, err := s.Render()
	if err != nil {
		return err
	}
	if err := s.opts.Sink.Save(ctx, img); err != nil {
		logging.Logger().Warn("save failed", "error", err)
		return wrap("save", err)
	}
	return nil
}

// SaveAsync renders on the calling goroutine and writes in the background.
// done is called back on the owner's goroutine.
func (s *Session) SaveAsync(ctx context.Context, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	img, err := s.Render()
	if err != nil {
		done(err)
		return
	}
	sink := s.opts.Sink
	go func() {
		err := sink.Save(ctx, img)
		if err != nil {
			logging.Logger().Warn("save failed", "error", err)
		}
		s.dispatch(func() {
			done(wrap("save", err))
		})
	}()
}
