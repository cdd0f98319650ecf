package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inkframe/pkg/export"
	"inkframe/pkg/filter"
	"inkframe/pkg/graphics"
	"inkframe/pkg/imagesource"
	"inkframe/pkg/viewport"
)

// The default panels leave 300x400 for the canvas.
var screen = graphics.Sz(300, 400+viewport.DefaultTopPanel+viewport.DefaultBottomPanel)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func photo(t *testing.T, c color.NRGBA) *imagesource.Image {
	t.Helper()
	img, err := imagesource.Decode(encodePNG(t, 30, 40, c))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

type recordSink struct {
	saved int
	err   error
}

func (r *recordSink) Save(ctx context.Context, img image.Image) error {
	r.saved++
	return r.err
}

// queue collects dispatched completions so the test goroutine runs them.
type queue chan func()

func (q queue) dispatch(f func()) { q <- f }

func (q queue) run(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		(<-q)()
	}
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := NewSession(append([]Option{WithScreen(screen)}, opts...)...)
	s.SetImage(photo(t, color.NRGBA{200, 120, 40, 255}))
	return s
}

func TestContainerSize(t *testing.T) {
	s := NewSession(WithScreen(screen))
	if got := s.ContainerSize(); !got.IsEmpty() {
		t.Errorf("container without image = %v", got)
	}
	s.SetImage(photo(t, color.NRGBA{A: 255}))
	if got := s.ContainerSize(); got != graphics.Sz(300, 400) {
		t.Errorf("container = %v, want 300x400", got)
	}

	s.SetLayout(viewport.DefaultLayout(graphics.Sz(600, 410)))
	if got := s.ContainerSize(); got != graphics.Sz(150, 200) {
		t.Errorf("height-bound container = %v, want 150x200", got)
	}
}

func TestSetImageResetsOnlyOnChange(t *testing.T) {
	data := encodePNG(t, 30, 40, color.NRGBA{10, 10, 10, 255})
	first, _ := imagesource.Decode(data)
	again, _ := imagesource.Decode(append([]byte(nil), data...))

	s := NewSession(WithScreen(screen))
	if !s.SetImage(first) {
		t.Fatal("first image not accepted")
	}
	s.ApplyRotation(90)
	s.AddText("keep")
	if err := s.ApplyFilter(filter.Noir); err != nil {
		t.Fatal(err)
	}

	if s.SetImage(again) {
		t.Error("same bytes reported as a change")
	}
	if s.Transform().Rotation != 90 || len(s.Texts()) != 1 || s.Filter() != filter.Noir {
		t.Error("state reset by re-picking the same image")
	}

	if !s.SetImage(photo(t, color.NRGBA{255, 255, 255, 255})) {
		t.Fatal("different image not accepted")
	}
	tr := s.Transform()
	if tr.Rotation != 0 || tr.Scale != 1 || len(s.Texts()) != 0 || s.Filter() != filter.None || !s.Ink().IsEmpty() {
		t.Errorf("state not reset: %+v, %d texts, filter %s", tr, len(s.Texts()), s.Filter())
	}
	if s.SetImage(nil) {
		t.Error("nil image accepted")
	}
}

func TestApplyFilterKeepsPreviousOnFailure(t *testing.T) {
	s := newSession(t)
	original := s.DisplayedImage()

	if err := s.ApplyFilter(filter.Sepia); err != nil {
		t.Fatal(err)
	}
	sepia := s.DisplayedImage()
	if sepia == original {
		t.Fatal("sepia did not change the displayed image")
	}

	err := s.ApplyFilter(filter.ID("posterize"))
	if !errors.Is(err, ErrFilterFailure) || !errors.Is(err, filter.ErrFilterFailed) {
		t.Errorf("err = %v, want filter failure", err)
	}
	if s.Filter() != filter.Sepia || s.DisplayedImage() != sepia {
		t.Error("failed filter replaced the displayed image")
	}

	if err := s.ApplyFilter(filter.None); err != nil {
		t.Fatal(err)
	}
	if s.DisplayedImage() != original {
		t.Error("None did not restore the original")
	}
}

func TestOperationsWithoutImage(t *testing.T) {
	s := NewSession(WithScreen(screen))
	if err := s.ApplyFilter(filter.Sepia); !errors.Is(err, ErrFilterFailure) || !errors.Is(err, ErrNoImage) {
		t.Errorf("ApplyFilter err = %v", err)
	}
	if _, err := s.Render(); !errors.Is(err, ErrRenderingFailure) {
		t.Errorf("Render err = %v", err)
	}
	if err := s.Save(context.Background()); !errors.Is(err, ErrRenderingFailure) {
		t.Errorf("Save err = %v", err)
	}
	if _, ok := s.AddText("x"); ok {
		t.Error("text added without an image")
	}
	// Gestures on an empty session are harmless.
	s.ApplyRotation(45)
	s.HandleMagnificationChange(1)
	s.HandleMagnificationEnded()
	s.HandleDragChange(graphics.Pt(10, 10))
	s.HandleDragEnded()
	if tr := s.Transform(); tr.Offset != (graphics.Point{}) || tr.Scale < 1 {
		t.Errorf("transform = %+v", tr)
	}
}

func TestRenderMatchesContainer(t *testing.T) {
	s := newSession(t, WithPixelScale(2))
	img, err := s.Render()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 800 {
		t.Errorf("bounds = %v, want 600x800", b)
	}
	if got := img.RGBAAt(300, 400); got.R != 200 || got.G != 120 || got.B != 40 {
		t.Errorf("center = %v", got)
	}
}

func TestSaveReportsPermissionDenied(t *testing.T) {
	sink := &recordSink{err: fmt.Errorf("%w: read-only album", export.ErrPermissionDenied)}
	s := newSession(t, WithSink(sink))

	err := s.Save(context.Background())
	if !errors.Is(err, ErrPermissionDenied) || !errors.Is(err, export.ErrPermissionDenied) {
		t.Errorf("err = %v, want permission denied", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindPermissionDenied || e.Op != "save" {
		t.Errorf("err = %#v", err)
	}
	if sink.saved != 1 {
		t.Errorf("sink called %d times", sink.saved)
	}
}

func TestSaveToDirectory(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, WithSink(export.NewFileSink(dir, export.PNG())))
	if err := s.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Errorf("entries = %v", entries)
	}
}

func TestShare(t *testing.T) {
	s := newSession(t)
	var buf bytes.Buffer
	if err := s.Share(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 300 || cfg.Height != 400 {
		t.Errorf("shared %dx%d", cfg.Width, cfg.Height)
	}
}

func TestApplyFilterAsyncDropsStaleResults(t *testing.T) {
	q := make(queue, 4)
	s := newSession(t, WithDispatcher(q.dispatch))

	var results []error
	record := func(err error) { results = append(results, err) }
	s.ApplyFilterAsync(filter.Sepia, record)
	s.ApplyFilterAsync(filter.Noir, record)
	q.run(t, 2)

	if s.Filter() != filter.Noir {
		t.Errorf("filter = %s, want noir", s.Filter())
	}
	stale := 0
	for _, err := range results {
		if errors.Is(err, ErrSuperseded) {
			stale++
		} else if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	}
	if stale != 1 {
		t.Errorf("%d results dropped, want 1", stale)
	}

	// An image change also invalidates a running filter.
	s.ApplyFilterAsync(filter.Bloom, record)
	s.SetImage(photo(t, color.NRGBA{1, 2, 3, 255}))
	q.run(t, 1)
	if s.Filter() != filter.None || !errors.Is(results[len(results)-1], ErrSuperseded) {
		t.Errorf("filter %s applied to a replaced image", s.Filter())
	}
}

func TestLoadImageAsync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(t, 60, 80, color.NRGBA{0, 0, 255, 255}), 0644); err != nil {
		t.Fatal(err)
	}
	q := make(queue, 2)
	s := NewSession(WithScreen(screen), WithDispatcher(q.dispatch))

	var changed bool
	var loadErr error
	s.LoadImageAsync(path, func(c bool, err error) { changed, loadErr = c, err })
	q.run(t, 1)
	if loadErr != nil || !changed || s.Image() == nil {
		t.Fatalf("load: changed %v, err %v", changed, loadErr)
	}

	s.LoadImageAsync(filepath.Join(t.TempDir(), "missing.png"), func(c bool, err error) { changed, loadErr = c, err })
	q.run(t, 1)
	if loadErr == nil || changed {
		t.Errorf("missing file: changed %v, err %v", changed, loadErr)
	}
}

func TestSaveAsync(t *testing.T) {
	q := make(queue, 1)
	sink := &recordSink{}
	s := newSession(t, WithSink(sink), WithDispatcher(q.dispatch))

	done := false
	s.SaveAsync(context.Background(), func(err error) {
		if err != nil {
			t.Error(err)
		}
		done = true
	})
	q.run(t, 1)
	if !done || sink.saved != 1 {
		t.Errorf("done %v, saved %d", done, sink.saved)
	}
}

func TestAsyncResultsWaitForOwner(t *testing.T) {
	sink := &recordSink{}
	s := newSession(t, WithSink(sink))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var filterErr error
	filtered := false
	s.ApplyFilterAsync(filter.Sepia, func(err error) { filtered, filterErr = true, err })
	// Nothing is applied until the owner drains the queue.
	for i := 0; i < 100; i++ {
		if s.Filter() != filter.None || filtered {
			t.Fatal("filter result applied off the owner's goroutine")
		}
	}
	if n, err := s.WaitPending(ctx); err != nil || n != 1 {
		t.Fatalf("WaitPending = %d, %v", n, err)
	}
	if !filtered || filterErr != nil || s.Filter() != filter.Sepia {
		t.Errorf("filter = %s, done %v, err %v", s.Filter(), filtered, filterErr)
	}

	saved := false
	s.SaveAsync(ctx, func(err error) { saved = err == nil })
	if _, err := s.WaitPending(ctx); err != nil || !saved || sink.saved != 1 {
		t.Errorf("save: done %v, saved %d, err %v", saved, sink.saved, err)
	}

	if n := s.RunPending(); n != 0 {
		t.Errorf("RunPending on an empty queue ran %d", n)
	}
	expired, stop := context.WithTimeout(context.Background(), time.Millisecond)
	defer stop()
	if _, err := s.WaitPending(expired); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitPending with nothing queued = %v", err)
	}
}

func TestTextLifecycle(t *testing.T) {
	s := newSession(t)
	s.BeginAddText()
	s.SetTextColor(color.NRGBA{255, 0, 0, 255})
	id, ok := s.CommitText("Hi")
	if !ok {
		t.Fatal("CommitText failed")
	}
	e, _ := s.Text(id)
	if e.Position != graphics.Pt(150, 200) || e.Size.IsEmpty() || e.Color.R != 255 {
		t.Errorf("element = %+v", e)
	}

	if got, ok := s.TextAt(graphics.Pt(150, 200)); !ok || got != id {
		t.Errorf("TextAt(center) = %v, %v", got, ok)
	}
	if _, ok := s.TextAt(graphics.Pt(10, 10)); ok {
		t.Error("TextAt(corner) hit")
	}

	s.BeginEditText(id)
	if len(s.Texts()) != 0 {
		t.Error("edited element still placed")
	}
	s.CancelText()
	if got, ok := s.Text(id); !ok || got.Text != "Hi" {
		t.Error("cancel lost the element")
	}

	s.BeginEditText(id)
	if got, ok := s.CommitText("Hello"); !ok || got != id {
		t.Fatalf("commit edit = %v, %v", got, ok)
	}
	edited, _ := s.Text(id)
	if edited.Text != "Hello" || edited.Size.Width <= e.Size.Width {
		t.Errorf("edited = %+v", edited)
	}
}

func TestAddTextDuringEdit(t *testing.T) {
	s := newSession(t)
	old, _ := s.AddText("Old")
	s.BeginEditText(old)

	if _, ok := s.AddText("New"); !ok {
		t.Fatal("AddText failed")
	}
	if got, ok := s.Text(old); !ok || got.Text != "Old" {
		t.Fatalf("edited element = %+v, %v, want it restored", got, ok)
	}

	// With no edit held, committing adds instead of rewriting "Old".
	id, ok := s.CommitText("Third")
	if !ok || id == old {
		t.Fatalf("CommitText = %v, %v", id, ok)
	}
	if got, _ := s.Text(old); got.Text != "Old" {
		t.Errorf("old element text = %q", got.Text)
	}
	if n := len(s.Texts()); n != 3 {
		t.Errorf("len(Texts()) = %d, want 3", n)
	}
}

func TestRotationCarriesText(t *testing.T) {
	s := newSession(t)
	id, _ := s.AddText("A")
	s.MoveText(id, graphics.Pt(250, 200))
	s.ApplyRotation(90)

	e, _ := s.Text(id)
	if math.Abs(e.Position.X-150) > 1e-9 || math.Abs(e.Position.Y-300) > 1e-9 {
		t.Errorf("position = %v, want (150, 300)", e.Position)
	}
	center, deg := s.TextPlacement(e)
	if deg != 90 {
		t.Errorf("placement rotation = %v", deg)
	}
	// The canvas scaled to cover the container after rotating.
	scale := s.Transform().Scale
	want := graphics.Pt(150, 200+100*scale)
	if math.Abs(center.X-want.X) > 1e-9 || math.Abs(center.Y-want.Y) > 1e-9 {
		t.Errorf("placement = %v, want %v", center, want)
	}
}

func TestStrokes(t *testing.T) {
	s := newSession(t)
	s.SetDrawingEnabled(false)
	s.BeginStroke(graphics.Pt(10, 10))
	s.EndStroke()
	if !s.Ink().IsEmpty() {
		t.Fatal("stroke drawn while drawing was disabled")
	}

	s.SetDrawingEnabled(true)
	s.HandleMagnificationChange(2)
	s.HandleMagnificationEnded()
	s.BeginStroke(graphics.Pt(150, 200))
	s.ExtendStroke(graphics.Pt(170, 200))
	s.EndStroke()

	strokes := s.Ink().Strokes()
	if len(strokes) != 1 {
		t.Fatalf("%d strokes", len(strokes))
	}
	// At 2x zoom a 20 point screen drag covers 10 canvas points.
	p := strokes[0].Points
	if p[0] != graphics.Pt(150, 200) || math.Abs(p[1].X-160) > 1e-9 {
		t.Errorf("points = %v", p)
	}

	s.ClearDrawing()
	if !s.Ink().IsEmpty() {
		t.Error("ClearDrawing left strokes")
	}
}

func TestReset(t *testing.T) {
	s := newSession(t)
	s.ApplyFilter(filter.Sepia)
	s.ApplyRotation(30)
	s.AddText("x")
	s.BeginStroke(graphics.Pt(1, 1))
	s.EndStroke()

	s.Reset()
	tr := s.Transform()
	if tr.Rotation != 0 || tr.Scale != 1 || tr.LastScale != 0 || len(s.Texts()) != 0 || !s.Ink().IsEmpty() {
		t.Errorf("after reset: %+v", tr)
	}
	if s.Filter() != filter.Sepia || s.Image() == nil {
		t.Error("reset dropped the image or filter")
	}
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Kind: KindRenderingFailure, Op: "render", Err: ErrNoImage}
	if err.Error() != "render: no image loaded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if got := ErrPermissionDenied.Error(); got != "permission denied" {
		t.Errorf("sentinel Error() = %q", got)
	}
	failed := wrap("apply filter", fmt.Errorf("%w: unknown filter", filter.ErrFilterFailed))
	if !errors.Is(failed, ErrFilterFailure) {
		t.Errorf("wrap(ErrFilterFailed) = %v", failed)
	}
	if got := failed.Error(); got != "apply filter: filter failed: unknown filter" {
		t.Errorf("Error() = %q, want the cause named once", got)
	}
	if errors.Is(err, ErrPermissionDenied) || !errors.Is(err, ErrRenderingFailure) {
		t.Error("kind matching is wrong")
	}
	if got := wrap("save", os.ErrPermission); !errors.Is(got, ErrPermissionDenied) {
		t.Errorf("wrap(os.ErrPermission) = %v", got)
	}
	if wrap("x", nil) != nil {
		t.Error("wrap(nil) != nil")
	}
	if Kind(9).String() != "Kind(9)" {
		t.Error("unknown kind string")
	}
}
