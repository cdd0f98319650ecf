package gui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"inkframe/internal/logging"
	"inkframe/pkg/api"
	"inkframe/pkg/graphics"
	pathpkg "inkframe/pkg/path"
	"inkframe/pkg/raster"
	"inkframe/pkg/textlayer"
	"inkframe/pkg/viewport"
)

// Selection outline style.
const (
	selectionRadius = 4
	selectionWidth  = 2
)

var selectionColor = color.NRGBA{0, 122, 255, 255}

type dragMode int

const (
	dragNone dragMode = iota
	dragInk
	dragText
	dragPan
)

type dragState struct {
	mode   dragMode
	start  graphics.Point // container space
	total  graphics.Point
	id     textlayer.ID
	origin graphics.Point
}

// CanvasView is the live editing surface. It shows the session flattened
// by the same compositor that exports it, with the selection outline on
// top, and turns pointer input into session gestures.
//
// Every handler takes mu, which the app shares with its async dispatcher.
type CanvasView struct {
	widget.BaseWidget

	mu      *sync.Mutex
	session *api.Session

	image *canvas.Image
	bg    *canvas.Rectangle

	size   fyne.Size
	drag   dragState
	origin graphics.Point // container top-left within the widget

	// OnChanged runs after a gesture changed the session, with mu held.
	OnChanged func()

	// OnEditText runs after a double tap moved a text element into the
	// entry, with mu held.
	OnEditText func(id textlayer.ID)
}

// NewCanvasView creates a view of session guarded by mu.
func NewCanvasView(session *api.Session, mu *sync.Mutex) *CanvasView {
	v := &CanvasView{
		mu:      mu,
		session: session,
	}
	v.ExtendBaseWidget(v)

	v.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	v.image.FillMode = canvas.ImageFillStretch
	v.image.ScaleMode = canvas.ImageScaleSmooth
	v.image.Hide()
	v.bg = canvas.NewRectangle(color.NRGBA{40, 40, 40, 255})
	return v
}

// CreateRenderer creates the renderer for this widget.
func (v *CanvasView) CreateRenderer() fyne.WidgetRenderer {
	return &canvasViewRenderer{view: v}
}

// toContainer maps a widget position into container space.
func (v *CanvasView) toContainer(p fyne.Position) graphics.Point {
	return graphics.Pt(float64(p.X), float64(p.Y)).Sub(v.origin)
}

// relayout fits the session to the widget size. The toolbars are real
// widgets around the view, so no panel space is reserved. Call with mu
// held.
func (v *CanvasView) relayout(size fyne.Size) {
	v.size = size
	v.session.SetLayout(viewport.Layout{Screen: graphics.Sz(float64(size.Width), float64(size.Height))})
}

// Redraw re-renders the session into the view. Call with mu held.
func (v *CanvasView) Redraw() {
	c := v.session.ContainerSize()
	v.origin = graphics.Pt((float64(v.size.Width)-c.Width)/2, (float64(v.size.Height)-c.Height)/2)
	if c.IsEmpty() {
		v.image.Hide()
		canvas.Refresh(v.image)
		return
	}
	img, err := v.session.Render()
	if err != nil {
		logging.Logger().Warn("live render failed", "error", err)
		return
	}
	if sel, ok := v.session.Selected(); ok {
		center, deg := v.session.TextPlacement(sel)
		ps := float64(img.Bounds().Dx()) / c.Width
		drawSelection(img, sel, center, deg, ps)
	}

	v.image.Image = img
	v.image.Move(fyne.NewPos(float32(v.origin.X), float32(v.origin.Y)))
	v.image.Resize(fyne.NewSize(float32(c.Width), float32(c.Height)))
	v.image.Show()
	canvas.Refresh(v.image)
}

// drawSelection outlines e with a rounded box padded around its measured
// size, turned with the element.
func drawSelection(img *image.RGBA, e textlayer.Element, center graphics.Point, deg, ps float64) {
	if e.Size.IsEmpty() {
		return
	}
	w := e.Size.Width + 2*textlayer.SelectionPadding
	h := e.Size.Height + 2*textlayer.SelectionPadding
	box := pathpkg.NewBuilder().RoundRect(-w/2, -h/2, w, h, selectionRadius, selectionRadius).Build()

	scale := e.Scale
	if !(scale > 0) {
		scale = 1
	}
	m := graphics.Scale(scale, scale).
		Multiply(graphics.RotateDeg(deg)).
		Multiply(graphics.Translate(center.X, center.Y)).
		Multiply(graphics.Scale(ps, ps))
	raster.NewCanvasFromImage(img).StrokeTransformed(box, m, selectionColor, selectionWidth*ps)
}

func (v *CanvasView) changed() {
	v.Redraw()
	if v.OnChanged != nil {
		v.OnChanged()
	}
}

// Dragged draws ink, moves a text element or pans, depending on the mode
// and where the drag started.
func (v *CanvasView) Dragged(ev *fyne.DragEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := v.toContainer(ev.Position)
	delta := graphics.Pt(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
	s := v.session

	if v.drag.mode == dragNone {
		v.drag = dragState{start: p.Sub(delta)}
		switch {
		case s.DrawingEnabled():
			v.drag.mode = dragInk
			s.BeginStroke(v.drag.start)
		default:
			if id, ok := s.TextAt(v.drag.start); ok {
				e, _ := s.Text(id)
				s.SelectText(id)
				v.drag.mode = dragText
				v.drag.id = id
				v.drag.origin = e.Position
			} else {
				v.drag.mode = dragPan
			}
		}
	}
	v.drag.total = v.drag.total.Add(delta)

	switch v.drag.mode {
	case dragInk:
		s.ExtendStroke(p)
	case dragText:
		// Anchors live before the canvas scale; screen motion shrinks by it.
		scale := s.Transform().Scale
		s.MoveText(v.drag.id, v.drag.origin.Add(v.drag.total.Scale(1/scale)))
	case dragPan:
		s.HandleDragChange(v.drag.total)
	}
	v.changed()
}

// DragEnd commits the drag.
func (v *CanvasView) DragEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.drag.mode {
	case dragInk:
		v.session.EndStroke()
	case dragPan:
		v.session.HandleDragEnded()
	}
	v.drag = dragState{}
	v.changed()
}

// Text scale limits for scroll scaling.
const (
	minTextScale = 0.2
	maxTextScale = 10
)

// Scrolled scales the selected text element, or zooms the canvas like a
// completed pinch when nothing is selected.
func (v *CanvasView) Scrolled(ev *fyne.ScrollEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	factor := 1 + float64(ev.Scrolled.DY)/200
	if e, ok := v.session.Selected(); ok {
		v.session.ScaleText(e.ID, graphics.Clamp(e.Scale*factor, minTextScale, maxTextScale))
	} else {
		v.zoomBy(factor)
	}
	v.changed()
}

// zoomBy multiplies the scale by factor. Call with mu held.
func (v *CanvasView) zoomBy(factor float64) {
	t := v.session.Transform()
	v.session.HandleMagnificationChange(t.Scale*factor - t.LastScale)
	v.session.HandleMagnificationEnded()
}

// Tapped selects the text under the pointer, or clears the selection.
func (v *CanvasView) Tapped(ev *fyne.PointEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id, ok := v.session.TextAt(v.toContainer(ev.Position)); ok {
		v.session.SelectText(id)
	} else {
		v.session.DeselectText()
	}
	v.changed()
}

// DoubleTapped opens the selected text element for editing.
func (v *CanvasView) DoubleTapped(ev *fyne.PointEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, ok := v.session.TextAt(v.toContainer(ev.Position))
	if !ok {
		return
	}
	if e, _ := v.session.Text(id); !e.IsSelected {
		v.session.SelectText(id)
		v.changed()
		return
	}
	if v.session.BeginEditText(id) {
		v.changed()
		if v.OnEditText != nil {
			v.OnEditText(id)
		}
	}
}

type canvasViewRenderer struct {
	view *CanvasView
}

func (r *canvasViewRenderer) Layout(size fyne.Size) {
	r.view.bg.Resize(size)
	r.view.mu.Lock()
	defer r.view.mu.Unlock()
	if size == r.view.size {
		return
	}
	r.view.relayout(size)
	r.view.Redraw()
}

func (r *canvasViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *canvasViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.bg, r.view.image}
}

func (r *canvasViewRenderer) Refresh() {
	canvas.Refresh(r.view.bg)
	canvas.Refresh(r.view.image)
}

func (r *canvasViewRenderer) Destroy() {}
