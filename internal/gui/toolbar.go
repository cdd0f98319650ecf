package gui

import (
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"inkframe/pkg/filter"
	"inkframe/pkg/graphics"
	"inkframe/pkg/ink"
)

// Rotation slider range in degrees.
const (
	sliderMin = -45
	sliderMax = 45
)

// Toolbar provides file and rotation controls.
type Toolbar struct {
	container *fyne.Container

	// Callbacks
	OnOpen        func()
	OnSave        func()
	OnExport      func()
	OnReset       func()
	OnRotateLeft  func()
	OnRotateRight func()

	// Components
	saveBtn     *widget.Button
	exportBtn   *widget.Button
	resetBtn    *widget.Button
	rotateLeft  *widget.Button
	rotateRight *widget.Button
	rotation    *widget.Label
}

// NewToolbar creates a new toolbar.
func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.build()
	return t
}

func call(f func()) func() {
	return func() {
		if f != nil {
			f()
		}
	}
}

func (t *Toolbar) build() {
	openBtn := widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() { call(t.OnOpen)() })
	t.saveBtn = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() { call(t.OnSave)() })
	t.exportBtn = widget.NewButtonWithIcon("Export", theme.MailForwardIcon(), func() { call(t.OnExport)() })
	t.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() { call(t.OnReset)() })

	t.rotateLeft = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { call(t.OnRotateLeft)() })
	t.rotateRight = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { call(t.OnRotateRight)() })
	t.rotation = widget.NewLabel("Rotation: 0.0°")

	t.container = container.NewHBox(
		openBtn,
		t.saveBtn,
		t.exportBtn,
		widget.NewSeparator(),
		t.resetBtn,
		widget.NewSeparator(),
		t.rotateLeft,
		t.rotation,
		t.rotateRight,
	)
	t.Disable()
}

// Container returns the toolbar container.
func (t *Toolbar) Container() *fyne.Container {
	return t.container
}

// SetRotation updates the rotation display.
func (t *Toolbar) SetRotation(deg float64) {
	t.rotation.SetText(fmt.Sprintf("Rotation: %.1f°", deg))
}

// Enable enables the controls that need an image.
func (t *Toolbar) Enable() {
	for _, b := range []*widget.Button{t.saveBtn, t.exportBtn, t.resetBtn, t.rotateLeft, t.rotateRight} {
		b.Enable()
	}
}

// Disable disables the controls that need an image.
func (t *Toolbar) Disable() {
	for _, b := range []*widget.Button{t.saveBtn, t.exportBtn, t.resetBtn, t.rotateLeft, t.rotateRight} {
		b.Disable()
	}
}

// ToolPanel holds the drawing, text and filter controls under the canvas.
type ToolPanel struct {
	container *fyne.Container

	OnTool     func(ink.Tool)
	OnColor    func(color.NRGBA)
	OnDrawing  func(bool)
	OnClear    func()
	OnAddText  func()
	OnFilter   func(filter.ID)
	OnRotation func(deg float64)

	tools   *widget.Select
	colors  *widget.Select
	draw    *widget.Check
	filters *widget.Select
	slider  *widget.Slider

	// quiet suppresses callbacks while the panel is synced to the session.
	quiet bool
}

// NewToolPanel creates the bottom panel.
func NewToolPanel() *ToolPanel {
	p := &ToolPanel{}
	p.build()
	return p
}

func (p *ToolPanel) build() {
	toolNames := []string{ink.Pen.String(), ink.Marker.String(), ink.Eraser.String()}
	p.tools = widget.NewSelect(toolNames, func(name string) {
		if tool, err := ink.ParseTool(name); err == nil && p.OnTool != nil && !p.quiet {
			p.OnTool(tool)
		}
	})

	colorNames := make([]string, len(graphics.Palette))
	for i, c := range graphics.Palette {
		colorNames[i] = c.Name
	}
	p.colors = widget.NewSelect(colorNames, func(name string) {
		for _, c := range graphics.Palette {
			if c.Name == name && p.OnColor != nil && !p.quiet {
				p.OnColor(c.Color)
			}
		}
	})

	p.draw = widget.NewCheck("Draw", func(on bool) {
		if p.OnDrawing != nil && !p.quiet {
			p.OnDrawing(on)
		}
	})

	labels := make([]string, 0, len(filter.IDs()))
	for _, id := range filter.IDs() {
		labels = append(labels, id.Label())
	}
	p.filters = widget.NewSelect(labels, func(label string) {
		if id, err := filter.Parse(label); err == nil && p.OnFilter != nil && !p.quiet {
			p.OnFilter(id)
		}
	})

	p.slider = widget.NewSlider(sliderMin, sliderMax)
	p.slider.Step = 1
	p.slider.OnChanged = func(v float64) {
		if p.OnRotation != nil && !p.quiet {
			p.OnRotation(v)
		}
	}

	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() { call(p.OnClear)() })
	textBtn := widget.NewButtonWithIcon("Text", theme.ContentAddIcon(), func() { call(p.OnAddText)() })

	p.container = container.NewVBox(
		p.slider,
		container.NewHBox(
			p.draw,
			p.tools,
			p.colors,
			clearBtn,
			widget.NewSeparator(),
			textBtn,
			widget.NewSeparator(),
			widget.NewLabel("Filter"),
			p.filters,
		),
	)
}

// Container returns the panel container.
func (p *ToolPanel) Container() *fyne.Container {
	return p.container
}

// Sync shows the session's current settings without firing callbacks.
func (p *ToolPanel) Sync(tool ink.Tool, c color.NRGBA, drawing bool, f filter.ID, rotation float64) {
	p.quiet = true
	defer func() { p.quiet = false }()

	p.tools.SetSelected(tool.String())
	p.colors.ClearSelected()
	for _, named := range graphics.Palette {
		if named.Color == c {
			p.colors.SetSelected(named.Name)
		}
	}
	p.draw.SetChecked(drawing)
	p.filters.SetSelected(f.Label())
	p.slider.SetValue(graphics.Clamp(rotation, sliderMin, sliderMax))
}

// StatusBar provides status information.
type StatusBar struct {
	container *fyne.Container
	label     *widget.Label
	zoomLabel *widget.Label
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	s := &StatusBar{
		label:     widget.NewLabel("Ready"),
		zoomLabel: widget.NewLabel("100%"),
	}

	s.container = container.NewHBox(
		s.label,
		widget.NewSeparator(),
		s.zoomLabel,
	)

	return s
}

// Container returns the status bar container.
func (s *StatusBar) Container() *fyne.Container {
	return s.container
}

// SetStatus sets the status message.
func (s *StatusBar) SetStatus(msg string) {
	s.label.SetText(msg)
}

// SetZoom sets the zoom percentage display.
func (s *StatusBar) SetZoom(percent int) {
	s.zoomLabel.SetText(strconv.Itoa(percent) + "%")
}
