// Package gui provides the desktop photo editor using Fyne.
package gui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"inkframe/internal/config"
	"inkframe/internal/logging"
	"inkframe/pkg/api"
	"inkframe/pkg/filter"
	"inkframe/pkg/imagesource"
	"inkframe/pkg/ink"
	"inkframe/pkg/textlayer"
)

// textRotationStep is how far the bracket keys turn the selected text.
const textRotationStep = 15

// App is the editor application.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window

	// mu serializes UI handlers and async completions; the session is
	// only touched with it held.
	mu      sync.Mutex
	session *api.Session

	// UI components
	view      *CanvasView
	toolbar   *Toolbar
	tools     *ToolPanel
	statusBar *StatusBar
}

// NewApp creates the editor with the given configuration.
func NewApp(cfg *config.Config) *App {
	return newApp(app.NewWithID("dev.inkframe"), cfg)
}

func newApp(fa fyne.App, cfg *config.Config) *App {
	a := &App{fyneApp: fa}
	opts := append(cfg.SessionOptions(), api.WithDispatcher(a.dispatch))
	a.session = api.NewSession(opts...)

	a.fyneApp.Settings().SetTheme(theme.DarkTheme())
	a.mainWindow = a.fyneApp.NewWindow("inkframe")
	a.mainWindow.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)))
	a.buildUI()
	return a
}

// dispatch runs an async completion under the UI lock and refreshes.
func (a *App) dispatch(f func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f()
	a.refresh()
}

// Run starts the application.
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// RunWithFile starts the application with an image loading.
func (a *App) RunWithFile(path string) {
	a.loadFile(path)
	a.mainWindow.ShowAndRun()
}

// buildUI constructs the user interface.
func (a *App) buildUI() {
	a.view = NewCanvasView(a.session, &a.mu)
	a.view.OnChanged = a.refreshControls
	a.view.OnEditText = func(textlayer.ID) { a.showTextEntry(a.session.TextEntry()) }

	a.toolbar = NewToolbar()
	a.toolbar.OnOpen = a.openFile
	a.toolbar.OnSave = a.save
	a.toolbar.OnExport = a.export
	a.toolbar.OnReset = a.locked(a.session.Reset)
	a.toolbar.OnRotateLeft = a.locked(func() { a.session.ApplyRotation(-90) })
	a.toolbar.OnRotateRight = a.locked(func() { a.session.ApplyRotation(90) })

	a.tools = NewToolPanel()
	a.tools.OnTool = func(t ink.Tool) { a.locked(func() { a.session.Ink().SetTool(t) })() }
	a.tools.OnColor = func(c color.NRGBA) {
		a.locked(func() {
			a.session.Ink().SetColor(c)
			a.session.SetTextColor(c)
		})()
	}
	a.tools.OnDrawing = func(on bool) { a.locked(func() { a.session.SetDrawingEnabled(on) })() }
	a.tools.OnClear = a.locked(a.session.ClearDrawing)
	a.tools.OnAddText = func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.session.BeginAddText()
		a.showTextEntry(a.session.TextEntry())
	}
	a.tools.OnFilter = a.applyFilter
	a.tools.OnRotation = func(deg float64) {
		a.locked(func() { a.session.ApplyRotation(deg - a.session.Transform().Rotation) })()
	}

	a.statusBar = NewStatusBar()

	content := container.NewBorder(
		container.NewPadded(a.toolbar.Container()),
		container.NewVBox(a.tools.Container(), a.statusBar.Container()),
		nil,
		nil,
		a.view,
	)
	a.mainWindow.SetContent(content)
	a.mainWindow.Canvas().SetOnTypedKey(a.handleKey)

	a.mu.Lock()
	a.refreshControls()
	a.mu.Unlock()
}

// locked wraps f to run under the UI lock and refresh afterwards.
func (a *App) locked(f func()) func() {
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		f()
		a.refresh()
	}
}

// refresh redraws the canvas and syncs the controls. Call with mu held.
func (a *App) refresh() {
	a.view.Redraw()
	a.refreshControls()
}

// refreshControls syncs toolbar and status to the session. Call with mu
// held.
func (a *App) refreshControls() {
	s := a.session
	tr := s.Transform()
	if s.Image() == nil {
		a.toolbar.Disable()
	} else {
		a.toolbar.Enable()
	}
	a.toolbar.SetRotation(tr.Rotation)
	a.tools.Sync(s.Ink().Tool(), s.Ink().Color(), s.DrawingEnabled(), s.Filter(), tr.Rotation)
	a.statusBar.SetZoom(int(math.Round(tr.Scale * 100)))
}

// handleKey handles keyboard shortcuts.
func (a *App) handleKey(key *fyne.KeyEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session
	switch key.Name {
	case fyne.KeyR:
		s.ApplyRotation(90)
	case fyne.KeyL:
		s.ApplyRotation(-90)
	case fyne.KeyPlus, fyne.KeyEqual:
		a.view.zoomBy(1.25)
	case fyne.KeyMinus:
		a.view.zoomBy(0.8)
	case fyne.KeyD:
		s.SetDrawingEnabled(!s.DrawingEnabled())
	case fyne.KeyDelete, fyne.KeyBackspace:
		if e, ok := s.Selected(); ok {
			s.RemoveText(e.ID)
		}
	case fyne.KeyEscape:
		s.DeselectText()
	case fyne.KeyLeftBracket, fyne.KeyRightBracket:
		e, ok := s.Selected()
		if !ok {
			return
		}
		step := textRotationStep
		if key.Name == fyne.KeyLeftBracket {
			step = -step
		}
		s.RotateText(e.ID, e.Rotation+step)
	default:
		return
	}
	a.refresh()
}

// openFile shows a file dialog and loads the selected image.
func (a *App) openFile() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if reader == nil {
			return // Cancelled
		}
		defer reader.Close()
		a.loadFile(reader.URI().Path())
	}, a.mainWindow)
}

// loadFile decodes path in the background.
func (a *App) loadFile(path string) {
	a.statusBar.SetStatus("Loading " + path)
	a.session.LoadImageAsync(path, func(changed bool, err error) {
		if err != nil {
			a.statusBar.SetStatus("Open failed")
			dialog.ShowError(fmt.Errorf("failed to open image: %w", err), a.mainWindow)
			return
		}
		a.mainWindow.SetTitle("inkframe - " + path)
		if changed {
			a.statusBar.SetStatus(describe(a.session.Image()))
		}
	})
}

func describe(img *imagesource.Image) string {
	if img == nil {
		return "No image"
	}
	return fmt.Sprintf("%s %dx%d", img.Format, int(img.Size.Width), int(img.Size.Height))
}

func (a *App) applyFilter(id filter.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusBar.SetStatus("Applying " + id.Label())
	a.session.ApplyFilterAsync(id, func(err error) {
		switch {
		case err == nil:
			a.statusBar.SetStatus(id.Label())
		case errors.Is(err, api.ErrSuperseded):
		default:
			a.statusBar.SetStatus("Filter failed")
			logging.Logger().Warn("filter failed", "filter", string(id), "error", err)
		}
	})
}

func (a *App) save() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusBar.SetStatus("Saving")
	a.session.SaveAsync(context.Background(), func(err error) {
		if err != nil {
			a.statusBar.SetStatus("Save failed")
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.statusBar.SetStatus("Saved")
	})
}

// export writes the flattened image to a file the user picks.
func (a *App) export() {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()

		a.mu.Lock()
		defer a.mu.Unlock()
		if err := a.session.Share(context.Background(), w); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.statusBar.SetStatus("Exported " + w.URI().Name())
	}, a.mainWindow)
}

// showTextEntry asks for text and commits it to the session. Cancelling
// puts an edited element back. It only opens the dialog, so it is safe to
// call with mu held.
func (a *App) showTextEntry(entry textlayer.Entry) {
	input := widget.NewMultiLineEntry()
	input.SetText(entry.Text)
	title := "Add text"
	if entry.EditingID != 0 {
		title = "Edit text"
	}
	dialog.ShowForm(title, "Done", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", input)},
		func(ok bool) {
			a.mu.Lock()
			defer a.mu.Unlock()
			if ok {
				a.session.CommitText(input.Text)
			} else {
				a.session.CancelText()
			}
			a.refresh()
		}, a.mainWindow)
}
