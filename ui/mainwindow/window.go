// Package mainwindow provides the main viewer window.
package mainwindow

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"imquick/internal/app"
	"imquick/internal/decode"
	"imquick/internal/version"
	"imquick/internal/viewport"
	"imquick/ui/canvas"
	"imquick/ui/dialogs"
	"imquick/ui/prefs"
)

const (
	defaultWidth  = 800
	defaultHeight = 600

	// maxTitlePath bounds the path shown in the window title.
	maxTitlePath = 100

	docURL = "https://pypi.org/project/ImQuick/"
)

// MainWindow is one viewer window, owning one session.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	canvas      *canvas.ImageCanvas
	placeholder *widget.Label
	statusBar   *widget.Label
	zoomLabel   *widget.Label

	// Stack navigation, shown only for multi-plane files.
	stackBox    *fyne.Container
	planeSlider *widget.Slider
	planeEntry  *widget.Entry

	mainMenu    *fyne.MainMenu
	interpItems []*fyne.MenuItem

	// Subordinate dialog handles, nil when closed.
	infoDlg     *dialogs.Info
	contrastDlg *dialogs.Contrast
	aboutDlg    *dialogs.About

	// spawn opens another viewer window for a path.
	spawn func(path string)

	// updatingPlane suppresses widget callbacks while they are reseeded.
	updatingPlane bool
}

// New creates a viewer window. spawn is called to open additional files in
// their own windows.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, spawn func(path string)) *MainWindow {
	win := fyneApp.NewWindow("ImQuick")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		spawn:  spawn,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupInput()

	w := float32(p.Int(prefs.KeyWindowWidth, defaultWidth))
	h := float32(p.Int(prefs.KeyWindowHeight, defaultHeight))
	win.Resize(fyne.NewSize(w, h))

	win.SetOnClosed(func() {
		mw.closeDialogs()
		size := win.Canvas().Size()
		p.SetInt(prefs.KeyWindowWidth, int(size.Width))
		p.SetInt(prefs.KeyWindowHeight, int(size.Height))
		if err := p.Save(); err != nil {
			log.Printf("Warning: failed to save preferences: %v", err)
		}
	})

	return mw
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas()
	mw.canvas.SetInterp(viewport.ParseInterp(
		mw.prefs.String(prefs.KeyInterpolation, "Nearest")))

	mw.placeholder = widget.NewLabel("Drop an image here, or use File > Open")
	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	mw.planeSlider = widget.NewSlider(0, 0)
	mw.planeSlider.Step = 1
	mw.planeSlider.OnChanged = func(v float64) {
		if mw.updatingPlane {
			return
		}
		if err := mw.state.SetPlane(mw.state.ClampPlane(int(v))); err != nil {
			log.Printf("Error: plane change failed: %v", err)
		}
	}

	mw.planeEntry = widget.NewEntry()
	mw.planeEntry.OnSubmitted = func(text string) {
		mw.submitPlaneEntry(text)
	}

	mw.stackBox = container.NewBorder(nil, nil,
		widget.NewLabel("Plane:"), mw.planeEntry, mw.planeSlider)
	mw.stackBox.Hide()

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpen),
		widget.NewToolbarAction(theme.NavigateBackIcon(), mw.onPreviousFile),
		widget.NewToolbarAction(theme.NavigateNextIcon(), mw.onNextFile),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { mw.canvas.ZoomOut() }),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { mw.canvas.ZoomIn() }),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), func() { mw.canvas.ActualSize() }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { mw.canvas.FitToWindow() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), mw.onContrast),
		widget.NewToolbarAction(theme.ColorChromaticIcon(), mw.onAutoContrast),
	)

	statusArea := container.NewBorder(nil, nil, toolbar, mw.zoomLabel, mw.statusBar)

	viewArea := container.NewStack(
		mw.canvas,
		container.NewCenter(mw.placeholder),
	)

	content := container.NewBorder(
		nil,
		container.NewVBox(mw.stackBox, statusArea),
		nil,
		nil,
		viewArea,
	)
	mw.SetContent(content)

	mw.canvas.OnHover(func(x, y int, ok bool) {
		if !ok {
			mw.statusBar.SetText("")
			return
		}
		mw.statusBar.SetText(fmt.Sprintf("%d, %d: %s", x, y, mw.state.PixelText(x, y)))
	})
	mw.canvas.OnViewChanged(func() {
		mw.updateZoomLabel()
	})

	mw.SetOnDropped(mw.handleDrop)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Next Image", mw.onNextFile),
		fyne.NewMenuItem("Previous Image", mw.onPreviousFile),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Window", func() { mw.Close() }),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	interpParent := fyne.NewMenuItem("Interpolation", nil)
	var items []*fyne.MenuItem
	for _, name := range viewport.InterpNames() {
		mode := viewport.ParseInterp(name)
		item := fyne.NewMenuItem(name, func() {
			mw.state.SetInterp(mode)
		})
		item.Checked = mode == viewport.ParseInterp(
			mw.prefs.String(prefs.KeyInterpolation, "Nearest"))
		items = append(items, item)
	}
	mw.interpItems = items
	interpParent.ChildMenu = fyne.NewMenu("", items...)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.canvas.ZoomIn() }),
		fyne.NewMenuItem("Zoom Out", func() { mw.canvas.ZoomOut() }),
		fyne.NewMenuItem("Fit to Window", func() { mw.canvas.FitToWindow() }),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.ActualSize() }),
		fyne.NewMenuItemSeparator(),
		interpParent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Contrast...", mw.onContrast),
		fyne.NewMenuItem("Image Details...", mw.onImageDetails),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Documentation", mw.onDocumentation),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		mw.placeholder.Hide()
		mw.canvas.ShowImage(mw.state.Displayed())
		mw.updateStackControls()
		mw.updateZoomLabel()

		if path, ok := data.(string); ok {
			mw.SetTitle(titleFor(path))
		}
		if mw.infoDlg != nil {
			mw.infoDlg.Update()
		}
		if mw.contrastDlg != nil {
			mw.contrastDlg.Sync()
		}
	})

	mw.state.On(app.EventPlaneChanged, func(data interface{}) {
		mw.canvas.UpdateImage(mw.state.Displayed())
		mw.seedPlaneWidgets()
		if mw.infoDlg != nil {
			mw.infoDlg.Update()
		}
	})

	mw.state.On(app.EventContrastChanged, func(data interface{}) {
		mw.canvas.UpdateImage(mw.state.Displayed())
	})

	mw.state.On(app.EventInterpChanged, func(data interface{}) {
		mode, ok := data.(viewport.Interp)
		if !ok {
			return
		}
		mw.canvas.SetInterp(mode)
		mw.prefs.SetString(prefs.KeyInterpolation, mode.String())
		for i, item := range mw.interpItems {
			item.Checked = viewport.Interp(i) == mode
		}
		mw.mainMenu.Refresh()
	})
}

// setupInput binds keyboard navigation: left/right for sibling files,
// up/down for stack planes.
func (mw *MainWindow) setupInput() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight:
			mw.onNextFile()
		case fyne.KeyLeft:
			mw.onPreviousFile()
		case fyne.KeyUp:
			mw.stepPlane(1)
		case fyne.KeyDown:
			mw.stepPlane(-1)
		}
	})
}

// LoadFile loads a path into this window. A failure empties the viewer and
// shows a placeholder instead of leaving the previous image on screen.
func (mw *MainWindow) LoadFile(path string) {
	if err := mw.state.Load(path); err != nil {
		log.Printf("Error: unable to open %s: %v", path, err)
		mw.showLoadFailure()
	}
}

// showLoadFailure resets the window to its empty state after a failed load.
func (mw *MainWindow) showLoadFailure() {
	mw.canvas.ShowImage(nil)
	mw.placeholder.SetText("[Unable to open file]")
	mw.placeholder.Show()
	mw.stackBox.Hide()
	mw.SetTitle(fmt.Sprintf("ImQuick %s", version.Version))
	if mw.infoDlg != nil {
		mw.infoDlg.Update()
	}
	if mw.contrastDlg != nil {
		mw.contrastDlg.Sync()
	}
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.OpenFile(path); err != nil {
			log.Printf("Error: unable to open %s: %v", path, err)
			mw.showLoadFailure()
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(decode.SupportedExtensions()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onNextFile() {
	if err := mw.state.NextFile(); err != nil {
		log.Printf("Error: navigation failed: %v", err)
	}
}

func (mw *MainWindow) onPreviousFile() {
	if err := mw.state.PreviousFile(); err != nil {
		log.Printf("Error: navigation failed: %v", err)
	}
}

func (mw *MainWindow) onContrast() {
	if !mw.state.Loaded() {
		return
	}
	if mw.contrastDlg != nil {
		mw.contrastDlg.Raise()
		return
	}
	mw.contrastDlg = dialogs.NewContrast(mw.app, mw.state, func() {
		mw.contrastDlg = nil
	})
}

func (mw *MainWindow) onImageDetails() {
	if !mw.state.Loaded() {
		return
	}
	if mw.infoDlg != nil {
		mw.infoDlg.Raise()
		return
	}
	mw.infoDlg = dialogs.NewInfo(mw.app, mw.state, func() {
		mw.infoDlg = nil
	})
}

func (mw *MainWindow) onAutoContrast() {
	if !mw.state.Loaded() {
		return
	}
	mw.state.AutoContrast()
	if mw.contrastDlg != nil {
		mw.contrastDlg.Sync()
	}
}

func (mw *MainWindow) onDocumentation() {
	u, err := url.Parse(docURL)
	if err != nil {
		return
	}
	if err := mw.app.OpenURL(u); err != nil {
		log.Printf("Warning: unable to open documentation: %v", err)
	}
}

func (mw *MainWindow) onAbout() {
	if mw.aboutDlg != nil {
		mw.aboutDlg.Raise()
		return
	}
	mw.aboutDlg = dialogs.NewAbout(mw.app, func() {
		mw.aboutDlg = nil
	})
}

func (mw *MainWindow) closeDialogs() {
	if mw.infoDlg != nil {
		mw.infoDlg.Close()
	}
	if mw.contrastDlg != nil {
		mw.contrastDlg.Close()
	}
	if mw.aboutDlg != nil {
		mw.aboutDlg.Close()
	}
}

// stepPlane moves one plane up or down, clamped at the stack ends.
func (mw *MainWindow) stepPlane(delta int) {
	if !mw.state.MultiPlane() {
		return
	}
	next := mw.state.ClampPlane(mw.state.Plane() + delta)
	if err := mw.state.SetPlane(next); err != nil {
		log.Printf("Error: plane change failed: %v", err)
	}
}

// submitPlaneEntry applies typed plane input. Out-of-range or non-numeric
// input reverts the entry text instead of clamping.
func (mw *MainWindow) submitPlaneEntry(text string) {
	i, err := strconv.Atoi(text)
	if err != nil {
		mw.seedPlaneWidgets()
		return
	}
	if err := mw.state.SetPlane(i); err != nil {
		mw.seedPlaneWidgets()
	}
}

// updateStackControls shows or hides the plane controls per the loaded
// file's stack depth.
func (mw *MainWindow) updateStackControls() {
	if !mw.state.MultiPlane() {
		mw.stackBox.Hide()
		return
	}
	mw.updatingPlane = true
	mw.planeSlider.Max = float64(mw.state.MaxPlane())
	mw.updatingPlane = false
	mw.seedPlaneWidgets()
	mw.stackBox.Show()
}

// seedPlaneWidgets synchronizes the slider and entry with the session.
func (mw *MainWindow) seedPlaneWidgets() {
	mw.updatingPlane = true
	plane := mw.state.Plane()
	mw.planeSlider.SetValue(float64(plane))
	mw.planeEntry.SetText(strconv.Itoa(plane))
	mw.updatingPlane = false
}

func (mw *MainWindow) updateZoomLabel() {
	mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", mw.canvas.Transform().Zoom*100))
}

// titleFor builds the window title, trimming long paths to their tail.
func titleFor(path string) string {
	if len(path) > maxTitlePath {
		path = "..." + path[len(path)-maxTitlePath:]
	}
	return fmt.Sprintf("ImQuick %s - %s", version.Version, path)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}
