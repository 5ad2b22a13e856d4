// Package canvas provides the image viewport widget with pan and zoom.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/draw"

	"imquick/internal/viewport"
	"imquick/pkg/geometry"
)

// ImageCanvas displays the visible tile of the loaded image and turns
// mouse gestures into viewport changes. Drag pans, the wheel zooms about
// the cursor, and hover reports the image pixel under it.
type ImageCanvas struct {
	widget.BaseWidget

	transform *viewport.Transform
	raster    *fynecanvas.Raster
	interp    viewport.Interp

	img *image.NRGBA

	fitToWindow bool
	lastSize    fyne.Size

	// pendingShow defers the first-show policy until the widget has a
	// real size, for images loaded before the initial layout.
	pendingShow bool

	// Callbacks
	onHover func(x, y int, ok bool)
	onView  func()
}

var _ fyne.Draggable = (*ImageCanvas)(nil)
var _ fyne.Scrollable = (*ImageCanvas)(nil)
var _ desktop.Hoverable = (*ImageCanvas)(nil)

// NewImageCanvas creates an empty image canvas.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		transform: viewport.NewTransform(),
	}

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels

	ic.ExtendBaseWidget(ic)
	return ic
}

// Transform returns the viewport transform.
func (ic *ImageCanvas) Transform() *viewport.Transform {
	return ic.transform
}

// ShowImage displays a newly loaded image: the viewport resets, fitting
// the image when it overflows the container.
func (ic *ImageCanvas) ShowImage(img *image.NRGBA) {
	ic.img = img
	ic.fitToWindow = false
	if img == nil {
		ic.pendingShow = false
		ic.Refresh()
		return
	}
	b := img.Bounds()
	ic.transform.SetImage(b.Dx(), b.Dy())

	size := ic.Size()
	if size.Width <= 0 || size.Height <= 0 {
		ic.pendingShow = true
		ic.Refresh()
		return
	}
	ic.transform.FirstShow(float64(size.Width), float64(size.Height))
	ic.pendingShow = false
	ic.Refresh()
}

// UpdateImage replaces the displayed pixels without touching pan or zoom,
// for plane and contrast changes.
func (ic *ImageCanvas) UpdateImage(img *image.NRGBA) {
	ic.img = img
	if img != nil {
		b := img.Bounds()
		ic.transform.SetImage(b.Dx(), b.Dy())
	}
	ic.Refresh()
}

// SetInterp switches the resampling mode.
func (ic *ImageCanvas) SetInterp(mode viewport.Interp) {
	ic.interp = mode
	ic.Refresh()
}

// OnHover registers the pixel readout callback. ok is false when the
// cursor leaves the image.
func (ic *ImageCanvas) OnHover(callback func(x, y int, ok bool)) {
	ic.onHover = callback
}

// OnViewChanged registers a callback fired after every pan or zoom.
func (ic *ImageCanvas) OnViewChanged(callback func()) {
	ic.onView = callback
}

// ZoomIn applies one zoom step about the viewport center.
func (ic *ImageCanvas) ZoomIn() {
	size := ic.Size()
	ic.zoomIn(float64(size.Width)/2, float64(size.Height)/2)
}

// ZoomOut applies one zoom-out step about the viewport center.
func (ic *ImageCanvas) ZoomOut() {
	size := ic.Size()
	ic.zoomOut(float64(size.Width)/2, float64(size.Height)/2)
}

func (ic *ImageCanvas) zoomIn(ax, ay float64) {
	size := ic.Size()
	if ic.transform.ZoomIn(ax, ay, float64(size.Width), float64(size.Height)) {
		ic.fitToWindow = false
		ic.viewChanged()
	}
}

func (ic *ImageCanvas) zoomOut(ax, ay float64) {
	if ic.transform.ZoomOut(ax, ay) {
		ic.fitToWindow = false
		ic.viewChanged()
	}
}

// FitToWindow scales the image to the container and keeps refitting on
// resize until the user zooms or resets.
func (ic *ImageCanvas) FitToWindow() {
	size := ic.Size()
	ic.transform.FitToWindow(float64(size.Width), float64(size.Height))
	ic.fitToWindow = true
	ic.viewChanged()
}

// ActualSize restores 1:1 zoom, centered.
func (ic *ImageCanvas) ActualSize() {
	size := ic.Size()
	ic.transform.ResetActualSize(float64(size.Width), float64(size.Height))
	ic.fitToWindow = false
	ic.viewChanged()
}

// Fit reports whether fit-to-window mode is engaged.
func (ic *ImageCanvas) Fit() bool {
	return ic.fitToWindow
}

func (ic *ImageCanvas) viewChanged() {
	ic.Refresh()
	if ic.onView != nil {
		ic.onView()
	}
}

// Dragged pans the image with the pointer.
func (ic *ImageCanvas) Dragged(ev *fyne.DragEvent) {
	ic.transform.PanBy(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
	ic.viewChanged()
}

// DragEnd implements fyne.Draggable.
func (ic *ImageCanvas) DragEnd() {}

// Scrolled zooms about the cursor position.
func (ic *ImageCanvas) Scrolled(ev *fyne.ScrollEvent) {
	ax := float64(ev.Position.X)
	ay := float64(ev.Position.Y)
	if ev.Scrolled.DY > 0 {
		ic.zoomIn(ax, ay)
	} else if ev.Scrolled.DY < 0 {
		ic.zoomOut(ax, ay)
	}
}

// MouseIn implements desktop.Hoverable.
func (ic *ImageCanvas) MouseIn(ev *desktop.MouseEvent) {
	ic.MouseMoved(ev)
}

// MouseMoved reports the image pixel under the cursor.
func (ic *ImageCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if ic.onHover == nil {
		return
	}
	x, y, ok := ic.transform.ScreenToImage(float64(ev.Position.X), float64(ev.Position.Y))
	ic.onHover(x, y, ok)
}

// MouseOut clears the pixel readout.
func (ic *ImageCanvas) MouseOut() {
	if ic.onHover != nil {
		ic.onHover(0, 0, false)
	}
}

// Refresh redraws the visible tile.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

// Resize applies a deferred first show on the initial layout and refits
// the image when fit-to-window mode is engaged.
func (ic *ImageCanvas) Resize(size fyne.Size) {
	ic.BaseWidget.Resize(size)
	if size == ic.lastSize || size.Width <= 0 || size.Height <= 0 {
		return
	}
	ic.lastSize = size
	if ic.pendingShow && ic.img != nil {
		ic.transform.FirstShow(float64(size.Width), float64(size.Height))
		ic.pendingShow = false
	} else if ic.fitToWindow {
		ic.transform.FitToWindow(float64(size.Width), float64(size.Height))
	}
	ic.raster.Refresh()
	if ic.onView != nil {
		ic.onView()
	}
}

// draw is the raster drawing function. The raster covers exactly the
// visible viewport, so the visible rectangle is the raster's own bounds.
// The raster draws in device pixels while gestures feed the transform in
// logical units, so the transform is mapped through the canvas scale.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewNRGBA(image.Rect(0, 0, w, h))
	if ic.img == nil || w == 0 || h == 0 {
		return output
	}

	t := deviceTransform(ic.transform, ic.canvasScale())
	visible := geometry.NewRect(0, 0, float64(w), float64(h))
	tile, ok := viewport.RenderTile(ic.img, &t, visible, ic.interp)
	if !ok {
		return output
	}

	draw.Copy(output,
		image.Pt(int(tile.Origin.X), int(tile.Origin.Y)),
		tile.Image, tile.Image.Bounds(), draw.Src, nil)
	return output
}

// deviceTransform maps a logical-unit transform into device pixels.
func deviceTransform(t *viewport.Transform, scale float64) viewport.Transform {
	d := *t
	if scale == 1 {
		return d
	}
	d.Zoom *= scale
	d.BBox = geometry.Rect{
		X:      d.BBox.X * scale,
		Y:      d.BBox.Y * scale,
		Width:  d.BBox.Width * scale,
		Height: d.BBox.Height * scale,
	}
	return d
}

// canvasScale returns the device pixel scale of the hosting canvas.
func (ic *ImageCanvas) canvasScale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(ic); c != nil && c.Scale() > 0 {
		return float64(c.Scale())
	}
	return 1
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.raster)
}
