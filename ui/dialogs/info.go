// Package dialogs provides the subordinate application windows: image
// info, contrast controls, and about. Each kind is created at most once
// per session; re-invoking an open dialog focuses it instead.
package dialogs

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"imquick/internal/app"
)

// Info shows the metadata and sample statistics of the loaded file.
type Info struct {
	win   fyne.Window
	state *app.State

	name       *widget.Label
	directory  *widget.Label
	dimensions *widget.Label
	planes     *widget.Label
	dtype      *widget.Label
	minMax     *widget.Label
	meanStd    *widget.Label
	unique     *widget.Label
	resolution *widget.Label
}

// NewInfo creates and shows the info window. onClose is invoked when the
// user dismisses it, letting the owner drop its handle.
func NewInfo(a fyne.App, state *app.State, onClose func()) *Info {
	d := &Info{
		win:        a.NewWindow("Image Details"),
		state:      state,
		name:       widget.NewLabel(""),
		directory:  widget.NewLabel(""),
		dimensions: widget.NewLabel(""),
		planes:     widget.NewLabel(""),
		dtype:      widget.NewLabel(""),
		minMax:     widget.NewLabel(""),
		meanStd:    widget.NewLabel(""),
		unique:     widget.NewLabel(""),
		resolution: widget.NewLabel(""),
	}

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("File:"), d.name,
		widget.NewLabel("Directory:"), d.directory,
		widget.NewLabel("Dimensions:"), d.dimensions,
		widget.NewLabel("Planes:"), d.planes,
		widget.NewLabel("Data type:"), d.dtype,
		widget.NewLabel("Value range:"), d.minMax,
		widget.NewLabel("Mean / stddev:"), d.meanStd,
		widget.NewLabel("Unique values:"), d.unique,
		widget.NewLabel("Resolution:"), d.resolution,
	)

	d.Update()
	d.win.SetContent(container.NewPadded(form))
	d.win.SetOnClosed(onClose)
	d.win.Show()
	return d
}

// Raise brings the window to the front.
func (d *Info) Raise() {
	d.win.RequestFocus()
}

// Close dismisses the window.
func (d *Info) Close() {
	d.win.Close()
}

// Update re-reads the session after a file or plane change.
func (d *Info) Update() {
	buf := d.state.Buffer()
	if buf == nil {
		d.name.SetText("(no image)")
		return
	}

	d.name.SetText(filepath.Base(d.state.Path))
	d.directory.SetText(filepath.Dir(d.state.Path))

	if buf.Channels > 0 {
		d.dimensions.SetText(fmt.Sprintf("%d x %d x %d", buf.Width, buf.Height, buf.Channels))
	} else {
		d.dimensions.SetText(fmt.Sprintf("%d x %d", buf.Width, buf.Height))
	}
	d.planes.SetText(fmt.Sprintf("%d", d.state.MaxPlane()+1))
	d.dtype.SetText(buf.DType.String())
	d.minMax.SetText(fmt.Sprintf("%g - %g", buf.Min(), buf.Max()))
	d.meanStd.SetText(fmt.Sprintf("%.2f / %.2f", buf.Mean(), buf.StdDev()))
	d.unique.SetText(fmt.Sprintf("%d", buf.UniqueCount()))

	if dpi := d.state.Meta().DPI; dpi > 0 {
		d.resolution.SetText(fmt.Sprintf("%.0f dpi", dpi))
	} else {
		d.resolution.SetText("unknown")
	}
}
