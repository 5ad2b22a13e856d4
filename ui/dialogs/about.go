package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"imquick/internal/version"
)

// About shows version and build information.
type About struct {
	win fyne.Window
}

// NewAbout creates and shows the about window.
func NewAbout(a fyne.App, onClose func()) *About {
	d := &About{win: a.NewWindow("About ImQuick")}

	title := widget.NewLabelWithStyle("ImQuick", fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true})
	blurb := widget.NewLabelWithStyle(
		"A quick viewer for scientific images.",
		fyne.TextAlignCenter, fyne.TextStyle{})
	build := widget.NewLabelWithStyle(
		fmt.Sprintf("Version %s\nBuilt: %s\nCommit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		fyne.TextAlignCenter, fyne.TextStyle{})

	d.win.SetContent(container.NewPadded(container.NewVBox(title, blurb, build)))
	d.win.SetOnClosed(onClose)
	d.win.Show()
	return d
}

// Raise brings the window to the front.
func (d *About) Raise() {
	d.win.RequestFocus()
}

// Close dismisses the window.
func (d *About) Close() {
	d.win.Close()
}
