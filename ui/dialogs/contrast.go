package dialogs

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"imquick/internal/app"
)

// Contrast is the window/level control panel. It edits either the global
// pair or one channel's pair, selected from the dropdown.
type Contrast struct {
	win   fyne.Window
	state *app.State

	channel  *widget.Select
	minSlide *widget.Slider
	maxSlide *widget.Slider
	minLabel *widget.Label
	maxLabel *widget.Label

	// updating suppresses slider callbacks while the panel reseeds itself.
	updating bool
}

// NewContrast creates and shows the contrast window.
func NewContrast(a fyne.App, state *app.State, onClose func()) *Contrast {
	d := &Contrast{
		win:      a.NewWindow("Display Contrast"),
		state:    state,
		minLabel: widget.NewLabel("0"),
		maxLabel: widget.NewLabel("255"),
	}

	d.channel = widget.NewSelect(channelOptions(state), func(string) {
		if d.updating {
			return
		}
		d.state.SelectChannel(d.channel.SelectedIndex() - 1)
		d.seed()
	})

	d.minSlide = widget.NewSlider(0, 255)
	d.minSlide.Step = 1
	d.minSlide.OnChanged = func(v float64) {
		if d.updating {
			return
		}
		d.state.SetWindowMin(int(v))
		d.seed()
	}

	d.maxSlide = widget.NewSlider(0, 255)
	d.maxSlide.Step = 1
	d.maxSlide.OnChanged = func(v float64) {
		if d.updating {
			return
		}
		d.state.SetWindowMax(int(v))
		d.seed()
	}

	autoBtn := widget.NewButton("Auto", func() {
		d.state.AutoContrast()
		d.seed()
	})
	resetBtn := widget.NewButton("Reset", func() {
		d.state.ResetContrast()
		d.Sync()
	})

	content := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Channel:"), nil, d.channel),
		container.NewBorder(nil, nil, widget.NewLabel("Min:"), d.minLabel, d.minSlide),
		container.NewBorder(nil, nil, widget.NewLabel("Max:"), d.maxLabel, d.maxSlide),
		container.NewHBox(autoBtn, resetBtn),
	)

	d.Sync()
	d.win.SetContent(container.NewPadded(content))
	d.win.Resize(fyne.NewSize(340, 0))
	d.win.SetOnClosed(onClose)
	d.win.Show()
	return d
}

// Raise brings the window to the front.
func (d *Contrast) Raise() {
	d.win.RequestFocus()
}

// Close dismisses the window.
func (d *Contrast) Close() {
	d.win.Close()
}

// Sync rebuilds the channel list and reseeds the sliders after a file
// load or a reset.
func (d *Contrast) Sync() {
	d.updating = true
	d.channel.Options = channelOptions(d.state)
	d.channel.SetSelectedIndex(d.state.SelectedChannel() + 1)
	d.updating = false
	d.seed()
}

// seed copies the active window pair into the sliders without recursing
// through their callbacks.
func (d *Contrast) seed() {
	d.updating = true
	p := d.state.Window.Pair(d.state.SelectedChannel())
	d.minSlide.SetValue(float64(p.Min))
	d.maxSlide.SetValue(float64(p.Max))
	d.minLabel.SetText(fmt.Sprintf("%d", p.Min))
	d.maxLabel.SetText(fmt.Sprintf("%d", p.Max))
	d.updating = false
}

func channelOptions(state *app.State) []string {
	opts := []string{"All"}
	if buf := state.Buffer(); buf != nil {
		for i := 0; i < buf.Channels; i++ {
			opts = append(opts, fmt.Sprintf("Channel %d", i+1))
		}
	}
	return opts
}
