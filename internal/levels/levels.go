// Package levels provides display normalization and window/level mapping.
package levels

import (
	"image"
	"math"

	"imquick/internal/pixbuf"
)

// Normalize rescales raw samples into 8-bit display range. The divisor is
// chosen from the data maximum so that common bit depths (8, 10, 12, 16)
// land on a sensible range without a full histogram stretch.
func Normalize(buf *pixbuf.Buffer) []uint8 {
	out := make([]uint8, len(buf.Data))
	if len(buf.Data) == 0 {
		return out
	}

	m := buf.Max()
	switch {
	case m >= 4096:
		scale(out, buf.Data, 1.0/265.0)
	case m >= 1024:
		scale(out, buf.Data, 1.0/16.0)
	case m >= 256:
		scale(out, buf.Data, 1.0/4.0)
	case m <= 1:
		scale(out, buf.Data, 256)
	default:
		scale(out, buf.Data, 1)
	}
	return out
}

// scale converts samples with a truncating 8-bit cast: fractions drop
// toward zero and the result wraps modulo 256, so 256 maps to 0 and
// negative values wrap to the high end.
func scale(dst []uint8, src []float64, factor float64) {
	for i, v := range src {
		v = math.Trunc(v * factor)
		v = math.Mod(v, 256)
		if v < 0 {
			v += 256
		}
		dst[i] = uint8(v)
	}
}

// Pair holds one min/max display window.
type Pair struct {
	Min int
	Max int
}

// Window holds the display window state for an image: one global pair
// plus one pair per channel for multi-channel data.
type Window struct {
	Global     Pair
	Channels   []Pair
	PerChannel bool
}

// NewWindow creates a window covering the full display range.
func NewWindow(channels int) *Window {
	w := &Window{Global: Pair{0, 255}}
	w.Channels = make([]Pair, channels)
	for i := range w.Channels {
		w.Channels[i] = Pair{0, 255}
	}
	return w
}

// Pair returns the window pair for the given channel index.
// Index -1 selects the global pair.
func (w *Window) Pair(ch int) *Pair {
	if ch < 0 || ch >= len(w.Channels) {
		return &w.Global
	}
	return &w.Channels[ch]
}

// SetMin sets the lower bound of the given channel's window. The bound is
// capped at 254 and the upper bound is pushed up if the two would cross.
func (w *Window) SetMin(ch, v int) {
	p := w.Pair(ch)
	if v > 254 {
		v = 254
	}
	if v < 0 {
		v = 0
	}
	p.Min = v
	if p.Max <= p.Min {
		p.Max = p.Min + 1
	}
}

// SetMax sets the upper bound of the given channel's window. The bound is
// floored at 1 and the lower bound is pushed down if the two would cross.
func (w *Window) SetMax(ch, v int) {
	p := w.Pair(ch)
	if v < 1 {
		v = 1
	}
	if v > 255 {
		v = 255
	}
	p.Max = v
	if p.Min >= p.Max {
		p.Min = p.Max - 1
	}
}

// Reset restores the full display range on every pair.
func (w *Window) Reset() {
	w.Global = Pair{0, 255}
	for i := range w.Channels {
		w.Channels[i] = Pair{0, 255}
	}
	w.PerChannel = false
}

// Auto fits the given channel's window to the observed value range.
// Channel -1 fits the global pair against all samples.
func (w *Window) Auto(norm []uint8, channels, ch int) {
	if len(norm) == 0 {
		return
	}
	lo, hi := 255, 0
	for i, v := range norm {
		if ch >= 0 && channels > 0 && i%channels != ch {
			continue
		}
		if int(v) < lo {
			lo = int(v)
		}
		if int(v) > hi {
			hi = int(v)
		}
	}
	if lo > hi {
		return
	}
	w.SetMax(ch, hi)
	w.SetMin(ch, lo)
}

// Apply maps normalized samples through the window. Values below the lower
// bound clamp to it, the remaining span rescales to the full 8-bit range.
func Apply(norm []uint8, channels int, w *Window) []uint8 {
	out := make([]uint8, len(norm))
	if w.PerChannel && channels > 0 {
		for i, v := range norm {
			out[i] = applyPair(v, &w.Channels[i%channels])
		}
		return out
	}
	for i, v := range norm {
		out[i] = applyPair(v, &w.Global)
	}
	return out
}

func applyPair(v uint8, p *Pair) uint8 {
	fv := float64(v)
	lo, hi := float64(p.Min), float64(p.Max)
	if fv < lo {
		fv = lo
	}
	x := (fv - lo) / (hi - lo)
	if x > 1 {
		x = 1
	}
	return uint8(x * 255)
}

// ToNRGBA builds a displayable image from windowed samples. Single-channel
// data is replicated across RGB.
func ToNRGBA(data []uint8, width, height, channels int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if channels >= 3 {
		si := 0
		for y := 0; y < height; y++ {
			di := y * img.Stride
			for x := 0; x < width; x++ {
				img.Pix[di] = data[si]
				img.Pix[di+1] = data[si+1]
				img.Pix[di+2] = data[si+2]
				img.Pix[di+3] = 255
				di += 4
				si += channels
			}
		}
		return img
	}

	spp := channels
	if spp < 1 {
		spp = 1
	}
	si := 0
	for y := 0; y < height; y++ {
		di := y * img.Stride
		for x := 0; x < width; x++ {
			v := data[si]
			img.Pix[di] = v
			img.Pix[di+1] = v
			img.Pix[di+2] = v
			img.Pix[di+3] = 255
			di += 4
			si += spp
		}
	}
	return img
}
