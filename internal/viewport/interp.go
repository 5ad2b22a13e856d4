package viewport

import (
	"math"

	"golang.org/x/image/draw"
)

// Interp selects the resampling kernel used when scaling image tiles.
type Interp int

const (
	Nearest Interp = iota
	Bilinear
	Bicubic
	Lanczos
)

func (i Interp) String() string {
	switch i {
	case Bilinear:
		return "Bilinear"
	case Bicubic:
		return "Bicubic"
	case Lanczos:
		return "Lanczos"
	default:
		return "Nearest"
	}
}

// ParseInterp maps a mode name back to an Interp. Unknown names fall back
// to nearest-neighbour, the default display mode.
func ParseInterp(name string) Interp {
	switch name {
	case "Bilinear":
		return Bilinear
	case "Bicubic":
		return Bicubic
	case "Lanczos":
		return Lanczos
	}
	return Nearest
}

// InterpNames lists the selectable modes in menu order.
func InterpNames() []string {
	return []string{"Nearest", "Bilinear", "Bicubic", "Lanczos"}
}

// lanczosKernel is a Lanczos-windowed sinc with a=3.
var lanczosKernel = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		return lanczos(t, 3)
	},
}

func lanczos(x, a float64) float64 {
	if x == 0 {
		return 1
	}
	if x <= -a || x >= a {
		return 0
	}
	px := math.Pi * x
	return a * math.Sin(px) * math.Sin(px/a) / (px * px)
}

// Scaler returns the draw scaler implementing this mode.
func (i Interp) Scaler() draw.Scaler {
	switch i {
	case Bilinear:
		return draw.BiLinear
	case Bicubic:
		return draw.CatmullRom
	case Lanczos:
		return lanczosKernel
	}
	return draw.NearestNeighbor
}
