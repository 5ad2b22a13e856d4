// Package pixbuf provides the in-memory pixel buffer for a single image plane.
package pixbuf

import (
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DType identifies the sample type of the source data.
type DType int

const (
	Uint8 DType = iota
	Uint16
	Int16
	Int32
	Float32
	Float64
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	default:
		return "float64"
	}
}

// Integer reports whether the sample type is an integer type.
func (d DType) Integer() bool {
	switch d {
	case Float32, Float64:
		return false
	}
	return true
}

// Buffer holds the decoded samples of one image plane.
// Samples are stored row-major, interleaved by channel.
// Channels is 0 for single-channel (2D) data.
type Buffer struct {
	Data     []float64
	Width    int
	Height   int
	Channels int
	DType    DType
}

// New creates an empty buffer of the given shape.
func New(width, height, channels int, dtype DType) *Buffer {
	n := width * height
	if channels > 0 {
		n *= channels
	}
	return &Buffer{
		Data:     make([]float64, n),
		Width:    width,
		Height:   height,
		Channels: channels,
		DType:    dtype,
	}
}

// FromImage converts a decoded image into a buffer. Grayscale images
// become single-channel data; everything else becomes three-channel RGB
// with any alpha discarded.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		buf := New(w, h, 0, Uint8)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				buf.Data[y*w+x] = float64(row[x])
			}
		}
		return buf
	case *image.Gray16:
		buf := New(w, h, 0, Uint16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf.Data[y*w+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return buf
	case *image.RGBA64:
		return rgb16(img, w, h, bounds)
	case *image.NRGBA64:
		return rgb16(img, w, h, bounds)
	}

	buf := New(w, h, 3, Uint8)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf.Data[i] = float64(r >> 8)
			buf.Data[i+1] = float64(g >> 8)
			buf.Data[i+2] = float64(b >> 8)
			i += 3
		}
	}
	return buf
}

func rgb16(img image.Image, w, h int, bounds image.Rectangle) *Buffer {
	buf := New(w, h, 3, Uint16)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf.Data[i] = float64(r)
			buf.Data[i+1] = float64(g)
			buf.Data[i+2] = float64(b)
			i += 3
		}
	}
	return buf
}

// SamplesPerPixel returns the number of samples per pixel (1 for 2D data).
func (b *Buffer) SamplesPerPixel() int {
	if b.Channels > 0 {
		return b.Channels
	}
	return 1
}

// At returns the samples of the pixel at (x, y), or nil if out of bounds.
func (b *Buffer) At(x, y int) []float64 {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return nil
	}
	spp := b.SamplesPerPixel()
	i := (y*b.Width + x) * spp
	return b.Data[i : i+spp]
}

// Min returns the smallest sample value.
func (b *Buffer) Min() float64 {
	if len(b.Data) == 0 {
		return 0
	}
	return floats.Min(b.Data)
}

// Max returns the largest sample value.
func (b *Buffer) Max() float64 {
	if len(b.Data) == 0 {
		return 0
	}
	return floats.Max(b.Data)
}

// Mean returns the mean sample value.
func (b *Buffer) Mean() float64 {
	if len(b.Data) == 0 {
		return 0
	}
	return stat.Mean(b.Data, nil)
}

// UniqueCount returns the number of distinct sample values.
func (b *Buffer) UniqueCount() int {
	seen := make(map[float64]struct{})
	for _, v := range b.Data {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// StdDev returns the sample standard deviation.
func (b *Buffer) StdDev() float64 {
	if len(b.Data) < 2 {
		return 0
	}
	return stat.StdDev(b.Data, nil)
}
