package pixbuf

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 10})
	img.SetGray(2, 1, color.Gray{Y: 200})

	buf := FromImage(img)
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("dimensions %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if buf.Channels != 0 {
		t.Errorf("grayscale should be 2D, got %d channels", buf.Channels)
	}
	if buf.DType != Uint8 {
		t.Errorf("dtype %v, want uint8", buf.DType)
	}
	if buf.Data[0] != 10 || buf.Data[5] != 200 {
		t.Errorf("samples %v", buf.Data)
	}
}

func TestFromImageGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(1, 0, color.Gray16{Y: 5000})

	buf := FromImage(img)
	if buf.DType != Uint16 {
		t.Errorf("dtype %v, want uint16", buf.DType)
	}
	if buf.Channels != 0 {
		t.Errorf("16-bit grayscale should be 2D, got %d channels", buf.Channels)
	}
	if buf.Data[1] != 5000 {
		t.Errorf("sample %v, want 5000", buf.Data[1])
	}
}

func TestFromImageColorDiscardsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 100, G: 110, B: 120, A: 255})

	buf := FromImage(img)
	if buf.Channels != 3 {
		t.Fatalf("channels %d, want 3", buf.Channels)
	}
	if buf.DType != Uint8 {
		t.Errorf("dtype %v, want uint8", buf.DType)
	}
	want := []float64{10, 20, 30, 100, 110, 120}
	for i, v := range want {
		if buf.Data[i] != v {
			t.Errorf("sample %d: got %v, want %v", i, buf.Data[i], v)
		}
	}
}

func TestFromImageNRGBA64(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	img.SetNRGBA64(0, 0, color.NRGBA64{R: 40000, G: 20000, B: 1000, A: 65535})

	buf := FromImage(img)
	if buf.DType != Uint16 {
		t.Errorf("dtype %v, want uint16", buf.DType)
	}
	if buf.Channels != 3 {
		t.Fatalf("channels %d, want 3", buf.Channels)
	}
	if buf.Data[0] != 40000 || buf.Data[1] != 20000 || buf.Data[2] != 1000 {
		t.Errorf("samples %v", buf.Data)
	}
}

func TestAt(t *testing.T) {
	buf := New(2, 2, 3, Uint8)
	for i := range buf.Data {
		buf.Data[i] = float64(i)
	}

	got := buf.At(1, 1)
	if len(got) != 3 || got[0] != 9 || got[1] != 10 || got[2] != 11 {
		t.Errorf("At(1, 1) = %v, want [9 10 11]", got)
	}

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if buf.At(p[0], p[1]) != nil {
			t.Errorf("At(%d, %d) should be nil out of bounds", p[0], p[1])
		}
	}
}

func TestAt2D(t *testing.T) {
	buf := New(3, 2, 0, Uint16)
	buf.Data[4] = 42

	got := buf.At(1, 1)
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("At(1, 1) = %v, want [42]", got)
	}
}

func TestSamplesPerPixel(t *testing.T) {
	if got := New(1, 1, 0, Uint8).SamplesPerPixel(); got != 1 {
		t.Errorf("2D buffer: %d samples per pixel, want 1", got)
	}
	if got := New(1, 1, 3, Uint8).SamplesPerPixel(); got != 3 {
		t.Errorf("RGB buffer: %d samples per pixel, want 3", got)
	}
}

func TestStats(t *testing.T) {
	buf := &Buffer{Data: []float64{1, 2, 3, 4}, Width: 4, Height: 1}

	if got := buf.Min(); got != 1 {
		t.Errorf("Min %v, want 1", got)
	}
	if got := buf.Max(); got != 4 {
		t.Errorf("Max %v, want 4", got)
	}
	if got := buf.Mean(); got != 2.5 {
		t.Errorf("Mean %v, want 2.5", got)
	}
	if got, want := buf.StdDev(), math.Sqrt(5.0/3.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("StdDev %v, want %v", got, want)
	}
}

func TestUniqueCount(t *testing.T) {
	buf := &Buffer{Data: []float64{1, 2, 2, 3, 1, 1}, Width: 6, Height: 1}
	if got := buf.UniqueCount(); got != 3 {
		t.Errorf("UniqueCount = %d, want 3", got)
	}
}

func TestStatsEmpty(t *testing.T) {
	buf := &Buffer{}
	if buf.Min() != 0 || buf.Max() != 0 || buf.Mean() != 0 || buf.StdDev() != 0 {
		t.Error("empty buffer stats should be zero")
	}
}

func TestDTypeStrings(t *testing.T) {
	tests := []struct {
		d       DType
		s       string
		integer bool
	}{
		{Uint8, "uint8", true},
		{Uint16, "uint16", true},
		{Int16, "int16", true},
		{Int32, "int32", true},
		{Float32, "float32", false},
		{Float64, "float64", false},
	}
	for _, tt := range tests {
		if tt.d.String() != tt.s {
			t.Errorf("String() = %q, want %q", tt.d.String(), tt.s)
		}
		if tt.d.Integer() != tt.integer {
			t.Errorf("%s Integer() = %v", tt.s, tt.d.Integer())
		}
	}
}
