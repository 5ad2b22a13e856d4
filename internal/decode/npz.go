package decode

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/maruel/natural"
	"github.com/sbinet/npyio"

	"imquick/internal/pixbuf"
)

// openNPZ reads a NumPy .npz archive. Each contained array contributes one
// or more planes depending on its shape.
func openNPZ(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	var names []string
	entries := make(map[string]*zip.File)
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".npy") {
			entries[f.Name] = f
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no arrays in %s", filepath.Base(path))
	}
	sort.Slice(names, func(i, j int) bool {
		return natural.Less(names[i], names[j])
	})

	var planes []*pixbuf.Buffer
	for _, name := range names {
		bufs, err := readNPYEntry(entries[name])
		if err != nil {
			return nil, fmt.Errorf("array %s: %w", name, err)
		}
		planes = append(planes, bufs...)
	}

	return &Reader{
		Path:   path,
		Meta:   Meta{Pages: len(planes)},
		planes: planes,
	}, nil
}

// readNPYEntry decodes one .npy member into plane buffers. 2D arrays and
// small trailing dimensions (<= 4 channels) yield a single plane; a larger
// leading dimension is treated as a stack.
func readNPYEntry(f *zip.File) ([]*pixbuf.Buffer, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, err
	}

	shape := r.Header.Descr.Shape
	data, dtype, err := readSamples(r)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, d := range shape {
		total *= d
	}
	if total != len(data) {
		return nil, fmt.Errorf("shape %v does not match %d samples", shape, len(data))
	}

	switch len(shape) {
	case 2:
		buf := &pixbuf.Buffer{Data: data, Width: shape[1], Height: shape[0], DType: dtype}
		return []*pixbuf.Buffer{buf}, nil
	case 3:
		if shape[2] <= 4 {
			buf := &pixbuf.Buffer{Data: data, Width: shape[1], Height: shape[0], Channels: shape[2], DType: dtype}
			return []*pixbuf.Buffer{buf}, nil
		}
		return splitPlanes(data, shape[0], shape[1], shape[2], 0, dtype), nil
	case 4:
		return splitPlanes(data, shape[0], shape[1], shape[2], shape[3], dtype), nil
	default:
		return nil, fmt.Errorf("unsupported array shape %v", shape)
	}
}

// splitPlanes slices a stacked array along its leading dimension.
func splitPlanes(data []float64, n, h, w, c int, dtype pixbuf.DType) []*pixbuf.Buffer {
	stride := h * w
	if c > 0 {
		stride *= c
	}
	planes := make([]*pixbuf.Buffer, 0, n)
	for i := 0; i < n; i++ {
		planes = append(planes, &pixbuf.Buffer{
			Data:     data[i*stride : (i+1)*stride],
			Width:    w,
			Height:   h,
			Channels: c,
			DType:    dtype,
		})
	}
	return planes
}

// readSamples reads the array body at its native dtype and widens to
// float64 samples.
func readSamples(r *npyio.Reader) ([]float64, pixbuf.DType, error) {
	descr := r.Header.Descr.Type
	kind := strings.TrimLeft(descr, "<>|=")

	switch kind {
	case "u1":
		var raw []uint8
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Uint8, nil
	case "u2":
		var raw []uint16
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Uint16, nil
	case "i1":
		var raw []int8
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Int16, nil
	case "i2":
		var raw []int16
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Int16, nil
	case "i4":
		var raw []int32
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Int32, nil
	case "u4":
		var raw []uint32
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Int32, nil
	case "i8":
		var raw []int64
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Int32, nil
	case "f4":
		var raw []float32
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return widen(raw), pixbuf.Float32, nil
	case "f8":
		var raw []float64
		if err := r.Read(&raw); err != nil {
			return nil, 0, err
		}
		return raw, pixbuf.Float64, nil
	default:
		return nil, 0, fmt.Errorf("unsupported dtype %q", descr)
	}
}

func widen[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | float32](raw []T) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}
