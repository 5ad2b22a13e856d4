// Package decode loads image files into pixel buffers, selecting a backend
// per format. Multi-plane sources (TIFF stacks, animated GIFs, array
// archives) decode into one buffer per plane.
package decode

import (
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	chaitiff "github.com/chai2010/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"imquick/internal/pixbuf"
)

// Reader holds the decoded planes of one file.
type Reader struct {
	Path   string
	Meta   Meta
	planes []*pixbuf.Buffer
}

// Meta carries format metadata gathered before full decode.
type Meta struct {
	Pages       int
	Compression uint16
	DPI         float64
}

// PlaneCount returns the number of decoded planes.
func (r *Reader) PlaneCount() int {
	return len(r.planes)
}

// Plane returns the buffer for the given plane index.
func (r *Reader) Plane(i int) (*pixbuf.Buffer, error) {
	if i < 0 || i >= len(r.planes) {
		return nil, fmt.Errorf("plane %d out of range (0-%d)", i, len(r.planes)-1)
	}
	return r.planes[i], nil
}

// SupportedExtensions returns the loadable file extensions.
func SupportedExtensions() []string {
	return []string{".tif", ".tiff", ".gif", ".png", ".jpeg", ".jpg", ".bmp", ".npz", ".itk"}
}

// IsSupported checks if the given path has a supported image format.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedExtensions() {
		if ext == format {
			return true
		}
	}
	return false
}

// Open decodes the file at path into one or more planes.
func Open(path string) (*Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return openTIFF(path)
	case ".gif":
		return openGIF(path)
	case ".npz":
		return openNPZ(path)
	default:
		return openGeneric(path)
	}
}

// openGeneric decodes single-plane formats through the registered decoders.
func openGeneric(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Reader{
		Path:   path,
		Meta:   Meta{Pages: 1},
		planes: []*pixbuf.Buffer{pixbuf.FromImage(img)},
	}, nil
}

// openTIFF inspects the IFD chain first. Multi-page or compressed files go
// through the full TIFF backend; plain single-page files use the standard
// decoder.
func openTIFF(path string) (*Reader, error) {
	meta, err := readTIFFMeta(path)
	if err != nil {
		return openGeneric(path)
	}

	if meta.Pages <= 1 && meta.Compression <= compressionNone {
		r, err := openGeneric(path)
		if err != nil {
			return nil, err
		}
		r.Meta = meta
		return r, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	pages, _, err := chaitiff.DecodeAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var planes []*pixbuf.Buffer
	for _, subs := range pages {
		if len(subs) == 0 || subs[0] == nil {
			continue
		}
		planes = append(planes, pixbuf.FromImage(subs[0]))
	}
	if len(planes) == 0 {
		return nil, fmt.Errorf("no decodable pages in %s", filepath.Base(path))
	}

	return &Reader{Path: path, Meta: meta, planes: planes}, nil
}

// openGIF decodes every frame as a plane, compositing partial frames onto
// the previous one.
func openGIF(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	g, err := gif.DecodeAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("no frames in %s", filepath.Base(path))
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	screen := image.NewNRGBA(image.Rect(0, 0, w, h))
	planes := make([]*pixbuf.Buffer, 0, len(g.Image))
	for _, frame := range g.Image {
		b := frame.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				screen.Set(x, y, frame.At(x, y))
			}
		}
		planes = append(planes, pixbuf.FromImage(screen))
	}

	return &Reader{
		Path:   path,
		Meta:   Meta{Pages: len(planes)},
		planes: planes,
	}, nil
}
