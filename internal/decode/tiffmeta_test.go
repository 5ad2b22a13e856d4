package decode

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeLETIFF builds a minimal little-endian TIFF with two IFDs. The first
// page carries a compression tag and an X resolution rational.
func writeLETIFF(t *testing.T) string {
	t.Helper()
	var b bytes.Buffer
	le := binary.LittleEndian

	// Header: byte order, magic, first IFD offset.
	b.WriteString("II")
	binary.Write(&b, le, uint16(42))
	binary.Write(&b, le, uint32(8))

	// First IFD at offset 8: two entries.
	binary.Write(&b, le, uint16(2))
	// Compression = 5 (LZW), SHORT stored inline.
	binary.Write(&b, le, uint16(259))
	binary.Write(&b, le, uint16(3))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint16(5))
	binary.Write(&b, le, uint16(0))
	// XResolution, RATIONAL at offset 38.
	binary.Write(&b, le, uint16(282))
	binary.Write(&b, le, uint16(5))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint32(38))
	// Next IFD at offset 46.
	binary.Write(&b, le, uint32(46))

	// Rational value 300/1 at offset 38.
	binary.Write(&b, le, uint32(300))
	binary.Write(&b, le, uint32(1))

	// Second IFD at offset 46: no entries, end of chain.
	binary.Write(&b, le, uint16(0))
	binary.Write(&b, le, uint32(0))

	path := filepath.Join(t.TempDir(), "two-page.tif")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTIFFMetaLittleEndian(t *testing.T) {
	meta, err := readTIFFMeta(writeLETIFF(t))
	if err != nil {
		t.Fatal(err)
	}
	if meta.Pages != 2 {
		t.Errorf("pages %d, want 2", meta.Pages)
	}
	if meta.Compression != 5 {
		t.Errorf("compression %d, want 5", meta.Compression)
	}
	if meta.DPI != 300 {
		t.Errorf("dpi %v, want 300", meta.DPI)
	}
}

func TestReadTIFFMetaBigEndian(t *testing.T) {
	var b bytes.Buffer
	be := binary.BigEndian

	b.WriteString("MM")
	binary.Write(&b, be, uint16(42))
	binary.Write(&b, be, uint32(8))

	// Single IFD: uncompressed.
	binary.Write(&b, be, uint16(1))
	binary.Write(&b, be, uint16(259))
	binary.Write(&b, be, uint16(3))
	binary.Write(&b, be, uint32(1))
	binary.Write(&b, be, uint16(1))
	binary.Write(&b, be, uint16(0))
	binary.Write(&b, be, uint32(0))

	path := filepath.Join(t.TempDir(), "one-page.tif")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := readTIFFMeta(path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Pages != 1 {
		t.Errorf("pages %d, want 1", meta.Pages)
	}
	if meta.Compression != compressionNone {
		t.Errorf("compression %d, want %d", meta.Compression, compressionNone)
	}
}

func TestReadTIFFMetaInvalidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.tif")
	if err := os.WriteFile(path, []byte("PK\x03\x04 not a tiff"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readTIFFMeta(path); err == nil {
		t.Error("expected an error for a non-TIFF file")
	}
}

func TestReadTIFFMetaCentimeterResolution(t *testing.T) {
	var b bytes.Buffer
	le := binary.LittleEndian

	b.WriteString("II")
	binary.Write(&b, le, uint16(42))
	binary.Write(&b, le, uint32(8))

	// One IFD: X resolution 100/cm, unit 3 (centimeters).
	binary.Write(&b, le, uint16(2))
	binary.Write(&b, le, uint16(282))
	binary.Write(&b, le, uint16(5))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint32(38))
	binary.Write(&b, le, uint16(296))
	binary.Write(&b, le, uint16(3))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, uint16(3))
	binary.Write(&b, le, uint16(0))
	binary.Write(&b, le, uint32(0))

	binary.Write(&b, le, uint32(100))
	binary.Write(&b, le, uint32(1))

	path := filepath.Join(t.TempDir(), "metric.tif")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := readTIFFMeta(path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.DPI != 254 {
		t.Errorf("dpi %v, want 254", meta.DPI)
	}
}
