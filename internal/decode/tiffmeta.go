package decode

import (
	"encoding/binary"
	"fmt"
	"os"
)

// TIFF tag and value constants used by the metadata walk.
const (
	tagCompression    = 259
	tagXResolution    = 282
	tagYResolution    = 283
	tagResolutionUnit = 296

	compressionNone = 1

	maxIFDs = 65535
)

// readTIFFMeta walks the IFD chain of a TIFF file, counting pages and
// extracting the first page's compression scheme and resolution, without
// decoding any pixel data.
func readTIFFMeta(path string) (Meta, error) {
	var meta Meta

	file, err := os.Open(path)
	if err != nil {
		return meta, err
	}
	defer file.Close()

	// Read TIFF header to determine byte order
	header := make([]byte, 8)
	if _, err := file.Read(header); err != nil {
		return meta, err
	}

	var byteOrder binary.ByteOrder
	if header[0] == 'I' && header[1] == 'I' {
		byteOrder = binary.LittleEndian
	} else if header[0] == 'M' && header[1] == 'M' {
		byteOrder = binary.BigEndian
	} else {
		return meta, fmt.Errorf("not a valid TIFF file")
	}

	ifdOffset := byteOrder.Uint32(header[4:8])

	var xRes, yRes float64
	var resUnit uint16 = 2 // Default to inches

	for ifdOffset != 0 && meta.Pages < maxIFDs {
		if _, err := file.Seek(int64(ifdOffset), 0); err != nil {
			return meta, err
		}

		var numEntries uint16
		if err := binary.Read(file, byteOrder, &numEntries); err != nil {
			return meta, err
		}

		first := meta.Pages == 0
		for i := uint16(0); i < numEntries; i++ {
			entry := make([]byte, 12)
			if _, err := file.Read(entry); err != nil {
				return meta, err
			}
			if !first {
				continue
			}

			tag := byteOrder.Uint16(entry[0:2])
			fieldType := byteOrder.Uint16(entry[2:4])
			valueOffset := byteOrder.Uint32(entry[8:12])

			switch tag {
			case tagCompression:
				if fieldType == 3 { // SHORT
					meta.Compression = shortValue(entry[8:12], byteOrder)
				}
			case tagXResolution:
				if fieldType == 5 { // RATIONAL
					xRes = readTIFFRational(file, int64(valueOffset), byteOrder)
				}
			case tagYResolution:
				if fieldType == 5 { // RATIONAL
					yRes = readTIFFRational(file, int64(valueOffset), byteOrder)
				}
			case tagResolutionUnit:
				if fieldType == 3 { // SHORT
					resUnit = shortValue(entry[8:12], byteOrder)
				}
			}
		}

		if err := binary.Read(file, byteOrder, &ifdOffset); err != nil {
			return meta, err
		}
		meta.Pages++
	}

	if meta.Pages == 0 {
		return meta, fmt.Errorf("no image directories found")
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	// Convert from centimeters to inches if needed
	if resUnit == 3 {
		dpi *= 2.54
	}
	meta.DPI = dpi

	return meta, nil
}

// shortValue extracts a SHORT stored inline in an IFD entry's value field.
func shortValue(value []byte, byteOrder binary.ByteOrder) uint16 {
	return byteOrder.Uint16(value[0:2])
}

// readTIFFRational reads a RATIONAL value (two uint32s) from a TIFF file.
func readTIFFRational(file *os.File, offset int64, byteOrder binary.ByteOrder) float64 {
	currentPos, _ := file.Seek(0, 1) // Save current position
	defer file.Seek(currentPos, 0)   // Restore position

	file.Seek(offset, 0)
	var num, denom uint32
	binary.Read(file, byteOrder, &num)
	binary.Read(file, byteOrder, &denom)

	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
