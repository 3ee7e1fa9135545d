// internal/loader/geotiff.go - GeoTIFF georeferencing tags from the first IFD
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/valpere/geolayers/pkg/affine"
)

const (
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264

	tiffTypeDouble = 12
)

var errNotTIFF = errors.New("not a classic TIFF file")

// geoTIFFTags holds the georeferencing tags of one IFD
type geoTIFFTags struct {
	PixelScale     []float64
	Tiepoint       []float64
	Transformation []float64
}

// transform converts the tags to a GDAL-ordered transform. ModelTransformation
// wins over scale plus tiepoint when both are present.
func (t *geoTIFFTags) transform() (affine.Transform, bool) {
	if m := t.Transformation; len(m) == 16 {
		return affine.New(m[3], m[0], m[1], m[7], m[4], m[5]), true
	}

	s := t.PixelScale
	if len(s) < 2 || s[0] == 0 || s[1] == 0 || len(t.Tiepoint) < 6 {
		return affine.Transform{}, false
	}

	tp := t.Tiepoint
	return affine.New(
		tp[3]-tp[0]*s[0], s[0], 0,
		tp[4]+tp[1]*s[1], 0, -s[1],
	), true
}

// readGeoTIFFTags reads the georeferencing tags from IFD0. BigTIFF is not
// handled and yields errNotTIFF.
func readGeoTIFFTags(r io.ReaderAt) (*geoTIFFTags, error) {
	header := make([]byte, 8)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("failed to read TIFF header: %w", err)
	}

	var order binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, errNotTIFF
	}
	if order.Uint16(header[2:4]) != 42 {
		return nil, errNotTIFF
	}

	ifdOffset := int64(order.Uint32(header[4:8]))
	countBuf := make([]byte, 2)
	if _, err := r.ReadAt(countBuf, ifdOffset); err != nil {
		return nil, fmt.Errorf("failed to read IFD entry count: %w", err)
	}
	count := int(order.Uint16(countBuf))

	entries := make([]byte, 12*count)
	if _, err := r.ReadAt(entries, ifdOffset+2); err != nil {
		return nil, fmt.Errorf("failed to read IFD entries: %w", err)
	}

	tags := &geoTIFFTags{}
	for i := 0; i < count; i++ {
		e := entries[12*i : 12*i+12]
		tag := order.Uint16(e[0:2])
		if tag != tagModelPixelScale && tag != tagModelTiepoint && tag != tagModelTransformation {
			continue
		}
		if order.Uint16(e[2:4]) != tiffTypeDouble {
			continue
		}

		n := order.Uint32(e[4:8])
		if n == 0 || n > 1<<16 {
			continue
		}
		values, err := readDoubles(r, order, int64(order.Uint32(e[8:12])), int(n))
		if err != nil {
			return nil, fmt.Errorf("failed to read tag %d: %w", tag, err)
		}

		switch tag {
		case tagModelPixelScale:
			tags.PixelScale = values
		case tagModelTiepoint:
			tags.Tiepoint = values
		case tagModelTransformation:
			tags.Transformation = values
		}
	}
	return tags, nil
}

func readDoubles(r io.ReaderAt, order binary.ByteOrder, offset int64, n int) ([]float64, error) {
	buf := make([]byte, 8*n)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(order.Uint64(buf[8*i:]))
	}
	return values, nil
}
