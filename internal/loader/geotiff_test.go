// internal/loader/geotiff_test.go - Unit tests for GeoTIFF tag parsing
package loader

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/geolayers/pkg/affine"
)

// buildTIFF writes a little-endian TIFF header with a single IFD holding
// the given DOUBLE tags. Pixel data is omitted.
func buildTIFF(t *testing.T, tags map[uint16][]float64, order []uint16) []byte {
	t.Helper()

	le := binary.LittleEndian
	dataStart := 8 + 2 + 12*len(order) + 4

	var ifd, data bytes.Buffer
	write := func(buf *bytes.Buffer, v any) { require.NoError(t, binary.Write(buf, le, v)) }

	write(&ifd, uint16(len(order)))
	for _, tag := range order {
		values := tags[tag]
		write(&ifd, tag)
		write(&ifd, uint16(tiffTypeDouble))
		write(&ifd, uint32(len(values)))
		write(&ifd, uint32(dataStart+data.Len()))
		for _, v := range values {
			write(&data, math.Float64bits(v))
		}
	}
	write(&ifd, uint32(0))

	out := []byte{'I', 'I', 42, 0, 8, 0, 0, 0}
	out = append(out, ifd.Bytes()...)
	return append(out, data.Bytes()...)
}

func TestReadGeoTIFFTags(t *testing.T) {
	data := buildTIFF(t, map[uint16][]float64{
		tagModelPixelScale: {2, 3, 0},
		tagModelTiepoint:   {0, 0, 0, 500, 1000, 0},
	}, []uint16{tagModelPixelScale, tagModelTiepoint})

	tags, err := readGeoTIFFTags(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 0}, tags.PixelScale)
	assert.Equal(t, []float64{0, 0, 0, 500, 1000, 0}, tags.Tiepoint)
	assert.Nil(t, tags.Transformation)

	tr, ok := tags.transform()
	require.True(t, ok)
	assert.Equal(t, affine.New(500, 2, 0, 1000, 0, -3), tr)
}

func TestReadGeoTIFFTagsNotTIFF(t *testing.T) {
	_, err := readGeoTIFFTags(bytes.NewReader([]byte("\x89PNG\r\n\x1a\n")))
	assert.ErrorIs(t, err, errNotTIFF)

	_, err = readGeoTIFFTags(bytes.NewReader([]byte{'I', 'I', 43, 0, 8, 0, 0, 0}))
	assert.ErrorIs(t, err, errNotTIFF)
}

func TestGeoTIFFTagsTransform(t *testing.T) {
	tests := []struct {
		name string
		tags geoTIFFTags
		want affine.Transform
		ok   bool
	}{
		{
			name: "tiepoint at raster origin",
			tags: geoTIFFTags{PixelScale: []float64{10, 10, 0}, Tiepoint: []float64{0, 0, 0, 100, 200, 0}},
			want: affine.New(100, 10, 0, 200, 0, -10),
			ok:   true,
		},
		{
			name: "tiepoint away from origin",
			tags: geoTIFFTags{PixelScale: []float64{10, 5, 0}, Tiepoint: []float64{2, 4, 0, 100, 200, 0}},
			want: affine.New(80, 10, 0, 220, 0, -5),
			ok:   true,
		},
		{
			name: "model transformation wins",
			tags: geoTIFFTags{
				PixelScale: []float64{10, 10, 0},
				Tiepoint:   []float64{0, 0, 0, 100, 200, 0},
				Transformation: []float64{
					2, 0.5, 0, 300,
					0.25, -2, 0, 400,
					0, 0, 0, 0,
					0, 0, 0, 1,
				},
			},
			want: affine.New(300, 2, 0.5, 400, 0.25, -2),
			ok:   true,
		},
		{
			name: "scale without tiepoint",
			tags: geoTIFFTags{PixelScale: []float64{10, 10, 0}},
		},
		{
			name: "zero scale",
			tags: geoTIFFTags{PixelScale: []float64{0, 10, 0}, Tiepoint: []float64{0, 0, 0, 100, 200, 0}},
		},
		{
			name: "no tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.tags.transform()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
