// pkg/georef/georef_test.go - Unit tests for raster georeferencing
package georef

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/geolayers/pkg/affine"
)

func TestNewRejectsBadSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(affine.Identity(), tt.width, tt.height, "")
			assert.Error(t, err)
		})
	}
}

func TestContainsPixel(t *testing.T) {
	g, err := New(affine.Identity(), 200, 100, "")
	require.NoError(t, err)

	tests := []struct {
		px, py float64
		want   bool
	}{
		{0, 0, true},
		{199.999, 99.999, true},
		{200, 50, false},
		{50, 100, false},
		{-0.001, 0, false},
		{100, -1, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, g.ContainsPixel(tt.px, tt.py), "(%g, %g)", tt.px, tt.py)
	}
}

func TestToGeographicAndBack(t *testing.T) {
	g, err := New(affine.New(100, 0.01, 0, 50, 0, -0.01), 200, 200, "EPSG:4326")
	require.NoError(t, err)

	geo := g.ToGeographic(100, 100)
	assert.InDelta(t, 101.0, geo[0], 1e-9)
	assert.InDelta(t, 49.0, geo[1], 1e-9)

	px, err := g.ToPixel(101, 49)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, px[0], 1e-6)
	assert.InDelta(t, 100.0, px[1], 1e-6)

	assert.True(t, g.ContainsGeographic(101, 49))
	assert.False(t, g.ContainsGeographic(103, 49))
	assert.Equal(t, "EPSG:4326", g.Projection())
}

func TestToPixelSingular(t *testing.T) {
	g, err := New(affine.New(0, 0, 0, 0, 0, 0), 10, 10, "")
	require.NoError(t, err)

	_, err = g.ToPixel(1, 1)
	assert.True(t, errors.Is(err, affine.ErrSingularTransform))
	assert.False(t, g.IsValid())
	assert.False(t, g.ContainsGeographic(0, 0))
}

func TestBoundingBoxAxisAligned(t *testing.T) {
	g, err := New(affine.New(100, 0.01, 0, 50, 0, -0.01), 200, 200, "")
	require.NoError(t, err)

	box := g.BoundingBoxGeographic()
	assert.InDelta(t, 100.0, box.Min()[0], 1e-9)
	assert.InDelta(t, 48.0, box.Min()[1], 1e-9)
	assert.InDelta(t, 102.0, box.Max()[0], 1e-9)
	assert.InDelta(t, 50.0, box.Max()[1], 1e-9)
}

func TestBoundingBoxRotated(t *testing.T) {
	// 90 degree rotation: x grows with py, y grows with px.
	g, err := New(affine.New(0, 0, 1, 0, 1, 0), 10, 20, "")
	require.NoError(t, err)

	box := g.BoundingBoxGeographic()
	assert.Equal(t, orb.Point{0, 0}, box.Min())
	assert.Equal(t, orb.Point{20, 10}, box.Max())

	// The naive (X0,Y0)-(X0+w*A, Y0+h*D) box would collapse to a point.
	naiveMaxX := 0 + 10*g.Transform().A
	assert.NotEqual(t, naiveMaxX, box.Max()[0])
}

func TestFootprintAndCenter(t *testing.T) {
	g, err := Default(4, 2)
	require.NoError(t, err)

	fp := g.Footprint()
	require.Len(t, fp, 1)
	assert.Len(t, fp[0], 5)
	assert.Equal(t, fp[0][0], fp[0][4])
	assert.Equal(t, orb.Point{2, -1}, g.Center())
	assert.Equal(t, 8.0, g.BoundingBoxPixel().Width()*g.BoundingBoxPixel().Height())
}
