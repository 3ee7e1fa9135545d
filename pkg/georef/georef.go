// pkg/georef/georef.go - Raster georeference: affine transform plus pixel footprint
package georef

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/valpere/geolayers/pkg/affine"
	"github.com/valpere/geolayers/pkg/bounds"
)

// GeoReference ties an affine transform to the pixel size of one raster.
// Values are immutable; build them with New.
type GeoReference struct {
	transform  affine.Transform
	width      int
	height     int
	projection string
}

// New creates a georeference for a width x height raster. Both dimensions
// must be positive.
func New(t affine.Transform, width, height int, projection string) (*GeoReference, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d: dimensions must be positive", width, height)
	}
	return &GeoReference{
		transform:  t,
		width:      width,
		height:     height,
		projection: projection,
	}, nil
}

// Default builds a georeference with the identity transform, used for
// rasters that carry no geotransform of their own.
func Default(width, height int) (*GeoReference, error) {
	return New(affine.Identity(), width, height, "")
}

func (g *GeoReference) Transform() affine.Transform { return g.transform }
func (g *GeoReference) Width() int                  { return g.width }
func (g *GeoReference) Height() int                 { return g.height }
func (g *GeoReference) Projection() string          { return g.projection }

// IsValid reports whether the transform can be inverted, which is what
// geographic-to-pixel lookups need.
func (g *GeoReference) IsValid() bool {
	return g != nil && g.transform.IsInvertible()
}

// ContainsPixel reports whether (px, py) lies in [0,width) x [0,height).
func (g *GeoReference) ContainsPixel(px, py float64) bool {
	return px >= 0 && px < float64(g.width) && py >= 0 && py < float64(g.height)
}

// ContainsGeographic reports whether a geographic point maps inside the
// raster. Singular transforms contain nothing.
func (g *GeoReference) ContainsGeographic(geoX, geoY float64) bool {
	p, err := g.ToPixel(geoX, geoY)
	return err == nil && g.ContainsPixel(p[0], p[1])
}

// ToGeographic maps a pixel position to geographic coordinates.
func (g *GeoReference) ToGeographic(px, py float64) orb.Point {
	x, y := g.transform.Apply(px, py)
	return orb.Point{x, y}
}

// ToPixel maps geographic coordinates to a pixel position. It fails with
// affine.ErrSingularTransform for degenerate transforms.
func (g *GeoReference) ToPixel(geoX, geoY float64) (orb.Point, error) {
	px, py, err := g.transform.Invert(geoX, geoY)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{px, py}, nil
}

// Corners returns the geographic position of the pixel corners in the order
// (0,0), (width,0), (width,height), (0,height).
func (g *GeoReference) Corners() [4]orb.Point {
	w, h := float64(g.width), float64(g.height)
	return [4]orb.Point{
		g.ToGeographic(0, 0),
		g.ToGeographic(w, 0),
		g.ToGeographic(w, h),
		g.ToGeographic(0, h),
	}
}

// BoundingBoxGeographic returns the envelope of all four corners. Rotated
// transforms do not have their extremes at (0,0) and (width,height).
func (g *GeoReference) BoundingBoxGeographic() bounds.Box {
	c := g.Corners()
	return bounds.FromPoints(c[:]...)
}

// BoundingBoxPixel is the raster's footprint in its own pixel space.
func (g *GeoReference) BoundingBoxPixel() bounds.Box {
	return bounds.New(0, 0, float64(g.width), float64(g.height))
}

// Center returns the geographic position of the raster's centre pixel.
func (g *GeoReference) Center() orb.Point {
	return g.ToGeographic(float64(g.width)/2, float64(g.height)/2)
}

// Footprint returns the exact (possibly rotated) geographic outline.
func (g *GeoReference) Footprint() orb.Polygon {
	c := g.Corners()
	return orb.Polygon{orb.Ring{c[0], c[1], c[2], c[3], c[0]}}
}

func (g *GeoReference) String() string {
	return fmt.Sprintf("%dx%d %s %q", g.width, g.height, g.transform, g.projection)
}
