// internal/extent/extent.go - Aggregate extent of loaded layers
package extent

import (
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/pkg/bounds"
)

// Space names the coordinate space an extent is expressed in
type Space int

const (
	SpaceNone Space = iota
	SpaceGeographic
	SpacePixel
	SpaceScene
)

func (s Space) String() string {
	switch s {
	case SpaceGeographic:
		return "geographic"
	case SpacePixel:
		return "pixel"
	case SpaceScene:
		return "scene"
	}
	return "none"
}

// MarshalText renders the space by name
func (s Space) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Extent is an aggregate bounding box and the space it lives in
type Extent struct {
	Box    bounds.Box
	Space  Space
	Layers []string // layers that contributed
}

// IsEmpty reports whether nothing contributed to the extent
func (e Extent) IsEmpty() bool {
	return e.Box.IsEmpty()
}

// Compute returns the extent of snap. The first rule that applies wins:
//
//  1. the primary raster's geographic bounding box
//  2. the union of the other georeferenced rasters' geographic boxes
//  3. the pixel box of the most recently loaded plain raster
//  4. the union of the vector layers' scene bounds
//
// An empty snapshot yields an empty extent in SpaceNone.
func Compute(snap *registry.Snapshot) Extent {
	if primary, ok := snap.Primary(); ok && primary.GeoRef != nil {
		return Extent{
			Box:    primary.GeoRef.BoundingBoxGeographic(),
			Space:  SpaceGeographic,
			Layers: []string{primary.Name},
		}
	}

	if ext := georeferencedUnion(snap); !ext.IsEmpty() {
		return ext
	}

	if ext := lastRaster(snap); !ext.IsEmpty() {
		return ext
	}

	if ext := vectorUnion(snap); !ext.IsEmpty() {
		return ext
	}

	return Extent{Box: bounds.Empty()}
}

func georeferencedUnion(snap *registry.Snapshot) Extent {
	ext := Extent{Box: bounds.Empty(), Space: SpaceGeographic}
	for _, l := range snap.ByKind(registry.GeoreferencedRaster) {
		if l.GeoRef == nil {
			continue
		}
		ext.Box = ext.Box.Union(l.GeoRef.BoundingBoxGeographic())
		ext.Layers = append(ext.Layers, l.Name)
	}
	return ext
}

func lastRaster(snap *registry.Snapshot) Extent {
	rasters := snap.ByKind(registry.Raster)
	for i := len(rasters) - 1; i >= 0; i-- {
		l := rasters[i]

		var w, h float64
		if l.GeoRef != nil {
			w, h = float64(l.GeoRef.Width()), float64(l.GeoRef.Height())
		} else {
			w, h = number(l.Props[registry.PropWidth]), number(l.Props[registry.PropHeight])
		}
		if w <= 0 || h <= 0 {
			continue
		}

		return Extent{
			Box:    bounds.New(0, 0, w, h),
			Space:  SpacePixel,
			Layers: []string{l.Name},
		}
	}
	return Extent{Box: bounds.Empty()}
}

func vectorUnion(snap *registry.Snapshot) Extent {
	ext := Extent{Box: bounds.Empty(), Space: SpaceScene}
	for _, l := range snap.ByKind(registry.Vector) {
		if l.SceneBounds.IsEmpty() {
			continue
		}
		ext.Box = ext.Box.Union(l.SceneBounds)
		ext.Layers = append(ext.Layers, l.Name)
	}
	return ext
}

func number(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
