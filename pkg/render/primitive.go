// pkg/render/primitive.go - Renderable primitives in scene space
package render

import (
	"github.com/paulmach/orb"

	"github.com/valpere/geolayers/pkg/bounds"
)

// Kind identifies the shape of a primitive.
type Kind int

const (
	KindPoint Kind = iota
	KindPolyline
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindPolyline:
		return "polyline"
	case KindPath:
		return "path"
	}
	return "unknown"
}

// MarshalText makes Kind render as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Primitive is one drawable item in scene coordinates.
//
// Points holds a single coordinate for KindPoint and the vertices of the line
// for KindPolyline. Subpaths holds closed rings for KindPath: the exterior
// first, then one per hole.
type Primitive struct {
	Kind     Kind          `json:"kind"`
	Points   []orb.Point   `json:"points,omitempty"`
	Subpaths [][]orb.Point `json:"subpaths,omitempty"`
	Style    Style         `json:"style"`
	Feature  int           `json:"feature"`
}

// Bounds returns the scene-space envelope of the primitive.
func (p Primitive) Bounds() bounds.Box {
	b := bounds.FromPoints(p.Points...)
	for _, sp := range p.Subpaths {
		b = b.Union(bounds.FromPoints(sp...))
	}
	return b
}

// Geometry converts the primitive back to an orb geometry in scene
// coordinates.
func (p Primitive) Geometry() orb.Geometry {
	switch p.Kind {
	case KindPoint:
		if len(p.Points) == 0 {
			return nil
		}
		return p.Points[0]
	case KindPolyline:
		return orb.LineString(p.Points)
	case KindPath:
		poly := make(orb.Polygon, len(p.Subpaths))
		for i, sp := range p.Subpaths {
			poly[i] = orb.Ring(sp)
		}
		return poly
	}
	return nil
}

// Bounds returns the union of the primitives' envelopes.
func Bounds(prims []Primitive) bounds.Box {
	b := bounds.Empty()
	for _, p := range prims {
		b = b.Union(p.Bounds())
	}
	return b
}
