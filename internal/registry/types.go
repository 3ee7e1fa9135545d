// internal/registry/types.go - Layer records and registry events
package registry

import (
	"maps"

	"github.com/paulmach/orb"

	"github.com/valpere/geolayers/pkg/bounds"
	"github.com/valpere/geolayers/pkg/georef"
)

// Kind classifies a layer
type Kind int

const (
	Raster Kind = iota
	GeoreferencedRaster
	PrimaryGeoRaster
	Vector
)

func (k Kind) String() string {
	switch k {
	case Raster:
		return "raster"
	case GeoreferencedRaster:
		return "georeferenced"
	case PrimaryGeoRaster:
		return "primary"
	case Vector:
		return "vector"
	}
	return "unknown"
}

// MarshalText renders the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsGeoreferenced reports whether layers of this kind carry a usable georeference
func (k Kind) IsGeoreferenced() bool {
	return k == GeoreferencedRaster || k == PrimaryGeoRaster
}

// group is the namespace in which layer names must be unique. The primary
// is a georeferenced raster with a flag, so both share one group.
func (k Kind) group() string {
	switch k {
	case GeoreferencedRaster, PrimaryGeoRaster:
		return "geo"
	case Vector:
		return "vector"
	}
	return "raster"
}

// Property keys recorded by loaders
const (
	PropWidth           = "width"
	PropHeight          = "height"
	PropHasGeoTransform = "has_geotransform"
	PropProjection      = "projection"
	PropTopLeftX        = "top_left_x"
	PropTopLeftY        = "top_left_y"
	PropPixelWidth      = "pixel_width"
	PropPixelHeight     = "pixel_height"
	PropRotationX       = "rotation_x"
	PropRotationY       = "rotation_y"
	PropFormat          = "format"
	PropGeometryType    = "geometry_type"
	PropFeatureCount    = "feature_count"
	PropFeaturesDrawn   = "features_drawn"
	PropLayerIndex      = "layer_index"
	PropSourceLayer     = "source_layer"
)

// Placement maps between scene coordinates and a layer's own pixel grid.
// It is owned by the rendering side; the registry only stores it.
type Placement interface {
	SceneToPixel(orb.Point) orb.Point
	PixelToScene(orb.Point) orb.Point
}

// Translation places a layer's pixel origin at Offset in scene space with
// one scene unit per pixel.
type Translation struct {
	Offset orb.Point
}

func (t Translation) SceneToPixel(p orb.Point) orb.Point {
	return orb.Point{p[0] - t.Offset[0], p[1] - t.Offset[1]}
}

func (t Translation) PixelToScene(p orb.Point) orb.Point {
	return orb.Point{p[0] + t.Offset[0], p[1] + t.Offset[1]}
}

// Layer is one entry in the registry
type Layer struct {
	Name        string
	Path        string
	Kind        Kind
	Handle      any // rendering handle, owned by the caller
	Placement   Placement
	GeoRef      *georef.GeoReference
	Props       map[string]any
	Visible     bool
	SceneBounds bounds.Box
}

// SceneToPixel maps a scene point into the layer's pixel grid. Layers
// without a placement sit at the scene origin.
func (l *Layer) SceneToPixel(p orb.Point) orb.Point {
	if l.Placement == nil {
		return p
	}
	return l.Placement.SceneToPixel(p)
}

// PixelToScene is the inverse of SceneToPixel.
func (l *Layer) PixelToScene(p orb.Point) orb.Point {
	if l.Placement == nil {
		return p
	}
	return l.Placement.PixelToScene(p)
}

// GeometryType returns the geometry_type property, or "".
func (l *Layer) GeometryType() string {
	s, _ := l.Props[PropGeometryType].(string)
	return s
}

// Clone returns a copy that shares the handle, placement and georeference
// but owns its property map.
func (l *Layer) Clone() Layer {
	c := *l
	c.Props = maps.Clone(l.Props)
	return c
}

// collides reports whether two layers would share a registry key.
func (l *Layer) collides(other *Layer) bool {
	if l.Name != other.Name || l.Kind.group() != other.Kind.group() {
		return false
	}
	if l.Kind == Vector {
		return l.GeometryType() == other.GeometryType()
	}
	return true
}

// EventType identifies a registry change
type EventType string

const (
	LayerAdded        EventType = "layer_added"
	LayerRemoved      EventType = "layer_removed"
	VisibilityChanged EventType = "visibility_changed"
	PrimaryChanged    EventType = "primary_changed"
	RegistryCleared   EventType = "registry_cleared"
)

// Event describes one registry change. For PrimaryChanged, Layer is the new
// primary (zero when none remains) and Previous names the old one.
type Event struct {
	Type     EventType
	Layer    Layer
	Previous string
	Version  uint64
}

// Group is a presentation grouping of layers by kind
type Group struct {
	Title  string
	Kind   Kind
	Layers []Layer
}
