// internal/output/documents.go - Printable views of registry state and query results
package output

import (
	"maps"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/valpere/geolayers/internal/extent"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/internal/resolver"
	"github.com/valpere/geolayers/pkg/bounds"
	"github.com/valpere/geolayers/pkg/render"
)

// boxArray returns [minX, minY, maxX, maxY], or nil for an empty box.
func boxArray(b bounds.Box) []float64 {
	if b.IsEmpty() {
		return nil
	}
	lo, hi := b.Min(), b.Max()
	return []float64{lo[0], lo[1], hi[0], hi[1]}
}

// LayerSummary describes one registry layer
type LayerSummary struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Visible     bool           `json:"visible"`
	Path        string         `json:"path,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	SceneBounds []float64      `json:"scene_bounds,omitempty"`

	footprint orb.Polygon
}

// NewLayerSummary summarizes a layer. Georeferenced rasters keep their
// geographic footprint for GeoJSON output.
func NewLayerSummary(l registry.Layer) LayerSummary {
	s := LayerSummary{
		Name:        l.Name,
		Kind:        l.Kind.String(),
		Visible:     l.Visible,
		Path:        l.Path,
		Properties:  maps.Clone(l.Props),
		SceneBounds: boxArray(l.SceneBounds),
	}
	if l.Kind.IsGeoreferenced() && l.GeoRef != nil {
		s.footprint = l.GeoRef.Footprint()
	}
	return s
}

func (s LayerSummary) feature() *geojson.Feature {
	if s.footprint == nil {
		return nil
	}
	f := geojson.NewFeature(s.footprint)
	f.Properties["name"] = s.Name
	f.Properties["kind"] = s.Kind
	f.Properties["visible"] = s.Visible
	return f
}

// ExtentDocument is an aggregate extent
type ExtentDocument struct {
	Space  string    `json:"space"`
	Empty  bool      `json:"empty"`
	Bounds []float64 `json:"bounds,omitempty"`
	Layers []string  `json:"layers,omitempty"`

	box bounds.Box
}

// NewExtentDocument wraps an extent
func NewExtentDocument(e extent.Extent) ExtentDocument {
	return ExtentDocument{
		Space:  e.Space.String(),
		Empty:  e.IsEmpty(),
		Bounds: boxArray(e.Box),
		Layers: e.Layers,
		box:    e.Box,
	}
}

func (d ExtentDocument) feature() *geojson.Feature {
	if d.box.IsEmpty() {
		return nil
	}
	f := geojson.NewFeature(d.box.Polygon())
	f.Properties["extent"] = true
	f.Properties["space"] = d.Space
	f.Properties["layers"] = d.Layers
	return f
}

// FeatureCollection renders the extent as a single polygon feature
func (d ExtentDocument) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if f := d.feature(); f != nil {
		fc.Append(f)
	}
	return fc
}

// FileFailure records a file that did not load
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// InfoDocument lists the registry's layers and their aggregate extent
type InfoDocument struct {
	Version  uint64         `json:"version"`
	Layers   []LayerSummary `json:"layers"`
	Extent   ExtentDocument `json:"extent"`
	Failures []FileFailure  `json:"failures,omitempty"`
}

// NewInfoDocument summarizes a snapshot
func NewInfoDocument(snap *registry.Snapshot, e extent.Extent) *InfoDocument {
	doc := &InfoDocument{
		Version: snap.Version,
		Layers:  make([]LayerSummary, 0, snap.Len()),
		Extent:  NewExtentDocument(e),
	}
	for _, l := range snap.Layers {
		doc.Layers = append(doc.Layers, NewLayerSummary(l))
	}
	return doc
}

// AddFailure records a file that failed to load
func (d *InfoDocument) AddFailure(path string, err error) {
	d.Failures = append(d.Failures, FileFailure{Path: path, Error: err.Error()})
}

// FeatureCollection renders georeferenced footprints followed by the
// extent when it is geographic. Other layers have no geographic shape.
func (d *InfoDocument) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range d.Layers {
		if f := l.feature(); f != nil {
			fc.Append(f)
		}
	}
	if d.Extent.Space == extent.SpaceGeographic.String() {
		if f := d.Extent.feature(); f != nil {
			fc.Append(f)
		}
	}
	return fc
}

// LocateDocument is the answer to a coordinate query. Result is null when
// the resolver found no position.
type LocateDocument struct {
	From   string      `json:"from"` // "scene" or "geographic"
	Input  [2]float64  `json:"input"`
	Result *[2]float64 `json:"result"`
	Match  string      `json:"match"`
}

// NewLocateDocument records a resolver query and its outcome
func NewLocateDocument(from string, in, out orb.Point, m resolver.Match) *LocateDocument {
	doc := &LocateDocument{From: from, Input: in, Match: m.String()}
	if !resolver.IsUndefined(out) {
		r := [2]float64(out)
		doc.Result = &r
	}
	return doc
}

// FeatureCollection renders the geographic side of the query as a point
func (d *LocateDocument) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var geo, scene *[2]float64
	switch d.From {
	case "geographic":
		in := d.Input
		geo, scene = &in, d.Result
	default:
		in := d.Input
		geo, scene = d.Result, &in
	}
	if geo == nil || scene == nil {
		return fc
	}

	f := geojson.NewFeature(orb.Point(*geo))
	f.Properties["scene"] = *scene
	f.Properties["match"] = d.Match
	fc.Append(f)
	return fc
}

// LayerPrimitives is one page of primitives for a vector source
type LayerPrimitives struct {
	Layer        string  `json:"layer"`
	GeometryType string  `json:"geometry_type"`
	Scale        float64 `json:"scale"`
	*render.Result
}

// DecomposeDocument holds the primitives decomposed from one file
type DecomposeDocument struct {
	Path   string            `json:"path"`
	Layers []LayerPrimitives `json:"layers"`
}

// FeatureCollection renders every primitive in scene coordinates
func (d *DecomposeDocument) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, lp := range d.Layers {
		if lp.Result == nil {
			continue
		}
		for _, p := range lp.Primitives {
			g := p.Geometry()
			if g == nil {
				continue
			}
			f := geojson.NewFeature(g)
			f.Properties["layer"] = lp.Layer
			f.Properties["kind"] = p.Kind.String()
			f.Properties["style"] = p.Style.Name
			f.Properties["color"] = p.Style.Hex()
			f.Properties["feature"] = p.Feature
			fc.Append(f)
		}
	}
	return fc
}
