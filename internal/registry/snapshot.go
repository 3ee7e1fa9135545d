// internal/registry/snapshot.go - Immutable views of the registry
package registry

// Snapshot is a consistent copy of the registry at one version. Readers
// such as the resolver and extent aggregator work on snapshots so that
// concurrent mutations never tear a query.
type Snapshot struct {
	Version uint64
	Layers  []Layer
}

// Len returns the number of layers
func (s *Snapshot) Len() int {
	return len(s.Layers)
}

// ByKind returns layers of exactly the given kind in insertion order
func (s *Snapshot) ByKind(kind Kind) []Layer {
	var out []Layer
	for _, l := range s.Layers {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Find returns the first layer with the given name
func (s *Snapshot) Find(name string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Primary returns the primary georeferenced raster, if any
func (s *Snapshot) Primary() (Layer, bool) {
	for _, l := range s.Layers {
		if l.Kind == PrimaryGeoRaster {
			return l, true
		}
	}
	return Layer{}, false
}

// HasGeoreferenced reports whether any georeferenced raster is loaded
func (s *Snapshot) HasGeoreferenced() bool {
	for _, l := range s.Layers {
		if l.Kind.IsGeoreferenced() {
			return true
		}
	}
	return false
}

var groupOrder = []struct {
	kind  Kind
	title string
}{
	{PrimaryGeoRaster, "GeoTIFF Layers"},
	{GeoreferencedRaster, "Georeferenced Layers"},
	{Raster, "Raster Layers"},
	{Vector, "Vector Layers"},
}

// Groups arranges layers by kind for presentation. Empty groups are omitted.
func (s *Snapshot) Groups() []Group {
	var groups []Group
	for _, g := range groupOrder {
		if layers := s.ByKind(g.kind); len(layers) > 0 {
			groups = append(groups, Group{Title: g.title, Kind: g.kind, Layers: layers})
		}
	}
	return groups
}
