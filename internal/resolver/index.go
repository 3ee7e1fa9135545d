// internal/resolver/index.go - R-tree of georeferenced raster footprints
package resolver

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/pkg/bounds"
)

// minExtent pads degenerate footprints; rtreego rejects zero-length sides.
const minExtent = 1e-9

type footprint struct {
	pos  int // position in the snapshot
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (f *footprint) Bounds() rtreego.Rect {
	return f.rect
}

// footprintIndex is bound to the snapshot it was built from. Snapshots from
// different registries can share a version, so identity is the key.
type footprintIndex struct {
	snap    *registry.Snapshot
	version uint64
	size    int
	tree    *rtreego.Rtree
}

func (idx *footprintIndex) covers(snap *registry.Snapshot) bool {
	return idx != nil && idx.snap == snap && idx.version == snap.Version && idx.size == len(snap.Layers)
}

func buildFootprintIndex(snap *registry.Snapshot) *footprintIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i, l := range snap.Layers {
		if l.Kind != registry.GeoreferencedRaster || l.GeoRef == nil {
			continue
		}
		rect, err := toRect(l.GeoRef.BoundingBoxGeographic())
		if err != nil {
			continue
		}
		tree.Insert(&footprint{pos: i, rect: rect})
	}
	return &footprintIndex{snap: snap, version: snap.Version, size: len(snap.Layers), tree: tree}
}

// search returns layers whose footprint envelope contains the point, sorted
// back into registry order so results match the linear scan.
func (idx *footprintIndex) search(snap *registry.Snapshot, lon, lat float64) []registry.Layer {
	hits := idx.tree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(minExtent))

	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		positions = append(positions, h.(*footprint).pos)
	}
	slices.Sort(positions)

	out := make([]registry.Layer, len(positions))
	for i, p := range positions {
		out[i] = snap.Layers[p]
	}
	return out
}

func toRect(b bounds.Box) (rtreego.Rect, error) {
	point := rtreego.Point{b.Min()[0], b.Min()[1]}
	lengths := []float64{
		max(b.Width(), minExtent),
		max(b.Height(), minExtent),
	}
	return rtreego.NewRect(point, lengths)
}
