// internal/resolver/resolver.go - Scene <-> geographic coordinate resolution
package resolver

import (
	"log/slog"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/valpere/geolayers/internal/logging"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/pkg/bounds"
)

// DefaultFallbackScale is the scene units per geographic unit used when no
// raster can place a point. It has no derivation beyond matching the scale
// vectors are drawn at over georeferenced rasters.
const DefaultFallbackScale = 1000.0

// Match reports how a coordinate was resolved
type Match int

const (
	MatchNone Match = iota
	MatchPrimary
	MatchCandidate
	// MatchApproximate marks a position synthesized from the union extent of
	// the georeferenced rasters. It is not authoritative.
	MatchApproximate
)

func (m Match) String() string {
	switch m {
	case MatchPrimary:
		return "primary"
	case MatchCandidate:
		return "candidate"
	case MatchApproximate:
		return "approximate"
	}
	return "none"
}

// MarshalText renders the match by name
func (m Match) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Undefined returns the sentinel for "no geographic interpretation".
func Undefined() orb.Point {
	return orb.Point{math.NaN(), math.NaN()}
}

// IsUndefined reports whether p is the Undefined sentinel.
func IsUndefined(p orb.Point) bool {
	return math.IsNaN(p[0]) || math.IsNaN(p[1])
}

// Options configures a Resolver
type Options struct {
	FallbackScale float64
	SpatialIndex  bool // Prefilter candidates with an R-tree of footprints
	Logger        *slog.Logger
}

// Resolver maps points between scene space and geographic space over a
// registry snapshot. For a fixed snapshot both directions are deterministic.
type Resolver struct {
	fallbackScale float64
	useIndex      bool
	logger        *slog.Logger

	mutex sync.Mutex
	index *footprintIndex
}

// New creates a resolver. A nil opts uses the defaults.
func New(opts *Options) *Resolver {
	if opts == nil {
		opts = &Options{}
	}
	scale := opts.FallbackScale
	if scale <= 0 {
		scale = DefaultFallbackScale
	}
	return &Resolver{
		fallbackScale: scale,
		useIndex:      opts.SpatialIndex,
		logger:        logging.OrNop(opts.Logger),
	}
}

// SceneToGeographic returns the geographic position under a scene point.
// The primary raster is consulted first, then the other georeferenced
// rasters in registry order. When none covers the point the result is
// Undefined with MatchNone.
func (r *Resolver) SceneToGeographic(snap *registry.Snapshot, scene orb.Point) (orb.Point, Match) {
	if primary, ok := snap.Primary(); ok {
		if geo, ok := pixelHit(&primary, scene); ok {
			return geo, MatchPrimary
		}
	}

	for _, l := range snap.Layers {
		if l.Kind != registry.GeoreferencedRaster {
			continue
		}
		if geo, ok := pixelHit(&l, scene); ok {
			return geo, MatchCandidate
		}
	}

	return Undefined(), MatchNone
}

func pixelHit(l *registry.Layer, scene orb.Point) (orb.Point, bool) {
	if l.GeoRef == nil {
		return orb.Point{}, false
	}
	px := l.SceneToPixel(scene)
	if !l.GeoRef.ContainsPixel(px[0], px[1]) {
		return orb.Point{}, false
	}
	return l.GeoRef.ToGeographic(px[0], px[1]), true
}

// GeographicToScene returns the scene position of a geographic point.
//
// The primary raster's inverse transform is used whenever it is invertible,
// without a bounds check. Otherwise the first georeferenced raster whose
// pixel grid contains the point wins. If no raster contains it but some are
// loaded, the point is placed relative to their union extent with Y flipped
// and the result is tagged MatchApproximate.
func (r *Resolver) GeographicToScene(snap *registry.Snapshot, lon, lat float64) (orb.Point, Match) {
	if primary, ok := snap.Primary(); ok && primary.GeoRef != nil {
		if px, err := primary.GeoRef.ToPixel(lon, lat); err == nil {
			return primary.PixelToScene(px), MatchPrimary
		}
	}

	for _, l := range r.candidates(snap, lon, lat) {
		px, err := l.GeoRef.ToPixel(lon, lat)
		if err != nil || !l.GeoRef.ContainsPixel(px[0], px[1]) {
			continue
		}
		return l.PixelToScene(px), MatchCandidate
	}

	extent := GeoreferencedExtent(snap)
	if extent.IsEmpty() {
		return Undefined(), MatchNone
	}

	scene := orb.Point{
		(lon - extent.Min()[0]) * r.fallbackScale,
		(extent.Max()[1] - lat) * r.fallbackScale,
	}
	r.logger.Debug("approximate geographic placement", "lon", lon, "lat", lat, "scene_x", scene[0], "scene_y", scene[1])
	return scene, MatchApproximate
}

// candidates returns the non-primary georeferenced rasters that may contain
// (lon, lat), in registry order.
func (r *Resolver) candidates(snap *registry.Snapshot, lon, lat float64) []registry.Layer {
	if r.useIndex {
		return r.indexFor(snap).search(snap, lon, lat)
	}

	var out []registry.Layer
	for _, l := range snap.Layers {
		if l.Kind == registry.GeoreferencedRaster && l.GeoRef != nil {
			out = append(out, l)
		}
	}
	return out
}

func (r *Resolver) indexFor(snap *registry.Snapshot) *footprintIndex {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.index.covers(snap) {
		r.index = buildFootprintIndex(snap)
	}
	return r.index
}

// GeoreferencedExtent is the union of the geographic bounding boxes of all
// georeferenced rasters, primary included.
func GeoreferencedExtent(snap *registry.Snapshot) bounds.Box {
	box := bounds.Empty()
	for _, l := range snap.Layers {
		if l.Kind.IsGeoreferenced() && l.GeoRef != nil {
			box = box.Union(l.GeoRef.BoundingBoxGeographic())
		}
	}
	return box
}
