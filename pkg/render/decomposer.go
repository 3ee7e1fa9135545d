// pkg/render/decomposer.go - Vector geometry decomposition into render primitives
package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"go.uber.org/multierr"

	"github.com/valpere/geolayers/internal/logging"
)

var (
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	ErrGeometryTooDeep     = errors.New("geometry nesting too deep")
)

// Defaults applied by DefaultOptions.
const (
	DefaultScale       = 100.0
	DefaultMaxFeatures = 1000
	DefaultMaxDepth    = 32
)

// Options configures a Decomposer
type Options struct {
	Scale             float64 // Multiplier applied to both axes; Y is also negated
	MaxFeatures       int     // Page size used when a Page has no limit
	MaxDepth          int     // Deepest nesting level decomposed
	SimplifyTolerance float64 // Douglas-Peucker threshold in source units, 0 disables
	AllowCollections  bool    // Decompose orb.Collection members instead of skipping
	Logger            *slog.Logger
}

// DefaultOptions returns the options used by NewDecomposer(nil).
func DefaultOptions() *Options {
	return &Options{
		Scale:       DefaultScale,
		MaxFeatures: DefaultMaxFeatures,
		MaxDepth:    DefaultMaxDepth,
	}
}

// ValidateOptions checks decomposition options
func ValidateOptions(opts *Options) error {
	if opts.Scale <= 0 {
		return fmt.Errorf("invalid scale %g: must be positive", opts.Scale)
	}
	if opts.MaxFeatures <= 0 {
		return fmt.Errorf("invalid max features %d: must be positive", opts.MaxFeatures)
	}
	if opts.MaxDepth <= 0 {
		return fmt.Errorf("invalid max depth %d: must be positive", opts.MaxDepth)
	}
	if opts.SimplifyTolerance < 0 {
		return fmt.Errorf("invalid simplify tolerance %g: must not be negative", opts.SimplifyTolerance)
	}
	return nil
}

// Decomposer turns orb geometries into scene-space primitives. It never
// mutates its input and is safe for concurrent use.
type Decomposer struct {
	opts   Options
	logger *slog.Logger
}

// NewDecomposer creates a decomposer. A nil opts uses DefaultOptions.
func NewDecomposer(opts *Options) (*Decomposer, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, fmt.Errorf("invalid decomposer options: %w", err)
	}

	return &Decomposer{opts: *opts, logger: logging.OrNop(opts.Logger)}, nil
}

// Scale returns the configured scale factor.
func (d *Decomposer) Scale() float64 {
	return d.opts.Scale
}

type frame struct {
	geom  orb.Geometry
	depth int
	style *Style
}

// Decompose flattens one geometry into primitives. Unsupported or too deeply
// nested parts are skipped; the returned error lists every skip and the
// primitives are valid regardless.
func (d *Decomposer) Decompose(geom orb.Geometry) ([]Primitive, error) {
	return d.decompose(geom, 0)
}

func (d *Decomposer) decompose(geom orb.Geometry, feature int) ([]Primitive, error) {
	var (
		prims []Primitive
		errs  error
	)

	stack := []frame{{geom: geom}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > d.opts.MaxDepth {
			d.logger.Warn("skipping nested geometry", "feature", feature, "depth", f.depth, "max_depth", d.opts.MaxDepth)
			errs = multierr.Append(errs, fmt.Errorf("feature %d: %w: depth %d exceeds %d", feature, ErrGeometryTooDeep, f.depth, d.opts.MaxDepth))
			continue
		}

		switch g := f.geom.(type) {
		case orb.Point:
			prims = append(prims, d.point(g, f.styleOr(StylePoint), feature))

		case orb.LineString:
			if p, ok := d.polyline(g, f.styleOr(StyleLineString), feature); ok {
				prims = append(prims, p)
			}

		case orb.Polygon:
			if p, ok := d.path(g, f.styleOr(StylePolygon), feature); ok {
				prims = append(prims, p)
			}

		case orb.MultiPoint:
			style := f.styleOr(StyleMultiPoint)
			for i := len(g) - 1; i >= 0; i-- {
				stack = append(stack, frame{geom: g[i], depth: f.depth + 1, style: &style})
			}

		case orb.MultiLineString:
			style := f.styleOr(StyleMultiLineString)
			for i := len(g) - 1; i >= 0; i-- {
				stack = append(stack, frame{geom: g[i], depth: f.depth + 1, style: &style})
			}

		case orb.MultiPolygon:
			style := f.styleOr(StyleMultiPolygon)
			for i := len(g) - 1; i >= 0; i-- {
				stack = append(stack, frame{geom: g[i], depth: f.depth + 1, style: &style})
			}

		case orb.Collection:
			if !d.opts.AllowCollections {
				errs = multierr.Append(errs, d.unsupported(f.geom, feature))
				continue
			}
			for i := len(g) - 1; i >= 0; i-- {
				stack = append(stack, frame{geom: g[i], depth: f.depth + 1, style: f.style})
			}

		default:
			errs = multierr.Append(errs, d.unsupported(f.geom, feature))
		}
	}

	return prims, errs
}

func (d *Decomposer) unsupported(geom orb.Geometry, feature int) error {
	d.logger.Warn("skipping unsupported geometry", "feature", feature, "type", fmt.Sprintf("%T", geom))
	return fmt.Errorf("feature %d: %w: %T", feature, ErrUnsupportedGeometry, geom)
}

func (f frame) styleOr(s Style) Style {
	if f.style != nil {
		return *f.style
	}
	return s
}

func (d *Decomposer) point(p orb.Point, style Style, feature int) Primitive {
	return Primitive{
		Kind:    KindPoint,
		Points:  []orb.Point{d.scale(p)},
		Style:   style,
		Feature: feature,
	}
}

func (d *Decomposer) polyline(ls orb.LineString, style Style, feature int) (Primitive, bool) {
	if len(ls) < 2 {
		d.logger.Debug("skipping short line string", "feature", feature, "points", len(ls))
		return Primitive{}, false
	}

	if d.opts.SimplifyTolerance > 0 {
		if s := simplify.DouglasPeucker(d.opts.SimplifyTolerance).LineString(ls.Clone()); len(s) >= 2 {
			ls = s
		}
	}

	return Primitive{
		Kind:    KindPolyline,
		Points:  d.scaleAll(ls),
		Style:   style,
		Feature: feature,
	}, true
}

func (d *Decomposer) path(poly orb.Polygon, style Style, feature int) (Primitive, bool) {
	if len(poly) == 0 || len(poly[0]) < 3 {
		d.logger.Debug("skipping degenerate polygon", "feature", feature)
		return Primitive{}, false
	}

	subpaths := make([][]orb.Point, 0, len(poly))
	for i, ring := range poly {
		if len(ring) < 3 {
			d.logger.Debug("skipping degenerate hole", "feature", feature, "ring", i)
			continue
		}
		subpaths = append(subpaths, closeRing(d.scaleAll(d.simplifyRing(ring))))
	}

	return Primitive{
		Kind:     KindPath,
		Subpaths: subpaths,
		Style:    style,
		Feature:  feature,
	}, true
}

func (d *Decomposer) simplifyRing(r orb.Ring) orb.Ring {
	if d.opts.SimplifyTolerance <= 0 {
		return r
	}
	if s := simplify.DouglasPeucker(d.opts.SimplifyTolerance).Ring(r.Clone()); len(s) >= 4 {
		return s
	}
	return r
}

func (d *Decomposer) scale(p orb.Point) orb.Point {
	return orb.Point{p[0] * d.opts.Scale, -p[1] * d.opts.Scale}
}

func (d *Decomposer) scaleAll(points []orb.Point) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, p := range points {
		out[i] = d.scale(p)
	}
	return out
}

func closeRing(points []orb.Point) []orb.Point {
	if len(points) > 0 && points[0] != points[len(points)-1] {
		points = append(points, points[0])
	}
	return points
}
