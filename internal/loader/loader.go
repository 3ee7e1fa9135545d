// internal/loader/loader.go - Concurrent file loading with ordered registry commit
package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/valpere/geolayers/internal"
	"github.com/valpere/geolayers/internal/config"
	"github.com/valpere/geolayers/internal/logging"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/internal/resolver"
	"github.com/valpere/geolayers/pkg/bounds"
	"github.com/valpere/geolayers/pkg/render"
)

// Loader decodes raster and vector files and commits them to a registry
type Loader struct {
	fs       afero.Fs
	registry *registry.Registry
	resolver *resolver.Resolver
	config   *config.Config
	logger   *slog.Logger
}

// New creates a loader. cfg supplies the loader and render sections.
func New(fs afero.Fs, reg *registry.Registry, res *resolver.Resolver, cfg *config.Config, logger *slog.Logger) *Loader {
	return &Loader{
		fs:       fs,
		registry: reg,
		resolver: res,
		config:   cfg,
		logger:   logging.OrNop(logger),
	}
}

// FileResult reports the outcome for one input file
type FileResult struct {
	Path    string           `json:"path"`
	Layers  []registry.Layer `json:"-"`
	Skipped int              `json:"skipped,omitempty"` // geometries the decomposer skipped
	Error   error            `json:"-"`
}

// Report summarizes a LoadAll call, one entry per input path in order
type Report struct {
	Files []FileResult
}

// Loaded returns every committed layer in commit order
func (r *Report) Loaded() []registry.Layer {
	var out []registry.Layer
	for _, f := range r.Files {
		out = append(out, f.Layers...)
	}
	return out
}

// decoded is the result of the parallel phase for one file
type decoded struct {
	raster  *RasterInfo
	vectors []VectorSource
	err     error
}

// Load loads a single file
func (l *Loader) Load(ctx context.Context, path string) ([]registry.Layer, error) {
	report, err := l.LoadAll(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	return report.Files[0].Layers, nil
}

// LoadAll decodes files concurrently, then commits them to the registry one
// file at a time in input order so that every file's layers appear together.
// Per-file failures are combined into the returned error; with fail_on_error
// the first failure stops the commit phase.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (*Report, error) {
	results := make([]decoded, len(paths))

	p := pool.New().WithMaxGoroutines(max(l.config.Loader.Concurrency, 1))
	for i, path := range paths {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return
			}
			results[i] = l.decode(path)
		})
	}
	p.Wait()

	report := &Report{Files: make([]FileResult, 0, len(paths))}
	var errs error
	for i, path := range paths {
		fr := FileResult{Path: path}

		err := results[i].err
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			fr.Layers, fr.Skipped, err = l.commit(path, &results[i])
		}

		if err != nil {
			fr.Error = err
			l.logger.Error("failed to load file", "path", path, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
		report.Files = append(report.Files, fr)

		if err != nil && l.config.Loader.FailOnError {
			return report, errs
		}
	}

	return report, errs
}

func (l *Loader) decode(path string) decoded {
	format, err := DetectFormat(path)
	if err != nil {
		return decoded{err: err}
	}

	if format.IsRaster() {
		info, err := l.ReadRaster(path)
		return decoded{raster: info, err: err}
	}

	vectors, err := l.ReadVector(path)
	return decoded{vectors: vectors, err: err}
}

func (l *Loader) commit(path string, d *decoded) ([]registry.Layer, int, error) {
	if d.raster != nil {
		layer, err := l.commitRaster(d.raster)
		if err != nil {
			return nil, 0, err
		}
		return []registry.Layer{layer}, 0, nil
	}
	return l.commitVectors(path, d.vectors)
}

// commitRaster registers a raster. A georeferenced raster is placed so its
// pixel origin lands where the current registry puts (X0, Y0); the first one
// becomes primary and sits at the scene origin.
func (l *Loader) commitRaster(info *RasterInfo) (registry.Layer, error) {
	g, err := info.GeoReference()
	if err != nil {
		return registry.Layer{}, internal.NewError(internal.ErrorCodeValidation, "invalid raster georeference", err)
	}

	kind := registry.Raster
	if info.HasGeoTransform {
		if g.IsValid() {
			kind = registry.GeoreferencedRaster
		} else {
			l.logger.Warn("geotransform is singular, loading as plain raster", "path", info.Path, "transform", info.Transform)
		}
	}

	placement := registry.Translation{}
	if kind == registry.GeoreferencedRaster {
		snap := l.registry.Snapshot()
		if _, ok := snap.Primary(); ok {
			origin, match := l.resolver.GeographicToScene(snap, info.Transform.X0, info.Transform.Y0)
			if match != resolver.MatchNone {
				placement.Offset = origin
			}
		}
	}

	layer := registry.Layer{
		Name:        LayerName(info.Path),
		Path:        info.Path,
		Kind:        kind,
		Handle:      info,
		Placement:   placement,
		GeoRef:      g,
		Props:       info.Properties(),
		Visible:     true,
		SceneBounds: bounds.FromPoints(
			placement.PixelToScene(orb.Point{0, 0}),
			placement.PixelToScene(orb.Point{float64(info.Width), float64(info.Height)}),
		),
	}

	return l.registry.Add(layer)
}

// commitVectors decomposes every group of a vector file at the scale that
// matches the registry's current state and adds them atomically.
func (l *Loader) commitVectors(path string, sources []VectorSource) ([]registry.Layer, int, error) {
	if len(sources) == 0 {
		return nil, 0, internal.NewError(internal.ErrorCodeValidation, fmt.Sprintf("no features in %s", path), nil)
	}

	_, georeferenced := l.registry.Primary()
	decomposer, err := render.NewDecomposer(l.config.DecomposerOptions(georeferenced, l.logger))
	if err != nil {
		return nil, 0, internal.NewError(internal.ErrorCodeConfig, "invalid render configuration", err)
	}

	layers := make([]registry.Layer, 0, len(sources))
	skipped := 0
	for _, src := range sources {
		res, err := decomposer.DecomposeFeatures(src.Features, render.Page{})
		if err != nil {
			l.logger.Warn("geometries skipped", "path", path, "layer", src.Name, "geometry_type", src.GeometryType, "skipped", res.Skipped)
		}
		skipped += res.Skipped

		layers = append(layers, registry.Layer{
			Name:   src.Name,
			Path:   path,
			Kind:   registry.Vector,
			Handle: res.Primitives,
			Props: map[string]any{
				registry.PropGeometryType:  src.GeometryType,
				registry.PropFeatureCount:  res.Total,
				registry.PropFeaturesDrawn: res.Drawn,
				registry.PropFormat:        string(src.Format),
				registry.PropLayerIndex:    src.Index,
				registry.PropSourceLayer:   src.SourceLayer,
			},
			Visible:     true,
			SceneBounds: render.Bounds(res.Primitives),
		})
	}

	added, err := l.registry.AddAll(layers...)
	if err != nil {
		return nil, skipped, err
	}
	return added, skipped, nil
}
