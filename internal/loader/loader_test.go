// internal/loader/loader_test.go - Unit tests for layer loading
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"

	"github.com/paulmach/orb"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/geolayers/internal"
	"github.com/valpere/geolayers/internal/config"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/internal/resolver"
	"github.com/valpere/geolayers/pkg/bounds"
	"github.com/valpere/geolayers/pkg/render"
)

func newTestLoader(t *testing.T, fs afero.Fs) (*Loader, *registry.Registry) {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	return newTestLoaderWithConfig(fs, cfg)
}

func newTestLoaderWithConfig(fs afero.Fs, cfg *config.Config) (*Loader, *registry.Registry) {
	reg := registry.New(nil)
	res := resolver.New(&resolver.Options{FallbackScale: cfg.Resolver.FallbackScale})
	return New(fs, reg, res, cfg, nil), reg
}

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestReadRaster(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/data/ortho.png", 4, 2)
	require.NoError(t, afero.WriteFile(fs, "/data/ortho.pgw", []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/ortho.prj", []byte("EPSG:3857"), 0o644))
	writePNG(t, fs, "/data/scan.png", 3, 5)
	l, _ := newTestLoader(t, fs)

	info, err := l.ReadRaster("/data/ortho.png")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 2, info.Height)
	assert.True(t, info.HasGeoTransform)
	assert.Equal(t, GeoSourceWorldFile, info.GeoSource)
	assert.Equal(t, "EPSG:3857", info.Projection)

	props := info.Properties()
	assert.Equal(t, 100.0, props[registry.PropTopLeftX])
	assert.Equal(t, 200.0, props[registry.PropTopLeftY])
	assert.Equal(t, -10.0, props[registry.PropPixelHeight])
	assert.Equal(t, "png", props[registry.PropFormat])

	info, err = l.ReadRaster("/data/scan.png")
	require.NoError(t, err)
	assert.False(t, info.HasGeoTransform)
	assert.Equal(t, GeoSourceNone, info.GeoSource)

	g, err := info.GeoReference()
	require.NoError(t, err)
	assert.True(t, g.IsValid())

	_, err = l.ReadRaster("/data/ortho.pgw")
	assert.Equal(t, internal.ErrorCodeUnsupportedFormat, internal.CodeOf(err))
}

func TestReadRasterCorruptHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/broken.png", []byte("not a png"), 0o644))
	l, _ := newTestLoader(t, fs)

	_, err := l.ReadRaster("/broken.png")
	assert.Equal(t, internal.ErrorCodeProcessing, internal.CodeOf(err))
}

func TestLoadGeoreferencedRasters(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/a.png", 4, 2)
	require.NoError(t, afero.WriteFile(fs, "/a.pgw", []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))
	writePNG(t, fs, "/b.png", 4, 2)
	require.NoError(t, afero.WriteFile(fs, "/b.pgw", []byte("10\n0\n0\n-10\n125\n185\n"), 0o644))
	l, reg := newTestLoader(t, fs)
	ctx := context.Background()

	layers, err := l.Load(ctx, "/a.png")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, registry.PrimaryGeoRaster, layers[0].Kind)
	assert.True(t, layers[0].SceneBounds.Equal(bounds.New(0, 0, 4, 2)))

	layers, err = l.Load(ctx, "/b.png")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	b := layers[0]
	assert.Equal(t, registry.GeoreferencedRaster, b.Kind)

	// b's origin (120, 190) is pixel (2, 1) of the primary.
	origin := b.PixelToScene(orb.Point{0, 0})
	assert.InDelta(t, 2, origin[0], 1e-9)
	assert.InDelta(t, 1, origin[1], 1e-9)
	assert.InDelta(t, 4, b.SceneBounds.Width(), 1e-9)
	assert.InDelta(t, 2, b.SceneBounds.Height(), 1e-9)

	primary, ok := reg.Primary()
	require.True(t, ok)
	assert.Equal(t, "a", primary.Name)
}

func TestLoadPlainRaster(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/scan.png", 3, 5)
	l, reg := newTestLoader(t, fs)

	layers, err := l.Load(context.Background(), "/scan.png")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, registry.Raster, layers[0].Kind)
	assert.True(t, layers[0].SceneBounds.Equal(bounds.New(0, 0, 3, 5)))
	assert.False(t, reg.HasGeoreferenced())

	_, err = l.Load(context.Background(), "/scan.png")
	assert.ErrorIs(t, err, internal.ErrDuplicateLayer)
}

func TestLoadRasterWithUnusableWorldFile(t *testing.T) {
	tests := []struct {
		name  string
		world string
	}{
		{"NaN scale", "NaN\n0\n0\n-10\n105\n195\n"},
		{"NaN origin", "10\n0\n0\n-10\nNaN\n195\n"},
		{"zero scale", "0\n0\n0\n0\n105\n195\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writePNG(t, fs, "/scan.png", 3, 5)
			require.NoError(t, afero.WriteFile(fs, "/scan.pgw", []byte(tt.world), 0o644))
			l, reg := newTestLoader(t, fs)

			layers, err := l.Load(context.Background(), "/scan.png")
			require.NoError(t, err)
			require.Len(t, layers, 1)
			assert.Equal(t, registry.Raster, layers[0].Kind)
			assert.False(t, reg.HasGeoreferenced())

			props := layers[0].Props
			assert.Equal(t, false, props[registry.PropHasGeoTransform])
			assert.Equal(t, 0.0, props[registry.PropTopLeftX])
			assert.Equal(t, 1.0, props[registry.PropPixelWidth])

			_, err = json.Marshal(props)
			assert.NoError(t, err)
		})
	}
}

func TestLoadVectorFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/roads.geojson", []byte(roadsGeoJSON), 0o644))
	l, reg := newTestLoader(t, fs)

	layers, err := l.Load(context.Background(), "/roads.geojson")
	require.NoError(t, err)
	require.Len(t, layers, 2)

	points := layers[0]
	assert.Equal(t, registry.Vector, points.Kind)
	assert.Equal(t, "Point", points.GeometryType())
	assert.Equal(t, 2, points.Props[registry.PropFeatureCount])
	assert.Equal(t, 2, points.Props[registry.PropFeaturesDrawn])

	prims, ok := points.Handle.([]render.Primitive)
	require.True(t, ok)
	require.Len(t, prims, 2)
	// Scale factor 100 with no georeferenced raster loaded.
	assert.Equal(t, []orb.Point{{100, -200}}, prims[0].Points)
	assert.True(t, points.SceneBounds.Equal(bounds.New(100, -600, 500, -200)))

	assert.Equal(t, 2, reg.Len())

	// Reloading the same file collides on name and geometry type.
	_, err = l.Load(context.Background(), "/roads.geojson")
	assert.ErrorIs(t, err, internal.ErrDuplicateLayer)
	assert.Equal(t, 2, reg.Len())
}

func TestLoadVectorEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/empty.geojson", []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	l, reg := newTestLoader(t, fs)

	_, err := l.Load(context.Background(), "/empty.geojson")
	assert.Equal(t, internal.ErrorCodeValidation, internal.CodeOf(err))
	assert.Zero(t, reg.Len())
}

func TestLoadAllKeepsInputOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	paths := []string{"/c.wkt", "/a.wkt", "/notes.txt", "/b.wkt", "/missing.wkt"}
	for _, p := range []string{"/a.wkt", "/b.wkt", "/c.wkt"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("POINT (1 1)\n"), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, "/notes.txt", []byte("hello"), 0o644))
	l, reg := newTestLoader(t, fs)

	report, err := l.LoadAll(context.Background(), paths)
	require.Error(t, err)
	require.Len(t, report.Files, len(paths))

	for i, fr := range report.Files {
		assert.Equal(t, paths[i], fr.Path)
	}
	assert.NoError(t, report.Files[0].Error)
	assert.Equal(t, internal.ErrorCodeUnsupportedFormat, internal.CodeOf(report.Files[2].Error))
	assert.Equal(t, internal.ErrorCodeFileSystem, internal.CodeOf(report.Files[4].Error))

	var names []string
	for _, layer := range reg.All() {
		names = append(names, layer.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
	assert.Len(t, report.Loaded(), 3)
}

func TestLoadAllFailOnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.wkt", []byte("POINT (1 1)\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/c.wkt", []byte("POINT (2 2)\n"), 0o644))

	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	cfg.Loader.FailOnError = true
	l, reg := newTestLoaderWithConfig(fs, cfg)

	report, err := l.LoadAll(context.Background(), []string{"/a.wkt", "/b.wkt", "/c.wkt"})
	require.Error(t, err)
	assert.Len(t, report.Files, 2)
	assert.Equal(t, 1, reg.Len())
}

func TestLoadAllCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.wkt", []byte("POINT (1 1)\n"), 0o644))
	l, reg := newTestLoader(t, fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := l.LoadAll(ctx, []string{"/a.wkt"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, report.Files[0].Error, context.Canceled)
	assert.Zero(t, reg.Len())
}

func TestLoadVectorsOverGeoreferencedRaster(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/a.png", 4, 2)
	require.NoError(t, afero.WriteFile(fs, "/a.pgw", []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/pt.wkt", []byte("POINT (1 2)\n"), 0o644))
	l, _ := newTestLoader(t, fs)

	_, err := l.LoadAll(context.Background(), []string{"/a.png", "/pt.wkt"})
	require.NoError(t, err)

	layer, err := l.registry.FindKind("pt", registry.Vector)
	require.NoError(t, err)
	prims := layer.Handle.([]render.Primitive)
	require.Len(t, prims, 1)
	assert.Equal(t, []orb.Point{{1000, -2000}}, prims[0].Points)
}
