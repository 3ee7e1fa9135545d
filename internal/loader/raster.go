// internal/loader/raster.go - Raster header decoding and georeferencing discovery
package loader

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/valpere/geolayers/internal"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/pkg/affine"
	"github.com/valpere/geolayers/pkg/georef"
)

// GeoSource tells where a raster's geotransform came from
type GeoSource string

const (
	GeoSourceNone      GeoSource = ""
	GeoSourceGeoTIFF   GeoSource = "geotiff"
	GeoSourceWorldFile GeoSource = "worldfile"
)

// RasterInfo is what the loader learns about a raster without decoding its
// pixels.
type RasterInfo struct {
	Path            string
	Format          Format
	Width           int
	Height          int
	Transform       affine.Transform
	HasGeoTransform bool
	GeoSource       GeoSource
	Projection      string
}

// GeoReference builds the georeference for the raster. Rasters without a
// geotransform get the identity transform.
func (ri *RasterInfo) GeoReference() (*georef.GeoReference, error) {
	if !ri.HasGeoTransform {
		return georef.Default(ri.Width, ri.Height)
	}
	return georef.New(ri.Transform, ri.Width, ri.Height, ri.Projection)
}

// Properties returns the layer properties recorded for a raster. A
// geotransform that cannot be inverted is reported as absent.
func (ri *RasterInfo) Properties() map[string]any {
	t := ri.Transform
	usable := ri.HasGeoTransform && t.IsInvertible()
	if !usable {
		t = affine.Identity()
	}
	return map[string]any{
		registry.PropWidth:           ri.Width,
		registry.PropHeight:          ri.Height,
		registry.PropHasGeoTransform: usable,
		registry.PropProjection:      ri.Projection,
		registry.PropTopLeftX:        t.X0,
		registry.PropTopLeftY:        t.Y0,
		registry.PropPixelWidth:      t.A,
		registry.PropPixelHeight:     t.D,
		registry.PropRotationX:       t.B,
		registry.PropRotationY:       t.C,
		registry.PropFormat:          string(ri.Format),
	}
}

// ReadRaster decodes the image header and looks for a geotransform in
// GeoTIFF tags, then in a world file sidecar.
func (l *Loader) ReadRaster(path string) (*RasterInfo, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if !format.IsRaster() {
		return nil, internal.NewError(internal.ErrorCodeUnsupportedFormat, fmt.Sprintf("not a raster file: %s", path), nil)
	}

	file, err := l.fs.Open(path)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("failed to open raster: %s", path), err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeProcessing, fmt.Sprintf("failed to decode raster header: %s", path), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, internal.NewError(internal.ErrorCodeValidation, fmt.Sprintf("raster %s has no pixels", path), nil)
	}

	info := &RasterInfo{
		Path:       path,
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Projection: readProjection(l.fs, path),
	}

	if format == FormatTIFF {
		tags, err := readGeoTIFFTags(file)
		switch {
		case err != nil:
			l.logger.Debug("no GeoTIFF tags", "path", path, "error", err)
		default:
			if t, ok := tags.transform(); ok {
				info.Transform, info.HasGeoTransform, info.GeoSource = t, true, GeoSourceGeoTIFF
			}
		}
	}

	if !info.HasGeoTransform {
		if wf := findSidecar(l.fs, path, worldFileExts...); wf != "" {
			t, err := parseWorldFile(l.fs, wf)
			if err != nil {
				l.logger.Warn("ignoring world file", "path", wf, "error", err)
			} else {
				info.Transform, info.HasGeoTransform, info.GeoSource = t, true, GeoSourceWorldFile
			}
		}
	}

	return info, nil
}
