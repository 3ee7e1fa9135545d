// internal/loader/source.go - File access, format detection and tile path parsing
package loader

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/valpere/geolayers/internal"
)

// Format identifies how a file is decoded
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatWKT     Format = "wkt"
	FormatMVT     Format = "mvt"
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatTIFF    Format = "tiff"
	FormatBMP     Format = "bmp"
)

var formatsByExt = map[string]Format{
	".geojson": FormatGeoJSON,
	".json":    FormatGeoJSON,
	".wkt":     FormatWKT,
	".mvt":     FormatMVT,
	".pbf":     FormatMVT,
	".png":     FormatPNG,
	".jpg":     FormatJPEG,
	".jpeg":    FormatJPEG,
	".gif":     FormatGIF,
	".tif":     FormatTIFF,
	".tiff":    FormatTIFF,
	".bmp":     FormatBMP,
}

// IsRaster reports whether files of this format become raster layers
func (f Format) IsRaster() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatGIF, FormatTIFF, FormatBMP:
		return true
	}
	return false
}

// DetectFormat infers the format from the file extension, looking through
// a trailing .gz.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(trimGzip(path)))
	if f, ok := formatsByExt[ext]; ok {
		return f, nil
	}
	return "", internal.NewError(internal.ErrorCodeUnsupportedFormat, fmt.Sprintf("unsupported file type: %s", path), nil)
}

// LayerName derives a layer name from a path: the base name without
// extensions.
func LayerName(path string) string {
	base := filepath.Base(trimGzip(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isCompressedFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

func trimGzip(path string) string {
	if isCompressedFile(path) {
		return path[:len(path)-len(".gz")]
	}
	return path
}

// readFile reads a whole file, gunzipping it when the name ends in .gz.
func readFile(fs afero.Fs, path string) ([]byte, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("cannot access file: %s", path), err)
	}

	if !info.Mode().IsRegular() {
		return nil, internal.NewError(internal.ErrorCodeValidation, fmt.Sprintf("path is not a regular file: %s", path), nil)
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("failed to open file: %s", path), err)
	}
	defer file.Close()

	var reader io.Reader = file
	if isCompressedFile(path) {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, internal.NewError(internal.ErrorCodeProcessing, fmt.Sprintf("failed to create gzip reader for: %s", path), err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("failed to read file: %s", path), err)
	}
	return data, nil
}

// TileCoordinate locates a vector tile
type TileCoordinate struct {
	Z, X, Y int
}

func (c TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Validate checks the coordinate against its zoom level
func (c TileCoordinate) Validate() error {
	if c.Z < 0 || c.Z > 22 {
		return fmt.Errorf("invalid zoom level %d: must be between 0 and 22", c.Z)
	}

	maxTile := 1 << uint(c.Z)
	if c.X < 0 || c.X >= maxTile {
		return fmt.Errorf("invalid X coordinate %d for zoom %d: must be between 0 and %d", c.X, c.Z, maxTile-1)
	}

	if c.Y < 0 || c.Y >= maxTile {
		return fmt.Errorf("invalid Y coordinate %d for zoom %d: must be between 0 and %d", c.Y, c.Z, maxTile-1)
	}

	return nil
}

// parseTileCoordinates extracts z/x/y from the last three components of a
// path such as tiles/14/8362/5956.mvt.gz.
func parseTileCoordinates(path string) (TileCoordinate, error) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	if len(parts) < 3 {
		return TileCoordinate{}, fmt.Errorf("invalid path structure: %s", path)
	}
	parts = parts[len(parts)-3:]

	z, err := strconv.Atoi(parts[0])
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("invalid Z coordinate: %s", parts[0])
	}

	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("invalid X coordinate: %s", parts[1])
	}

	filename := trimGzip(parts[2])
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))

	y, err := strconv.Atoi(filename)
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("invalid Y coordinate: %s", filename)
	}

	c := TileCoordinate{Z: z, X: x, Y: y}
	if err := c.Validate(); err != nil {
		return TileCoordinate{}, err
	}
	return c, nil
}
