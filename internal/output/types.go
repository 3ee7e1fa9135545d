// internal/output/types.go - Output handling types
package output

import (
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"
)

// Format represents the output formats supported by the application
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatJSON    Format = "json"
)

// Document is a result the CLI prints. Every document also has a GeoJSON
// rendering.
type Document interface {
	FeatureCollection() *geojson.FeatureCollection
}

// Formatter turns documents into bytes
type Formatter interface {
	Format(doc Document) ([]byte, error)
	ContentType() string
}

// Destination represents an output destination (file, stdout, etc.)
type Destination interface {
	io.WriteCloser
	Name() string
	Size() int64
}

// WriterConfig contains configuration for creating writers
type WriterConfig struct {
	Format      Format
	Pretty      bool
	Compression bool   // gzip file output; ignored for stdout
	Path        string // "" or "-" writes to stdout
}

// Validate validates the writer configuration
func (c *WriterConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// String returns a string representation of the format
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	switch f {
	case FormatGeoJSON, FormatJSON:
		return true
	default:
		return false
	}
}
