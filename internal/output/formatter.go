// internal/output/formatter.go - Output formatting implementation
package output

import (
	"encoding/json"
	"fmt"
)

// GeoJSONFormatter formats documents as GeoJSON FeatureCollections
type GeoJSONFormatter struct {
	pretty bool
}

// NewGeoJSONFormatter creates a new GeoJSON formatter
func NewGeoJSONFormatter(pretty bool) *GeoJSONFormatter {
	return &GeoJSONFormatter{pretty: pretty}
}

// Format formats the document's GeoJSON rendering
func (f *GeoJSONFormatter) Format(doc Document) ([]byte, error) {
	return marshal(doc.FeatureCollection(), f.pretty)
}

// ContentType returns the MIME type for GeoJSON
func (f *GeoJSONFormatter) ContentType() string {
	return "application/geo+json"
}

// JSONFormatter formats documents as structured JSON objects
type JSONFormatter struct {
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(pretty bool) *JSONFormatter {
	return &JSONFormatter{pretty: pretty}
}

// Format formats the document itself
func (f *JSONFormatter) Format(doc Document) ([]byte, error) {
	return marshal(doc, f.pretty)
}

// ContentType returns the MIME type for JSON
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// NewFormatter creates a formatter for format
func NewFormatter(format Format, pretty bool) (Formatter, error) {
	switch format {
	case FormatGeoJSON:
		return NewGeoJSONFormatter(pretty), nil
	case FormatJSON:
		return NewJSONFormatter(pretty), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func marshal(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return data, nil
}
