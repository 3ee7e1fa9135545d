// internal/loader/vector.go - GeoJSON, WKT and Mapbox Vector Tile decoding
package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/valpere/geolayers/internal"
)

// VectorSource is one group of features from a vector file that share a
// source layer and a geometry type. Each becomes one registry layer.
type VectorSource struct {
	Name         string // Layer name: file base name or MVT layer name
	SourceLayer  string
	GeometryType string
	Format       Format
	Index        int // Position of the group within its file
	Features     []orb.Geometry
}

// ReadVector decodes a vector file and groups its features by source layer
// and geometry type, in order of first appearance. Features without
// geometry are dropped.
func (l *Loader) ReadVector(path string) ([]VectorSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := readFile(l.fs, path)
	if err != nil {
		return nil, err
	}

	var layers []sourceLayer
	switch format {
	case FormatGeoJSON:
		layers, err = decodeGeoJSON(data, LayerName(path))
	case FormatWKT:
		layers, err = decodeWKT(data, LayerName(path))
	case FormatMVT:
		layers, err = l.decodeMVT(data, path)
	default:
		return nil, internal.NewError(internal.ErrorCodeUnsupportedFormat, fmt.Sprintf("not a vector file: %s", path), nil)
	}
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeProcessing, fmt.Sprintf("failed to decode %s", path), err)
	}

	return groupByGeometryType(layers, format), nil
}

type sourceLayer struct {
	name     string
	features []orb.Geometry
}

func groupByGeometryType(layers []sourceLayer, format Format) []VectorSource {
	var out []VectorSource
	for _, sl := range layers {
		index := make(map[string]int)
		for _, g := range sl.features {
			if g == nil {
				continue
			}
			kind := g.GeoJSONType()
			i, ok := index[kind]
			if !ok {
				i = len(out)
				index[kind] = i
				out = append(out, VectorSource{
					Name:         sl.name,
					SourceLayer:  sl.name,
					GeometryType: kind,
					Format:       format,
					Index:        i,
				})
			}
			out[i].Features = append(out[i].Features, g)
		}
	}
	return out
}

// decodeGeoJSON accepts a FeatureCollection, a single Feature or a bare
// geometry object.
func decodeGeoJSON(data []byte, name string) ([]sourceLayer, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	var features []orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		for _, f := range fc.Features {
			features = append(features, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		features = append(features, f.Geometry)
	case "":
		return nil, fmt.Errorf("GeoJSON object has no type")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		features = append(features, g.Geometry())
	}

	return []sourceLayer{{name: name, features: features}}, nil
}

// decodeWKT reads one geometry per non-empty line.
func decodeWKT(data []byte, name string) ([]sourceLayer, error) {
	var features []orb.Geometry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		g, err := wkt.Unmarshal(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		features = append(features, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return []sourceLayer{{name: name, features: features}}, nil
}

// decodeMVT unmarshals a vector tile. When the path carries z/x/y the
// geometries are projected to WGS84; otherwise they stay in tile
// coordinates. Layers are ordered by name.
func (l *Loader) decodeMVT(data []byte, path string) ([]sourceLayer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty tile data")
	}

	layers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal MVT data: %w", err)
	}

	if tc, err := parseTileCoordinates(path); err == nil {
		layers.ProjectToWGS84(maptile.New(uint32(tc.X), uint32(tc.Y), maptile.Zoom(tc.Z)))
	} else {
		l.logger.Debug("keeping tile coordinates", "path", path, "reason", err)
	}

	sort.Slice(layers, func(i, j int) bool { return layers[i].Name < layers[j].Name })

	out := make([]sourceLayer, 0, len(layers))
	for _, layer := range layers {
		sl := sourceLayer{name: layer.Name, features: make([]orb.Geometry, 0, len(layer.Features))}
		for _, f := range layer.Features {
			sl.features = append(sl.features, f.Geometry)
		}
		out = append(out, sl)
	}
	return out, nil
}
