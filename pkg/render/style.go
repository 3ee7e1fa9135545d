// pkg/render/style.go - Style tags attached to render primitives
package render

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Style is the implicit style tag a primitive carries. The renderer decides
// how to draw it; Name identifies the geometry kind that produced it.
type Style struct {
	Name  string     `json:"name"`
	Color color.RGBA `json:"-"`
}

// Hex returns the colour as #rrggbbaa.
func (s Style) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B, s.Color.A)
}

// MarshalJSON writes the style as its name and hex colour.
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}{s.Name, s.Hex()})
}

// Style tags per source geometry type. Children of a multi-part geometry
// carry the multi-part style.
var (
	StylePoint           = Style{Name: "Point", Color: color.RGBA{R: 255, A: 200}}
	StyleLineString      = Style{Name: "LineString", Color: color.RGBA{B: 255, A: 255}}
	StylePolygon         = Style{Name: "Polygon", Color: color.RGBA{G: 255, A: 150}}
	StyleMultiPoint      = Style{Name: "MultiPoint", Color: color.RGBA{R: 255, G: 165, A: 255}}
	StyleMultiLineString = Style{Name: "MultiLineString", Color: color.RGBA{R: 75, B: 130, A: 255}}
	StyleMultiPolygon    = Style{Name: "MultiPolygon", Color: color.RGBA{R: 238, G: 130, B: 238, A: 255}}
	StyleUnknown         = Style{Name: "Unknown", Color: color.RGBA{R: 128, G: 128, B: 128, A: 200}}
)

// StyleByName looks a style up by geometry type name, falling back to
// StyleUnknown.
func StyleByName(name string) Style {
	for _, s := range []Style{StylePoint, StyleLineString, StylePolygon, StyleMultiPoint, StyleMultiLineString, StyleMultiPolygon} {
		if s.Name == name {
			return s
		}
	}
	return StyleUnknown
}
