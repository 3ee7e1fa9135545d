// cmd/locate.go - Coordinate resolution command
package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/valpere/geolayers/internal/output"
)

// locateCmd represents the locate command
var locateCmd = &cobra.Command{
	Use:   "locate FILE...",
	Short: "Convert between scene and geographic coordinates",
	Long: `Load files and resolve a point through the registry: a scene point to the
geographic position under it, or a geographic position to its scene point.

The primary raster answers first, then the other georeferenced rasters in
load order. Geographic positions outside every raster get an approximate
scene placement, reported with match "approximate".

Examples:
  geolayers locate ortho.tif --scene 512,384
  geolayers locate ortho.tif overlay.tif --geo 30.52,50.45`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().String("scene", "", "scene point 'x,y'")
	locateCmd.Flags().String("geo", "", "geographic point 'lon,lat'")

	locateCmd.MarkFlagsMutuallyExclusive("scene", "geo")
	locateCmd.MarkFlagsOneRequired("scene", "geo")
}

func runLocate(cmd *cobra.Command, args []string) error {
	sceneStr, _ := cmd.Flags().GetString("scene")
	geoStr, _ := cmd.Flags().GetString("geo")

	from, flag, raw := "scene", "scene", sceneStr
	if geoStr != "" {
		from, flag, raw = "geographic", "geo", geoStr
	}

	in, err := parsePoint(raw)
	if err != nil {
		return fmt.Errorf("invalid --%s value: %w", flag, err)
	}

	return withSession(func(s *session) error {
		if _, err := s.load(cmd.Context(), args); err != nil {
			return err
		}

		snap := s.registry.Snapshot()
		var doc *output.LocateDocument
		if from == "scene" {
			out, match := s.resolver.SceneToGeographic(snap, in)
			doc = output.NewLocateDocument(from, in, out, match)
		} else {
			out, match := s.resolver.GeographicToScene(snap, in[0], in[1])
			doc = output.NewLocateDocument(from, in, out, match)
		}
		return s.emit(cmd, doc)
	})
}

// parsePoint parses "x,y" into a finite point
func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("expected 'x,y', got %q", s)
	}

	var p orb.Point
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Point{}, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return orb.Point{}, fmt.Errorf("coordinate %q is not finite", part)
		}
		p[i] = v
	}
	return p, nil
}
