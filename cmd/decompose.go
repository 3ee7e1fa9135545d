// cmd/decompose.go - Vector decomposition command
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/geolayers/internal/output"
	"github.com/valpere/geolayers/pkg/render"
)

// decomposeCmd represents the decompose command
var decomposeCmd = &cobra.Command{
	Use:   "decompose FILE",
	Short: "Emit the render primitives of a vector file",
	Long: `Decode a vector file and emit one page of scene-space render primitives per
layer: points, polylines and paths with their style tags.

Pages are selected with --page-offset and --page-limit; the output reports
next_offset and total so further pages can be requested.

Examples:
  geolayers decompose roads.geojson
  geolayers decompose roads.geojson --page-offset 1000 --page-limit 500 --format geojson
  geolayers decompose tiles/14/8362/5956.mvt.gz -o primitives.json --compression`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	rootCmd.AddCommand(decomposeCmd)

	decomposeCmd.Flags().Int("page-offset", 0, "index of the first feature")
	decomposeCmd.Flags().Int("page-limit", 0, "features per page (default: max-features)")
	decomposeCmd.Flags().Bool("georeferenced", false, "use the georeferenced scale factor")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	offset, _ := cmd.Flags().GetInt("page-offset")
	limit, _ := cmd.Flags().GetInt("page-limit")
	georeferenced, _ := cmd.Flags().GetBool("georeferenced")

	if offset < 0 || limit < 0 {
		return fmt.Errorf("page offset and limit must not be negative")
	}

	return withSession(func(s *session) error {
		path := args[0]
		sources, err := s.loader.ReadVector(path)
		if err != nil {
			return err
		}

		d, err := render.NewDecomposer(s.cfg.DecomposerOptions(georeferenced, s.logger))
		if err != nil {
			return err
		}

		doc := &output.DecomposeDocument{Path: path, Layers: make([]output.LayerPrimitives, 0, len(sources))}
		for _, src := range sources {
			res, err := d.DecomposeFeatures(src.Features, render.Page{Offset: offset, Limit: limit})
			if err != nil {
				s.logger.Warn("geometries skipped", "layer", src.Name, "skipped", res.Skipped,
					"unsupported", errors.Is(err, render.ErrUnsupportedGeometry),
					"too_deep", errors.Is(err, render.ErrGeometryTooDeep))
			}
			doc.Layers = append(doc.Layers, output.LayerPrimitives{
				Layer:        src.Name,
				GeometryType: src.GeometryType,
				Scale:        d.Scale(),
				Result:       res,
			})
		}
		return s.emit(cmd, doc)
	})
}
