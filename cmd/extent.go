// cmd/extent.go - Aggregate extent command
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/valpere/geolayers/internal/extent"
	"github.com/valpere/geolayers/internal/output"
)

// extentCmd represents the extent command
var extentCmd = &cobra.Command{
	Use:   "extent FILE...",
	Short: "Print the aggregate extent of the loaded layers",
	Long: `Load files and print the bounding box covering them. The box is geographic
when a georeferenced raster is loaded, in pixels for plain rasters and in
scene units for vectors only.

Examples:
  geolayers extent ortho.tif
  geolayers extent roads.geojson rivers.wkt --format geojson`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtent,
}

func init() {
	rootCmd.AddCommand(extentCmd)
}

func runExtent(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session) error {
		if _, err := s.load(cmd.Context(), args); err != nil {
			return err
		}
		return s.emit(cmd, output.NewExtentDocument(extent.Compute(s.registry.Snapshot())))
	})
}
