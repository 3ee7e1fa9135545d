// cmd/info.go - Layer listing command
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/valpere/geolayers/internal/extent"
	"github.com/valpere/geolayers/internal/output"
	"github.com/valpere/geolayers/internal/registry"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info FILE...",
	Short: "Load files and list the resulting layers",
	Long: `Load raster and vector files and list the registry's layers with their kind,
visibility and properties, followed by the aggregate extent.

Examples:
  # JSON listing
  geolayers info ortho.tif roads.geojson

  # Human readable table grouped by kind
  geolayers info ortho.tif scan.png roads.geojson --table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("table", false, "print a table instead of JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	asTable, _ := cmd.Flags().GetBool("table")

	return withSession(func(s *session) error {
		report, err := s.load(cmd.Context(), args)
		if err != nil {
			return err
		}

		snap := s.registry.Snapshot()
		ext := extent.Compute(snap)

		if asTable {
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(snap, ext))
			for _, f := range report.Files {
				if f.Error != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", f.Path, f.Error)
				}
			}
			return nil
		}

		doc := output.NewInfoDocument(snap, ext)
		for _, f := range report.Files {
			if f.Error != nil {
				doc.AddFailure(f.Path, f.Error)
			}
		}
		return s.emit(cmd, doc)
	})
}

// renderTable lists layers group by group, then the extent
func renderTable(snap *registry.Snapshot, ext extent.Extent) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GROUP", "NAME", "KIND", "VISIBLE", "PROPERTIES")

	for _, g := range snap.Groups() {
		for _, l := range g.Layers {
			t.Row(g.Title, l.Name, l.Kind.String(), fmt.Sprint(l.Visible), formatProps(l.Props))
		}
	}

	return fmt.Sprintf("%s\nextent (%s): %s", t.String(), ext.Space, ext.Box)
}

func formatProps(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, props[k]))
	}
	return strings.Join(parts, " ")
}
