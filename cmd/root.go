// cmd/root.go - Root command implementation
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "geolayers",
	Short: "Load georeferenced rasters and vector layers and query their coordinates",
	Long: `GeoLayers loads raster images and vector files into a layer registry, places
them in a shared scene space and answers coordinate and extent queries over them.

Rasters:
- PNG, JPEG, GIF, TIFF and BMP headers
- Geotransforms from GeoTIFF tags or world file sidecars (.tfw, .pgw, .jgw, ...)
- Projection labels from .prj sidecars

Vectors:
- GeoJSON, WKT (one geometry per line) and Mapbox Vector Tiles
- Gzipped inputs (.gz)

Examples:
  # List layers and the aggregate extent
  geolayers info ortho.tif roads.geojson

  # Print the extent as a GeoJSON polygon
  geolayers extent ortho.tif --format geojson

  # Geographic position under a scene point
  geolayers locate ortho.tif overlay.png --scene 120,45

  # Scene position of a geographic coordinate
  geolayers locate ortho.tif --geo 30.52,50.45

  # Second page of primitives from a vector file, gzipped
  geolayers decompose roads.geojson --page-offset 1000 --page-limit 1000 -o roads.json --compression`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.geolayers.yaml)")

	// Output flags
	rootCmd.PersistentFlags().StringP("format", "f", "json", "output format (json, geojson)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file path (default: stdout)")
	rootCmd.PersistentFlags().Bool("pretty", true, "pretty print JSON output")
	rootCmd.PersistentFlags().Bool("compression", false, "gzip output files")

	// Render flags
	rootCmd.PersistentFlags().Float64("scale-factor", 100, "vector scale without a georeferenced raster")
	rootCmd.PersistentFlags().Float64("georeferenced-scale-factor", 1000, "vector scale over a georeferenced raster")
	rootCmd.PersistentFlags().Int("max-features", 1000, "features decomposed per vector layer")
	rootCmd.PersistentFlags().Float64("simplify", 0, "Douglas-Peucker tolerance in source units (0 disables)")
	rootCmd.PersistentFlags().Bool("allow-collections", false, "decompose GeometryCollection members")

	// Resolver flags
	rootCmd.PersistentFlags().Float64("fallback-scale", 1000, "scale of approximate geographic placement")
	rootCmd.PersistentFlags().Bool("spatial-index", false, "prefilter candidate rasters with an R-tree")

	// Loader flags
	rootCmd.PersistentFlags().Int("concurrency", 4, "number of files decoded in parallel")
	rootCmd.PersistentFlags().Bool("fail-on-error", false, "stop loading on first file error")

	// Logging flags
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Bind flags to viper
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output.path", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	viper.BindPFlag("output.compression", rootCmd.PersistentFlags().Lookup("compression"))
	viper.BindPFlag("render.scale_factor", rootCmd.PersistentFlags().Lookup("scale-factor"))
	viper.BindPFlag("render.georeferenced_scale_factor", rootCmd.PersistentFlags().Lookup("georeferenced-scale-factor"))
	viper.BindPFlag("render.max_features", rootCmd.PersistentFlags().Lookup("max-features"))
	viper.BindPFlag("render.simplify_tolerance", rootCmd.PersistentFlags().Lookup("simplify"))
	viper.BindPFlag("render.allow_collections", rootCmd.PersistentFlags().Lookup("allow-collections"))
	viper.BindPFlag("resolver.fallback_scale", rootCmd.PersistentFlags().Lookup("fallback-scale"))
	viper.BindPFlag("resolver.spatial_index", rootCmd.PersistentFlags().Lookup("spatial-index"))
	viper.BindPFlag("loader.concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("loader.fail_on_error", rootCmd.PersistentFlags().Lookup("fail-on-error"))
	viper.BindPFlag("logging.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".geolayers" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".geolayers")
	}

	// Environment variables, e.g. GEOLAYERS_RENDER_SCALE_FACTOR
	viper.SetEnvPrefix("GEOLAYERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("logging.verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
