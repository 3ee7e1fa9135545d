// internal/config/config.go - Configuration management
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/valpere/geolayers/internal/logging"
	"github.com/valpere/geolayers/pkg/render"
)

// Config represents the complete application configuration
type Config struct {
	Render   RenderConfig   `mapstructure:"render"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Loader   LoaderConfig   `mapstructure:"loader"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RenderConfig controls vector decomposition
type RenderConfig struct {
	ScaleFactor              float64 `mapstructure:"scale_factor"`
	GeoreferencedScaleFactor float64 `mapstructure:"georeferenced_scale_factor"`
	MaxFeatures              int     `mapstructure:"max_features"`
	MaxDepth                 int     `mapstructure:"max_depth"`
	SimplifyTolerance        float64 `mapstructure:"simplify_tolerance"`
	AllowCollections         bool    `mapstructure:"allow_collections"`
}

// ResolverConfig controls scene/geographic coordinate resolution
type ResolverConfig struct {
	FallbackScale float64 `mapstructure:"fallback_scale"`
	SpatialIndex  bool    `mapstructure:"spatial_index"`
}

// LoaderConfig controls file loading
type LoaderConfig struct {
	Concurrency int  `mapstructure:"concurrency"`
	FailOnError bool `mapstructure:"fail_on_error"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	Path        string `mapstructure:"path"`
	Compression bool   `mapstructure:"compression"`
	Pretty      bool   `mapstructure:"pretty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Output  string `mapstructure:"output"`
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load loads configuration from the global viper instance
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v after installing defaults
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Render defaults
	v.SetDefault("render.scale_factor", 100.0)
	v.SetDefault("render.georeferenced_scale_factor", 1000.0)
	v.SetDefault("render.max_features", render.DefaultMaxFeatures)
	v.SetDefault("render.max_depth", render.DefaultMaxDepth)
	v.SetDefault("render.simplify_tolerance", 0.0)
	v.SetDefault("render.allow_collections", false)

	// Resolver defaults
	v.SetDefault("resolver.fallback_scale", 1000.0)
	v.SetDefault("resolver.spatial_index", false)

	// Loader defaults
	v.SetDefault("loader.concurrency", 4)
	v.SetDefault("loader.fail_on_error", false)

	// Output defaults
	v.SetDefault("output.format", "json")
	v.SetDefault("output.pretty", true)
	v.SetDefault("output.compression", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.verbose", false)
}

// DecomposerOptions builds decomposer options. Vectors drawn over a
// georeferenced raster use the georeferenced scale factor.
func (c *Config) DecomposerOptions(georeferenced bool, logger *slog.Logger) *render.Options {
	scale := c.Render.ScaleFactor
	if georeferenced {
		scale = c.Render.GeoreferencedScaleFactor
	}

	return &render.Options{
		Scale:             scale,
		MaxFeatures:       c.Render.MaxFeatures,
		MaxDepth:          c.Render.MaxDepth,
		SimplifyTolerance: c.Render.SimplifyTolerance,
		AllowCollections:  c.Render.AllowCollections,
		Logger:            logger,
	}
}

// LogSettings returns the logging section in the form the logging package takes.
// Verbose raises the level to debug.
func (c *Config) LogSettings() logging.Settings {
	level := c.Logging.Level
	if c.Logging.Verbose {
		level = "debug"
	}
	return logging.Settings{
		Level:  level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
		File:   c.Logging.File,
	}
}
