// internal/config/validation.go - Configuration validation
package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration structure and values
func Validate(config *Config) error {
	if err := validateRender(&config.Render); err != nil {
		return fmt.Errorf("render configuration invalid: %w", err)
	}

	if err := validateResolver(&config.Resolver); err != nil {
		return fmt.Errorf("resolver configuration invalid: %w", err)
	}

	if err := validateLoader(&config.Loader); err != nil {
		return fmt.Errorf("loader configuration invalid: %w", err)
	}

	if err := validateOutput(&config.Output); err != nil {
		return fmt.Errorf("output configuration invalid: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging configuration invalid: %w", err)
	}

	return nil
}

// validateRender validates decomposition parameters
func validateRender(config *RenderConfig) error {
	if config.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive")
	}

	if config.GeoreferencedScaleFactor <= 0 {
		return fmt.Errorf("georeferenced_scale_factor must be positive")
	}

	if config.MaxFeatures <= 0 {
		return fmt.Errorf("max_features must be positive")
	}

	if config.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}

	if config.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be non-negative")
	}

	return nil
}

// validateResolver validates resolver parameters
func validateResolver(config *ResolverConfig) error {
	if config.FallbackScale <= 0 {
		return fmt.Errorf("fallback_scale must be positive")
	}

	return nil
}

// validateLoader validates loader parameters
func validateLoader(config *LoaderConfig) error {
	if config.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if config.Concurrency > 1000 {
		return fmt.Errorf("concurrency must not exceed 1000")
	}

	return nil
}

// validateOutput validates output configuration parameters
func validateOutput(config *OutputConfig) error {
	validFormats := []string{"json", "geojson"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid format: %s, must be one of %v", config.Format, validFormats)
	}

	return nil
}

// validateLogging validates logging configuration parameters
func validateLogging(config *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of %v", config.Level, validLevels)
	}

	validFormats := []string{"text", "json"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of %v", config.Format, validFormats)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validOutputs, config.Output) {
		return fmt.Errorf("invalid log output: %s, must be one of %v", config.Output, validOutputs)
	}

	if strings.EqualFold(config.Output, "file") && config.File == "" {
		return fmt.Errorf("file is required when output is file")
	}

	return nil
}

// contains checks if a string slice contains a specific string (case-insensitive)
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
