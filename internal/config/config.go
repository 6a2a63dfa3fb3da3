package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Histogram HistogramConfig `json:"histogram"`
	Region    RegionConfig    `json:"region"`
	Isocurve  IsocurveConfig  `json:"isocurve"`
	Output    OutputConfig    `json:"output"`
}

// HistogramConfig holds configuration for the brightness histogram and display levels
type HistogramConfig struct {
	// Bins is the bin count; 0 picks one from the data.
	Bins         int     `json:"bins"`
	ClipFraction float64 `json:"clip_fraction"`
}

// RegionConfig holds the region of interest and how it is sampled
type RegionConfig struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Angle         float64 `json:"angle"` // degrees
	Interpolation string  `json:"interpolation"`
	Axis          string  `json:"axis"`
}

// IsocurveConfig holds configuration for contour extraction
type IsocurveConfig struct {
	// LevelFraction places the level between the matrix minimum (0) and maximum (1).
	LevelFraction float64 `json:"level_fraction"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format       string `json:"format"`
	Quality      int    `json:"quality"`
	Lossless     bool   `json:"lossless"`
	OutputDir    string `json:"output_dir"`
	Overlay      bool   `json:"overlay"`
	OverlayScale int    `json:"overlay_scale"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Histogram: HistogramConfig{
			Bins:         256,
			ClipFraction: 0,
		},
		Region: RegionConfig{
			X:             10,
			Y:             10,
			Width:         50,
			Height:        50,
			Interpolation: "bilinear",
			Axis:          "rows",
		},
		Isocurve: IsocurveConfig{
			LevelFraction: 0.6,
		},
		Output: OutputConfig{
			Format:       "png",
			Quality:      90,
			OutputDir:    "./output",
			Overlay:      false,
			OverlayScale: 1,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing fields keep
// their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Histogram.Bins < 0 {
		return fmt.Errorf("histogram.bins must not be negative")
	}

	if c.Histogram.ClipFraction < 0 || c.Histogram.ClipFraction >= 0.5 {
		return fmt.Errorf("histogram.clip_fraction must be in [0, 0.5)")
	}

	if c.Region.Width < 0 || c.Region.Height < 0 {
		return fmt.Errorf("region.width and region.height must not be negative")
	}

	switch strings.ToLower(c.Region.Interpolation) {
	case "", "bilinear", "nearest":
	default:
		return fmt.Errorf("region.interpolation must be bilinear or nearest, got %q", c.Region.Interpolation)
	}

	switch strings.ToLower(c.Region.Axis) {
	case "", "rows", "columns":
	default:
		return fmt.Errorf("region.axis must be rows or columns, got %q", c.Region.Axis)
	}

	if c.Isocurve.LevelFraction < 0 || c.Isocurve.LevelFraction > 1 {
		return fmt.Errorf("isocurve.level_fraction must be between 0 and 1")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be png, jpg or webp, got %q", c.Output.Format)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.OverlayScale < 1 {
		return fmt.Errorf("output.overlay_scale must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-probe", "config.json")
}
