package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/menta2k/marma-detector/internal/errors"
	"github.com/menta2k/marma-detector/internal/utils"
	"github.com/menta2k/marma-detector/pkg/analyzer"
	"github.com/menta2k/marma-detector/pkg/landmarks"
	"github.com/menta2k/marma-detector/pkg/markers"
	"github.com/menta2k/marma-detector/pkg/pipeline"
	"github.com/menta2k/marma-detector/pkg/processing"
	"github.com/menta2k/marma-detector/pkg/segmentation"
)

// Config holds the application configuration
type Config struct {
	Loader       analyzer.Config     `json:"loader"`
	Segmentation segmentation.Config `json:"segmentation"`
	Landmarks    landmarks.Config    `json:"landmarks"`
	Markers      markers.Config      `json:"markers"`
	Output       processing.Config   `json:"output"`
	Batch        BatchConfig         `json:"batch"`
}

// BatchConfig holds configuration for directory runs
type BatchConfig struct {
	Workers int `json:"workers"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Loader:       analyzer.DefaultConfig(),
		Segmentation: segmentation.DefaultConfig(),
		Landmarks:    landmarks.DefaultConfig(),
		Markers:      markers.DefaultConfig(),
		Output:       processing.DefaultConfig(),
		Batch:        BatchConfig{Workers: 0},
	}
}

// Pipeline returns the detection stage configuration
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Segmentation: c.Segmentation,
		Landmarks:    c.Landmarks,
		Markers:      c.Markers,
	}
}

// LoadFromFile loads configuration from a JSON file. Fields absent from
// the file keep their default values.
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
	// Create directory if it doesn't exist
	if err := utils.EnsureDir(filepath.Dir(filename)); err != nil {
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

// Validate checks if the configuration is valid. Failures are config
// AppErrors and always report the first offending field in a fixed order.
func (c *Config) Validate() error {
	if len(c.Loader.SupportedFormats) == 0 {
		return invalid("loader.supported_formats cannot be empty")
	}

	s := c.Segmentation
	if s.AdaptiveBlockSize < 3 || s.AdaptiveBlockSize%2 == 0 {
		return invalid("segmentation.adaptive_block_size must be an odd number >= 3")
	}
	if s.BlurKernel < 1 || s.BlurKernel%2 == 0 {
		return invalid("segmentation.blur_kernel must be a positive odd number")
	}
	if s.CannyLow < 0 || s.CannyHigh < s.CannyLow {
		return invalid("segmentation.canny_low must be non-negative and not above canny_high")
	}
	if s.MorphKernel < 1 || s.EdgeDilateKernel < 1 {
		return invalid("segmentation kernels must be positive")
	}
	if s.CloseIterations < 0 || s.OpenIterations < 0 || s.EdgeDilateIterations < 0 {
		return invalid("segmentation iterations cannot be negative")
	}
	if s.MinAreaFraction < 0 || s.MinAreaFraction > 1 {
		return invalid("segmentation.min_area_fraction must be between 0 and 1")
	}
	if s.MinAspect < 1 || s.MaxAspect <= s.MinAspect {
		return invalid("segmentation aspect band must satisfy 1 <= min_aspect < max_aspect")
	}
	if s.MaxRegions < 1 {
		return invalid("segmentation.max_regions must be positive")
	}

	bands := []struct {
		name string
		band landmarks.Band
	}{
		{"heel", c.Landmarks.Heel},
		{"toe_line", c.Landmarks.ToeLine},
		{"arch", c.Landmarks.Arch},
	}
	for _, nb := range bands {
		b := nb.band
		if !fraction(b.Top) || !fraction(b.Bottom) || !fraction(b.Left) || !fraction(b.Right) {
			return invalid("landmarks.%s band limits must be between 0 and 1", nb.name)
		}
		if b.Top > b.Bottom || b.Left > b.Right {
			return invalid("landmarks.%s band limits are reversed", nb.name)
		}
	}

	m := c.Markers
	if m.MarkerSize < 2 {
		return invalid("markers.marker_size must be at least 2")
	}
	if !fraction(m.Confidence) {
		return invalid("markers.confidence must be between 0 and 1")
	}
	fractions := []struct {
		name  string
		value float64
	}{
		{"kshipra_lateral", m.KshipraLateral},
		{"kurcha_rise", m.KurchaRise},
		{"kurchashira_rise", m.KurchashiraRise},
		{"default_heel_y", m.DefaultHeelY},
		{"default_toe_y", m.DefaultToeY},
		{"default_arch_y", m.DefaultArchY},
	}
	for _, f := range fractions {
		if !fraction(f.value) {
			return invalid("markers.%s must be between 0 and 1", f.name)
		}
	}

	switch c.Output.Format {
	case "", "jpg", "jpeg", "png", "webp":
	default:
		return invalid("output.format must be one of jpg, png, webp")
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return invalid("output.quality must be between 1 and 100")
	}

	if c.Batch.Workers < 0 {
		return invalid("batch.workers cannot be negative")
	}

	return nil
}

// invalid reports a validation failure as a config error
func invalid(format string, args ...interface{}) error {
	return apperrors.NewConfigError(fmt.Sprintf(format, args...), nil)
}

func fraction(v float64) bool {
	return v >= 0 && v <= 1
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "marma-detector", "config.json")
}
