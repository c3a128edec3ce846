// Package config loads detection settings from JSON, TOML or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/internal/logger"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for AOI detection.
// Fields may be loaded from a file and overridden by command-line flags.
type Config struct {
	Algorithm string     `json:"algorithm" toml:"algorithm" yaml:"algorithm"`
	Detection aoi.Params `json:"detection" toml:"detection" yaml:"detection"`
	// ScaleFactor is processing/original; 1 disables downscaling.
	ScaleFactor  float64      `json:"scale_factor" toml:"scale_factor" yaml:"scale_factor"`
	HueExpansion HueExpansion `json:"hue_expansion" toml:"hue_expansion" yaml:"hue_expansion"`
	Thumbnails   Thumbnails   `json:"thumbnails" toml:"thumbnails" yaml:"thumbnails"`
	Tiling       Tiling       `json:"tiling" toml:"tiling" yaml:"tiling"`
	LogLevel     string       `json:"log_level" toml:"log_level" yaml:"log_level"`
}

// HueExpansion configures mask growth around AOIs.
type HueExpansion struct {
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`
	// Range is in OpenCV hue units (0-179).
	Range int `json:"range" toml:"range" yaml:"range"`
}

// Thumbnails configures the AOI thumbnail cache. An empty CacheDir disables it.
type Thumbnails struct {
	CacheDir string `json:"cache_dir" toml:"cache_dir" yaml:"cache_dir"`
	Size     int    `json:"size" toml:"size" yaml:"size"`
}

// Tiling splits the processing mask into segments for contour tracing.
// Overlap below 1 is a fraction of the tile size, otherwise pixels.
type Tiling struct {
	Segments int     `json:"segments" toml:"segments" yaml:"segments"`
	Overlap  float64 `json:"overlap" toml:"overlap" yaml:"overlap"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:   "ColorRange",
		Detection:   aoi.DefaultParams(),
		ScaleFactor: 1.0,
		HueExpansion: HueExpansion{
			Enabled: false,
			Range:   10,
		},
		Thumbnails: Thumbnails{
			Size: 180,
		},
		Tiling: Tiling{
			Segments: 1,
		},
		LogLevel: "info",
	}
}

// Validate clamps soft settings to safe ranges and rejects invalid detection
// parameters or log levels.
func (c *Config) Validate() error {
	if c.ScaleFactor <= 0 || c.ScaleFactor > 1 {
		c.ScaleFactor = 1.0
	}
	if c.HueExpansion.Range < 0 {
		c.HueExpansion.Range = 0
	}
	if c.HueExpansion.Range > 90 {
		c.HueExpansion.Range = 90
	}
	if c.Thumbnails.Size <= 0 {
		c.Thumbnails.Size = 180
	}
	if c.Tiling.Segments < 1 {
		c.Tiling.Segments = 1
	}
	if c.Tiling.Overlap < 0 {
		c.Tiling.Overlap = 0
	}
	if c.Algorithm == "" {
		c.Algorithm = "ColorRange"
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Detection.Validate()
}

// Params returns the detection parameters.
func (c *Config) Params() aoi.Params {
	return c.Detection
}

// Load reads configuration from path, picking the decoder from the file
// extension. Values missing from the file keep their defaults. A missing
// file yields DefaultConfig().
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path in JSON format.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
