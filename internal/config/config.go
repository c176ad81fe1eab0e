package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid configuration")

// Transit holds the non-standard transit rendering switches
type Transit struct {
	// Enabled is the master switch; per-mode toggles only apply when it is on
	Enabled  bool `yaml:"enabled"`
	Taxi     bool `yaml:"taxi"`
	Bus      bool `yaml:"bus"`
	Tram     bool `yaml:"tram"`
	Train    bool `yaml:"train"`
	Subway   bool `yaml:"subway"`
	Ship     bool `yaml:"ship"`
	Airplane bool `yaml:"airplane"`
}

// Modes returns the per-mode toggles keyed by transit mode
func (t Transit) Modes() map[string]bool {
	return map[string]bool{
		"taxi":     t.Taxi,
		"bus":      t.Bus,
		"tram":     t.Tram,
		"train":    t.Train,
		"subway":   t.Subway,
		"ship":     t.Ship,
		"airplane": t.Airplane,
	}
}

// Config holds the settings for an export run
type Config struct {
	// Output settings
	OutputDir string          `yaml:"output_dir"`
	FileName  string          `yaml:"file_name"`
	Format    document.Format `yaml:"format"`

	// Feature settings
	North     proj.Direction `yaml:"north"`
	Motorways bool           `yaml:"motorways"`
	Contours  bool           `yaml:"contours"`
	Trees     bool           `yaml:"trees"`
	Transit   Transit        `yaml:"non_standard_transit"`

	// ImageZoom is the tile zoom used for the raster tile manifest
	ImageZoom int    `yaml:"image_zoom"`
	TileList  string `yaml:"tile_list"`

	StyleFile  string `yaml:"style_file"`  // Path to style YAML file for tag filtering
	ScriptFile string `yaml:"script_file"` // Path to Lua tag script

	// Processing settings
	Workers int `yaml:"workers"`

	// Logging and metrics
	Verbose         bool          `yaml:"verbose"`
	LogFile         string        `yaml:"log_file"` // Path to log file (empty = no file logging)
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
		FileName:  "map",
		Format:    document.FormatXML,
		North:     proj.North,
		Motorways: true,
		Contours:  true,
		Transit: Transit{
			Taxi:     true,
			Bus:      true,
			Tram:     true,
			Train:    true,
			Subway:   true,
			Ship:     true,
			Airplane: true,
		},
		ImageZoom:       15,
		Workers:         runtime.NumCPU(),
		MetricsInterval: 30 * time.Second,
	}
}

// LoadFile overlays the YAML file at path onto c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalid)
	}
	if strings.TrimSpace(c.FileName) == "" {
		return fmt.Errorf("%w: file name is required", ErrInvalid)
	}
	if _, err := document.ParseFormat(string(c.Format)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalid)
	}
	if c.ImageZoom < 0 || c.ImageZoom > 22 {
		return fmt.Errorf("%w: image zoom %d out of range 0-22", ErrInvalid, c.ImageZoom)
	}
	if c.MetricsInterval < 0 {
		return fmt.Errorf("%w: metrics interval must not be negative", ErrInvalid)
	}
	return nil
}

// OutputPath returns the normalised output file path
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, NormalizeFileName(c.FileName, c.Format))
}

// NormalizeFileName fixes up the extension of name for format
func NormalizeFileName(name string, format document.Format) string {
	name = strings.TrimSpace(name)
	switch format {
	case document.FormatPBF:
		switch {
		case strings.HasSuffix(name, ".osm.pbf"):
			return name
		case strings.HasSuffix(name, ".osm"):
			return name + ".pbf"
		}
		return name + ".osm.pbf"
	case document.FormatJSON:
		name = strings.TrimSuffix(name, ".json")
		name = strings.TrimSuffix(name, ".osm")
		return name + ".osm.json"
	case document.FormatParquet:
		if strings.HasSuffix(name, ".parquet") {
			return name
		}
		return name + ".parquet"
	default:
		name = strings.TrimSuffix(name, ".pbf")
		if strings.HasSuffix(name, ".osm") {
			return name
		}
		return name + ".osm"
	}
}
