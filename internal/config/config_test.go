package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

func TestNormalizeFileName(t *testing.T) {
	tests := []struct {
		name   string
		format document.Format
		want   string
	}{
		{"map", document.FormatXML, "map.osm"},
		{"map.osm", document.FormatXML, "map.osm"},
		{"map.osm.pbf", document.FormatXML, "map.osm"},
		{"map", document.FormatPBF, "map.osm.pbf"},
		{"map.osm", document.FormatPBF, "map.osm.pbf"},
		{"map.osm.pbf", document.FormatPBF, "map.osm.pbf"},
		{"map.osm", document.FormatJSON, "map.osm.json"},
		{"map", document.FormatJSON, "map.osm.json"},
		{"map", document.FormatParquet, "map.parquet"},
		{" city ", document.FormatXML, "city.osm"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+string(tt.format), func(t *testing.T) {
			if got := NormalizeFileName(tt.name, tt.format); got != tt.want {
				t.Errorf("NormalizeFileName(%q, %s) = %q, want %q", tt.name, tt.format, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"no output dir", func(c *Config) { c.OutputDir = "" }, false},
		{"blank file name", func(c *Config) { c.FileName = "  " }, false},
		{"unknown format", func(c *Config) { c.Format = "shp" }, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"zoom too deep", func(c *Config) { c.ImageZoom = 30 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osmexport.yaml")
	data := `
output_dir: out
file_name: harbour
format: json
north: east
motorways: false
trees: true
metrics_interval: 5s
non_standard_transit:
  enabled: true
  bus: false
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.North != proj.East {
		t.Errorf("North = %v, want east", cfg.North)
	}
	if cfg.Motorways || !cfg.Trees || !cfg.Contours {
		t.Errorf("feature flags = motorways %v trees %v contours %v", cfg.Motorways, cfg.Trees, cfg.Contours)
	}
	if cfg.MetricsInterval != 5*time.Second {
		t.Errorf("MetricsInterval = %v, want 5s", cfg.MetricsInterval)
	}
	modes := cfg.Transit.Modes()
	if !cfg.Transit.Enabled || modes["bus"] || !modes["tram"] {
		t.Errorf("Transit = %+v, want enabled with bus off", cfg.Transit)
	}
	if got, want := cfg.OutputPath(), filepath.Join("out", "harbour.osm.json"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}

	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() of a missing file succeeded")
	}
}
