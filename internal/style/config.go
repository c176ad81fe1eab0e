package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the style configuration for filtering exported features
type Config struct {
	// Points filters tagged nodes
	Points *FilterConfig `yaml:"points,omitempty"`
	// Lines filters open ways and non-area relations
	Lines *FilterConfig `yaml:"lines,omitempty"`
	// Polygons filters closed ways and multipolygon relations
	Polygons *FilterConfig `yaml:"polygons,omitempty"`
}

// FilterConfig defines filtering rules for a geometry type
type FilterConfig struct {
	// Include specifies which tag keys/values to include
	// If empty, all tags are included (no filtering)
	Include map[string][]string `yaml:"include,omitempty"`
	// Exclude specifies which tag keys/values to exclude
	// Applied after include rules
	Exclude map[string][]string `yaml:"exclude,omitempty"`
	// RequireAny specifies that at least one of these tags must be present
	RequireAny []string `yaml:"require_any,omitempty"`
}

// LoadConfig loads a style configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse style YAML: %w", err)
	}

	return &cfg, nil
}

// Filter checks if tags match the filter configuration
type Filter struct {
	cfg *FilterConfig
}

// NewFilter creates a filter from configuration
func NewFilter(cfg *FilterConfig) *Filter {
	if cfg == nil {
		return &Filter{cfg: &FilterConfig{}}
	}
	return &Filter{cfg: cfg}
}

func valueListed(values []string, v string) bool {
	for _, allowed := range values {
		if allowed == v || allowed == "*" {
			return true
		}
	}
	return false
}

// Match reports whether a feature with tags should be kept
func (f *Filter) Match(tags map[string]string) bool {
	if len(f.cfg.RequireAny) > 0 {
		found := false
		for _, key := range f.cfg.RequireAny {
			if _, ok := tags[key]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.cfg.Include) > 0 {
		matched := false
		for key, values := range f.cfg.Include {
			v, ok := tags[key]
			if ok && (len(values) == 0 || valueListed(values, v)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for key, values := range f.cfg.Exclude {
		if v, ok := tags[key]; ok && (len(values) == 0 || valueListed(values, v)) {
			return false
		}
	}
	return true
}

// HasFilter returns true if filtering is enabled
func (f *Filter) HasFilter() bool {
	return len(f.cfg.Include) > 0 || len(f.cfg.Exclude) > 0 || len(f.cfg.RequireAny) > 0
}
