// ABOUTME: YAML station registry parsing and validation
// ABOUTME: Defines the read-only per-station configuration for the player
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var defaultStations []byte

type Config struct {
	Stations []StationConfig `yaml:"stations"`
}

type StationConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Stream   string `yaml:"stream"`
	// Feed is the now-playing endpoint. Empty means the station never
	// reports track data and always shows the fixed no-data record.
	Feed   string `yaml:"feed"`
	PollMs int    `yaml:"poll_ms"`
	Parser string `yaml:"parser"`
	// ProgressiveMetadata marks stations that report album/year
	// incrementally after the track identity, so equal records still
	// refresh the display when new fields appear.
	ProgressiveMetadata bool `yaml:"progressive_metadata"`
}

func (s StationConfig) PollInterval() time.Duration {
	return time.Duration(s.PollMs) * time.Millisecond
}

func (s StationConfig) Feedless() bool {
	return s.Feed == ""
}

// Load reads a station registry from path, or the embedded default
// registry when path is empty.
func Load(path string) (*Config, error) {
	data := defaultStations
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Stations))
	for i := range c.Stations {
		st := &c.Stations[i]
		if st.ID == "" {
			return fmt.Errorf("station %d: missing id", i)
		}
		if seen[st.ID] {
			return fmt.Errorf("station %s: duplicate id", st.ID)
		}
		seen[st.ID] = true
		if st.Stream == "" {
			return fmt.Errorf("station %s: missing stream url", st.ID)
		}
		if st.PollMs <= 0 {
			st.PollMs = 4000
		}
		if st.Parser == "" {
			st.Parser = "none"
		}
	}
	return nil
}

// Station looks up a station by ID.
func (c *Config) Station(id string) (StationConfig, bool) {
	for _, st := range c.Stations {
		if st.ID == id {
			return st, true
		}
	}
	return StationConfig{}, false
}

// ProgressiveStations lists the IDs with the progressive-metadata flag,
// as consumed by the track change detector.
func (c *Config) ProgressiveStations() []string {
	var out []string
	for _, st := range c.Stations {
		if st.ProgressiveMetadata {
			out = append(out, st.ID)
		}
	}
	return out
}
