// ABOUTME: Player settings loaded from TOML with XDG-aware defaults
// ABOUTME: Covers volume, HTTP identity, enrichment and storage tuning
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appDir = "portable-radio"

type Settings struct {
	Volume      float64 `koanf:"volume"`      // 0.0-1.0
	UserAgent   string  `koanf:"user_agent"`  // sent on feed and lookup requests
	Environment string  `koanf:"environment"` // "production" or "development"

	MusicBrainz MusicBrainzSettings `koanf:"musicbrainz"`
	Feed        FeedSettings        `koanf:"feed"`
	Store       StoreSettings       `koanf:"store"`
}

type MusicBrainzSettings struct {
	URL           string `koanf:"url"`
	MinIntervalMs int    `koanf:"min_interval_ms"` // global spacing between lookups
	TimeoutMs     int    `koanf:"timeout_ms"`
	Limit         int    `koanf:"limit"` // max candidate recordings requested
}

type FeedSettings struct {
	TimeoutMs int `koanf:"timeout_ms"`
}

type StoreSettings struct {
	Path string `koanf:"path"` // sqlite database file
}

func (m MusicBrainzSettings) MinInterval() time.Duration {
	return time.Duration(m.MinIntervalMs) * time.Millisecond
}

func (m MusicBrainzSettings) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

func (f FeedSettings) Timeout() time.Duration {
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

func defaultSettings() *Settings {
	return &Settings{
		Volume:      0.7,
		UserAgent:   "portable-radio/1.0 (+https://github.com/mwynn/portable-radio)",
		Environment: "production",
		MusicBrainz: MusicBrainzSettings{
			URL:           "https://musicbrainz.org/ws/2/recording/",
			MinIntervalMs: 1000,
			TimeoutMs:     8000,
			Limit:         5,
		},
		Feed: FeedSettings{TimeoutMs: 6000},
		Store: StoreSettings{
			Path: filepath.Join(xdg.DataHome, appDir, "tracks.db"),
		},
	}
}

// LoadSettings merges TOML config files over built-in defaults. Files
// are tried in priority order, last wins: the XDG config location, then
// ./config.toml in the working directory.
func LoadSettings() (*Settings, error) {
	return loadSettingsFrom(settingsPaths())
}

func loadSettingsFrom(paths []string) (*Settings, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := defaultSettings()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 1 {
		cfg.Volume = 1
	}

	return cfg, nil
}

func settingsPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appDir, "config.toml"),
		"config.toml",
	}
}
