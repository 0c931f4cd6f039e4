// ABOUTME: Tests for TOML settings loading
// ABOUTME: Covers defaults, file overrides and volume clamping
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := loadSettingsFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Volume)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "https://musicbrainz.org/ws/2/recording/", cfg.MusicBrainz.URL)
	assert.Equal(t, time.Second, cfg.MusicBrainz.MinInterval())
	assert.Equal(t, 5, cfg.MusicBrainz.Limit)
	assert.Equal(t, 6*time.Second, cfg.Feed.Timeout())
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoadSettings_FileOverrides(t *testing.T) {
	path := writeSettings(t, `
volume = 0.4
environment = "development"

[musicbrainz]
min_interval_ms = 2000

[feed]
timeout_ms = 3000
`)

	cfg, err := loadSettingsFrom([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Volume)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 2*time.Second, cfg.MusicBrainz.MinInterval())
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout())
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://musicbrainz.org/ws/2/recording/", cfg.MusicBrainz.URL)
}

func TestLoadSettings_LastFileWins(t *testing.T) {
	first := writeSettings(t, "volume = 0.2\n")
	second := writeSettings(t, "volume = 0.9\n")

	cfg, err := loadSettingsFrom([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Volume)
}

func TestLoadSettings_VolumeClamped(t *testing.T) {
	path := writeSettings(t, "volume = 1.8\n")
	cfg, err := loadSettingsFrom([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Volume)

	path = writeSettings(t, "volume = -0.5\n")
	cfg, err = loadSettingsFrom([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Volume)
}

func TestLoadSettings_MissingFilesIgnored(t *testing.T) {
	cfg, err := loadSettingsFrom([]string{filepath.Join(t.TempDir(), "absent.toml")})
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Volume)
}

func TestLoadSettings_MalformedFile(t *testing.T) {
	path := writeSettings(t, "volume = [broken\n")
	_, err := loadSettingsFrom([]string{path})
	assert.Error(t, err)
}
