// ABOUTME: Tests for the YAML station registry
// ABOUTME: Covers embedded defaults, validation and progressive-station listing
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Stations) == 0 {
		t.Fatal("embedded registry has no stations")
	}

	for _, st := range cfg.Stations {
		if st.ID == "" || st.Name == "" || st.Stream == "" {
			t.Errorf("station %+v missing required fields", st)
		}
		if st.PollMs <= 0 {
			t.Errorf("station %s: poll interval not defaulted", st.ID)
		}
		if st.Parser == "" {
			t.Errorf("station %s: parser not defaulted", st.ID)
		}
	}
}

func TestLoad_FeedlessStation(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	st, ok := cfg.Station("KDHX")
	if !ok {
		t.Fatal("KDHX missing from embedded registry")
	}
	if !st.Feedless() {
		t.Error("KDHX should be feedless")
	}
	if st.Parser != "none" {
		t.Errorf("KDHX parser = %q, want none", st.Parser)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	yaml := `stations:
  - id: test
    name: Test FM
    stream: http://example.com/stream
    feed: http://example.com/feed
    poll_ms: 2500
    parser: kexp
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st, ok := cfg.Station("test")
	if !ok {
		t.Fatal("station not found")
	}
	if st.PollInterval() != 2500*time.Millisecond {
		t.Errorf("PollInterval = %v", st.PollInterval())
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", "stations:\n  - name: X\n    stream: http://x\n"},
		{"missing stream", "stations:\n  - id: x\n    name: X\n"},
		{"duplicate id", "stations:\n  - id: x\n    name: X\n    stream: http://x\n  - id: x\n    name: Y\n    stream: http://y\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stations.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProgressiveStations(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	progressive := make(map[string]bool)
	for _, id := range cfg.ProgressiveStations() {
		progressive[id] = true
	}
	if !progressive["WBGO"] || !progressive["KVRX"] {
		t.Errorf("progressive stations = %v, want WBGO and KVRX included", cfg.ProgressiveStations())
	}
	if progressive["KEXP"] {
		t.Error("KEXP must not be progressive")
	}
}
