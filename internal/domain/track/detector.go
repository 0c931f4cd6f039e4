// ABOUTME: Track change detection deciding when the displayed record updates
// ABOUTME: Supports per-station progressive-metadata refresh policies
package track

// Detector decides whether a freshly parsed record should replace the
// currently displayed one. Stations listed in progressive report album
// and year incrementally, so for them an identical artist/title pair
// still refreshes the display when new metadata fields appear.
type Detector struct {
	progressive map[string]bool
}

func NewDetector(progressiveStations []string) *Detector {
	m := make(map[string]bool, len(progressiveStations))
	for _, s := range progressiveStations {
		m[s] = true
	}
	return &Detector{progressive: m}
}

// ShouldUpdate applies the baseline identity rule plus the per-station
// progressive-metadata override. A nil candidate means the parser
// rejected the payload outright; that never touches the display.
func (d *Detector) ShouldUpdate(candidate, displayed *Track) bool {
	if candidate == nil {
		return false
	}
	if displayed == nil {
		return true
	}
	if !candidate.SameIdentity(displayed) {
		return true
	}
	if d.progressive[candidate.Station] {
		if candidate.Album != "" && displayed.Album == "" {
			return true
		}
		if candidate.Year != 0 && displayed.Year == 0 {
			return true
		}
	}
	return false
}
