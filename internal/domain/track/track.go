// ABOUTME: Track record domain model with sentinel values and display text
// ABOUTME: Normalized unit produced by feed parsers and consumed by the pipeline
package track

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Sentinel values marking unresolved track data. A record carrying any
// of these is never treated as a real track.
const (
	UnknownArtist   = "Unknown Artist"
	UnknownTitle    = "Unknown Track"
	LiveRadioArtist = "Live Radio"
	NoDataTitle     = "Track Data Not Available"
	ListeningPrefix = "Listening to "
)

// MinYear bounds plausible release years; anything earlier is noise.
const MinYear = 1900

type Track struct {
	Station     string
	Artist      string
	Title       string
	Album       string
	Year        int // 0 when unknown
	DisplayText string
	Raw         any // original payload fragment, diagnostics only
}

// New builds a record with DisplayText derived from the resolved fields.
func New(station, artist, title, album string, year int) *Track {
	t := &Track{
		Station: station,
		Artist:  artist,
		Title:   title,
		Album:   album,
		Year:    year,
	}
	t.DisplayText = displayText(artist, title, year)
	return t
}

// Fallback is the record a station degrades to when its feed payload
// cannot be parsed.
func Fallback(station string) *Track {
	return &Track{
		Station:     station,
		Artist:      UnknownArtist,
		Title:       UnknownTitle,
		DisplayText: ListeningPrefix + station,
	}
}

// NoData is the fixed record for stations without a now-playing feed.
func NoData(station string) *Track {
	return &Track{
		Station:     station,
		Artist:      LiveRadioArtist,
		Title:       NoDataTitle,
		DisplayText: NoDataTitle,
	}
}

// IsReal reports whether the record identifies an actual track, i.e. it
// is eligible for enrichment and for saving.
func (t *Track) IsReal() bool {
	if t == nil {
		return false
	}
	if t.Artist == "" || t.Title == "" {
		return false
	}
	if t.Artist == UnknownArtist || t.Artist == LiveRadioArtist {
		return false
	}
	if t.Title == UnknownTitle || t.Title == NoDataTitle {
		return false
	}
	return !strings.HasPrefix(t.DisplayText, ListeningPrefix)
}

// SameIdentity reports whether two records name the same track on the
// same station.
func (t *Track) SameIdentity(other *Track) bool {
	if t == nil || other == nil {
		return false
	}
	return t.Artist == other.Artist && t.Title == other.Title && t.Station == other.Station
}

// Merge fills album and year from an enrichment result. Station-supplied
// values win; enrichment only fills missing fields.
func (t *Track) Merge(album string, year int) {
	if t.Album == "" && album != "" {
		t.Album = album
	}
	if t.Year == 0 && year != 0 {
		t.Year = year
	}
	t.DisplayText = displayText(t.Artist, t.Title, t.Year)
}

func displayText(artist, title string, year int) string {
	if year != 0 {
		return fmt.Sprintf("%s - %s (%d)", artist, title, year)
	}
	return fmt.Sprintf("%s - %s", artist, title)
}

var yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// ExtractYear scans free text for a plausible 4-digit release year.
// Returns 0 when no year in 1900..currentYear+1 is found.
func ExtractYear(text string) int {
	if text == "" {
		return 0
	}
	m := yearRe.FindString(text)
	if m == "" {
		return 0
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	if y < MinYear || y > time.Now().Year()+1 {
		return 0
	}
	return y
}

// ValidYear bounds a structured year field to the accepted range.
func ValidYear(y int) int {
	if y < MinYear || y > time.Now().Year()+1 {
		return 0
	}
	return y
}
