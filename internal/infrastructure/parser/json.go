// ABOUTME: Parsers for stations with structured JSON now-playing feeds
// ABOUTME: Covers KEXP, WBGO, WFUV, KVRX and WRVU payload shapes
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mwynn/portable-radio/internal/domain/track"
)

// kexpParser reads the KEXP plays API: {"results":[{artist,song,album,release_date}]}.
type kexpParser struct{}

func (kexpParser) Parse(stationID string, payload []byte) *track.Track {
	var body struct {
		Results []struct {
			Artist      string `json:"artist"`
			Song        string `json:"song"`
			Album       string `json:"album"`
			ReleaseDate string `json:"release_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Results) == 0 {
		return track.Fallback(stationID)
	}

	r := body.Results[0]
	artist := orSentinel(cleanText(r.Artist), track.UnknownArtist)
	title := orSentinel(cleanText(r.Song), track.UnknownTitle)
	t := track.New(stationID, artist, title, cleanText(r.Album), track.ExtractYear(r.ReleaseDate))
	t.Raw = r
	return t
}

// wbgoParser reads the NPR composer widget: {"onNow":{"song":{...}}}.
type wbgoParser struct{}

func (wbgoParser) Parse(stationID string, payload []byte) *track.Track {
	var body struct {
		OnNow struct {
			Song *struct {
				ArtistName    string `json:"artistName"`
				TrackName     string `json:"trackName"`
				AlbumName     string `json:"albumName"`
				CatalogNumber string `json:"catalogNumber"`
			} `json:"song"`
		} `json:"onNow"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.OnNow.Song == nil {
		return track.Fallback(stationID)
	}

	s := body.OnNow.Song
	artist := orSentinel(cleanText(s.ArtistName), track.UnknownArtist)
	title := orSentinel(cleanText(s.TrackName), track.UnknownTitle)
	album := cleanText(s.AlbumName)
	year := track.ExtractYear(album)
	if year == 0 {
		year = track.ExtractYear(s.CatalogNumber)
	}
	t := track.New(stationID, artist, title, album, year)
	t.Raw = s
	return t
}

// wfuvParser reads WFUV's now_playing.json: {"live":{...}} with two
// possible key spellings per field.
type wfuvParser struct{}

func (wfuvParser) Parse(stationID string, payload []byte) *track.Track {
	var body struct {
		Live map[string]any `json:"live"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Live == nil {
		return track.Fallback(stationID)
	}

	live := body.Live
	artist := orSentinel(cleanText(stringField(live, "artist", "artistName")), track.UnknownArtist)
	title := orSentinel(cleanText(stringField(live, "title", "songName")), track.UnknownTitle)
	album := cleanText(stringField(live, "album"))
	year := track.ExtractYear(stringField(live, "year"))
	if year == 0 {
		year = track.ExtractYear(album)
	}
	t := track.New(stationID, artist, title, album, year)
	t.Raw = live
	return t
}

// kvrxParser reads {artist,track,album}; KVRX embeds album info in the
// title as "Title - Album" when the album field is absent.
type kvrxParser struct{}

var versionQualifier = regexp.MustCompile(`(?i)^(remix|extended|radio|edit|version)$`)

func (kvrxParser) Parse(stationID string, payload []byte) *track.Track {
	var body struct {
		Artist string `json:"artist"`
		Track  string `json:"track"`
		Album  string `json:"album"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Artist == "" || body.Track == "" {
		return track.Fallback(stationID)
	}

	artist := cleanText(body.Artist)
	title := cleanText(body.Track)
	album := cleanText(body.Album)

	if album == "" {
		if i := strings.Index(title, " - "); i > 0 {
			tail := strings.TrimSpace(title[i+3:])
			if len(tail) > 2 && !versionQualifier.MatchString(tail) {
				album = tail
				title = strings.TrimSpace(title[:i])
			}
		}
	}

	t := track.New(stationID, artist, title, album, track.ExtractYear(album))
	t.Raw = body
	return t
}

// wrvuParser reads {artist,song,album}; the endpoint sometimes returns
// the JSON document double-encoded as a string.
type wrvuParser struct{}

func (wrvuParser) Parse(stationID string, payload []byte) *track.Track {
	data := payload
	var asString string
	if err := json.Unmarshal(payload, &asString); err == nil {
		data = []byte(asString)
	}

	var body struct {
		Artist string `json:"artist"`
		Song   string `json:"song"`
		Album  string `json:"album"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Artist == "" || body.Song == "" {
		return track.Fallback(stationID)
	}

	artist := cleanText(body.Artist)
	title := cleanText(body.Song)
	album := cleanText(body.Album)
	t := track.New(stationID, artist, title, album, track.ExtractYear(album))
	t.Raw = body
	return t
}

// noDataParser is bound to feedless stations; it always yields the same
// fixed record.
type noDataParser struct{}

func (noDataParser) Parse(stationID string, _ []byte) *track.Track {
	return track.NoData(stationID)
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
