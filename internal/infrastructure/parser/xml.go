// ABOUTME: Parsers for stations with XML now-playing feeds
// ABOUTME: Covers WFMU's quoted song element and KNTU's flat tag layout
package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/mwynn/portable-radio/internal/domain/track"
)

// xmlFields walks an XML document collecting the text of the first
// occurrence of each requested element name, case-insensitive. Feed
// documents are frequently malformed, so strictness is off.
func xmlFields(payload []byte, names ...string) map[string]string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}

	out := make(map[string]string)
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	current := ""
	for {
		tok, err := dec.Token()
		if err == io.EOF || tok == nil {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if want[name] {
				if _, seen := out[name]; !seen {
					current = name
					out[name] = ""
				}
			}
		case xml.CharData:
			if current != "" {
				out[current] += string(t)
			}
		case xml.EndElement:
			current = ""
		}
	}
	return out
}

// wfmuParser prefers the <song> element, formatted as `"Title" by
// Artist`, over the separate artist/title tags.
type wfmuParser struct{}

var wfmuSongRe = regexp.MustCompile(`^"([^"]+)"\s+by\s+(.+)$`)

func (wfmuParser) Parse(stationID string, payload []byte) *track.Track {
	fields := xmlFields(payload, "song", "artist", "title", "album")

	artist := track.UnknownArtist
	title := track.UnknownTitle

	if song := cleanText(fields["song"]); song != "" {
		if m := wfmuSongRe.FindStringSubmatch(song); m != nil {
			title = strings.TrimSpace(m[1])
			artist = strings.TrimSpace(m[2])
		} else if fields["artist"] != "" && fields["title"] != "" {
			artist = cleanText(fields["artist"])
			title = cleanText(fields["title"])
		}
	}

	if artist == track.UnknownArtist || title == track.UnknownTitle {
		return track.Fallback(stationID)
	}

	album := cleanText(fields["album"])
	t := track.New(stationID, artist, title, album, track.ExtractYear(album))
	t.Raw = fields
	return t
}

// kntuParser reads SecureNet player status XML with flat
// artist/title/album tags.
type kntuParser struct{}

func (kntuParser) Parse(stationID string, payload []byte) *track.Track {
	fields := xmlFields(payload, "artist", "title", "album")

	artist := cleanText(fields["artist"])
	title := cleanText(fields["title"])
	if artist == "" || title == "" {
		return track.Fallback(stationID)
	}

	album := cleanText(fields["album"])
	t := track.New(stationID, artist, title, album, track.ExtractYear(album))
	t.Raw = fields
	return t
}
