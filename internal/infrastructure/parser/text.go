// ABOUTME: Free-text scraping parser for WDVX Icecast status pages
// ABOUTME: Tries candidate patterns in priority order, first match wins
package parser

import (
	"regexp"
	"strings"

	"github.com/mwynn/portable-radio/internal/domain/track"
)

// Candidate patterns for the WDVX status page, ordered from most to
// least specific. The page's shape has changed across hosting moves, so
// older layouts stay in the ladder.
var wdvxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<td>Current Song:</td>\s*<td[^>]*>([^<]+)</td>`),
	regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`),
	regexp.MustCompile(`(?i)<server_name[^>]*>([^<]+)</server_name>`),
	regexp.MustCompile(`(?i)<yp_currently_playing[^>]*>([^<]+)</yp_currently_playing>`),
	regexp.MustCompile(`(?i)<artist[^>]*>([^<]+)</artist>`),
	regexp.MustCompile(`(?i)<song[^>]*>([^<]+)</song>`),
	regexp.MustCompile(`(?i)<td class="streamdata">([^<]+)</td>`),
	regexp.MustCompile(`(?i)<td[^>]*>([^<]*\s*-\s*[^<]*)</td>`),
	regexp.MustCompile(`(?i)current[^<]*song[^<]*:?\s*([^<\n\r]+)`),
	regexp.MustCompile(`(?i)now playing[^<]*:?\s*([^<\n\r]+)`),
	regexp.MustCompile(`(?i)title[^<]*:?\s*([^<\n\r]+)`),
	regexp.MustCompile(`(?i)StreamTitle='([^']+)'`),
	regexp.MustCompile(`(?i)Current Track:\s*([^\n\r]+)`),
	regexp.MustCompile(`([^<>\n\r]+ - [^<>\n\r]+)`),
}

var parenYearRe = regexp.MustCompile(`\s*\(\d{4}\)\s*`)

type wdvxParser struct{}

func (wdvxParser) Parse(stationID string, payload []byte) *track.Track {
	text := string(payload)

	song := ""
	for _, re := range wdvxPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			continue
		}
		candidate := cleanText(m[1])
		// Station-name-only matches carry no track data.
		if strings.Contains(strings.ToLower(candidate), "wdvx") && !strings.Contains(candidate, " - ") {
			continue
		}
		song = candidate
		break
	}

	if song == "" {
		return track.Fallback(stationID)
	}

	if i := strings.Index(song, " - "); i > 0 {
		artist := strings.TrimSpace(song[:i])
		titlePart := strings.TrimSpace(song[i+3:])
		year := track.ExtractYear(titlePart)
		title := strings.TrimSpace(parenYearRe.ReplaceAllString(titlePart, " "))
		title = collapseDuplicate(title)

		if artist != "" && title != "" && artist != title {
			t := track.New(stationID, artist, title, "", year)
			t.Raw = rawSnippet(song, text)
			return t
		}
	} else if len(song) > 3 {
		t := track.New(stationID, track.UnknownArtist, song, "", track.ExtractYear(song))
		t.Raw = rawSnippet(song, text)
		return t
	}

	return track.Fallback(stationID)
}

// collapseDuplicate reduces "Title - Title" to a single "Title".
func collapseDuplicate(title string) string {
	i := strings.Index(title, " - ")
	if i <= 0 {
		return title
	}
	first := strings.TrimSpace(title[:i])
	second := strings.TrimSpace(title[i+3:])
	if first == second {
		return first
	}
	return title
}

func rawSnippet(song, text string) map[string]string {
	if len(text) > 500 {
		text = text[:500]
	}
	return map[string]string{"songText": song, "matchedData": text}
}
