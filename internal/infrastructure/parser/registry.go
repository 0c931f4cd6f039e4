// ABOUTME: Feed parser registry dispatching station payloads to parser kinds
// ABOUTME: Structural failures degrade to a fallback record, never an error
package parser

import (
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mwynn/portable-radio/internal/domain/track"
)

// Parser turns one station's raw feed payload into a track record. A
// parser never fails: unrecognized payloads yield the station fallback.
type Parser interface {
	Parse(stationID string, payload []byte) *track.Track
}

// Registry maps a station's configured parser key to its parser. The
// set of kinds is closed; unknown keys degrade to the fallback record.
type Registry struct {
	parsers map[string]Parser
	log     zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		parsers: map[string]Parser{
			"kexp": kexpParser{},
			"wbgo": wbgoParser{},
			"wfuv": wfuvParser{},
			"wfmu": wfmuParser{},
			"kntu": kntuParser{},
			"wdvx": wdvxParser{},
			"kvrx": kvrxParser{},
			"wrvu": wrvuParser{},
			"none": noDataParser{},
		},
		log: log,
	}
}

// Parse normalizes a raw payload for the given station. Parser panics
// are recovered and downgraded to the fallback record; callers never
// see an error.
func (r *Registry) Parse(parserKey, stationID string, payload []byte) (t *track.Track) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Str("station", stationID).Any("panic", rec).Msg("parser panicked, using fallback")
			t = track.Fallback(stationID)
		}
	}()

	p, ok := r.parsers[parserKey]
	if !ok {
		r.log.Debug().Str("station", stationID).Str("parser", parserKey).Msg("unknown parser key")
		return track.Fallback(stationID)
	}
	return p.Parse(stationID, payload)
}

// cleanText trims and decodes HTML entities left in feed fragments.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// orSentinel substitutes the sentinel when a feed field came up empty.
func orSentinel(s, sentinel string) string {
	if s == "" {
		return sentinel
	}
	return s
}
