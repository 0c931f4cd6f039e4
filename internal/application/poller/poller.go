// ABOUTME: Per-session now-playing polling loop
// ABOUTME: Fetches, parses and routes one cycle at a time at the station's interval
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwynn/portable-radio/internal/application/config"
	"github.com/mwynn/portable-radio/internal/domain"
	"github.com/mwynn/portable-radio/internal/domain/track"
	"github.com/mwynn/portable-radio/internal/infrastructure/parser"
)

// Poller drives the reconciliation cycle for one station session. Route
// receives every parsed record; Paused suspends cycles while the
// transport is paused.
type Poller struct {
	station  config.StationConfig
	feed     domain.FeedSource
	registry *parser.Registry
	route    func(*track.Track)
	paused   func() bool
	log      zerolog.Logger
}

func New(station config.StationConfig, feed domain.FeedSource, registry *parser.Registry, route func(*track.Track), paused func() bool, log zerolog.Logger) *Poller {
	return &Poller{
		station:  station,
		feed:     feed,
		registry: registry,
		route:    route,
		paused:   paused,
		log:      log,
	}
}

// Run polls until ctx is cancelled. Cycles never overlap: each fetch,
// parse and route completes before the next tick is considered, and a
// tick arriving mid-cycle is simply dropped by the ticker.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.station.PollInterval())
	defer ticker.Stop()

	// First cycle fires immediately so the display is not blank for a
	// full poll interval after tune-in.
	p.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.paused != nil && p.paused() {
				continue
			}
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	// Feedless stations synthesize the fixed no-data record locally;
	// no network involved.
	if p.station.Feedless() {
		p.route(track.NoData(p.station.ID))
		return
	}

	payload, err := p.feed.Fetch(ctx, p.station.Feed)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// A transient feed outage must not overwrite good data; skip
		// the cycle and keep whatever is displayed.
		p.log.Debug().Err(err).Str("station", p.station.ID).Msg("feed fetch failed, skipping cycle")
		return
	}

	p.route(p.registry.Parse(p.station.Parser, p.station.ID, payload))
}
