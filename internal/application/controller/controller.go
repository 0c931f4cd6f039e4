// ABOUTME: Station session controller coordinating transport, poller and gate
// ABOUTME: A generation counter invalidates async work that outlives its session
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mwynn/portable-radio/internal/application/config"
	"github.com/mwynn/portable-radio/internal/application/poller"
	"github.com/mwynn/portable-radio/internal/domain"
	"github.com/mwynn/portable-radio/internal/domain/gate"
	"github.com/mwynn/portable-radio/internal/domain/track"
	"github.com/mwynn/portable-radio/internal/infrastructure/parser"
)

type ViewMode int

const (
	Overview ViewMode = iota
	Detail
)

// TransportFactory builds the audio transport for a station. Tests
// substitute a fake; production wires the HTTP stream transport.
type TransportFactory func(st config.StationConfig, ev domain.TransportEvents) domain.Transport

// Notifications is the outward-facing callback surface for the view
// layer. All callbacks fire outside the controller's lock.
type Notifications struct {
	TrackDisplayed func(stationID string, sessionID uuid.UUID, t *track.Track)
	TrackCleared   func()
	SessionError   func(stationID string, err error)
}

type Deps struct {
	Stations     *config.Config
	Settings     *config.Settings
	Feed         domain.FeedSource
	Enricher     domain.Enricher
	Store        domain.TrackStore // optional
	Registry     *parser.Registry
	NewTransport TransportFactory
	Notify       Notifications
	Log          zerolog.Logger
}

// Controller owns the single active session. Every asynchronous
// resumption (poll result, transport event, enrichment completion)
// carries the generation it was started under and re-checks it against
// the current one before touching shared state; a mismatch means the
// session changed and the work is silently dropped.
type Controller struct {
	deps     Deps
	detector *track.Detector
	log      zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	sess      *session
	displayed *track.Track
	view      ViewMode
}

type session struct {
	id        uuid.UUID
	station   config.StationConfig
	transport domain.Transport
	gate      *gate.Gate
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(d Deps) *Controller {
	return &Controller{
		deps:     d,
		detector: track.NewDetector(d.Stations.ProgressiveStations()),
		log:      d.Log,
	}
}

// Play starts a session for the given station. Re-selecting the active
// station while in overview mode switches to detail view without
// touching playback; doing so while already in detail mode toggles
// pause instead.
func (c *Controller) Play(ctx context.Context, stationID string) error {
	st, ok := c.deps.Stations.Station(stationID)
	if !ok {
		return fmt.Errorf("station not configured: %s", stationID)
	}

	c.mu.Lock()
	if c.sess != nil && c.sess.station.ID == stationID {
		if c.view == Overview {
			c.view = Detail
			c.mu.Unlock()
			return nil
		}
		transport := c.sess.transport
		c.mu.Unlock()
		c.togglePause(transport)
		return nil
	}

	c.teardownLocked()
	c.gen++
	gen := c.gen

	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		id:      uuid.New(),
		station: st,
		ctx:     sessCtx,
		cancel:  cancel,
	}
	sess.gate = gate.New(func(t *track.Track) { c.display(gen, t) }, c.log)

	events := domain.TransportEvents{
		LoadStart: func() {
			if g := c.gateFor(gen); g != nil {
				g.OnLoadStart()
			}
		},
		CanPlay: func() {
			if g := c.gateFor(gen); g != nil {
				g.OnCanPlay()
			}
		},
		TimeUpdate: func(pos float64) {
			if g := c.gateFor(gen); g != nil {
				g.OnTimeUpdate(pos)
			}
		},
		Error: func(err error) {
			c.onTransportError(gen, err)
		},
	}
	sess.transport = c.deps.NewTransport(st, events)

	c.sess = sess
	c.view = Detail
	c.mu.Unlock()

	c.log.Info().Str("station", st.ID).Str("session", sess.id.String()).Msg("starting session")

	sess.transport.SetVolume(c.deps.Settings.Volume)
	if err := sess.transport.Play(sessCtx); err != nil {
		c.mu.Lock()
		if gen == c.gen {
			c.teardownLocked()
		}
		c.mu.Unlock()
		return fmt.Errorf("start stream: %w", err)
	}

	p := poller.New(st, c.deps.Feed, c.deps.Registry,
		func(t *track.Track) { c.route(gen, t) },
		sess.transport.Paused,
		c.log,
	)
	go p.Run(sessCtx)

	return nil
}

// Stop tears down the active session and clears the displayed record.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.sess == nil {
		c.mu.Unlock()
		return
	}
	stationID := c.sess.station.ID
	c.teardownLocked()
	c.displayed = nil
	c.view = Overview
	c.mu.Unlock()

	c.log.Info().Str("station", stationID).Msg("session stopped")
	if c.deps.Notify.TrackCleared != nil {
		c.deps.Notify.TrackCleared()
	}
}

// CurrentTrack returns a copy of the displayed record, or nil.
func (c *Controller) CurrentTrack() *track.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.displayed == nil {
		return nil
	}
	cp := *c.displayed
	return &cp
}

// ActiveStation returns the playing station's ID, or "".
func (c *Controller) ActiveStation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.station.ID
}

func (c *Controller) View() ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) SetView(v ViewMode) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

// SaveCurrentTrack toggles the displayed track's membership in the
// saved list. Returns true when the track was added, false when an
// existing entry was removed.
func (c *Controller) SaveCurrentTrack() (bool, error) {
	if c.deps.Store == nil {
		return false, fmt.Errorf("no track store configured")
	}
	t := c.CurrentTrack()
	if !t.IsReal() {
		return false, fmt.Errorf("no saveable track playing")
	}

	existing, err := c.deps.Store.Find(t.Station, t.Artist, t.Title)
	if err != nil {
		return false, fmt.Errorf("find saved track: %w", err)
	}
	if existing != nil {
		if err := c.deps.Store.Remove(existing.ID); err != nil {
			return false, fmt.Errorf("remove saved track: %w", err)
		}
		return false, nil
	}

	_, err = c.deps.Store.Save(domain.SavedTrack{
		Station:     t.Station,
		Artist:      t.Artist,
		Title:       t.Title,
		Album:       t.Album,
		Year:        t.Year,
		DisplayText: t.DisplayText,
	})
	if err != nil {
		return false, fmt.Errorf("save track: %w", err)
	}
	return true, nil
}

// route feeds a parsed record through the change detector and, when it
// differs, the readiness gate.
func (c *Controller) route(gen uint64, t *track.Track) {
	c.mu.Lock()
	if gen != c.gen || c.sess == nil {
		c.mu.Unlock()
		return
	}
	g := c.sess.gate
	displayed := c.displayed
	c.mu.Unlock()

	if !c.detector.ShouldUpdate(t, displayed) {
		return
	}
	g.Offer(t)
}

// display commits a record as the one currently shown and kicks off
// asynchronous enrichment for real tracks.
func (c *Controller) display(gen uint64, t *track.Track) {
	c.mu.Lock()
	if gen != c.gen || c.sess == nil {
		c.mu.Unlock()
		return
	}
	c.displayed = t
	sess := c.sess
	c.mu.Unlock()

	c.log.Info().Str("station", t.Station).Str("track", t.DisplayText).Msg("now playing")
	if c.deps.Notify.TrackDisplayed != nil {
		c.deps.Notify.TrackDisplayed(sess.station.ID, sess.id, t)
	}

	if t.IsReal() && c.deps.Enricher != nil {
		go c.enrich(sess.ctx, gen, t.Artist, t.Title)
	}
}

// enrich resolves album/year for the displayed track and applies the
// result only if that exact track is still showing when it lands.
func (c *Controller) enrich(ctx context.Context, gen uint64, artist, title string) {
	res, err := c.deps.Enricher.Lookup(ctx, artist, title)
	if err != nil || res == nil {
		return
	}

	c.mu.Lock()
	stale := gen != c.gen || c.sess == nil || c.displayed == nil ||
		c.displayed.Artist != artist || c.displayed.Title != title
	if stale {
		c.mu.Unlock()
		return
	}
	c.displayed.Merge(res.Album, res.Year)
	updated := *c.displayed
	sess := c.sess
	c.mu.Unlock()

	if c.deps.Notify.TrackDisplayed != nil {
		c.deps.Notify.TrackDisplayed(sess.station.ID, sess.id, &updated)
	}
	if c.deps.Store != nil {
		if _, err := c.deps.Store.UpdateEnrichment(artist, title, res.Album, res.Year); err != nil {
			c.log.Warn().Err(err).Msg("patch saved tracks with enrichment")
		}
	}
}

// gateFor returns the active session's gate if gen is still current.
func (c *Controller) gateFor(gen uint64) *gate.Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.sess == nil {
		return nil
	}
	return c.sess.gate
}

func (c *Controller) togglePause(t domain.Transport) {
	if t.Paused() {
		t.Resume()
		c.log.Info().Msg("resumed")
	} else {
		t.Pause()
		c.log.Info().Msg("paused")
	}
}

// onTransportError handles a fatal stream failure: the session cannot
// continue, so it is torn down and the failure surfaced.
func (c *Controller) onTransportError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || c.sess == nil {
		c.mu.Unlock()
		return
	}
	stationID := c.sess.station.ID
	c.teardownLocked()
	c.displayed = nil
	c.mu.Unlock()

	c.log.Error().Err(err).Str("station", stationID).Msg("stream failed, session ended")
	if c.deps.Notify.SessionError != nil {
		c.deps.Notify.SessionError(stationID, err)
	}
}

// teardownLocked invalidates the current session. Bumping the
// generation strands every callback the old session ever scheduled.
func (c *Controller) teardownLocked() {
	c.gen++
	if c.sess == nil {
		return
	}
	c.sess.cancel()
	c.sess.transport.Stop()
	c.sess = nil
}
