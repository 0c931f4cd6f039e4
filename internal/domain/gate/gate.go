// ABOUTME: Playback readiness gate holding back metadata until audio is buffered
// ABOUTME: Buffers at most one pending track record while the transport loads
package gate

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mwynn/portable-radio/internal/domain/track"
)

type State int

const (
	NotReady State = iota
	Ready
)

// Position thresholds for the jump-reset heuristic: a playback position
// falling from above jumpHigh to below jumpLow during Ready is treated
// as an undetected track change.
const (
	jumpHigh = 10.0
	jumpLow  = 2.0
)

// Gate serializes track display against transport readiness. While the
// transport is still buffering, only the most recent differing record is
// held; it is flushed the moment the transport reports it can play.
type Gate struct {
	mu      sync.Mutex
	state   State
	pending *track.Track
	lastPos float64

	display func(*track.Track)
	log     zerolog.Logger
}

// New creates a gate in NotReady with an empty pending slot. The display
// callback fires outside the gate's lock.
func New(display func(*track.Track), log zerolog.Logger) *Gate {
	return &Gate{
		state:   NotReady,
		display: display,
		log:     log,
	}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Offer routes a record that the change detector approved. Ready gates
// display immediately; NotReady gates overwrite the single pending slot.
func (g *Gate) Offer(t *track.Track) {
	g.mu.Lock()
	if g.state == NotReady {
		if g.pending != nil {
			g.log.Debug().Str("superseded", g.pending.DisplayText).Msg("pending track replaced")
		}
		g.pending = t
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.display(t)
}

// OnLoadStart handles the transport beginning to buffer new stream data.
// Any pending record belongs to audio that will never be heard, so it is
// dropped.
func (g *Gate) OnLoadStart() {
	g.mu.Lock()
	g.state = NotReady
	g.pending = nil
	g.lastPos = 0
	g.mu.Unlock()
}

// OnCanPlay handles the transport reporting enough buffered data. The
// buffered pending record, if any, is displayed immediately.
func (g *Gate) OnCanPlay() {
	g.mu.Lock()
	g.state = Ready
	p := g.pending
	g.pending = nil
	g.mu.Unlock()
	if p != nil {
		g.display(p)
	}
}

// OnTimeUpdate applies the jump-reset heuristic: a large backward jump
// in playback position while Ready likely means the stream moved to a
// new track without a loadstart, so the gate closes again.
func (g *Gate) OnTimeUpdate(pos float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Ready && g.lastPos > jumpHigh && pos < jumpLow {
		g.log.Debug().Float64("from", g.lastPos).Float64("to", pos).Msg("position reset, closing gate")
		g.state = NotReady
		g.pending = nil
	}
	g.lastPos = pos
}
