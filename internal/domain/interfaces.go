// ABOUTME: Domain interfaces for dependency inversion
// ABOUTME: Allows the reconciliation core to depend on abstractions, not concrete implementations
package domain

import (
	"context"
	"time"
)

// Transport is an audio stream handle. Implementations report lifecycle
// through TransportEvents callbacks: LoadStart when new stream data
// begins buffering, CanPlay when enough is buffered to play without
// interruption, TimeUpdate with the playback position in seconds, and
// Error on a fatal stream failure.
type Transport interface {
	Play(ctx context.Context) error
	Pause()
	Resume()
	Paused() bool
	Stop()
	SetVolume(v float64)
}

// TransportEvents is the callback set a transport drives. Nil callbacks
// are skipped.
type TransportEvents struct {
	LoadStart  func()
	CanPlay    func()
	TimeUpdate func(pos float64)
	Error      func(err error)
}

// FeedSource fetches a station's raw now-playing payload.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Enrichment is the album/year pair resolved from the external metadata
// service.
type Enrichment struct {
	Album string
	Year  int
}

// Enricher resolves album and original-release year for an artist/title
// pair. A nil result with nil error means the lookup completed but
// found nothing usable; implementations cache both outcomes.
type Enricher interface {
	Lookup(ctx context.Context, artist, title string) (*Enrichment, error)
}

// SavedTrack is one entry in the listener's persisted track list.
type SavedTrack struct {
	ID          int64
	Station     string
	Artist      string
	Title       string
	Album       string
	Year        int
	DisplayText string
	SavedAt     time.Time
}

// TrackStore persists the listener's saved-track list.
type TrackStore interface {
	Save(st SavedTrack) (int64, error)
	List() ([]SavedTrack, error)
	Find(station, artist, title string) (*SavedTrack, error)
	Remove(id int64) error
	Clear() error
	UpdateEnrichment(artist, title, album string, year int) (int64, error)
}
