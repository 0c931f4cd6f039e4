// ABOUTME: HTTP audio stream transport with readiness and position events
// ABOUTME: Buffers upstream bytes in a ring and reports lifecycle via callbacks
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwynn/portable-radio/internal/domain"
	"github.com/mwynn/portable-radio/internal/infrastructure/ring"
)

const (
	readChunkBytes   = 8192
	defaultReadyByte = 64 * 1024
	defaultRingBytes = 256 * 1024
	defaultBitrate   = 128 // kbps, position estimation when the hint is absent
)

type HTTPConfig struct {
	URL            string
	UserAgent      string
	ConnectTimeout time.Duration
	RequestHeaders map[string]string
	// ReadyBytes is how much buffered audio counts as "can play".
	ReadyBytes int
	RingBytes  int
	// BitrateHint (kbps) converts byte counts into playback seconds for
	// position events.
	BitrateHint int
}

// HTTPTransport implements domain.Transport over a plain HTTP audio
// stream. Decoding and audible output are outside this component; it
// moves bytes and reports buffering state, which is all the
// reconciliation pipeline consumes.
type HTTPTransport struct {
	cfg    HTTPConfig
	client *http.Client
	events domain.TransportEvents
	buffer *ring.Buffer
	log    zerolog.Logger

	bytesRead atomic.Int64
	volume    atomic.Int64 // millivolume, 0..1000

	mu      sync.Mutex
	paused  bool
	cancel  context.CancelFunc
	started bool
}

func NewHTTP(cfg HTTPConfig, events domain.TransportEvents, log zerolog.Logger) *HTTPTransport {
	if cfg.ReadyBytes <= 0 {
		cfg.ReadyBytes = defaultReadyByte
	}
	if cfg.RingBytes <= 0 {
		cfg.RingBytes = defaultRingBytes
	}
	if cfg.BitrateHint <= 0 {
		cfg.BitrateHint = defaultBitrate
	}

	transport := &http.Transport{
		DisableCompression:    true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	t := &HTTPTransport{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   0, // streaming, no total timeout
		},
		events: events,
		buffer: ring.New(cfg.RingBytes),
		log:    log,
	}
	t.volume.Store(700)
	return t
}

// Play connects to the stream and starts the reader. LoadStart fires
// before the connection attempt; CanPlay fires once enough bytes are
// buffered.
func (t *HTTPTransport) Play(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return errors.New("transport already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.started = true
	t.mu.Unlock()

	t.emitLoadStart()

	body, err := t.connect(ctx)
	if err != nil {
		cancel()
		return err
	}

	go t.readLoop(ctx, body)
	return nil
}

func (t *HTTPTransport) connect(ctx context.Context) (io.ReadCloser, error) {
	connectCtx := ctx
	if t.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, t.cfg.ConnectTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Icy-MetaData", "0")
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}
	for k, v := range t.cfg.RequestHeaders {
		req.Header.Set(k, v)
	}

	type result struct {
		body io.ReadCloser
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := t.client.Do(req)
		if err != nil {
			done <- result{nil, fmt.Errorf("http request: %w", err)}
			return
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			done <- result{nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)}
			return
		}
		done <- result{resp.Body, nil}
	}()

	select {
	case <-connectCtx.Done():
		return nil, fmt.Errorf("connect: %w", connectCtx.Err())
	case r := <-done:
		return r.body, r.err
	}
}

func (t *HTTPTransport) readLoop(ctx context.Context, body io.ReadCloser) {
	defer body.Close()

	readySignalled := false
	buf := make([]byte, readChunkBytes)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			t.buffer.Write(buf[:n])
			total := t.bytesRead.Add(int64(n))

			if !readySignalled && t.buffer.Len() >= t.cfg.ReadyBytes {
				readySignalled = true
				t.emitCanPlay()
			}
			if readySignalled && !t.Paused() {
				t.emitTimeUpdate(t.position(total))
			}
		}

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A live stream never ends cleanly; EOF is a failure too.
			t.log.Warn().Err(err).Str("url", t.cfg.URL).Msg("stream read ended")
			t.emitError(fmt.Errorf("stream read: %w", err))
			return
		}
	}
}

// position estimates playback seconds from bytes consumed and the
// bitrate hint.
func (t *HTTPTransport) position(totalBytes int64) float64 {
	return float64(totalBytes*8) / float64(t.cfg.BitrateHint*1000)
}

func (t *HTTPTransport) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

func (t *HTTPTransport) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

func (t *HTTPTransport) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *HTTPTransport) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *HTTPTransport) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	t.volume.Store(int64(math.Round(v * 1000)))
}

func (t *HTTPTransport) Volume() float64 {
	return float64(t.volume.Load()) / 1000
}

func (t *HTTPTransport) emitLoadStart() {
	if t.events.LoadStart != nil {
		t.events.LoadStart()
	}
}

func (t *HTTPTransport) emitCanPlay() {
	if t.events.CanPlay != nil {
		t.events.CanPlay()
	}
}

func (t *HTTPTransport) emitTimeUpdate(pos float64) {
	if t.events.TimeUpdate != nil {
		t.events.TimeUpdate(pos)
	}
}

func (t *HTTPTransport) emitError(err error) {
	if t.events.Error != nil {
		t.events.Error(err)
	}
}
