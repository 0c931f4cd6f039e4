// ABOUTME: MusicBrainz recording lookup resolving album and release year
// ABOUTME: Globally rate-limited, cached with negative entries, variant retry ladder
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/mwynn/portable-radio/internal/domain"
)

const maxResponseBytes = 512 * 1024

type Config struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MinInterval time.Duration // spacing between outbound requests, across all callers
	Limit       int           // candidate recordings requested
}

// Client resolves album/year pairs for tracks. One outbound request at
// a time, spaced by MinInterval, no matter how many callers are in
// flight. Every attempted (artist, title) pair is cached, including
// failed and empty lookups, so a known-unresolvable query is never
// retried within the process lifetime.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	log     zerolog.Logger

	mu    sync.Mutex
	cache map[string]*domain.Enrichment // nil value is a negative entry
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		log:     log,
		cache:   make(map[string]*domain.Enrichment),
	}
}

// Lookup resolves album and year for an artist/title pair. When the
// original pair finds nothing, cleaned variants (parentheticals
// stripped, trailing " - ..." cut) are tried in order: cleaned artist,
// cleaned title, both. The first hit wins. A nil result with nil error
// means every variant came up empty.
func (c *Client) Lookup(ctx context.Context, artist, title string) (*domain.Enrichment, error) {
	for _, v := range variants(artist, title) {
		res, err := c.lookupOne(ctx, v.artist, v.title)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

type pair struct {
	artist, title string
}

// variants builds the retry ladder, deduplicating pairs the cleaning
// left unchanged.
func variants(artist, title string) []pair {
	ca := cleanQueryTerm(artist)
	ct := cleanQueryTerm(title)

	candidates := []pair{
		{artist, title},
		{ca, title},
		{artist, ct},
		{ca, ct},
	}

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, p := range candidates {
		if p.artist == "" || p.title == "" {
			continue
		}
		k := cacheKey(p.artist, p.title)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// cleanQueryTerm strips parenthetical asides and truncates at a " - "
// separator, which removes remaster suffixes and embedded album names
// that defeat exact-phrase matching.
func cleanQueryTerm(s string) string {
	if i := strings.Index(s, " - "); i > 0 {
		s = s[:i]
	}
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], ")")
		if end < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+end+1:]
	}
	return strings.Join(strings.Fields(s), " ")
}

func cacheKey(artist, title string) string {
	return strings.ToLower(artist + "|" + title)
}

// lookupOne resolves a single exact pair, consulting the cache first.
// Concurrent callers for the same key share one outbound request.
func (c *Client) lookupOne(ctx context.Context, artist, title string) (*domain.Enrichment, error) {
	key := cacheKey(artist, title)

	c.mu.Lock()
	if res, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the cache while this one
		// queued behind the flight group.
		c.mu.Lock()
		if res, ok := c.cache[key]; ok {
			c.mu.Unlock()
			return res, nil
		}
		c.mu.Unlock()

		res := c.fetch(ctx, artist, title)
		if ctx.Err() != nil {
			// A cancelled lookup says nothing about the query; do not
			// poison the cache with it.
			return nil, ctx.Err()
		}

		c.mu.Lock()
		c.cache[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	res, _ := v.(*domain.Enrichment)
	return res, nil
}

// fetch performs the rate-limited outbound request. All failure modes
// collapse to nil so the caller negative-caches them.
func (c *Client) fetch(ctx context.Context, artist, title string) *domain.Enrichment {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(artist, title), nil)
	if err != nil {
		return nil
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("artist", artist).Str("title", title).Msg("musicbrainz request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Int("status", resp.StatusCode).Str("artist", artist).Str("title", title).Msg("musicbrainz non-200")
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil
	}

	res := parseResponse(body)
	if res != nil {
		c.log.Debug().Str("artist", artist).Str("title", title).Str("album", res.Album).Int("year", res.Year).Msg("musicbrainz hit")
	}
	return res
}

func (c *Client) queryURL(artist, title string) string {
	query := fmt.Sprintf(`artist:%q AND recording:%q`, stripQuotes(artist), stripQuotes(title))
	q := url.Values{}
	q.Set("query", query)
	q.Set("fmt", "json")
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	return c.cfg.BaseURL + "?" + q.Encode()
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

type recordingsResponse struct {
	Recordings []struct {
		Releases []struct {
			Title string `json:"title"`
			Date  string `json:"date"`
		} `json:"releases"`
	} `json:"recordings"`
}

// parseResponse scans every release of every candidate recording and
// picks the earliest dated one: earliest year first, full date string
// as the tiebreak. Releases without a usable date are ignored.
func parseResponse(body []byte) *domain.Enrichment {
	var data recordingsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	var best *domain.Enrichment
	bestDate := ""
	for _, rec := range data.Recordings {
		for _, rel := range rec.Releases {
			year := dateYear(rel.Date)
			if year == 0 {
				continue
			}
			if best == nil || year < best.Year || (year == best.Year && rel.Date < bestDate) {
				best = &domain.Enrichment{Album: rel.Title, Year: year}
				bestDate = rel.Date
			}
		}
	}
	return best
}

// dateYear reads the leading 4 digits of an ISO-ish date (YYYY-MM-DD or
// bare YYYY).
func dateYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y < 1000 {
		return 0
	}
	return y
}
