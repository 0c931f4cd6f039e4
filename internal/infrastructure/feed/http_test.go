// ABOUTME: Tests for the feed HTTP client
// ABOUTME: Verifies cache busting, headers and error handling
package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"song":"x"}`))
	}))
	defer server.Close()

	c := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})
	body, err := c.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"song":"x"}` {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_CacheBustParam(t *testing.T) {
	var gotQuery string
	var gotCacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("t")
		gotCacheControl = r.Header.Get("Cache-Control")
	}))
	defer server.Close()

	c := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})
	fixed := time.UnixMilli(1700000000123)
	c.now = func() time.Time { return fixed }

	if _, err := c.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotQuery != strconv.FormatInt(fixed.UnixMilli(), 10) {
		t.Errorf("t param = %q, want the request timestamp", gotQuery)
	}
	if gotCacheControl != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", gotCacheControl)
	}
}

func TestFetch_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	c := NewHTTP(HTTPConfig{Timeout: 5 * time.Second, UserAgent: "portable-radio/1.0"})
	if _, err := c.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != "portable-radio/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetch_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})
	if _, err := c.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestCacheBust_ExistingQuery(t *testing.T) {
	now := time.UnixMilli(42)
	got := cacheBust("http://example.com/feed?fmt=json", now)
	want := "http://example.com/feed?fmt=json&t=42"
	if got != want {
		t.Errorf("cacheBust = %q, want %q", got, want)
	}

	got = cacheBust("http://example.com/feed", now)
	want = "http://example.com/feed?t=42"
	if got != want {
		t.Errorf("cacheBust = %q, want %q", got, want)
	}
}
