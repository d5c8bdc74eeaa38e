// Package httpcache memoises outbound HTTP responses for a short window so a
// briefing never asks a provider the same question twice.
package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dyike/CortexBrief/internal/metrics"
)

// DefaultTTL is how long a stored response stays fresh.
const DefaultTTL = 900 * time.Second

type entry struct {
	status    int
	header    http.Header
	body      []byte
	fetchedAt time.Time
}

type call struct {
	done chan struct{}
	e    *entry
	err  error
}

// Transport is an http.RoundTripper that serves GET and HEAD requests from
// memory while the stored 200 response is younger than the TTL. Entries are
// never persisted and the map is unbounded; expired entries are dropped when
// they are next looked up.
type Transport struct {
	next    http.RoundTripper
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Recorder

	mu      sync.RWMutex
	entries map[string]*entry

	flightMu sync.Mutex
	inflight map[string]*call
}

type Option func(*Transport)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(t *Transport) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) {
		if now != nil {
			t.now = now
		}
	}
}

// WithNext sets the transport used on a miss.
func WithNext(next http.RoundTripper) Option {
	return func(t *Transport) {
		if next != nil {
			t.next = next
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(t *Transport) {
		t.metrics = m
	}
}

func New(opts ...Option) *Transport {
	t := &Transport{
		next:     http.DefaultTransport,
		ttl:      DefaultTTL,
		now:      time.Now,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*call),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Client wraps the transport in an *http.Client with the given timeout.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.next.RoundTrip(req)
	}

	key := Key(req.Method, req.URL)
	if e, ok := t.lookup(key); ok {
		t.metrics.RecordCache(true)
		return e.response(req, true), nil
	}

	t.flightMu.Lock()
	if c, ok := t.inflight[key]; ok {
		t.flightMu.Unlock()
		select {
		case <-c.done:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
		if c.err != nil {
			return nil, c.err
		}
		t.metrics.RecordCache(true)
		return c.e.response(req, true), nil
	}
	// The previous leader may have stored its entry between our lookup and
	// taking flightMu.
	if e, ok := t.lookup(key); ok {
		t.flightMu.Unlock()
		t.metrics.RecordCache(true)
		return e.response(req, true), nil
	}
	c := &call{done: make(chan struct{})}
	t.inflight[key] = c
	t.flightMu.Unlock()

	t.metrics.RecordCache(false)
	c.e, c.err = t.fetch(req)
	if c.err == nil && c.e.status == http.StatusOK {
		t.mu.Lock()
		t.entries[key] = c.e
		t.mu.Unlock()
	}

	t.flightMu.Lock()
	delete(t.inflight, key)
	t.flightMu.Unlock()
	close(c.done)

	if c.err != nil {
		return nil, c.err
	}
	return c.e.response(req, false), nil
}

func (t *Transport) fetch(req *http.Request) (*entry, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &entry{
		status:    resp.StatusCode,
		header:    resp.Header.Clone(),
		body:      body,
		fetchedAt: t.now(),
	}, nil
}

func (t *Transport) lookup(key string) (*entry, bool) {
	t.mu.RLock()
	e, ok := t.entries[key]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if t.now().Sub(e.fetchedAt) >= t.ttl {
		t.mu.Lock()
		if cur, ok := t.entries[key]; ok && cur == e {
			delete(t.entries, key)
		}
		t.mu.Unlock()
		return nil, false
	}
	return e, true
}

// Len reports the number of stored entries, fresh or not.
func (t *Transport) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Purge drops every stored entry.
func (t *Transport) Purge() {
	t.mu.Lock()
	t.entries = make(map[string]*entry)
	t.mu.Unlock()
}

func (e *entry) response(req *http.Request, hit bool) *http.Response {
	header := e.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if hit {
		header.Set("X-Cache", "HIT")
	} else {
		header.Set("X-Cache", "MISS")
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.status, http.StatusText(e.status)),
		StatusCode:    e.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
	}
}

// Key normalises a request into its cache key: upper-case method, lower-case
// scheme and host, sorted query, no fragment or userinfo.
func Key(method string, u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	n.User = nil
	n.Fragment = ""
	n.RawFragment = ""
	n.RawQuery = n.Query().Encode()
	return strings.ToUpper(method) + " " + n.String()
}
