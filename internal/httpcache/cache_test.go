package httpcache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func countingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, r.URL.RawQuery)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func get(t *testing.T, client *http.Client, u string) string {
	t.Helper()
	resp, err := client.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSameRequestWithinTTLHitsNetworkOnce(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
	client := New(WithClock(clock.Now)).Client(time.Second)

	first := get(t, client, srv.URL+"/v3/bill?limit=5")
	clock.Advance(899 * time.Second)
	second := get(t, client, srv.URL+"/v3/bill?limit=5")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
}

func TestExpiredEntryIsRefetched(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
	cache := New(WithClock(clock.Now))
	client := cache.Client(time.Second)

	get(t, client, srv.URL+"/x")
	clock.Advance(900 * time.Second)
	get(t, client, srv.URL+"/x")

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestQueryOrderDoesNotSplitEntries(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK)
	client := New().Client(time.Second)

	get(t, client, srv.URL+"/obs?series_id=DGS10&api_key=k")
	get(t, client, srv.URL+"/obs?api_key=k&series_id=DGS10")

	assert.Equal(t, int32(1), calls.Load())
}

func TestDifferentURLsAreSeparate(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK)
	client := New().Client(time.Second)

	get(t, client, srv.URL+"/item/1.json")
	get(t, client, srv.URL+"/item/2.json")

	assert.Equal(t, int32(2), calls.Load())
}

func TestErrorResponsesAreNotStored(t *testing.T) {
	srv, calls := countingServer(t, http.StatusBadGateway)
	client := New().Client(time.Second)

	get(t, client, srv.URL+"/flaky")
	get(t, client, srv.URL+"/flaky")

	assert.Equal(t, int32(2), calls.Load())
}

func TestPostBypassesCache(t *testing.T) {
	srv, calls := countingServer(t, http.StatusOK)
	client := New().Client(time.Second)

	for i := 0; i < 2; i++ {
		resp, err := client.Post(srv.URL+"/hook", "text/plain", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestConcurrentMissesCollapse(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := New().Client(5 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/slow")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "ok", string(body))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestKeyNormalisation(t *testing.T) {
	a, _ := url.Parse("HTTPS://API.Example.com/v1/x?b=2&a=1#frag")
	b, _ := url.Parse("https://api.example.com/v1/x?a=1&b=2")

	assert.Equal(t, Key("get", a), Key("GET", b))
	assert.NotEqual(t, Key("HEAD", b), Key("GET", b))
}
