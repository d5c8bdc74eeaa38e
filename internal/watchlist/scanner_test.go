package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

var now = time.Date(2025, 4, 14, 12, 0, 0, 0, time.UTC)

type fakePrices struct {
	mu     sync.Mutex
	closes map[string][]float64
	calls  map[string]int
}

func (f *fakePrices) History(_ context.Context, symbol string, _, end time.Time) ([]dataflows.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[symbol]++
	closes, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, consts.ErrNetworkFailure)
	}
	points := make([]dataflows.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = dataflows.PricePoint{Time: end.AddDate(0, 0, i-len(closes)), Close: c}
	}
	return points, nil
}

type fakeEarnings map[string]time.Time

func (f fakeEarnings) NextEarnings(_ context.Context, symbol string) (time.Time, bool, error) {
	at, ok := f[symbol]
	return at, ok, nil
}

func sources(symbols ...string) *config.Sources {
	cfg := config.DefaultSources()
	cfg.Watchlist = symbols
	return cfg
}

func ramp(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestScanIsolatesFailures(t *testing.T) {
	prices := &fakePrices{closes: map[string][]float64{
		"CRM":  ramp(63, 250),
		"OKLO": {100, 102, 101, 105, 107},
		"GLD":  {180},
	}}
	s := New(prices, nil, sources("CRM", "PLTR", "OKLO", "GLD"), WithClock(func() time.Time { return now }), WithWorkers(2))

	res := s.Scan(context.Background())

	require.Len(t, res.Snapshots, 2)
	assert.Equal(t, "CRM", res.Snapshots[0].Symbol)
	assert.Equal(t, "OKLO", res.Snapshots[1].Symbol)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "PLTR", res.Skipped[0].Symbol)
	assert.Equal(t, "GLD", res.Skipped[1].Symbol)

	for _, sym := range []string{"CRM", "PLTR", "OKLO", "GLD"} {
		assert.Equal(t, 1, prices.calls[sym], sym)
	}
}

// stuckPrices hangs or panics on one symbol and ignores cancellation while
// doing so, the way a wedged provider client would.
type stuckPrices struct {
	*fakePrices
	bad     string
	release chan struct{}
}

func (f stuckPrices) History(ctx context.Context, symbol string, start, end time.Time) ([]dataflows.PricePoint, error) {
	if symbol == f.bad {
		if f.release == nil {
			panic("provider bug")
		}
		<-f.release
		return nil, errors.New("released")
	}
	return f.fakePrices.History(ctx, symbol, start, end)
}

func healthyPrices() *fakePrices {
	return &fakePrices{closes: map[string][]float64{
		"CRM": ramp(63, 250),
		"NOW": ramp(63, 900),
	}}
}

func TestScanCallTimeoutSkipsOnlyTheHangingSymbol(t *testing.T) {
	prices := stuckPrices{fakePrices: healthyPrices(), bad: "BAD", release: make(chan struct{})}
	t.Cleanup(func() { close(prices.release) })

	s := New(prices, nil, sources("CRM", "BAD", "NOW"),
		WithClock(func() time.Time { return now }),
		WithCallTimeout(50*time.Millisecond))

	res := s.Scan(context.Background())

	require.Len(t, res.Snapshots, 2)
	assert.Equal(t, "CRM", res.Snapshots[0].Symbol)
	assert.Equal(t, "NOW", res.Snapshots[1].Symbol)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "BAD", res.Skipped[0].Symbol)
	assert.Contains(t, res.Skipped[0].Reason, context.DeadlineExceeded.Error())
}

func TestScanReturnsPartialResultWhenContextEnds(t *testing.T) {
	prices := stuckPrices{fakePrices: healthyPrices(), bad: "BAD", release: make(chan struct{})}
	t.Cleanup(func() { close(prices.release) })

	s := New(prices, nil, sources("CRM", "BAD", "NOW"),
		WithClock(func() time.Time { return now }),
		WithWorkers(1),
		WithCallTimeout(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	res := s.Scan(ctx)

	assert.Less(t, time.Since(started), 5*time.Second)
	require.Len(t, res.Snapshots, 1)
	assert.Equal(t, "CRM", res.Snapshots[0].Symbol)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "BAD", res.Skipped[0].Symbol)
	assert.Equal(t, "NOW", res.Skipped[1].Symbol)
	assert.Contains(t, res.Skipped[1].Reason, "not scanned")
}

func TestScanRecoversProviderPanic(t *testing.T) {
	prices := stuckPrices{fakePrices: healthyPrices(), bad: "BAD"}
	s := New(prices, nil, sources("CRM", "BAD", "NOW"), WithClock(func() time.Time { return now }))

	res := s.Scan(context.Background())

	require.Len(t, res.Snapshots, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "BAD", res.Skipped[0].Symbol)
	assert.Equal(t, "panic: provider bug", res.Skipped[0].Reason)
}

type panickyEarnings struct{}

func (panickyEarnings) NextEarnings(context.Context, string) (time.Time, bool, error) {
	panic("calendar bug")
}

func TestScanSurvivesEarningsPanic(t *testing.T) {
	res := New(healthyPrices(), panickyEarnings{}, sources("CRM", "NOW"), WithClock(func() time.Time { return now })).
		Scan(context.Background())

	assert.Len(t, res.Snapshots, 2)
	assert.Empty(t, res.Warnings)
}

func TestScanTable(t *testing.T) {
	prices := &fakePrices{closes: map[string][]float64{"OKLO": {100, 102, 101, 105, 107}}}
	res := New(prices, nil, sources("OKLO")).Scan(context.Background())

	assert.Equal(t, "OKLO : $107.00  (+1.90%) | RSI:N/A(N/A) | N/A", res.Table())
	assert.Equal(t, "No earnings this week.", res.WarningsText())
}

func TestEarningsWindow(t *testing.T) {
	prices := &fakePrices{closes: map[string][]float64{}}
	earnings := fakeEarnings{
		"CRM":  now.Add(3*24*time.Hour + time.Hour),
		"NOW":  now.Add(8 * 24 * time.Hour),
		"AMZN": now.Add(-2 * time.Hour),
		"DLR":  now.Add(7*24*time.Hour + 23*time.Hour),
		"VST":  now.Add(30 * time.Minute),
	}
	s := New(prices, earnings, sources("CRM", "NOW", "AMZN", "DLR", "VST"), WithClock(func() time.Time { return now }))

	res := s.Scan(context.Background())

	assert.Equal(t, []EarningsWarning{
		{Symbol: "CRM", Days: 3},
		{Symbol: "DLR", Days: 7},
		{Symbol: "VST", Days: 0},
	}, res.Warnings)
	assert.Equal(t, "⚠️ CRM: In 3 days\n⚠️ DLR: In 7 days\n⚠️ VST: In 0 days", res.WarningsText())
}

type fakeRouted struct {
	fakePrices
}

func (f *fakeRouted) Supports(symbol string) bool { return symbol != "^GSPC" }

func TestRouterSendsEachSymbolOnce(t *testing.T) {
	preferred := &fakeRouted{fakePrices{closes: map[string][]float64{"CRM": {1, 2}}}}
	fallback := &fakePrices{closes: map[string][]float64{"^GSPC": {1, 2}}}
	r := NewRouter(preferred, fallback)

	_, err := r.History(context.Background(), "CRM", now, now)
	require.NoError(t, err)
	_, err = r.History(context.Background(), "^GSPC", now, now)
	require.NoError(t, err)

	assert.Equal(t, 1, preferred.calls["CRM"])
	assert.Equal(t, 1, fallback.calls["^GSPC"])
	assert.Zero(t, fallback.calls["CRM"])

	assert.Same(t, fallback, NewRouter(nil, fallback))
}
