// Package briefing fans out to every source adapter and the watchlist scanner
// and assembles their results into the fixed seven-section briefing.
package briefing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/metrics"
	"github.com/dyike/CortexBrief/internal/sources"
	"github.com/dyike/CortexBrief/internal/watchlist"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultScanTimeout  = 90 * time.Second
)

// Scanner is the watchlist side of a briefing.
type Scanner interface {
	Scan(ctx context.Context) watchlist.Result
}

// Adapters holds one adapter per briefing slot. A nil slot renders as
// Unavailable.
type Adapters struct {
	Hearings    sources.Adapter
	Nominations sources.Adapter
	Bills       sources.Adapter
	Markets     sources.Adapter
	Global      sources.Adapter
	Macro       sources.Adapter
	FearGreed   sources.Adapter
	Insider     sources.Adapter
	Crypto      sources.Adapter
	TechPulse   sources.Adapter
	Headlines   sources.Adapter
}

// slots lists the adapters with the source name each slot reports under.
func (a Adapters) slots() []struct {
	name    string
	adapter sources.Adapter
} {
	return []struct {
		name    string
		adapter sources.Adapter
	}{
		{consts.Hearings, a.Hearings},
		{consts.Nominations, a.Nominations},
		{consts.Bills, a.Bills},
		{consts.Markets, a.Markets},
		{consts.Global, a.Global},
		{consts.Macro, a.Macro},
		{consts.FearGreed, a.FearGreed},
		{consts.Insider, a.Insider},
		{consts.Crypto, a.Crypto},
		{consts.TechPulse, a.TechPulse},
		{consts.Headlines, a.Headlines},
	}
}

type Aggregator struct {
	adapters     Adapters
	scanner      Scanner
	fetchTimeout time.Duration
	scanTimeout  time.Duration
	now          func() time.Time
	logger       zerolog.Logger
	metrics      *metrics.Recorder
}

type Option func(*Aggregator)

func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

func WithScanTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.scanTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New builds an aggregator. scanner may be nil, in which case the portfolio
// section reads Unavailable.
func New(adapters Adapters, scanner Scanner, opts ...Option) *Aggregator {
	a := &Aggregator{
		adapters:     adapters,
		scanner:      scanner,
		fetchTimeout: DefaultFetchTimeout,
		scanTimeout:  DefaultScanTimeout,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate runs every source concurrently and assembles the report. It has no
// failure mode: anything that fails or runs out of time becomes a placeholder.
func (a *Aggregator) Generate(ctx context.Context) *Report {
	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()
	started := a.now()
	logger.Info().Msg("briefing started")

	slots := a.adapters.slots()
	fragments := make([]sources.Fragment, len(slots))

	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, name string, adapter sources.Adapter) {
			defer wg.Done()
			fragments[i] = a.fetch(ctx, logger, name, adapter)
		}(i, slot.name, slot.adapter)
	}

	var (
		portfolio    watchlist.Result
		portfolioErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		portfolio, portfolioErr = a.scan(ctx, logger)
	}()
	wg.Wait()

	report := &Report{
		RunID:        runID,
		Date:         started,
		Fragments:    fragments,
		Portfolio:    portfolio,
		PortfolioErr: portfolioErr,
	}
	report.Text = Render(report)

	a.metrics.RecordBriefing(float64(a.now().Unix()))
	logger.Info().
		Int("snapshots", len(portfolio.Snapshots)).
		Int("skipped", len(portfolio.Skipped)).
		Dur("elapsed", a.now().Sub(started)).
		Msg("briefing assembled")
	return report
}

func (a *Aggregator) fetch(ctx context.Context, logger zerolog.Logger, name string, adapter sources.Adapter) sources.Fragment {
	if adapter == nil {
		return sources.Unavailable(name, fmt.Errorf("%s: not configured", name))
	}

	cctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	logger.Debug().Str("source", name).Msg("fetching")
	start := time.Now()
	done := make(chan sources.Fragment, 1)
	go func() {
		done <- safeFetch(cctx, name, adapter)
	}()

	var f sources.Fragment
	select {
	case f = <-done:
	case <-cctx.Done():
		f = sources.Unavailable(name, fmt.Errorf("%s: %w", name, cctx.Err()))
	}
	if f.Source == "" {
		f.Source = name
	}

	cause := consts.Cause(f.Err)
	a.metrics.RecordFetch(name, string(f.Status), cause, time.Since(start).Seconds())
	if !f.Usable() || f.Status == sources.StatusPartial {
		logger.Warn().Str("source", name).Str("status", string(f.Status)).
			Str("reason", f.Reason).Str("cause", cause).Err(f.Err).Msg("source degraded")
	}
	return f
}

// safeFetch keeps a panicking adapter from taking the briefing down.
func safeFetch(ctx context.Context, name string, adapter sources.Adapter) (f sources.Fragment) {
	defer func() {
		if r := recover(); r != nil {
			f = sources.Unavailable(name, fmt.Errorf("%s: panic: %v", name, r))
		}
	}()
	return adapter.Fetch(ctx)
}

func (a *Aggregator) scan(ctx context.Context, logger zerolog.Logger) (watchlist.Result, error) {
	if a.scanner == nil {
		return watchlist.Result{}, fmt.Errorf("%s: not configured", consts.Watchlist)
	}

	cctx, cancel := context.WithTimeout(ctx, a.scanTimeout)
	defer cancel()

	done := make(chan watchlist.Result, 1)
	go func() {
		done <- a.scanner.Scan(cctx)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-cctx.Done():
	}

	// The scanner returns what it finished once its context is done. Only a
	// scanner that ignores cancellation loses the whole section.
	select {
	case res := <-done:
		logger.Warn().Str("source", consts.Watchlist).Int("snapshots", len(res.Snapshots)).
			Int("skipped", len(res.Skipped)).Msg("scan cut short, keeping partial result")
		return res, nil
	case <-time.After(scanGrace(a.scanTimeout)):
		err := fmt.Errorf("%s: %w", consts.Watchlist, cctx.Err())
		logger.Warn().Str("source", consts.Watchlist).Err(err).Msg("scan abandoned")
		return watchlist.Result{}, err
	}
}

// scanGrace is how long a timed-out scan may take to hand back its partial
// result.
func scanGrace(timeout time.Duration) time.Duration {
	g := timeout / 10
	if g < 100*time.Millisecond {
		g = 100 * time.Millisecond
	}
	if g > 2*time.Second {
		g = 2 * time.Second
	}
	return g
}
