// Package watchlist scans the configured symbols for technical snapshots and
// upcoming earnings.
package watchlist

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
	"github.com/dyike/CortexBrief/internal/indicators"
	"github.com/dyike/CortexBrief/internal/metrics"
)

const (
	defaultWorkers     = 4
	defaultCallTimeout = 10 * time.Second
)

// PriceSource returns daily closes for a symbol.
type PriceSource interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]dataflows.PricePoint, error)
}

// EarningsCalendar returns the next announced earnings date, ok=false when
// none is known.
type EarningsCalendar interface {
	NextEarnings(ctx context.Context, symbol string) (time.Time, bool, error)
}

type Skipped struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

type EarningsWarning struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

func (w EarningsWarning) String() string {
	return fmt.Sprintf("⚠️ %s: In %d days", w.Symbol, w.Days)
}

// Result is the best-effort scan output, in watchlist order.
type Result struct {
	Snapshots []indicators.Snapshot `json:"snapshots"`
	Warnings  []EarningsWarning     `json:"earnings_warnings"`
	Skipped   []Skipped             `json:"skipped"`
}

// Table renders one row per snapshot.
func (r Result) Table() string {
	rows := make([]string, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		rows = append(rows, s.Row())
	}
	return strings.Join(rows, "\n")
}

// WarningsText renders the earnings radar.
func (r Result) WarningsText() string {
	if len(r.Warnings) == 0 {
		return "No earnings this week."
	}
	lines := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n")
}

type Scanner struct {
	prices       PriceSource
	earnings     EarningsCalendar
	symbols      []string
	lookbackDays int
	horizonDays  int
	workers      int
	callTimeout  time.Duration
	now          func() time.Time
	metrics      *metrics.Recorder
	logger       zerolog.Logger
}

type Option func(*Scanner)

func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCallTimeout bounds each provider call made for a symbol.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Scanner) { s.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New builds a scanner over cfg.Watchlist. earnings may be nil.
func New(prices PriceSource, earnings EarningsCalendar, cfg *config.Sources, opts ...Option) *Scanner {
	s := &Scanner{
		prices:       prices,
		earnings:     earnings,
		symbols:      append([]string(nil), cfg.Watchlist...),
		lookbackDays: cfg.PortfolioLookbackDays,
		horizonDays:  cfg.EarningsHorizonDays,
		workers:      defaultWorkers,
		callTimeout:  defaultCallTimeout,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

type symbolResult struct {
	done     bool
	snapshot *indicators.Snapshot
	warning  *EarningsWarning
	skipped  *Skipped
}

// Scan evaluates every symbol on a bounded pool. A symbol whose history or
// snapshot fails, panics or runs past its call timeout is reported in Skipped
// and never affects the others. Once ctx is done no new symbol is started and
// the symbols finished so far are returned, the rest listed as skipped.
func (s *Scanner) Scan(ctx context.Context) Result {
	now := s.now()
	start, end := dataflows.HistoryWindow(now, s.lookbackDays)

	slots := make([]symbolResult, len(s.symbols))
	jobs := make(chan int)

	workers := s.workers
	if workers > len(s.symbols) {
		workers = len(s.symbols)
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				slots[i] = s.scanSymbol(ctx, s.symbols[i], now, start, end)
			}
		}()
	}
feed:
	for i := range s.symbols {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	var res Result
	for i, r := range slots {
		if !r.done {
			err := fmt.Errorf("%s: not scanned: %w", s.symbols[i], ctx.Err())
			s.skip(s.symbols[i], err)
			res.Skipped = append(res.Skipped, Skipped{Symbol: s.symbols[i], Reason: err.Error()})
			continue
		}
		if r.snapshot != nil {
			res.Snapshots = append(res.Snapshots, *r.snapshot)
		}
		if r.warning != nil {
			res.Warnings = append(res.Warnings, *r.warning)
		}
		if r.skipped != nil {
			res.Skipped = append(res.Skipped, *r.skipped)
		}
	}
	return res
}

func (s *Scanner) skip(symbol string, err error) {
	s.logger.Warn().Str("symbol", symbol).Str("cause", consts.Cause(err)).Err(err).Msg("symbol skipped")
	s.metrics.RecordSkipped(symbol)
}

func (s *Scanner) scanSymbol(ctx context.Context, symbol string, now, start, end time.Time) symbolResult {
	out := symbolResult{done: true}

	points, err := bounded(ctx, s.callTimeout, func(ctx context.Context) ([]dataflows.PricePoint, error) {
		return s.prices.History(ctx, symbol, start, end)
	})
	var snap indicators.Snapshot
	if err == nil {
		snap, err = indicators.Compute(indicators.NewPriceSeries(symbol, points))
	}
	if err != nil {
		s.skip(symbol, err)
		out.skipped = &Skipped{Symbol: symbol, Reason: err.Error()}
	} else {
		out.snapshot = &snap
	}

	if s.earnings != nil {
		if days, ok := s.daysToEarnings(ctx, symbol, now); ok && days >= 0 && days <= s.horizonDays {
			out.warning = &EarningsWarning{Symbol: symbol, Days: days}
		}
	}
	return out
}

// daysToEarnings floors the distance to the earnings date to whole days.
func (s *Scanner) daysToEarnings(ctx context.Context, symbol string, now time.Time) (int, bool) {
	type next struct {
		at time.Time
		ok bool
	}
	n, err := bounded(ctx, s.callTimeout, func(ctx context.Context) (next, error) {
		at, ok, err := s.earnings.NextEarnings(ctx, symbol)
		return next{at, ok}, err
	})
	if err != nil {
		s.logger.Debug().Str("symbol", symbol).Err(err).Msg("no earnings date")
		return 0, false
	}
	if !n.ok {
		return 0, false
	}
	return int(math.Floor(n.at.Sub(now).Hours() / 24)), true
}

// bounded runs one provider call on its own goroutine under a per-call
// deadline. An overrun returns the deadline error while the call is left to
// finish on its own; a panic comes back as an error.
func bounded[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("panic: %v", p)
			}
			done <- r
		}()
		r.v, r.err = call(cctx)
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-cctx.Done():
		var zero T
		return zero, cctx.Err()
	}
}
