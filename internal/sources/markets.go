package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
	"github.com/dyike/CortexBrief/internal/indicators"
)

// PriceHistory returns daily closes for a symbol.
type PriceHistory interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]dataflows.PricePoint, error)
}

type quoteLine struct {
	name string
	last float64
	pct  float64
}

// quotes reads the last two closes of every ticker. Tickers that fail are
// dropped and counted.
func quotes(ctx context.Context, prices PriceHistory, tickers []config.Ticker, now time.Time, days int) ([]quoteLine, int, error) {
	start, end := dataflows.HistoryWindow(now, days)

	var out []quoteLine
	failed := 0
	var firstErr error
	for _, t := range tickers {
		points, err := prices.History(ctx, t.Symbol, start, end)
		if err == nil {
			series := indicators.NewPriceSeries(t.Symbol, points)
			closes := series.Closes()
			var pct float64
			if pct, err = indicators.PercentChange(closes); err == nil {
				out = append(out, quoteLine{name: t.Name, last: closes[len(closes)-1], pct: pct})
				continue
			}
		}
		failed++
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", t.Symbol, err)
		}
	}
	return out, failed, firstErr
}

// Markets is the US market snapshot line set.
type Markets struct {
	prices  PriceHistory
	tickers []config.Ticker
	days    int
	now     func() time.Time
}

func NewMarkets(prices PriceHistory, tickers []config.Ticker, lookbackDays int, now func() time.Time) *Markets {
	if now == nil {
		now = time.Now
	}
	return &Markets{prices: prices, tickers: tickers, days: lookbackDays, now: now}
}

func (m *Markets) Name() string { return consts.Markets }

func (m *Markets) Fetch(ctx context.Context) Fragment {
	lines, failed, err := quotes(ctx, m.prices, m.tickers, m.now(), m.days)

	parts := make([]string, 0, len(lines))
	entries := make([]Entry, 0, len(lines))
	for _, q := range lines {
		value := fmt.Sprintf("%s (%+.2f%%)", humanize.FormatFloat("#,###.##", q.last), q.pct)
		entries = append(entries, Entry{Label: q.name, Value: value})
		parts = append(parts, q.name+": "+value)
	}

	f := fromLines(m.Name(), parts, failed, err)
	if f.Usable() {
		f.Text = strings.Join(parts, " | ")
		f.Entries = entries
	}
	return f
}

// Global is the one-line overseas index move summary.
type Global struct {
	prices  PriceHistory
	tickers []config.Ticker
	days    int
	now     func() time.Time
}

func NewGlobal(prices PriceHistory, tickers []config.Ticker, lookbackDays int, now func() time.Time) *Global {
	if now == nil {
		now = time.Now
	}
	return &Global{prices: prices, tickers: tickers, days: lookbackDays, now: now}
}

func (g *Global) Name() string { return consts.Global }

func (g *Global) Fetch(ctx context.Context) Fragment {
	lines, failed, err := quotes(ctx, g.prices, g.tickers, g.now(), g.days)

	parts := make([]string, 0, len(lines))
	for _, q := range lines {
		parts = append(parts, fmt.Sprintf("%s: %+.2f%%", q.name, q.pct))
	}
	f := fromLines(g.Name(), parts, failed, err)
	if f.Usable() {
		f.Text = strings.Join(parts, " | ")
	}
	return f
}
