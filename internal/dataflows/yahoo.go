package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"github.com/dyike/CortexBrief/consts"
)

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct{}

// NewYahooFinanceClient routes finance-go's backend through the shared
// transport. finance-go keeps a single package-level HTTP client, so the last
// constructor call wins.
func NewYahooFinanceClient(opts ClientOptions) *YahooFinanceClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.Transport != nil {
		httpClient.Transport = opts.Transport
	}
	finance.SetHTTPClient(httpClient)
	return &YahooFinanceClient{}
}

// History returns daily closes between start and end.
func (yf *YahooFinanceClient) History(ctx context.Context, symbol string, start, end time.Time) ([]PricePoint, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	// Yahoo index and crypto symbols (^GSPC, BTC-USD) are case sensitive only in
	// the letters, which are already upper case.
	symbol = NormalizeSymbol(symbol)

	return withContext(ctx, func() ([]PricePoint, error) {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		points := make([]PricePoint, 0)
		for iter.Next() {
			bar := iter.Bar()
			if bar == nil {
				continue
			}
			points = append(points, PricePoint{
				Time:  time.Unix(int64(bar.Timestamp), 0).UTC(),
				Close: bar.Close.InexactFloat64(),
			})
		}

		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("failed to get historical data for %s: %w: %w", symbol, consts.ErrNetworkFailure, err)
		}
		return points, nil
	})
}

// NextEarnings returns the start of the next announced earnings window. ok is
// false when Yahoo has no date for the symbol.
func (yf *YahooFinanceClient) NextEarnings(ctx context.Context, symbol string) (time.Time, bool, error) {
	symbol = NormalizeSymbol(symbol)

	type result struct {
		at time.Time
		ok bool
	}
	r, err := withContext(ctx, func() (result, error) {
		eq, err := equity.Get(symbol)
		if err != nil {
			return result{}, fmt.Errorf("failed to get equity for %s: %w: %w", symbol, consts.ErrNetworkFailure, err)
		}
		if eq == nil {
			return result{}, nil
		}
		ts := eq.EarningsTimestampStart
		if ts == 0 {
			ts = eq.EarningsTimestamp
		}
		if ts == 0 {
			return result{}, nil
		}
		return result{at: time.Unix(int64(ts), 0).UTC(), ok: true}, nil
	})
	return r.at, r.ok, err
}

// withContext runs fn, which cannot be cancelled, and gives up when ctx ends.
// The abandoned goroutine finishes on its own through the buffered channel.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn()
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w: %w", consts.ErrNetworkFailure, err)
		}
		return zero, err
	}
}
