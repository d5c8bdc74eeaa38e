// Package indicators computes the per-symbol technical snapshot: one-day
// change, Wilder RSI-14, SMA-50 and their classifications.
package indicators

import (
	"fmt"
	"sort"
	"time"

	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

const (
	RSIPeriod = 14
	SMAPeriod = 50

	hotAbove  = 70.0
	coldBelow = 30.0
)

// PriceSeries is a symbol's daily closes with strictly increasing timestamps.
type PriceSeries struct {
	Symbol string
	points []dataflows.PricePoint
}

// NewPriceSeries sorts points by time and keeps the first point of any
// duplicated timestamp.
func NewPriceSeries(symbol string, points []dataflows.PricePoint) PriceSeries {
	sorted := make([]dataflows.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	var last time.Time
	for i, p := range sorted {
		if i > 0 && p.Time.Equal(last) {
			continue
		}
		out = append(out, p)
		last = p.Time
	}
	return PriceSeries{Symbol: symbol, points: out}
}

// FromCloses builds a series of one close per day ending at end, for tests and
// fixed inputs.
func FromCloses(symbol string, end time.Time, closes ...float64) PriceSeries {
	points := make([]dataflows.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = dataflows.PricePoint{
			Time:  end.AddDate(0, 0, i-len(closes)+1),
			Close: c,
		}
	}
	return NewPriceSeries(symbol, points)
}

func (s PriceSeries) Len() int { return len(s.points) }

// Closes returns a copy of the close prices in time order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.points))
	for i, p := range s.points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent point.
func (s PriceSeries) Last() (dataflows.PricePoint, bool) {
	if len(s.points) == 0 {
		return dataflows.PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// PercentChange returns (close[-1] - close[-2]) / close[-2] * 100.
func PercentChange(closes []float64) (float64, error) {
	n := len(closes)
	if n < 2 {
		return 0, fmt.Errorf("percent change needs 2 closes, have %d: %w", n, consts.ErrInsufficientHistory)
	}
	prev := closes[n-2]
	if prev == 0 {
		return 0, fmt.Errorf("percent change: previous close is zero: %w", consts.ErrMalformedResponse)
	}
	return (closes[n-1] - prev) / prev * 100, nil
}

// RSI returns Wilder's relative strength index over period changes. The first
// average is the simple mean of the first period changes; each later change is
// folded in as avg = (avg*(period-1) + x) / period.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi period must be positive")
	}
	if len(closes) < period+1 {
		return 0, fmt.Errorf("rsi-%d needs %d closes, have %d: %w", period, period+1, len(closes), consts.ErrInsufficientHistory)
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50, nil
	case avgLoss == 0:
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// SMA returns the mean of the last period closes.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma period must be positive")
	}
	if len(closes) < period {
		return 0, fmt.Errorf("sma-%d needs %d closes, have %d: %w", period, period, len(closes), consts.ErrInsufficientHistory)
	}
	var total float64
	for _, c := range closes[len(closes)-period:] {
		total += c
	}
	return total / float64(period), nil
}
