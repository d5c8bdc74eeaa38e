package indicators

import (
	"fmt"
	"math"

	"github.com/dyike/CortexBrief/consts"
)

type Momentum string

const (
	MomentumHot  Momentum = "HOT"
	MomentumCold Momentum = "COLD"
	MomentumOK   Momentum = "OK"
	MomentumNA   Momentum = consts.State_NA
)

type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendNA   Trend = consts.State_NA
)

var momentumBands = []struct {
	match func(rsi float64) bool
	state Momentum
}{
	{func(rsi float64) bool { return rsi > hotAbove }, MomentumHot},
	{func(rsi float64) bool { return rsi < coldBelow }, MomentumCold},
	{func(float64) bool { return true }, MomentumOK},
}

// ClassifyMomentum maps an RSI reading onto HOT (>70), COLD (<30) or OK.
func ClassifyMomentum(rsi float64) Momentum {
	for _, band := range momentumBands {
		if band.match(rsi) {
			return band.state
		}
	}
	return MomentumNA
}

// ClassifyTrend is UP only when price is strictly above the average.
func ClassifyTrend(price, sma float64) Trend {
	if price > sma {
		return TrendUp
	}
	return TrendDown
}

// Snapshot is the technical read of one symbol. RSI14 and SMA50 are nil when
// the series is too short for them.
type Snapshot struct {
	Symbol          string   `json:"symbol"`
	LastPrice       float64  `json:"last_price"`
	PercentChange1d float64  `json:"percent_change_1d"`
	RSI14           *float64 `json:"rsi14,omitempty"`
	SMA50           *float64 `json:"sma50,omitempty"`
	Momentum        Momentum `json:"momentum"`
	Trend           Trend    `json:"trend"`
}

// Compute derives the snapshot from a series. It fails only when the one-day
// change cannot be computed; missing RSI or SMA degrade to N/A.
func Compute(series PriceSeries) (Snapshot, error) {
	closes := series.Closes()
	pct, err := PercentChange(closes)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	snap := Snapshot{
		Symbol:          series.Symbol,
		LastPrice:       closes[len(closes)-1],
		PercentChange1d: pct,
		Momentum:        MomentumNA,
		Trend:           TrendNA,
	}

	if rsi, err := RSI(closes, RSIPeriod); err == nil {
		snap.RSI14 = &rsi
		snap.Momentum = ClassifyMomentum(rsi)
	}
	if sma, err := SMA(closes, SMAPeriod); err == nil {
		snap.SMA50 = &sma
		snap.Trend = ClassifyTrend(snap.LastPrice, sma)
	}
	return snap, nil
}

// Row renders the portfolio table line for the snapshot.
func (s Snapshot) Row() string {
	rsi := consts.State_NA
	if s.RSI14 != nil {
		rsi = fmt.Sprintf("%d", int(math.Trunc(*s.RSI14)))
	}
	return fmt.Sprintf("%-5s: $%-7.2f (%+.2f%%) | RSI:%s(%s) | %s",
		s.Symbol, s.LastPrice, s.PercentChange1d, rsi, s.Momentum, s.Trend)
}
