package indicators

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

var day0 = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func ramp(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}

func TestNewPriceSeriesSortsAndDedupes(t *testing.T) {
	s := NewPriceSeries("CRM", []dataflows.PricePoint{
		{Time: day0.AddDate(0, 0, 2), Close: 3},
		{Time: day0, Close: 1},
		{Time: day0.AddDate(0, 0, 1), Close: 2},
		{Time: day0.AddDate(0, 0, 1), Close: 99},
	})
	assert.Equal(t, []float64{1, 2, 3}, s.Closes())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 3.0, last.Close)
}

func TestPercentChange(t *testing.T) {
	pct, err := PercentChange([]float64{100, 102, 101, 105, 107})
	require.NoError(t, err)
	assert.Equal(t, "+1.90", fmt.Sprintf("%+.2f", pct))

	_, err = PercentChange([]float64{100})
	assert.ErrorIs(t, err, consts.ErrInsufficientHistory)
}

func TestRSINeedsFifteenCloses(t *testing.T) {
	_, err := RSI(ramp(14, 100, 1), RSIPeriod)
	assert.ErrorIs(t, err, consts.ErrInsufficientHistory)

	_, err = RSI(ramp(15, 100, 1), RSIPeriod)
	assert.NoError(t, err)
}

func TestRSIWilderSmoothing(t *testing.T) {
	// seed over +1,-1 gives 0.5/0.5; folding in +1 gives 0.75/0.25, RS 3
	rsi, err := RSI([]float64{1, 2, 1, 2}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, rsi, 1e-9)
}

func TestRSIEdges(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"only gains", ramp(20, 100, 1), 100},
		{"flat", ramp(20, 100, 0), 50},
		{"only losses", ramp(20, 100, -1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi, err := RSI(tt.closes, RSIPeriod)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, rsi, 1e-9)
		})
	}
}

func TestSMA(t *testing.T) {
	_, err := SMA(ramp(49, 1, 1), SMAPeriod)
	assert.ErrorIs(t, err, consts.ErrInsufficientHistory)

	sma, err := SMA(ramp(60, 1, 1), SMAPeriod)
	require.NoError(t, err)
	assert.InDelta(t, 35.5, sma, 1e-9)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		rsi  float64
		want Momentum
	}{
		{70.01, MomentumHot},
		{70, MomentumOK},
		{30, MomentumOK},
		{29.99, MomentumCold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyMomentum(tt.rsi), "rsi %v", tt.rsi)
	}

	assert.Equal(t, TrendUp, ClassifyTrend(101, 100))
	assert.Equal(t, TrendDown, ClassifyTrend(100, 100))
	assert.Equal(t, TrendDown, ClassifyTrend(99, 100))
}

func TestComputeShortSeriesKeepsSymbol(t *testing.T) {
	snap, err := Compute(FromCloses("OKLO", day0, 100, 102, 101, 105, 107))
	require.NoError(t, err)

	assert.Equal(t, 107.0, snap.LastPrice)
	assert.Nil(t, snap.RSI14)
	assert.Nil(t, snap.SMA50)
	assert.Equal(t, MomentumNA, snap.Momentum)
	assert.Equal(t, TrendNA, snap.Trend)
	assert.Equal(t, "OKLO : $107.00  (+1.90%) | RSI:N/A(N/A) | N/A", snap.Row())
}

func TestComputeFullSeries(t *testing.T) {
	closes := ramp(60, 100, 1)
	closes = append(closes, closes[len(closes)-1]-2)
	snap, err := Compute(FromCloses("VST", day0, closes...))
	require.NoError(t, err)

	require.NotNil(t, snap.RSI14)
	require.NotNil(t, snap.SMA50)
	assert.Equal(t, MomentumHot, snap.Momentum)
	assert.Equal(t, TrendUp, snap.Trend)
	assert.Contains(t, snap.Row(), "(HOT) | UP")
}

func TestComputeRejectsSingleClose(t *testing.T) {
	_, err := Compute(FromCloses("GLD", day0, 180))
	assert.ErrorIs(t, err, consts.ErrInsufficientHistory)
}
