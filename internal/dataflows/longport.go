package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"

	"github.com/dyike/CortexBrief/consts"
)

// LongportCredentials are the three values issued by the Longport developer console.
type LongportCredentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

func (c LongportCredentials) complete() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.AccessToken != ""
}

type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

// NewLongportClient opens a quote context. It fails without credentials.
func NewLongportClient(creds LongportCredentials) (*LongportClient, error) {
	if !creds.complete() {
		return nil, fmt.Errorf("longport: %w", consts.ErrMissingCredential)
	}
	conf, err := config.New(config.WithConfigKey(creds.AppKey, creds.AppSecret, creds.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("longport config: %w", err)
	}
	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, fmt.Errorf("longport quote context: %w: %w", consts.ErrNetworkFailure, err)
	}
	return &LongportClient{quoteCtx: quoteContext}, nil
}

// Supports reports whether symbol is a plain US listing Longport can serve.
// Indices like ^GSPC and pairs like BTC-USD are not listed there.
func (lpc *LongportClient) Supports(symbol string) bool {
	return symbol != "" && !strings.ContainsAny(symbol, "^-=.")
}

// History returns daily closes between start and end. Longport counts bars
// rather than dates, so enough bars are requested to cover the window and the
// rest is trimmed.
func (lpc *LongportClient) History(ctx context.Context, symbol string, start, end time.Time) ([]PricePoint, error) {
	if lpc == nil || lpc.quoteCtx == nil {
		return nil, fmt.Errorf("longport: quote context is nil")
	}
	symbol = NormalizeSymbol(symbol)
	if !lpc.Supports(symbol) {
		return nil, fmt.Errorf("longport %s: %w: unsupported symbol", symbol, consts.ErrNoMatchingRecords)
	}

	count := int32(end.Sub(start).Hours()/24) + 1
	if count > 1000 {
		count = 1000
	}
	sticks, err := lpc.quoteCtx.Candlesticks(ctx, symbol+".US", quote.PeriodDay, count, quote.AdjustTypeNo)
	if err != nil {
		return nil, fmt.Errorf("longport candlesticks %s: %w: %w", symbol, consts.ErrNetworkFailure, err)
	}

	points := make([]PricePoint, 0, len(sticks))
	for _, stick := range sticks {
		if stick == nil || stick.Close == nil {
			continue
		}
		at := time.Unix(stick.Timestamp, 0).UTC()
		if at.Before(start) || at.After(end) {
			continue
		}
		closePrice, _ := stick.Close.Float64()
		points = append(points, PricePoint{Time: at, Close: closePrice})
	}
	return points, nil
}

// Close releases the quote connection.
func (lpc *LongportClient) Close() error {
	if lpc == nil || lpc.quoteCtx == nil {
		return nil
	}
	return lpc.quoteCtx.Close()
}
