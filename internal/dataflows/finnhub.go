package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dyike/CortexBrief/consts"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(apiKey string, opts ClientOptions) *FinnhubClient {
	return &FinnhubClient{
		client: newRestyClient(opts.baseURL(finnhubBaseURL), opts),
		apiKey: apiKey,
	}
}

// HasKey reports whether a token is configured.
func (fc *FinnhubClient) HasKey() bool {
	return fc.apiKey != ""
}

// FinnhubInsiderSentiment represents insider sentiment from Finnhub API
type FinnhubInsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change int64   `json:"change"`
	MSPR   float64 `json:"mspr"`
}

// GetInsiderSentiment gets monthly insider sentiment for a company starting at from.
func (fc *FinnhubClient) GetInsiderSentiment(ctx context.Context, symbol string, from time.Time) ([]*InsiderSentiment, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub: %w", consts.ErrMissingCredential)
	}

	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)

	req := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format("2006-01-02"),
			"token":  fc.apiKey,
		})

	var apiResponse struct {
		Data []FinnhubInsiderSentiment `json:"data"`
	}
	if err := getJSON(req, "/stock/insider-sentiment", &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to fetch insider sentiment for %s: %w", symbol, err)
	}

	// Convert to our format
	result := make([]*InsiderSentiment, 0, len(apiResponse.Data))
	for _, sentiment := range apiResponse.Data {
		result = append(result, &InsiderSentiment{
			Symbol: sentiment.Symbol,
			Year:   sentiment.Year,
			Month:  sentiment.Month,
			Change: sentiment.Change,
			MSPR:   decimal.NewFromFloat(sentiment.MSPR),
		})
	}

	return result, nil
}
