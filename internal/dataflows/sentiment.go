package dataflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexBrief/consts"
)

const (
	cnnBaseURL       = "https://production.dataviz.cnn.io"
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3"
)

// FearGreedClient reads CNN's Fear & Greed index.
type FearGreedClient struct {
	client *resty.Client
}

func NewFearGreedClient(opts ClientOptions) *FearGreedClient {
	return &FearGreedClient{client: newRestyClient(opts.baseURL(cnnBaseURL), opts)}
}

// Current returns the latest composite reading.
func (c *FearGreedClient) Current(ctx context.Context) (FearGreed, error) {
	var payload struct {
		FearAndGreed *FearGreed `json:"fear_and_greed"`
	}
	if err := getJSON(c.client.R().SetContext(ctx), "/index/fearandgreed/graphdata", &payload); err != nil {
		return FearGreed{}, fmt.Errorf("fear and greed: %w", err)
	}
	if payload.FearAndGreed == nil || payload.FearAndGreed.Rating == "" {
		return FearGreed{}, fmt.Errorf("fear and greed: %w: missing fear_and_greed", consts.ErrMalformedResponse)
	}
	return *payload.FearAndGreed, nil
}

// CoinGeckoClient reads spot prices from CoinGecko's simple price endpoint.
type CoinGeckoClient struct {
	client *resty.Client
}

func NewCoinGeckoClient(opts ClientOptions) *CoinGeckoClient {
	return &CoinGeckoClient{client: newRestyClient(opts.baseURL(coinGeckoBaseURL), opts)}
}

// SimplePrice returns the USD price and 24h change per coin id.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, ids []string) (map[string]CoinPrice, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("coingecko: %w: no coin ids", consts.ErrNoMatchingRecords)
	}
	req := c.client.R().SetContext(ctx).SetQueryParams(map[string]string{
		"ids":                 strings.Join(ids, ","),
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
	})

	prices := make(map[string]CoinPrice)
	if err := getJSON(req, "/simple/price", &prices); err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}
	return prices, nil
}
