package dataflows

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexBrief/consts"
)

const fredBaseURL = "https://api.stlouisfed.org"

// FredClient reads series observations from the St. Louis Fed.
type FredClient struct {
	apiKey string
	client *resty.Client
}

func NewFredClient(apiKey string, opts ClientOptions) *FredClient {
	return &FredClient{
		apiKey: apiKey,
		client: newRestyClient(opts.baseURL(fredBaseURL), opts),
	}
}

// HasKey reports whether requests can be made at all.
func (c *FredClient) HasKey() bool {
	return c.apiKey != ""
}

// LatestValue returns the most recent released observation of a series.
// FRED marks unreleased values with "."; those are skipped.
func (c *FredClient) LatestValue(ctx context.Context, seriesID string) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("fred: %w", consts.ErrMissingCredential)
	}

	req := c.client.R().SetContext(ctx).SetQueryParams(map[string]string{
		"series_id":  seriesID,
		"api_key":    c.apiKey,
		"file_type":  "json",
		"sort_order": "desc",
		"limit":      "10",
	})

	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := getJSON(req, "/fred/series/observations", &payload); err != nil {
		return 0, fmt.Errorf("fred %s: %w", seriesID, err)
	}

	for _, obs := range payload.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("fred %s: %w: value %q", seriesID, consts.ErrMalformedResponse, obs.Value)
		}
		return v, nil
	}
	return 0, fmt.Errorf("fred %s: %w", seriesID, consts.ErrNoMatchingRecords)
}
