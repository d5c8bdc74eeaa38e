package dataflows

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexBrief/consts"
)

const (
	defaultTimeout   = 10 * time.Second
	browserUserAgent = "Mozilla/5.0"
)

// ClientOptions are shared by every provider client. Transport is normally the
// process-wide response cache.
type ClientOptions struct {
	Transport http.RoundTripper
	Timeout   time.Duration
	// BaseURL overrides the provider endpoint, for tests.
	BaseURL string
}

func (o ClientOptions) baseURL(fallback string) string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}
	return fallback
}

// newRestyClient builds a resty client on the shared transport.
func newRestyClient(baseURL string, opts ClientOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.Transport != nil {
		httpClient.Transport = opts.Transport
	}

	client := resty.NewWithClient(httpClient)
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetHeader("Accept", "application/json")
	return client
}

// getJSON performs one GET and decodes the body into out, classifying the
// failure into the network/malformed taxonomy.
func getJSON(req *resty.Request, path string, out interface{}) error {
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%w: %w", consts.ErrNetworkFailure, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: API error %d", consts.ErrNetworkFailure, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %w", consts.ErrMalformedResponse, err)
	}
	return nil
}

// ValidateSymbol checks if a ticker symbol is valid format
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 12 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts symbol to standard format
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// HistoryWindow returns a [start, end] range covering the last days calendar
// days. Both ends are rounded so repeated calls within the same quarter hour
// produce the same request URL and hit the response cache.
func HistoryWindow(now time.Time, days int) (start, end time.Time) {
	end = now.UTC().Truncate(15 * time.Minute).Add(15 * time.Minute)
	start = end.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	return start, end
}
