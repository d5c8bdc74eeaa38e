package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dyike/CortexBrief/consts"
	"github.com/dyike/CortexBrief/internal/dataflows"
)

// FearGreedAPI reads CNN's index.
type FearGreedAPI interface {
	Current(ctx context.Context) (dataflows.FearGreed, error)
}

type FearGreed struct {
	api FearGreedAPI
}

func NewFearGreed(api FearGreedAPI) *FearGreed {
	return &FearGreed{api: api}
}

func (f *FearGreed) Name() string { return consts.FearGreed }

func (f *FearGreed) Fetch(ctx context.Context) Fragment {
	fg, err := f.api.Current(ctx)
	if err != nil {
		return unavailable(f.Name(), "", err)
	}
	return ok(f.Name(), fmt.Sprintf("%d/100 (%s)", int(fg.Score), strings.ToUpper(fg.Rating)))
}

// InsiderAPI reads monthly insider sentiment.
type InsiderAPI interface {
	GetInsiderSentiment(ctx context.Context, symbol string, from time.Time) ([]*dataflows.InsiderSentiment, error)
}

// Insider reports the monthly share purchase ratio of one company's insiders.
type Insider struct {
	api    InsiderAPI
	symbol string
	label  string
	since  time.Time
}

func NewInsider(api InsiderAPI, symbol, label string, since time.Time) *Insider {
	return &Insider{api: api, symbol: symbol, label: label, since: since}
}

func (i *Insider) Name() string { return consts.Insider }

func (i *Insider) Fetch(ctx context.Context) Fragment {
	data, err := i.api.GetInsiderSentiment(ctx, i.symbol, i.since)
	switch {
	case errors.Is(err, consts.ErrMissingCredential):
		return unavailable(i.Name(), "No Key", err)
	case err != nil:
		return unavailable(i.Name(), "", err)
	case len(data) == 0 || data[0] == nil:
		return unavailable(i.Name(), consts.State_NoData, consts.ErrNoMatchingRecords)
	}
	return ok(i.Name(), fmt.Sprintf("%s Insiders: MSPR %s (Positive=Buy)", i.label, data[0].MSPR.String()))
}

// CoinAPI reads USD spot prices by coin id.
type CoinAPI interface {
	SimplePrice(ctx context.Context, ids []string) (map[string]dataflows.CoinPrice, error)
}

type Crypto struct {
	api CoinAPI
	ids []string
}

func NewCrypto(api CoinAPI, ids []string) *Crypto {
	return &Crypto{api: api, ids: ids}
}

func (c *Crypto) Name() string { return consts.Crypto }

func (c *Crypto) Fetch(ctx context.Context) Fragment {
	prices, err := c.api.SimplePrice(ctx, c.ids)
	if err != nil {
		return unavailable(c.Name(), "", err)
	}

	var parts []string
	failed := 0
	var firstErr error
	for _, id := range c.ids {
		p, found := prices[id]
		if !found || p.Change24h == nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("coin %s: %w", id, consts.ErrNoMatchingRecords)
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:$%s (%+.1f%%)",
			titleCase(id), strconv.FormatFloat(p.USD, 'f', -1, 64), *p.Change24h))
	}
	f := fromLines(c.Name(), parts, failed, firstErr)
	if f.Usable() {
		f.Text = strings.Join(parts, " | ")
	}
	return f
}

// titleCase upper-cases the first letter of each hyphen separated word.
func titleCase(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, "-")
}
