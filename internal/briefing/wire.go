package briefing

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/internal/dataflows"
	"github.com/dyike/CortexBrief/internal/metrics"
	"github.com/dyike/CortexBrief/internal/sources"
	"github.com/dyike/CortexBrief/internal/watchlist"
)

// Deps are the process-wide collaborators shared by every client.
type Deps struct {
	Transport http.RoundTripper
	Logger    zerolog.Logger
	Metrics   *metrics.Recorder
	Now       func() time.Time
}

// Build wires the provider clients, adapters and watchlist scanner from
// configuration. The returned closer releases the Longport connection, if one
// was opened.
func Build(cfg *config.Config, src *config.Sources, deps Deps) (*Aggregator, func() error) {
	logger := deps.Logger
	opts := dataflows.ClientOptions{Transport: deps.Transport, Timeout: cfg.FetchTimeout}

	congress := dataflows.NewCongressClient(cfg.CongressAPIKey, opts)
	yahoo := dataflows.NewYahooFinanceClient(opts)

	since, err := time.Parse("2006-01-02", src.InsiderSince)
	if err != nil {
		since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	adapters := Adapters{
		Hearings:    sources.NewHearings(congress, src),
		Nominations: sources.NewNominations(congress, src),
		Bills:       sources.NewBills(congress, src),
		Markets:     sources.NewMarkets(yahoo, src.MarketIndices, src.IndexLookbackDays, deps.Now),
		Global:      sources.NewGlobal(yahoo, src.GlobalIndices, src.IndexLookbackDays, deps.Now),
		Macro:       sources.NewMacro(dataflows.NewFredClient(cfg.FredAPIKey, opts), src.MacroSeries),
		FearGreed:   sources.NewFearGreed(dataflows.NewFearGreedClient(opts)),
		Insider:     sources.NewInsider(dataflows.NewFinnhubClient(cfg.FinnhubAPIKey, opts), src.InsiderSymbol, src.InsiderLabel, since),
		Crypto:      sources.NewCrypto(dataflows.NewCoinGeckoClient(opts), src.CryptoIDs),
		TechPulse:   sources.NewTechPulse(dataflows.NewHackerNewsClient(opts), src.TechStories),
		Headlines:   sources.NewHeadlines(dataflows.NewFeedClient(opts), src.HeadlineFeeds, src.HeadlinesPerFeed),
	}

	closer := func() error { return nil }
	var prices watchlist.PriceSource = yahoo
	if cfg.HasLongport() {
		lp, err := dataflows.NewLongportClient(dataflows.LongportCredentials{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("longport unavailable, using yahoo for the watchlist")
		} else {
			prices = watchlist.NewRouter(lp, yahoo)
			closer = lp.Close
		}
	}

	scanner := watchlist.New(prices, yahoo, src,
		watchlist.WithWorkers(cfg.ScanWorkers),
		watchlist.WithCallTimeout(cfg.FetchTimeout),
		watchlist.WithClock(deps.Now),
		watchlist.WithMetrics(deps.Metrics),
		watchlist.WithLogger(logger),
	)

	agg := New(adapters, scanner,
		WithFetchTimeout(cfg.FetchTimeout),
		WithScanTimeout(cfg.ScanTimeout),
		WithClock(deps.Now),
		WithLogger(logger),
		WithMetrics(deps.Metrics),
	)
	return agg, closer
}
