// Command dataflow probes one market data path outside the briefing: it pulls
// a symbol's daily closes and prints the computed snapshot, or the headlines
// of one feed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/internal/dataflows"
	"github.com/dyike/CortexBrief/internal/indicators"
)

func main() {
	symbol := flag.String("symbol", "NVDA", "ticker to probe")
	days := flag.Int("days", 92, "calendar days of history")
	source := flag.String("source", "yahoo", "price source: yahoo or longport")
	feed := flag.String("feed", "", "probe this RSS/Atom feed instead of prices")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout*3)
	defer cancel()
	opts := dataflows.ClientOptions{Timeout: cfg.FetchTimeout}

	if *feed != "" {
		items, err := dataflows.NewFeedClient(opts).Headlines(ctx, "probe", *feed, 10)
		if err != nil {
			fail(err)
		}
		dump(items)
		return
	}

	start, end := dataflows.HistoryWindow(time.Now(), *days)
	var points []dataflows.PricePoint
	switch *source {
	case "longport":
		lp, err := dataflows.NewLongportClient(dataflows.LongportCredentials{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
		if err != nil {
			fail(err)
		}
		defer lp.Close()
		points, err = lp.History(ctx, *symbol, start, end)
		if err != nil {
			fail(err)
		}
	default:
		points, err = dataflows.NewYahooFinanceClient(opts).History(ctx, *symbol, start, end)
		if err != nil {
			fail(err)
		}
	}

	snap, err := indicators.Compute(indicators.NewPriceSeries(*symbol, points))
	if err != nil {
		fail(err)
	}
	fmt.Println(snap.Row())
	dump(snap)
}

func dump(v any) {
	payload, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(payload))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
