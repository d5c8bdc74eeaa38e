package watchlist

import (
	"context"
	"time"

	"github.com/dyike/CortexBrief/internal/dataflows"
)

// RoutedSource is a PriceSource that can decline symbols it does not list.
type RoutedSource interface {
	PriceSource
	Supports(symbol string) bool
}

// Router sends each symbol to the preferred source when it lists the symbol
// and to the fallback otherwise. Each symbol still costs exactly one call.
type Router struct {
	preferred RoutedSource
	fallback  PriceSource
}

// NewRouter returns fallback unchanged when there is no preferred source.
func NewRouter(preferred RoutedSource, fallback PriceSource) PriceSource {
	if preferred == nil {
		return fallback
	}
	return &Router{preferred: preferred, fallback: fallback}
}

func (r *Router) History(ctx context.Context, symbol string, start, end time.Time) ([]dataflows.PricePoint, error) {
	if r.preferred.Supports(symbol) {
		return r.preferred.History(ctx, symbol, start, end)
	}
	return r.fallback.History(ctx, symbol, start, end)
}
