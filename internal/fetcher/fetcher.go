package fetcher

import (
	"context"

	"fxtrend/internal/window"
)

// Rates is one day's (or the latest) table of rates against Base.
type Rates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// RateFetcher returns the full rate table published for a calendar date.
// Implementations own the wire format and their own timeout and retry policy.
type RateFetcher interface {
	FetchRatesForDate(ctx context.Context, date window.DateKey) (*Rates, error)
}

// LatestFetcher returns the current rate table and the currency name list.
type LatestFetcher interface {
	FetchLatest(ctx context.Context) (*Rates, error)
	FetchCurrencies(ctx context.Context) (map[string]string, error)
}
