package testutil

import (
	"context"
	"sync"
	"time"

	"fxtrend/internal/fetcher"
	"fxtrend/internal/ratecache"
	"fxtrend/internal/window"
)

// MockRateFetcher is a mock implementation of fetcher.RateFetcher that
// records the dates it was asked for.
type MockRateFetcher struct {
	FetchFunc func(ctx context.Context, date window.DateKey) (*fetcher.Rates, error)

	mu    sync.Mutex
	calls []window.DateKey
}

// FetchRatesForDate implements fetcher.RateFetcher
func (m *MockRateFetcher) FetchRatesForDate(ctx context.Context, date window.DateKey) (*fetcher.Rates, error) {
	m.mu.Lock()
	m.calls = append(m.calls, date)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, date)
	}
	return &fetcher.Rates{Base: "USD", Rates: map[string]float64{}}, nil
}

// Calls returns the dates requested so far, in call order.
func (m *MockRateFetcher) Calls() []window.DateKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]window.DateKey(nil), m.calls...)
}

// NewConstantRateFetcher returns a fetcher reporting the same rates for every date.
func NewConstantRateFetcher(rates map[string]float64) *MockRateFetcher {
	return &MockRateFetcher{
		FetchFunc: func(ctx context.Context, date window.DateKey) (*fetcher.Rates, error) {
			return &fetcher.Rates{Base: "USD", Rates: rates}, nil
		},
	}
}

// NewFailingRateFetcher wraps rates but fails with err for the listed dates.
func NewFailingRateFetcher(rates map[string]float64, err error, failing ...window.DateKey) *MockRateFetcher {
	fail := make(map[window.DateKey]bool, len(failing))
	for _, d := range failing {
		fail[d] = true
	}
	return &MockRateFetcher{
		FetchFunc: func(ctx context.Context, date window.DateKey) (*fetcher.Rates, error) {
			if fail[date] {
				return nil, err
			}
			return &fetcher.Rates{Base: "USD", Rates: rates}, nil
		},
	}
}

// MockLatestFetcher is a mock implementation of fetcher.LatestFetcher
type MockLatestFetcher struct {
	LatestFunc     func(ctx context.Context) (*fetcher.Rates, error)
	CurrenciesFunc func(ctx context.Context) (map[string]string, error)
}

// FetchLatest implements fetcher.LatestFetcher
func (m *MockLatestFetcher) FetchLatest(ctx context.Context) (*fetcher.Rates, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx)
	}
	return &fetcher.Rates{Base: "USD", Rates: map[string]float64{}}, nil
}

// FetchCurrencies implements fetcher.LatestFetcher
func (m *MockLatestFetcher) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	if m.CurrenciesFunc != nil {
		return m.CurrenciesFunc(ctx)
	}
	return map[string]string{}, nil
}

// FailingStore is a ratecache.Store whose writes always fail.
type FailingStore struct {
	*ratecache.MemoryStore
	Err error
}

// NewFailingStore returns a store that reads normally and fails every Save with err.
func NewFailingStore(err error) *FailingStore {
	return &FailingStore{MemoryStore: ratecache.NewMemoryStore(), Err: err}
}

// Save implements ratecache.Store
func (f *FailingStore) Save(ctx context.Context, code string, s ratecache.Snapshot) error {
	return f.Err
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
