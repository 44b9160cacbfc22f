package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"fxtrend/internal/fetcher"
)

var (
	// ErrUnknownCurrency is returned when a code is not in the catalog.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrInvalidAmount is returned for amounts that are not positive and finite.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// Currency is a currency with its display name and latest rate against the base.
type Currency struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// Catalog is the set of currencies that have both a name and a usable rate.
type Catalog struct {
	Base       string
	Currencies []Currency
}

// Lookup finds a currency by code, case-insensitively.
func (c *Catalog) Lookup(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	i, found := slices.BinarySearchFunc(c.Currencies, code, func(cur Currency, code string) int {
		return strings.Compare(cur.Code, code)
	})
	if !found {
		return Currency{}, false
	}
	return c.Currencies[i], true
}

// Convert converts amount between two catalog currencies.
func (c *Catalog) Convert(amount float64, fromCode, toCode string) (float64, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	from, ok := c.Lookup(fromCode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, fromCode)
	}
	to, ok := c.Lookup(toCode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, toCode)
	}

	result, ok := Convert(amount, from, to)
	if !ok {
		return 0, fmt.Errorf("no usable rate for %s/%s", from.Code, to.Code)
	}
	return result, nil
}

// Convert returns amount / from.Rate * to.Rate. ok is false when amount is
// not a positive finite number or either rate is zero, NaN or infinite.
func Convert(amount float64, from, to Currency) (float64, bool) {
	if !(amount > 0) || !usable(amount) || !usable(from.Rate) || !usable(to.Rate) {
		return 0, false
	}

	result := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(from.Rate)).
		Mul(decimal.NewFromFloat(to.Rate))

	return result.InexactFloat64(), true
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Loader builds a Catalog from the latest rates and the currency names.
type Loader struct {
	fetcher fetcher.LatestFetcher
	log     *slog.Logger
}

// NewLoader creates a Loader. A nil log uses slog.Default().
func NewLoader(f fetcher.LatestFetcher, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		fetcher: f,
		log:     log.With("component", "catalog"),
	}
}

// Load fetches the latest rates and the currency names concurrently. If
// either request fails the other is canceled and the error is returned.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var (
		latest *fetcher.Rates
		names  map[string]string
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		r, err := l.fetcher.FetchLatest(ctx)
		if err != nil {
			return fmt.Errorf("fetch latest rates: %w", err)
		}
		latest = r
		return nil
	})

	p.Go(func(ctx context.Context) error {
		n, err := l.fetcher.FetchCurrencies(ctx)
		if err != nil {
			return fmt.Errorf("fetch currency names: %w", err)
		}
		names = n
		return nil
	})

	if err := p.Wait(); err != nil {
		l.log.Error("Failed to load currency catalog", "error", err)
		return nil, err
	}

	c := build(latest, names)
	l.log.Debug("Loaded currency catalog", "base", c.Base, "currencies", len(c.Currencies))
	return c, nil
}

func build(latest *fetcher.Rates, names map[string]string) *Catalog {
	c := &Catalog{Base: latest.Base}

	for code, name := range names {
		rate := latest.Rates[code]
		if rate == 0 || name == "" {
			continue
		}
		c.Currencies = append(c.Currencies, Currency{Code: code, Name: name, Rate: rate})
	}

	slices.SortFunc(c.Currencies, func(a, b Currency) int {
		return strings.Compare(a.Code, b.Code)
	})
	return c
}
