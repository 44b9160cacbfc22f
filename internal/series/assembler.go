package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fxtrend/internal/fetcher"
	"fxtrend/internal/metrics"
	"fxtrend/internal/ratecache"
	"fxtrend/internal/window"
)

// DefaultWindowSize is the number of days looked back from today; a series
// holds one more point than this.
const DefaultWindowSize = 7

// ErrNoCurrency is returned when a series is requested without a currency code.
var ErrNoCurrency = errors.New("no currency code selected")

// Point is one day of a historical series. Rate is NaN when no data was obtained.
type Point struct {
	Date window.DateKey `json:"date"`
	Rate float64        `json:"rate"`
}

// Result is an assembled series together with how it was obtained.
type Result struct {
	Code   string
	Points []Point

	// Dates holds the per-date fetch outcomes of a fetch pass, in window
	// order. It is empty when the series came from the cache.
	Dates     []fetcher.Result
	FromCache bool

	// StorageErr is set when the series was built but could not be
	// persisted; the points are still valid.
	StorageErr error
}

// Failed returns the number of dates whose fetch failed.
func (r Result) Failed() int {
	n := 0
	for _, d := range r.Dates {
		if !d.OK() {
			n++
		}
	}
	return n
}

// Err joins the per-date fetch errors, or returns nil when every fetch succeeded.
func (r Result) Err() error {
	var errs []error
	for _, d := range r.Dates {
		if !d.OK() {
			errs = append(errs, fmt.Errorf("%s: %w", d.Date, d.Error))
		}
	}
	return errors.Join(errs...)
}

// Assembler builds historical series from the cache, falling back to one
// fetch per date.
type Assembler struct {
	fetcher fetcher.RateFetcher
	cache   *ratecache.Cache
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithClock replaces time.Now. The clock's location decides calendar days.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Assembler) {
		a.log = log
	}
}

// WithMetrics records cache and fetch outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}

// NewAssembler creates an Assembler that fetches through f and caches in cache.
func NewAssembler(f fetcher.RateFetcher, cache *ratecache.Cache, opts ...Option) *Assembler {
	a := &Assembler{
		fetcher: f,
		cache:   cache,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "series")
	return a
}

// GetSeries returns windowSize+1 points for code ending today.
//
// A snapshot captured today is served as-is, gaps included, without any
// network access. Otherwise every date is fetched in order; a failed date
// becomes a NaN point and is reported in Result.Dates without stopping the
// pass. The returned error is reserved for requests that cannot start:
// an empty code or a negative window.
func (a *Assembler) GetSeries(ctx context.Context, code string, windowSize int) (Result, error) {
	return a.getSeries(ctx, code, windowSize, nil)
}

// getSeries is GetSeries with a hook invoked right before the first fetch
// of a miss pass.
func (a *Assembler) getSeries(ctx context.Context, code string, windowSize int, onFetch func()) (Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Result{}, ErrNoCurrency
	}

	now := a.now()
	dates, err := window.Generate(windowSize, now)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	defer func() {
		a.metrics.SeriesBuilt(time.Since(start).Seconds())
	}()

	snapshot, ok, err := a.cache.Read(ctx, code)
	switch {
	case err != nil:
		a.log.Warn("Cache read failed, fetching instead", "code", code, "error", err)
		a.metrics.CacheLookup(metrics.LookupMiss)
	case ok && ratecache.IsFresh(snapshot, now):
		a.metrics.CacheLookup(metrics.LookupHit)
		return fromSnapshot(code, dates, snapshot), nil
	case ok:
		a.log.Debug("Cached snapshot is stale", "code", code, "captured_at", snapshot.CapturedAt)
		a.metrics.CacheLookup(metrics.LookupStale)
	default:
		a.metrics.CacheLookup(metrics.LookupMiss)
	}

	if onFetch != nil {
		onFetch()
	}

	result := a.fetchAll(ctx, code, dates)

	failed := result.Failed()
	if failed > 0 {
		a.log.Warn("Historical series has failed dates",
			"code", code, "failed", failed, "total", len(dates), "error", result.Err())
	}

	if failed == len(dates) {
		a.log.Warn("Not caching series with no fetched dates", "code", code)
		return result, nil
	}

	if err := a.cache.Write(ctx, code, toSnapshot(now, result.Dates)); err != nil {
		a.log.Warn("Failed to cache historical series", "code", code, "error", err)
		a.metrics.StorageFailure()
		result.StorageErr = err
	}

	return result, nil
}

// fetchAll fetches dates strictly one after another. Once ctx is done the
// remaining dates are marked failed with the context error.
func (a *Assembler) fetchAll(ctx context.Context, code string, dates []window.DateKey) Result {
	result := Result{
		Code:   code,
		Points: make([]Point, 0, len(dates)),
		Dates:  make([]fetcher.Result, 0, len(dates)),
	}

	for _, date := range dates {
		var r fetcher.Result
		if err := ctx.Err(); err != nil {
			r = fetcher.Failed(date, err)
		} else if rates, err := a.fetcher.FetchRatesForDate(ctx, date); err != nil {
			a.log.Error("Failed to fetch historical rates", "code", code, "date", date, "error", err)
			r = fetcher.Failed(date, err)
		} else {
			r = fetcher.Succeeded(date, rates, code)
		}

		a.metrics.Fetch(r.OK())
		result.Dates = append(result.Dates, r)
		result.Points = append(result.Points, Point{Date: date, Rate: r.Value})
	}

	return result
}

func fromSnapshot(code string, dates []window.DateKey, s ratecache.Snapshot) Result {
	points := make([]Point, len(dates))
	for i, date := range dates {
		points[i] = Point{Date: date, Rate: s.Rate(date)}
	}
	return Result{Code: code, Points: points, FromCache: true}
}

func toSnapshot(now time.Time, dates []fetcher.Result) ratecache.Snapshot {
	rates := make(map[window.DateKey]float64, len(dates))
	for _, d := range dates {
		rates[d.Date] = d.Value
	}
	return ratecache.Snapshot{CapturedAt: now, Rates: rates}
}
