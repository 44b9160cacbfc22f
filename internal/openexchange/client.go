package openexchange

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"resty.dev/v3"

	"fxtrend/internal/fetcher"
	"fxtrend/internal/ratelimit"
	"fxtrend/internal/window"
)

// DefaultBaseURL is the production Open Exchange Rates API root.
const DefaultBaseURL = "https://openexchangerates.org/api"

// ratesResponse is the body of latest.json and historical/{date}.json
type ratesResponse struct {
	Disclaimer string             `json:"disclaimer"`
	License    string             `json:"license"`
	Timestamp  int64              `json:"timestamp"`
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
}

// Client talks to the Open Exchange Rates API. It satisfies both
// fetcher.RateFetcher and fetcher.LatestFetcher.
type Client struct {
	appID   string
	client  *resty.Client
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLimiter paces outgoing requests through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Open Exchange Rates client
func NewClient(appID, baseURL string, httpOpts fetcher.ClientOptions, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		appID: appID,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "openexchange")

	httpOpts.Logger = c.log
	c.client = fetcher.NewHTTPClient(baseURL, httpOpts)

	return c
}

// FetchRatesForDate retrieves the end-of-day rate table for date
func (c *Client) FetchRatesForDate(ctx context.Context, date window.DateKey) (*fetcher.Rates, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIHistorical); err != nil {
		return nil, fetcher.ClassifyRequestError(err)
	}

	var result ratesResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("date", date.String()).
		SetQueryParam("app_id", c.appID).
		SetResult(&result).
		Get("/historical/{date}.json")

	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch historical rates for %s: %w", date, err)
	}

	return result.toRates()
}

// FetchLatest retrieves the most recent rate table
func (c *Client) FetchLatest(ctx context.Context) (*fetcher.Rates, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APILatest); err != nil {
		return nil, fetcher.ClassifyRequestError(err)
	}

	var result ratesResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("app_id", c.appID).
		SetResult(&result).
		Get("/latest.json")

	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch latest rates: %w", err)
	}

	return result.toRates()
}

// FetchCurrencies retrieves the currency code to display name mapping.
// The endpoint does not require an app id.
func (c *Client) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APILatest); err != nil {
		return nil, fetcher.ClassifyRequestError(err)
	}

	var result map[string]string

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/currencies.json")

	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch currencies list: %w", err)
	}

	if len(result) == 0 {
		return nil, fetcher.NewValidationError("currencies list is empty")
	}

	return result, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fetcher.ClassifyRequestError(err)
	}
	if !resp.IsSuccess() {
		return fetcher.ClassifyHTTPError(resp.StatusCode())
	}
	return nil
}

func (r ratesResponse) toRates() (*fetcher.Rates, error) {
	if r.Rates == nil {
		return nil, fetcher.NewValidationError("rates not found in response")
	}

	return &fetcher.Rates{
		Base:  r.Base,
		Rates: r.Rates,
	}, nil
}
