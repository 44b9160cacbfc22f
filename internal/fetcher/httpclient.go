package fetcher

import (
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"
)

const (
	// Default retry configuration
	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = 1 * time.Second
	DefaultRetryMaxWaitTime = 10 * time.Second
	DefaultTimeout          = 15 * time.Second
)

// ClientOptions tunes the HTTP client shared by the API integrations.
type ClientOptions struct {
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Logger           *slog.Logger
}

// DefaultClientOptions returns the production retry and timeout settings.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:          DefaultTimeout,
		RetryCount:       DefaultRetryCount,
		RetryWaitTime:    DefaultRetryWaitTime,
		RetryMaxWaitTime: DefaultRetryMaxWaitTime,
	}
}

// NewHTTPClient creates a new HTTP client with retry logic and exponential backoff
func NewHTTPClient(baseURL string, opts ClientOptions) *resty.Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetRetryMaxWaitTime(opts.RetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(func(r *resty.Response, err error) {
			retryHook(log, r, err)
		})

	return client
}

// retryCondition retries network errors, 5xx, 429 and 408; other 4xx are final.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	code := r.StatusCode()
	return code >= http.StatusInternalServerError ||
		code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout
}

// retryHook logs retry attempts for observability
func retryHook(log *slog.Logger, r *resty.Response, err error) {
	if err != nil {
		log.Debug("retrying request due to error",
			"url", r.Request.URL,
			"attempt", r.Request.Attempt,
			"error", err.Error())
		return
	}

	log.Debug("retrying request due to status code",
		"url", r.Request.URL,
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode())
}
