package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// API represents the different remote endpoints we pace independently
type API string

const (
	// APIHistorical is the per-date historical rates endpoint, the one
	// hit once per day of a trend window.
	APIHistorical API = "historical"
	// APILatest covers the latest rates and currency list endpoints
	APILatest API = "latest"
)

// Limiter manages rate limits for different APIs
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New returns a Limiter with no limits configured; unknown APIs are never limited.
func New() *Limiter {
	return &Limiter{
		limiters: make(map[API]*rate.Limiter),
	}
}

// NewDefault paces both endpoints at perSecond requests per second.
// A non-positive rate disables limiting.
func NewDefault(perSecond float64) *Limiter {
	l := New()
	l.Set(APIHistorical, perSecond)
	l.Set(APILatest, perSecond)
	return l
}

// Set configures the limit for api. A non-positive rate means unlimited.
func (l *Limiter) Set(api API, perSecond float64) {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	l.mu.Lock()
	l.limiters[api] = rate.NewLimiter(limit, 1)
	l.mu.Unlock()
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given API may happen now
func (l *Limiter) Allow(api API) bool {
	if l == nil {
		return true
	}

	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
