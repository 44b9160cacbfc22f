package ratecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrStorage marks every failure to read or persist the cache.
var ErrStorage = errors.New("cache storage failure")

// StorageError reports a failed store operation for one currency code.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Code, e.Err)
}

// Unwrap exposes both ErrStorage and the underlying cause.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Store persists snapshots keyed by currency code.
type Store interface {
	// Load returns the snapshot for code; ok is false when none exists.
	Load(ctx context.Context, code string) (s Snapshot, ok bool, err error)

	// Save replaces the snapshot for code. It must be durable when it
	// returns nil.
	Save(ctx context.Context, code string, s Snapshot) error
}

// Cache is the per-currency historical rate cache.
type Cache struct {
	store Store
	log   *slog.Logger
}

// New wraps store. A nil logger falls back to slog.Default().
func New(store Store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		store: store,
		log:   log.With("component", "ratecache"),
	}
}

// Read looks up the snapshot for code. It has no side effects.
func (c *Cache) Read(ctx context.Context, code string) (Snapshot, bool, error) {
	s, ok, err := c.store.Load(ctx, code)
	if err != nil {
		return Snapshot{}, false, &StorageError{Op: "read", Code: code, Err: err}
	}
	if ok {
		c.log.Debug("Cache hit", "code", code, "captured_at", s.CapturedAt, "dates", len(s.Rates))
	} else {
		c.log.Debug("Cache miss", "code", code)
	}
	return s, ok, nil
}

// Write fully replaces the snapshot for code. On error nothing is
// considered written.
func (c *Cache) Write(ctx context.Context, code string, s Snapshot) error {
	if err := c.store.Save(ctx, code, s); err != nil {
		return &StorageError{Op: "write", Code: code, Err: err}
	}
	c.log.Debug("Cache set", "code", code, "dates", len(s.Rates))
	return nil
}
