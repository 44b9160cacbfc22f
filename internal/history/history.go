package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Record is one completed conversion.
type Record struct {
	ID           string  `json:"id"`
	FromCurrency string  `json:"fromCurrency"`
	ToCurrency   string  `json:"toCurrency"`
	Amount       float64 `json:"amount"`
	Result       float64 `json:"result"`
	Timestamp    int64   `json:"timestamp"`
}

// Time returns the record timestamp.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Store is an append-only conversion log kept as a JSON array in one file.
// The full list is rewritten on every change.
type Store struct {
	fs   afero.Fs
	path string
	now  func() time.Time
	log  *slog.Logger

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore keeps the history at path on fsys.
func NewStore(fsys afero.Fs, path string, opts ...Option) *Store {
	s := &Store{
		fs:   fsys,
		path: path,
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "history")
	return s
}

// Add appends a conversion and returns the stored record.
func (s *Store) Add(from, to string, amount, result float64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return Record{}, err
	}

	r := Record{
		ID:           uuid.NewString(),
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       amount,
		Result:       result,
		Timestamp:    s.now().UnixMilli(),
	}
	records = append(records, r)

	if err := s.write(records); err != nil {
		return Record{}, err
	}
	s.log.Debug("Recorded conversion", "id", r.ID, "from", from, "to", to)
	return r, nil
}

// List returns all records, oldest first.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	return slices.Clone(records), nil
}

// Clear removes every record and the backing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

func (s *Store) read() ([]Record, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history file: %w", err)
	}
	return records, nil
}

func (s *Store) write(records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
