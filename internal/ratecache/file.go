package ratecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileStore keeps every currency's snapshot in one JSON document on fs.
// The whole blob is read on each Load and rewritten on each Save; the
// read-modify-write in Save is serialized so concurrent writers in this
// process cannot drop each other's entries.
type FileStore struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

// NewFileStore stores the cache blob at path on fsys.
func NewFileStore(fsys afero.Fs, path string, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{
		fs:   fsys,
		path: path,
		log:  log.With("component", "ratecache.file", "path", path),
	}
}

// Load implements Store
func (f *FileStore) Load(_ context.Context, code string) (Snapshot, bool, error) {
	all, err := f.readAll()
	if err != nil {
		return Snapshot{}, false, err
	}
	s, ok := all[code]
	return s, ok, nil
}

// Save implements Store. A blob that no longer decodes is replaced rather
// than blocking every future write.
func (f *FileStore) Save(ctx context.Context, code string, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readAll()
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return err
		}
		f.log.Warn("Discarding unreadable cache blob", "error", err)
		all = make(map[string]Snapshot)
	}

	all[code] = s
	return f.writeAll(all)
}

func (f *FileStore) readAll() (map[string]Snapshot, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Snapshot), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	all := make(map[string]Snapshot)
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	return all, nil
}

// writeAll replaces the blob through a temp file and rename so a crash
// mid-write never leaves a truncated document behind.
func (f *FileStore) writeAll(all map[string]Snapshot) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
