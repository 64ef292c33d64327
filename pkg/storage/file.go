package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shopkit-go/storefront-core/pkg/logging"
)

// FileStore persists the key-value table as a single JSON file, written
// synchronously on every mutation. This mirrors the synchronous
// single-slot semantics of browser local storage: a write either lands
// on disk before the call returns or is reported as an error.
type FileStore struct {
	mu     sync.Mutex
	path   string
	table  map[string]json.RawMessage
	logger zerolog.Logger
}

// NewFileStore loads (or creates) a file-backed store at path.
// A missing file starts an empty table. A malformed file is treated the
// same way: corrupt persisted state is reset, not surfaced as an error.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}

	s := &FileStore{
		path:   path,
		table:  make(map[string]json.RawMessage),
		logger: logging.NewLogger("file-store"),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run, nothing persisted yet.
	case err != nil:
		return nil, fmt.Errorf("read store file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.table); err != nil {
			s.logger.Warn().
				Err(err).
				Str("path", path).
				Msg("Malformed store file, starting empty")
			s.table = make(map[string]json.RawMessage)
		}
	}

	return s, nil
}

// Get returns a copy of the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.table[key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key and writes the whole table to disk.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make(json.RawMessage, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table[key] = stored
	return s.flushLocked()
}

// Delete removes the value stored under key and writes the table to disk.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.table[key]; !ok {
		return nil
	}

	delete(s.table, key)
	return s.flushLocked()
}

// flushLocked writes the table atomically: temp file in the same
// directory, then rename over the target.
func (s *FileStore) flushLocked() error {
	data, err := json.Marshal(s.table)
	if err != nil {
		return fmt.Errorf("marshal store table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename store file: %w", err)
	}

	return nil
}
