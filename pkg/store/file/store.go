// Package file provides a JSON file implementation of store.Store.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/route"
	"github.com/getmockd/mockie/pkg/store"
)

// FileStore implements store.Store using a single JSON file.
type FileStore struct {
	cfg store.Config
	// mu serializes writers so two saves never race on the temp file.
	mu  sync.Mutex
	log *slog.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a new FileStore with the given configuration.
func New(cfg store.Config, opts ...Option) *FileStore {
	if cfg.Path == "" {
		cfg.Path = store.DefaultPath
	}
	s := &FileStore{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the routes file path.
func (s *FileStore) Path() string {
	return s.cfg.Path
}

// Load reads the routes file. A missing or blank file yields no routes.
// Entries that fail validation are skipped and logged.
func (s *FileStore) Load(ctx context.Context) ([]route.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []route.Route{}, nil
		}
		return nil, fmt.Errorf("%w: %w", store.ErrUnreadable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []route.Route{}, nil
	}

	var stored []route.Route
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", store.ErrCorrupt, s.cfg.Path, err)
	}

	routes := make([]route.Route, 0, len(stored))
	for i, r := range stored {
		r = route.New(r.Method, r.Path, r.Status, r.DelayMs, r.Response)
		if err := r.Validate(); err != nil {
			s.log.Warn("skipping invalid persisted route", "index", i, "route", r.Key().String(), "error", err)
			continue
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// Save writes routes as a pretty-printed JSON array, replacing the file
// atomically.
func (s *FileStore) Save(ctx context.Context, routes []route.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := make([]route.Route, len(routes))
	copy(sorted, routes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	// Atomic write: write to temp file, then rename
	tmpFile := s.cfg.Path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, s.cfg.Path); err != nil {
		_ = os.Remove(tmpFile) // Clean up temp file on failure
		return err
	}
	return nil
}

// Quarantine moves the routes file aside so a later Save cannot overwrite
// it. It returns the new location.
func (s *FileStore) Quarantine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.cfg.Path + ".corrupt-" + strconv.FormatInt(time.Now().Unix(), 10)
	if err := os.Rename(s.cfg.Path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Ensure FileStore implements store.Store.
var _ store.Store = (*FileStore)(nil)
