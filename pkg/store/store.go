// Package store provides the durable persistence layer for mockie routes.
//
// A Store loads and saves the complete route set. There is no incremental
// persistence: every Save writes a full snapshot.
package store

import (
	"context"
	"errors"

	"github.com/getmockd/mockie/pkg/route"
)

// Common errors
var (
	// ErrCorrupt means the backing data exists but could not be parsed.
	ErrCorrupt = errors.New("persisted routes are corrupt")
	// ErrUnreadable means the backing data exists but could not be read.
	ErrUnreadable = errors.New("persisted routes are unreadable")
)

// DefaultPath is the default routes file.
const DefaultPath = "routes.json"

// Config holds store configuration.
type Config struct {
	// Path is the routes file. Defaults to DefaultPath.
	Path string `json:"path" yaml:"path"`
}

// Store loads and saves the full route set.
type Store interface {
	// Load returns the persisted routes. Missing or empty data yields an
	// empty slice and no error.
	Load(ctx context.Context) ([]route.Route, error)

	// Save replaces the persisted routes with routes.
	Save(ctx context.Context, routes []route.Route) error
}
