package storage

import (
	"errors"

	"github.com/getmockd/mockie/pkg/route"
)

// ErrPoisoned is returned by every store operation once a critical section
// has panicked.
var ErrPoisoned = errors.New("route store is poisoned")

// RouteStore defines the interface for storing and retrieving routes.
type RouteStore interface {
	// Upsert inserts r or replaces the route with the same key.
	Upsert(r route.Route) error

	// Get returns a copy of the route for (method, path).
	Get(method, path string) (route.Route, bool, error)

	// Snapshot returns copies of all stored routes. Order is unspecified.
	Snapshot() ([]route.Route, error)

	// Count returns the number of stored routes.
	Count() (int, error)
}
