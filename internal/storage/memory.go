package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/getmockd/mockie/pkg/route"
)

// InMemoryRouteStore is a thread-safe in-memory implementation of RouteStore.
type InMemoryRouteStore struct {
	mu       sync.RWMutex
	routes   map[route.Key]route.Route
	poisoned atomic.Bool
}

// NewInMemoryRouteStore creates an empty InMemoryRouteStore.
func NewInMemoryRouteStore() *InMemoryRouteStore {
	return &InMemoryRouteStore{
		routes: make(map[route.Key]route.Route),
	}
}

// NewInMemoryRouteStoreFrom creates a store holding routes. Later entries win
// on duplicate keys.
func NewInMemoryRouteStoreFrom(routes []route.Route) *InMemoryRouteStore {
	s := NewInMemoryRouteStore()
	for _, r := range routes {
		s.routes[r.Key()] = r.Clone()
	}
	return s
}

// Upsert stores r, replacing any route with the same key.
func (s *InMemoryRouteStore) Upsert(r route.Route) error {
	stored := r.Clone()
	return s.write(func() {
		s.routes[stored.Key()] = stored
	})
}

// Get retrieves a copy of the route for (method, path).
func (s *InMemoryRouteStore) Get(method, path string) (route.Route, bool, error) {
	var (
		found route.Route
		ok    bool
	)
	err := s.read(func() {
		found, ok = s.routes[route.Key{Method: method, Path: path}]
		if ok {
			found = found.Clone()
		}
	})
	if err != nil {
		return route.Route{}, false, err
	}
	return found, ok, nil
}

// Snapshot returns copies of all stored routes.
func (s *InMemoryRouteStore) Snapshot() ([]route.Route, error) {
	var result []route.Route
	err := s.read(func() {
		result = make([]route.Route, 0, len(s.routes))
		for _, r := range s.routes {
			result = append(result, r.Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of stored routes.
func (s *InMemoryRouteStore) Count() (int, error) {
	var n int
	err := s.read(func() {
		n = len(s.routes)
	})
	return n, err
}

// read runs fn under the read lock.
func (s *InMemoryRouteStore) read(fn func()) (err error) {
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	defer s.recoverPoison(&err)
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	fn()
	return nil
}

// write runs fn under the write lock.
func (s *InMemoryRouteStore) write(fn func()) (err error) {
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverPoison(&err)
	// A writer may have poisoned the store while this goroutine waited.
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	fn()
	return nil
}

// recoverPoison turns a panic inside a critical section into ErrPoisoned.
func (s *InMemoryRouteStore) recoverPoison(err *error) {
	if p := recover(); p != nil {
		s.poisoned.Store(true)
		*err = fmt.Errorf("%w: %v", ErrPoisoned, p)
	}
}

// Ensure InMemoryRouteStore implements RouteStore.
var _ RouteStore = (*InMemoryRouteStore)(nil)
