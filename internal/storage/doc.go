// Package storage provides the runtime route store.
//
// It defines the RouteStore interface, the only way to read or mutate the set
// of registered routes, and InMemoryRouteStore, its reader/writer-locked
// implementation.
//
// Key types:
//
//   - RouteStore: Interface used by the registry (writer) and dispatch (reader)
//   - InMemoryRouteStore: Thread-safe in-memory implementation of RouteStore
//
// Routes are cloned on the way in and on the way out, so nothing a caller
// holds aliases the stored data. Snapshot returns an independent copy that
// later mutations do not affect.
//
// If a critical section ever panics, the store marks itself poisoned and
// every subsequent call returns ErrPoisoned instead of touching state that
// may be half-written.
package storage
