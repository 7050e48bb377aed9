// Package registry applies admin mutations to the route store.
//
// Service is the only writer of a storage.RouteStore. It validates every
// route before it reaches the store, tracks whether the store has changed
// since the last save, and owns the single startup load path.
//
// Adding a route never touches the routes file. Persistence happens when
// Save is called explicitly, when an Autosaver fires, or on shutdown.
//
// Startup load policy: a missing or empty file starts an empty registry. A
// corrupt file is quarantined (when the store supports it) and the registry
// starts empty. An unreadable file is logged and the registry starts empty.
// Load never fails because of the file contents.
package registry
