// Package metrics exposes mockie's Prometheus metrics.
//
// Every server owns its own Metrics value backed by a private
// prometheus.Registry, so tests and embedded servers never collide on the
// global default registry. All Record methods are safe on a nil *Metrics.
package metrics
