// Package route defines the Route type that describes one mock endpoint.
//
// A route is identified by its method and path (see Key). Two routes with the
// same Key describe the same endpoint; storing the second replaces the first.
//
// Routes are plain values. Response bodies are held as compacted JSON and
// Clone returns a copy that shares no memory with the original, so routes can
// be handed across goroutines freely once they have been validated.
package route
