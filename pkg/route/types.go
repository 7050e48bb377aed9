package route

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Key is the identity of a route: the pair (method, path).
type Key struct {
	Method string
	Path   string
}

// String returns "METHOD path".
func (k Key) String() string {
	return k.Method + " " + k.Path
}

// Route describes a mock HTTP endpoint.
type Route struct {
	// Method is the upper-cased HTTP verb.
	Method string `json:"method" yaml:"method"`

	// Path is matched exactly against the request path.
	Path string `json:"path" yaml:"path"`

	// Status is the HTTP status code written on a match.
	Status int `json:"status" yaml:"status"`

	// DelayMs is how long to wait before responding.
	DelayMs uint64 `json:"delay_ms" yaml:"delay_ms"`

	// Response is written verbatim as the response body.
	Response json.RawMessage `json:"response" yaml:"-"`
}

// Summary is the listing view of a route; it omits the response body.
type Summary struct {
	Method  string `json:"method" yaml:"method"`
	Path    string `json:"path" yaml:"path"`
	Status  int    `json:"status" yaml:"status"`
	DelayMs uint64 `json:"delayMs" yaml:"delayMs"`
}

var nullBody = json.RawMessage("null")

// New builds a Route. The method is upper-cased and the response compacted.
// An empty response becomes JSON null. New does not validate; call Validate
// before admitting the route anywhere.
func New(method, path string, status int, delayMs uint64, response json.RawMessage) Route {
	return Route{
		Method:   strings.ToUpper(method),
		Path:     path,
		Status:   status,
		DelayMs:  delayMs,
		Response: normalizeBody(response),
	}
}

// normalizeBody compacts valid JSON. Invalid input is copied unchanged so
// Validate can report it.
func normalizeBody(body json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return append(json.RawMessage(nil), nullBody...)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return append(json.RawMessage(nil), body...)
	}
	return json.RawMessage(buf.Bytes())
}

// Key returns the route identity.
func (r Route) Key() Key {
	return Key{Method: r.Method, Path: r.Path}
}

// Clone returns a deep copy of r.
func (r Route) Clone() Route {
	c := r
	if r.Response != nil {
		c.Response = append(json.RawMessage(nil), r.Response...)
	}
	return c
}

// Summary returns the listing view of r.
func (r Route) Summary() Summary {
	return Summary{
		Method:  r.Method,
		Path:    r.Path,
		Status:  r.Status,
		DelayMs: r.DelayMs,
	}
}

// Equal reports whether two routes have the same field values.
func (r Route) Equal(o Route) bool {
	return r.Method == o.Method &&
		r.Path == o.Path &&
		r.Status == o.Status &&
		r.DelayMs == o.DelayMs &&
		bytes.Equal(r.Response, o.Response)
}
