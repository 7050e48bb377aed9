// Dispatch handler for registered mock routes.

package engine

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/getmockd/mockie/internal/storage"
	"github.com/getmockd/mockie/pkg/httputil"
	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/metrics"
)

// Messages written by the dispatch handler.
const (
	MsgNotFound      = "Mock endpoint not found"
	MsgInternalError = "Internal server error"
)

// maxDelayMs is the largest delay representable as a time.Duration.
const maxDelayMs = math.MaxInt64 / uint64(time.Millisecond)

// NotFoundResponse is the body written when no route matches.
type NotFoundResponse struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// Handler answers requests from the registered routes. It only reads the
// route store.
type Handler struct {
	store        storage.RouteStore
	metrics      *metrics.Metrics
	log          *slog.Logger
	sleep        func(time.Duration)
	writeTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the operational logger.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithHandlerMetrics sets the metrics sink.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithHandlerWriteTimeout sets the server write timeout. A delayed response
// gets its write deadline pushed back by the delay so it is still delivered.
func WithHandlerWriteTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.writeTimeout = d
	}
}

// NewHandler creates a Handler reading from store.
func NewHandler(store storage.RouteStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		store: store,
		log:   logging.Nop(),
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements the http.Handler interface.
//
// The method and path are used exactly as received. The store lock is held
// only inside Get, so a delayed response never blocks other requests or
// admin writes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rt, ok, err := h.store.Get(r.Method, r.URL.Path)
	if err != nil {
		h.log.Error("route lookup failed",
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteInternalError(w, MsgInternalError)
		h.metrics.RecordDispatch(metrics.OutcomeError, time.Since(start))
		return
	}
	if !ok {
		h.log.Debug("no route matched", "method", r.Method, "path", r.URL.Path)
		httputil.WriteJSON(w, http.StatusNotFound, NotFoundResponse{Error: MsgNotFound, Path: r.URL.Path})
		h.metrics.RecordDispatch(metrics.OutcomeNotFound, time.Since(start))
		return
	}

	if rt.DelayMs > 0 {
		d := delayDuration(rt.DelayMs)
		h.extendWriteDeadline(w, d)
		h.sleep(d)
	}

	httputil.WriteRawJSON(w, rt.Status, rt.Response)
	h.metrics.RecordDispatch(metrics.OutcomeMatched, time.Since(start))
}

// extendWriteDeadline moves the connection's write deadline to writeTimeout
// after the delay ends. A deadline that would overflow is cleared instead.
func (h *Handler) extendWriteDeadline(w http.ResponseWriter, delay time.Duration) {
	if h.writeTimeout <= 0 {
		return
	}
	var deadline time.Time
	if extend := delay + h.writeTimeout; extend > delay {
		deadline = time.Now().Add(extend)
	}
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil {
		h.log.Debug("cannot extend write deadline", "error", err)
	}
}

func delayDuration(ms uint64) time.Duration {
	if ms > maxDelayMs {
		ms = maxDelayMs
	}
	return time.Duration(ms) * time.Millisecond
}
