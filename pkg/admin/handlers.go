package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/julienschmidt/httprouter"

	"github.com/getmockd/mockie/pkg/httputil"
	"github.com/getmockd/mockie/pkg/metrics"
	"github.com/getmockd/mockie/pkg/registry"
	"github.com/getmockd/mockie/pkg/route"
)

// AddRouteBody is the JSON body of POST /__admin/routes.
type AddRouteBody struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Status   *int            `json:"status,omitempty"`
	DelayMs  *uint64         `json:"delayMs,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`

	// DelayMsAlias accepts the snake_case spelling used by the routes file.
	DelayMsAlias *uint64 `json:"delay_ms,omitempty"`
}

// toRequest applies defaults. delayMs wins over delay_ms when both are set.
func (b AddRouteBody) toRequest() registry.AddRouteRequest {
	req := registry.AddRouteRequest{
		Method:   b.Method,
		Path:     b.Path,
		Status:   registry.DefaultStatus,
		Response: b.Response,
	}
	if b.Status != nil {
		req.Status = *b.Status
	}
	switch {
	case b.DelayMs != nil:
		req.DelayMs = *b.DelayMs
	case b.DelayMsAlias != nil:
		req.DelayMs = *b.DelayMsAlias
	}
	return req
}

// OKResponse acknowledges a successful mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

// SaveResponse is returned by POST /__admin/save.
type SaveResponse struct {
	OK    bool `json:"ok"`
	Saved int  `json:"saved"`
}

// ShutdownResponse is returned by POST /__admin/shutdown.
type ShutdownResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /__admin/health.
type HealthResponse struct {
	Status string `json:"status"`
	Routes int    `json:"routes"`
}

// handleAddRoute handles POST /__admin/routes.
func (a *API) handleAddRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		a.metrics.RecordRouteRejected(metrics.ReasonInvalidJSON)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, ErrMsgBodyTooLarge)
			return
		}
		httputil.WriteBadRequest(w, sanitizeJSONError(err, a.log))
		return
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		a.metrics.RecordRouteRejected(metrics.ReasonInvalidJSON)
		httputil.WriteBadRequest(w, sanitizeJSONError(err, a.log))
		return
	}
	if err := validateBody(addRouteSchema, doc); err != nil {
		a.log.Debug("add route body rejected", "error", err)
		a.metrics.RecordRouteRejected(metrics.ReasonInvalidJSON)
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	var body AddRouteBody
	if err := json.Unmarshal(data, &body); err != nil {
		a.metrics.RecordRouteRejected(metrics.ReasonInvalidJSON)
		httputil.WriteBadRequest(w, sanitizeJSONError(err, a.log))
		return
	}

	if _, err := a.svc.AddRoute(r.Context(), body.toRequest()); err != nil {
		status, msg := sanitizeError(err, a.log, "add route")
		httputil.WriteError(w, status, msg)
		return
	}
	httputil.WriteOK(w, OKResponse{OK: true})
}

// handleListRoutes handles GET /__admin/routes. Routes are sorted by path
// then method.
func (a *API) handleListRoutes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := a.svc.ListRoutes(r.Context())
	if err != nil {
		status, msg := sanitizeError(err, a.log, "list routes")
		httputil.WriteError(w, status, msg)
		return
	}
	sortSummaries(list)
	httputil.WriteOK(w, list)
}

// handleSave handles POST /__admin/save.
func (a *API) handleSave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, err := a.svc.Save(r.Context())
	if err != nil {
		if errors.Is(err, registry.ErrNoPersister) {
			httputil.WriteBadRequest(w, ErrMsgNoPersister)
			return
		}
		status, msg := sanitizeError(err, a.log, "save routes")
		httputil.WriteError(w, status, msg)
		return
	}
	a.log.Info("routes saved", "count", n)
	httputil.WriteOK(w, SaveResponse{OK: true, Saved: n})
}

// handleShutdown handles POST /__admin/shutdown.
func (a *API) handleShutdown(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if a.shutdown == nil {
		httputil.WriteError(w, http.StatusNotImplemented, ErrMsgShutdownUnavailable)
		return
	}
	a.log.Info("shutdown requested via admin API")
	httputil.WriteOK(w, ShutdownResponse{OK: true, Message: "Server shutting down"})
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	a.shutdown()
}

// handleHealth handles GET /__admin/health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, err := a.svc.Count(r.Context())
	if err != nil {
		status, msg := sanitizeError(err, a.log, "health")
		httputil.WriteError(w, status, msg)
		return
	}
	httputil.WriteOK(w, HealthResponse{Status: "ok", Routes: n})
}

func sortSummaries(list []route.Summary) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Path != list[j].Path {
			return list[i].Path < list[j].Path
		}
		return list[i].Method < list[j].Method
	})
}
