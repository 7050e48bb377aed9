package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/getmockd/mockie/internal/storage"
	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/metrics"
	"github.com/getmockd/mockie/pkg/route"
	"github.com/getmockd/mockie/pkg/store"
)

// DefaultStatus is the status used when an add request omits it.
const DefaultStatus = 200

// AddRouteRequest describes a route to add.
type AddRouteRequest struct {
	Method   string
	Path     string
	Status   int
	DelayMs  uint64
	Response json.RawMessage
}

// quarantiner is implemented by stores that can move corrupt data aside.
type quarantiner interface {
	Quarantine() (string, error)
}

// Service validates and applies route mutations.
type Service struct {
	routes    storage.RouteStore
	persister store.Store
	metrics   *metrics.Metrics
	log       *slog.Logger

	// version counts accepted mutations; savedVersion is the version most
	// recently written to the persister.
	version      atomic.Uint64
	savedVersion atomic.Uint64
	saveMu       sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPersister sets the durable store used by Load and Save.
func WithPersister(p store.Store) Option {
	return func(s *Service) {
		s.persister = p
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service writing to routes.
func New(routes storage.RouteStore, opts ...Option) *Service {
	s := &Service{
		routes: routes,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoute validates the request and upserts the resulting route.
// A *route.ValidationError leaves the store untouched. Store failures are
// returned as *StorageError.
func (s *Service) AddRoute(ctx context.Context, req AddRouteRequest) (route.Route, error) {
	if err := ctx.Err(); err != nil {
		return route.Route{}, err
	}

	r := route.New(req.Method, req.Path, req.Status, req.DelayMs, req.Response)
	if err := r.Validate(); err != nil {
		s.metrics.RecordRouteRejected(metrics.ReasonValidation)
		return route.Route{}, err
	}

	if err := s.routes.Upsert(r); err != nil {
		s.metrics.RecordRouteRejected(metrics.ReasonStorage)
		return route.Route{}, storageErr("add route", err)
	}
	s.version.Add(1)
	s.metrics.RecordRouteAdded()
	s.refreshRouteCount()

	s.log.Info("route registered", "method", r.Method, "path", r.Path, "status", r.Status, "delay_ms", r.DelayMs)
	return r.Clone(), nil
}

// ListRoutes returns a summary of every registered route.
func (s *Service) ListRoutes(ctx context.Context) ([]route.Summary, error) {
	routes, err := s.Routes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]route.Summary, 0, len(routes))
	for _, r := range routes {
		summaries = append(summaries, r.Summary())
	}
	return summaries, nil
}

// Routes returns independent copies of every registered route.
func (s *Service) Routes(ctx context.Context) ([]route.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	routes, err := s.routes.Snapshot()
	if err != nil {
		return nil, storageErr("list routes", err)
	}
	return routes, nil
}

// Count returns the number of registered routes.
func (s *Service) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.routes.Count()
	if err != nil {
		return 0, storageErr("count routes", err)
	}
	return n, nil
}

// Load populates the store from the persister. It is the only code path
// that reads persisted routes, and it degrades to an empty registry on any
// file problem. The returned error is non-nil only when the route store
// itself fails.
func (s *Service) Load(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, nil
	}

	routes, err := s.persister.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		s.degrade(err)
		return 0, nil
	}

	for _, r := range routes {
		if err := s.routes.Upsert(r); err != nil {
			return 0, storageErr("load routes", err)
		}
	}
	// Freshly loaded routes match the file.
	s.savedVersion.Store(s.version.Load())
	s.refreshRouteCount()

	s.log.Info("routes loaded", "count", len(routes))
	return len(routes), nil
}

// degrade logs a load failure and quarantines corrupt data.
func (s *Service) degrade(err error) {
	if !errors.Is(err, store.ErrCorrupt) {
		s.log.Warn("could not read persisted routes, starting empty", "error", err)
		return
	}

	q, ok := s.persister.(quarantiner)
	if !ok {
		s.log.Warn("persisted routes are corrupt, starting empty", "error", err)
		return
	}
	moved, qerr := q.Quarantine()
	if qerr != nil {
		s.log.Warn("persisted routes are corrupt, starting empty", "error", err, "quarantine_error", qerr)
		return
	}
	s.log.Warn("persisted routes are corrupt, starting empty", "error", err, "moved_to", moved)
}

// Save writes a snapshot of every route to the persister and returns the
// number of routes written.
func (s *Service) Save(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, ErrNoPersister
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	v := s.version.Load()
	routes, err := s.routes.Snapshot()
	if err != nil {
		s.metrics.RecordSave(err)
		return 0, storageErr("snapshot routes", err)
	}
	if err := s.persister.Save(ctx, routes); err != nil {
		s.metrics.RecordSave(err)
		return 0, storageErr("save routes", err)
	}
	s.savedVersion.Store(v)
	s.metrics.RecordSave(nil)

	s.log.Debug("routes saved", "count", len(routes))
	return len(routes), nil
}

// SaveIfDirty saves only when routes changed since the last save. It
// reports whether a save happened.
func (s *Service) SaveIfDirty(ctx context.Context) (bool, error) {
	if s.persister == nil || !s.Dirty() {
		return false, nil
	}
	if _, err := s.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Dirty reports whether routes changed since the last save or load.
func (s *Service) Dirty() bool {
	return s.version.Load() != s.savedVersion.Load()
}

func (s *Service) refreshRouteCount() {
	if n, err := s.routes.Count(); err == nil {
		s.metrics.SetRouteCount(n)
	}
}
