// Package engine provides the core mock server engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/getmockd/mockie/internal/storage"
	"github.com/getmockd/mockie/pkg/admin"
	"github.com/getmockd/mockie/pkg/httputil"
	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/metrics"
	"github.com/getmockd/mockie/pkg/registry"
)

// Config holds the server settings.
type Config struct {
	// Port is the TCP port to listen on. Zero picks a free port.
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// HTTP2 enables cleartext HTTP/2 (h2c) alongside HTTP/1.1.
	HTTP2 bool

	// SaveOnShutdown writes the routes file on Stop when routes changed.
	SaveOnShutdown bool

	// SaveSchedule is an optional cron expression for periodic saves.
	SaveSchedule string
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Port:           3000,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		SaveOnShutdown: true,
	}
}

// Server serves the admin API and dispatches every other request to the
// registered routes.
type Server struct {
	cfg       Config
	svc       *registry.Service
	handler   *Handler
	api       *admin.API
	metrics   *metrics.Metrics
	log       *slog.Logger
	autosaver *registry.Autosaver

	httpHandler http.Handler // router wrapped with middleware
	httpServer  *http.Server
	listener    net.Listener

	mu      sync.Mutex
	running bool

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics sink and exposes it on the admin API.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a Server. routes must be the store svc writes to; the
// dispatch handler only reads from it.
func NewServer(cfg Config, routes storage.RouteStore, svc *registry.Service, opts ...ServerOption) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		svc:        svc,
		log:        logging.Nop(), // Default to no-op, can be set with WithLogger
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.SaveSchedule != "" {
		a, err := registry.NewAutosaver(svc, cfg.SaveSchedule, s.log.With("subcomponent", "autosave"))
		if err != nil {
			return nil, err
		}
		s.autosaver = a
	}

	s.handler = NewHandler(routes,
		WithHandlerLogger(s.log.With("subcomponent", "dispatch")),
		WithHandlerMetrics(s.metrics),
		WithHandlerWriteTimeout(cfg.WriteTimeout),
	)
	s.api = admin.New(svc,
		admin.WithLogger(s.log.With("subcomponent", "admin")),
		admin.WithMetrics(s.metrics),
		admin.WithShutdownFunc(s.RequestShutdown),
	)
	s.httpHandler = s.buildHandler()
	return s, nil
}

// buildHandler assembles the router. Admin endpoints are matched by exact
// method and path; everything else reaches the dispatch handler unchanged.
func (s *Server) buildHandler() http.Handler {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.HandleMethodNotAllowed = false
	router.HandleOPTIONS = false
	router.NotFound = s.handler
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.log.Error("panic while handling request", "method", r.Method, "path", r.URL.Path, "panic", v)
		httputil.WriteInternalError(w, MsgInternalError)
	}
	s.api.Register(router)

	h := RequestLogMiddleware(s.log.With("subcomponent", "http"))(router)
	if s.cfg.HTTP2 {
		h = h2c.NewHandler(h, &http2.Server{})
	}
	return h
}

// Handler returns the complete HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpHandler
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.httpHandler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	if s.autosaver != nil {
		s.autosaver.Start()
	}

	s.running = true
	s.log.Info("mock server started", "addr", ln.Addr().String(), "http2", s.cfg.HTTP2)
	return nil
}

// Stop gracefully shuts down the server. In-flight requests, including
// delayed ones, are allowed to finish until ctx expires. When
// SaveOnShutdown is set, changed routes are written afterwards.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	var errs []error

	if s.autosaver != nil {
		if err := s.autosaver.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("autosave stop: %w", err))
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if s.cfg.SaveOnShutdown {
		saved, err := s.svc.SaveIfDirty(context.WithoutCancel(ctx))
		if err != nil {
			errs = append(errs, fmt.Errorf("final save: %w", err))
		} else if saved {
			s.log.Info("routes saved on shutdown")
		}
	}

	s.running = false
	s.log.Info("mock server stopped")
	return errors.Join(errs...)
}

// RequestShutdown asks the owner of the server to stop it. It does not
// block and is safe to call more than once.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// ShutdownRequested is closed once RequestShutdown has been called.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
