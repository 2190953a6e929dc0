// Package httpserver wires the docsite API handlers into an http.Server.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/docsite/internal/server/middleware"
	"git.home.luguber.info/inful/docsite/internal/site"
)

const (
	defaultAddr        = ":8080"
	defaultReadTimeout = 30 * time.Second
)

// Options configures the server.
type Options struct {
	Addr        string
	ReadTimeout time.Duration
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	// Search enables /api/search; nil disables it.
	Search     *search.Live
	MaxResults int
	Recorder   metrics.Recorder
}

// Server serves the content API.
type Server struct {
	svc          *site.Service
	opts         Options
	startTime    time.Time
	errorAdapter *derrors.HTTPErrorAdapter

	monitoringHandlers *handlers.MonitoringHandlers
	apiHandlers        *handlers.APIHandlers

	mchain func(http.Handler) http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
	done       chan struct{}
}

// New constructs a server for svc.
func New(svc *site.Service, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	s := &Server{
		svc:          svc,
		opts:         opts,
		startTime:    time.Now(),
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}

	var searcher handlers.Searcher
	if opts.Search != nil {
		searcher = opts.Search
	}
	s.monitoringHandlers = handlers.NewMonitoringHandlers(s)
	s.apiHandlers = handlers.NewAPIHandlers(svc, searcher, opts.MaxResults)
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter, opts.Recorder)
	return s
}

// StartTime implements handlers.Runtime.
func (s *Server) StartTime() time.Time { return s.startTime }

// Locales implements handlers.Runtime.
func (s *Server) Locales() int { return len(s.svc.Registry().IDs()) }

// CachedDocuments implements handlers.Runtime.
func (s *Server) CachedDocuments() int { return s.svc.CachedDocuments() }

// SearchEnabled implements handlers.Runtime.
func (s *Server) SearchEnabled() bool { return s.opts.Search != nil }

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.MetricsHandler)
	}

	mux.HandleFunc("GET /api/locales", s.apiHandlers.HandleLocales)
	mux.HandleFunc("GET /api/search", s.apiHandlers.HandleSearch)
	mux.HandleFunc("GET /api/{locale}/sidebar", s.apiHandlers.HandleSidebar)
	mux.HandleFunc("GET /api/{locale}/navigation", s.apiHandlers.HandleNavigation)
	mux.HandleFunc("GET /api/{locale}/paths", s.apiHandlers.HandlePaths)
	mux.HandleFunc("GET /api/{locale}/docs", s.apiHandlers.HandleDoc)
	mux.HandleFunc("GET /api/{locale}/docs/{slug...}", s.apiHandlers.HandleDoc)
	mux.HandleFunc("GET /{$}", s.apiHandlers.HandleRoot)

	return s.mchain(gzhttp.GzipHandler(mux))
}

// Start binds the listen address and serves in the background. It fails
// fast when the address cannot be bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("server already started")
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "http startup failed").
			WithContext("addr", s.opts.Addr).
			Build()
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.addr = ln.Addr()
	s.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", logfields.Error(err))
		}
	}(s.httpServer, s.done)

	slog.Info("HTTP server started", slog.String("addr", s.addr.String()))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop gracefully shuts the server down and waits for the serve loop.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpServer, s.done
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	<-done
	slog.Info("HTTP server stopped")
	return nil
}
