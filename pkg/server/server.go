// Package server exposes the layout pipeline and the document store over
// HTTP.
//
// # Routes
//
//	GET    /healthz                  liveness and build version
//	POST   /v1/measure               measure a document, returns its size
//	POST   /v1/place                 measure and place a document
//	POST   /v1/layouts               save a document, returns its id
//	GET    /v1/layouts               list saved documents, newest first
//	GET    /v1/layouts/{id}          fetch a saved document
//	DELETE /v1/layouts/{id}          delete a saved document
//	GET    /v1/layouts/{id}/result   lay out a saved document
//	GET    /v1/layouts/{id}/svg      render a saved document as SVG
//	GET    /v1/stats                 event counters, when enabled
//
// Failures are answered with {"code": ..., "message": ...} and the status
// code mapped from the error code by [errors.HTTPStatus].
//
// Requests carrying an X-Reflow-Client header get cache keys scoped to that
// client, so tenants sharing a Redis backend never read each other's
// entries.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reflow/pkg/cache"
	"github.com/matzehuels/reflow/pkg/observability"
	"github.com/matzehuels/reflow/pkg/pipeline"
	"github.com/matzehuels/reflow/pkg/store"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 4 << 20

	// ClientHeader names the header that scopes cache keys per client.
	ClientHeader = "X-Reflow-Client"

	shutdownTimeout = 10 * time.Second
)

var clientIDRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
	stats   *observability.Stats
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies at n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithStats serves st's counters at /v1/stats. The caller registers st
// with [observability.Register].
func WithStats(st *observability.Stats) Option {
	return func(s *Server) { s.stats = st }
}

// New creates a server over runner and st. A nil logger logs nowhere.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts ...Option) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner:  runner,
		store:   st,
		logger:  logger,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(s.instrument)

		r.Get("/healthz", s.handleHealth)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/measure", s.handleMeasure)
			r.Post("/place", s.handlePlace)
			r.Get("/stats", s.handleStats)

			r.Route("/layouts", func(r chi.Router) {
				r.Post("/", s.handleSave)
				r.Get("/", s.handleList)
				r.Get("/{id}", s.handleGet)
				r.Delete("/{id}", s.handleDelete)
				r.Get("/{id}/result", s.handleResult)
				r.Get("/{id}/svg", s.handleSVG)
			})
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runnerFor returns the runner for r, with cache keys scoped to the
// requesting client when it identifies itself.
func (s *Server) runnerFor(r *http.Request) *pipeline.Runner {
	client := r.Header.Get(ClientHeader)
	if client == "" || !clientIDRegex.MatchString(client) {
		return s.runner
	}
	return &pipeline.Runner{
		Cache:  s.runner.Cache,
		Keyer:  cache.NewScopedKeyer(s.runner.Keyer, "client:"+client+":"),
		Logger: s.runner.Logger,
	}
}
