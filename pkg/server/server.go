// Package server exposes stored layouts over HTTP.
//
// # Endpoints
//
//	GET    /healthz                       liveness probe
//	GET    /layouts                       list stored layouts
//	GET    /layouts/{name}                fetch a layout document
//	PUT    /layouts/{name}                create or replace a layout document
//	DELETE /layouts/{name}                delete a layout
//	GET    /layouts/{name}/validate       validation report
//	GET    /layouts/{name}/tree.svg       Area tree as SVG
//	GET    /layouts/{name}/tree.dot       Area tree as Graphviz DOT
//	GET    /layouts/{name}/tree.png       Area tree as PNG
//	POST   /layouts/{name}/apply          run a TOML edit script and save
//
// Every request works on its own copy of the layout read from the store, so
// handlers never share a [dungeon.Layout] across goroutines. Requests that
// write a layout (PUT, DELETE, apply) are serialized per name, so concurrent
// applies to one layout run one after the other instead of overwriting each
// other.
//
// Errors are JSON objects of the form
//
//	{"error": {"code": "LAYOUT_NOT_FOUND", "message": "layout \"x\" not found"}}
//
// with the HTTP status derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	"github.com/matzehuels/dungeonbuilder/pkg/pipeline"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// DefaultMaxBodyBytes caps uploaded documents and scripts.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Logger       *log.Logger
	Validation   validate.Options
	HistoryLimit int
	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
	writes *nameLocks
}

// New builds the router. A nil runner gets an uncached one.
func New(st store.Store, runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	s := &Server{
		store:  st,
		runner: runner,
		opts:   opts,
		logger: opts.Logger,
		writes: newNameLocks(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/layouts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Delete("/", s.handleDelete)
			r.Get("/validate", s.handleValidate)
			r.Get("/tree.svg", s.handleTree(pipeline.FormatSVG, "image/svg+xml"))
			r.Get("/tree.dot", s.handleTree(pipeline.FormatDOT, "text/vnd.graphviz"))
			r.Get("/tree.png", s.handleTree(pipeline.FormatPNG, "image/png"))
			r.Post("/apply", s.handleApply)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
