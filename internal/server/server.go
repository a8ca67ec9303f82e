// Package server exposes the script engine over HTTP and websockets.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"

	"github.com/cryguy/jsrun/internal/config"
	"github.com/cryguy/jsrun/internal/core"
	"github.com/cryguy/jsrun/internal/history"
)

// Runner executes one script per call.
type Runner interface {
	ExecuteLang(ctx context.Context, lang core.Lang, src string) *core.Outcome
	Backend() string
	LiveSessions() int64
}

// Server is the HTTP front end for a Runner.
type Server struct {
	cfg    *config.Config
	runner Runner
	store  *history.Store
	router chi.Router
	http   *http.Server
}

// New creates a Server. store may be nil, which disables /runs and run
// recording.
func New(cfg *config.Config, runner Runner, store *history.Store) *Server {
	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  store,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Group(func(r chi.Router) {
		if s.cfg.Server.Compress {
			r.Use(newCompressor().Handler)
		}
		r.Get("/", s.handleIndex)
		r.Post("/run", s.handleRun)
		if s.store != nil {
			r.Get("/runs", s.handleRuns)
		}
	})

	// Upgrades must not pass through the compressor.
	r.Get("/ws", s.handleWebSocket)
}

// newCompressor negotiates brotli first, then chi's built-in gzip and
// deflate.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(5, "text/html", "text/plain", "application/json")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// notFound answers every unknown route and method with an empty 404.
func notFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Shutdown. It
// returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, capped at server.max_conns when set.
func (s *Server) Serve(ln net.Listener) error {
	if max := s.cfg.Server.MaxConns; max > 0 {
		ln = netutil.LimitListener(ln, max)
	}
	log.Printf("jsrun: listening on http://%s (%s backend)", ln.Addr(), s.runner.Backend())
	return s.http.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("jsrun: shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
