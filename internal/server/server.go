// Package server exposes the flow pipeline over HTTP.
//
// Routes:
//
//	GET  /health                              liveness probe
//	POST /api/v1/graph                        build a graph from inline messages
//	GET  /api/v1/conversations                list conversations from the source
//	GET  /api/v1/conversations/{id}/graph     build (and optionally render) one conversation
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/convoflow/convoflow/pkg/buildinfo"
	"github.com/convoflow/convoflow/pkg/pipeline"
)

// Server is the convoflow HTTP API.
type Server struct {
	router *chi.Mux
	runner *pipeline.Runner
	logger *log.Logger
	addr   string
}

// New creates a server around a pipeline runner.
func New(runner *pipeline.Runner, logger *log.Logger, addr string) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		runner: runner,
		logger: logger,
		addr:   addr,
	}

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(s.logRequests)
	router.Use(middleware.Recoverer)

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/graph", s.buildGraph)
		r.Get("/conversations", s.listConversations)
		r.Get("/conversations/{id}/graph", s.conversationGraph)
	})

	s.router = router
	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr, "version", buildinfo.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
