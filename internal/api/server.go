package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server wraps the HTTP server with sensible timeouts.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
}

// NewServer creates a server for the given handler set.
func NewServer(h *Handlers) *Server {
	return &Server{router: SetupRoutes(h)}
}

// Router exposes the underlying mux, mostly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ListenAndServe starts serving on addr and blocks until shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
