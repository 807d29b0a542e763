// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/vana-ai/vana/pkg/logging"
	"github.com/vana-ai/vana/runner"
)

const shutdownTimeout = 10 * time.Second

// Server serves the VANA HTTP API for a single app.
type Server struct {
	runner *runner.Runner
	router *mux.Router
	logger *slog.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new [Server] around the given runner.
func New(r *runner.Runner, opts ...Option) *Server {
	s := &Server{
		runner: r,
		router: mux.NewRouter(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(s.loggerMiddleware)
	s.registerRoutes()

	return s
}

// loggerMiddleware makes the server logger available to handlers and
// everything downstream through the request context.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.NewContext(r.Context(), s.logger)))
	})
}

// Handler returns the root [http.Handler].
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/apps/{app}/users/{user}/sessions", s.handleListSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/apps/{app}/users/{user}/sessions", s.handleCreateSession).Methods(http.MethodPost)
	s.router.HandleFunc("/apps/{app}/users/{user}/sessions/{id}", s.handleCreateSession).Methods(http.MethodPost)
	s.router.HandleFunc("/apps/{app}/users/{user}/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	s.router.HandleFunc("/apps/{app}/users/{user}/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	s.router.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	s.router.HandleFunc("/run_sse", s.handleRunSSE).Methods(http.MethodPost)
}

// Serve runs the HTTP server on addr until ctx is canceled, then shuts it
// down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
