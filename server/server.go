// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server.
type Server struct {
	handlers *Handlers
	router   chi.Router
	addr     string
	srv      *http.Server
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// New creates an HTTP server bound to addr.
func New(addr string, handlers *Handlers, opts ...Option) (*Server, error) {
	if addr == "" {
		return nil, ErrAddrRequired
	}
	if handlers == nil {
		return nil, ErrHandlersRequired
	}

	s := &Server{
		handlers: handlers,
		addr:     addr,
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router = r
	s.registerRoutes(r)
	return s, nil
}

func (s *Server) registerRoutes(r chi.Router) {
	h := s.handlers

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs/{taskID}", h.GetJob)

		r.Get("/checkpoints", h.ListCheckpoints)
		r.Get("/sync-status", h.SyncStatus)

		r.Post("/search", h.Search)
	})
}

// Start begins serving HTTP requests. It blocks until the listener
// fails or Stop is called.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
