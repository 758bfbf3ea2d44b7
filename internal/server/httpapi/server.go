// Package httpapi binds the credential gate and the item service to the
// HTTP surface: login, token status, item CRUD and health.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gallerykeeper/internal/logging"
	"gallerykeeper/internal/server/auth"
	"gallerykeeper/internal/server/items"

	"github.com/go-chi/chi/v5"
)

type HTTPServer struct {
	address string
	logger  logging.Logger
	auth    *auth.Service
	items   *items.Service
}

func NewHTTPServer(a string, l logging.Logger, as *auth.Service, is *items.Service) (*HTTPServer, error) {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		auth:    as,
		items:   is,
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/api/auth/status", s.handleAuthStatus)
		r.Get("/api/items", s.handleListItems)
		r.Post("/api/items", s.handleCreateItem)
		r.Delete("/api/items/{id}", s.handleDeleteItem)
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
