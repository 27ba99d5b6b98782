// Package server wires configuration, storage and HTTP handlers into one
// application value.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"inkpost/app/config"
	"inkpost/app/controllers"
	"inkpost/app/metrics"
	"inkpost/app/repositories"
	"inkpost/app/routes"
	"inkpost/app/services"
	"inkpost/app/views"
)

// Server is the application context. Handlers reach storage only through
// the services it builds.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	handler http.Handler
}

// New builds the router and its dependencies around an opened store. The
// caller keeps ownership of store.
func New(cfg *config.Config, log *slog.Logger, store repositories.Store) (*Server, error) {
	renderer, err := views.New(views.Options{Markdown: cfg.Views.Markdown})
	if err != nil {
		return nil, err
	}
	codeCSS, err := views.CodeCSS()
	if err != nil {
		return nil, fmt.Errorf("failed to build code stylesheet: %w", err)
	}

	m := metrics.New()
	postService := services.NewPostService(store)
	handlers := routes.Handlers{
		Posts:   controllers.NewPostController(postService, renderer, log, m),
		Health:  controllers.NewHealthController(store, log),
		CodeCSS: codeCSS,
	}

	return &Server{
		cfg:     cfg,
		log:     log,
		handler: routes.SetupRoutes(handlers, log, m),
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTP.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting blog service", slog.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down blog service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
