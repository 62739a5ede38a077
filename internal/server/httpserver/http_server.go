// Package httpserver assembles the deploy trigger's routes and runs the
// HTTP server with graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/history"
	"git.home.luguber.info/inful/blogsync/internal/server/handlers"
	"git.home.luguber.info/inful/blogsync/internal/server/middleware"
)

const shutdownTimeout = 30 * time.Second

// Options are the dependencies of the HTTP server.
type Options struct {
	Addr     string
	Deployer handlers.Deployer
	History  history.Store // optional
	Metrics  http.Handler  // optional; served on /metrics
}

// Server is the HTTP deploy trigger.
type Server struct {
	srv *http.Server
}

// New builds the server and its routes.
func New(opts Options) *Server {
	return &Server{srv: &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// NewHandler returns the routed handler wrapped in logging and panic recovery.
func NewHandler(opts Options) http.Handler {
	deployH := handlers.NewDeployHandlers(opts.Deployer)
	historyH := handlers.NewHistoryHandlers(opts.History)
	monitoringH := handlers.NewMonitoringHandlers(time.Now(), opts.Deployer.Targets())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/deploy/{target}", deployH.HandleDeploy)
	mux.HandleFunc("/api/deployments", historyH.HandleList)
	mux.HandleFunc("/api/deployments/{id}", historyH.HandleGet)
	mux.HandleFunc("/health", monitoringH.HandleHealthCheck)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics)
	}

	adapter := ferrors.NewHTTPErrorAdapter(slog.Default())
	return middleware.Chain(slog.Default(), adapter)(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen").
			WithContext("addr", s.srv.Addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
