package httpstatic

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StaticServer = (*Server)(nil)

const shutdownTimeout = 5 * time.Second

// Server implements ports.StaticServer.
type Server struct {
	logger ports.Logger
}

// NewServer creates a new Server.
func NewServer(logger ports.Logger) *Server {
	return &Server{logger: logger}
}

// Serve listens on addr and serves routes until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string, routes []domain.StaticRoute) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	return s.serve(ctx, listener, routes)
}

func (s *Server) serve(ctx context.Context, listener net.Listener, routes []domain.StaticRoute) error {
	srv := &http.Server{
		Handler:           NewRouter(routes, s.logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("serving packages on http://" + listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "static server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "failed to shut down static server")
	}
	return nil
}
