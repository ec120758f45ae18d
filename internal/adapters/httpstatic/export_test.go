package httpstatic

import (
	"context"
	"net"

	"go.trai.ch/strata/internal/core/domain"
)

// ServeListener exposes serve for tests that need an ephemeral port.
func (s *Server) ServeListener(ctx context.Context, l net.Listener, routes []domain.StaticRoute) error {
	return s.serve(ctx, l, routes)
}
