package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

//go:generate mockgen -source=server.go -destination=mocks/mock_server.go -package=mocks

// StaticServer serves package directories over HTTP.
type StaticServer interface {
	// Serve listens on addr and serves routes until ctx is done.
	Serve(ctx context.Context, addr string, routes []domain.StaticRoute) error
}
