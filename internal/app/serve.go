package app

import (
	"context"
	"path/filepath"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// ArtifactsRoute is the URL path generated artifacts are served under.
const ArtifactsRoute = "/assets"

// Serve serves every package directory under the configured base URL and the
// generated artifacts under ArtifactsRoute until ctx is done.
func (a *App) Serve(ctx context.Context, opts Options, addr string) error {
	if a.server == nil {
		return zerr.New("static server is not available")
	}

	s, err := a.Prepare(ctx, opts)
	if err != nil {
		return err
	}

	routes := domain.StaticRoutes(s.Registry, s.Config.System.BaseURL)
	routes = append(routes, domain.StaticRoute{
		Route: ArtifactsRoute,
		Path:  filepath.Dir(s.Config.Paths.ImportAll),
	})
	for _, r := range routes {
		a.logger.Debug(r.Route + " -> " + r.Path)
	}

	return a.server.Serve(ctx, addr, routes)
}
