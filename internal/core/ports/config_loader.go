package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks

// ConfigLoader defines the interface for loading the pipeline configuration.
type ConfigLoader interface {
	// Load reads the configuration file at path. A missing file yields the defaults
	// when allowMissing is set.
	Load(path string, allowMissing bool) (*domain.Config, error)
}

// ConfigHook loads configuration files shipped by a package.
type ConfigHook interface {
	// Apply loads the given files, relative to the package directory, into cfg.
	Apply(ctx context.Context, pkg *domain.Package, files []string, cfg *domain.Config) error
}
