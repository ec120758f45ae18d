package config

import (
	"context"
	"fmt"
	"path/filepath"

	"dario.cat/mergo"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigHook = (*Overlay)(nil)

// Overlay merges configuration fragments shipped by packages into the live
// configuration. Scalars in a fragment replace existing values, lists are
// appended and maps merge key by key.
type Overlay struct {
	Logger ports.Logger
}

// NewOverlay creates a new Overlay with the given logger.
func NewOverlay(logger ports.Logger) *Overlay {
	return &Overlay{Logger: logger}
}

// Apply loads files, relative to the package directory, in order.
func (o *Overlay) Apply(ctx context.Context, pkg *domain.Package, files []string, cfg *domain.Config) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := resolvePath(pkg.Path, name)

		var fragment Stratafile
		if err := readAndUnmarshalYAML(path, &fragment); err != nil {
			return zerr.With(zerr.With(err, "package", pkg.Name), "path", path)
		}

		partial, err := fragment.toConfig()
		if err != nil {
			return zerr.With(zerr.With(err, "package", pkg.Name), "path", path)
		}
		resolveConfigPaths(partial, filepath.Dir(path))

		if err := mergo.Merge(cfg, partial, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to merge package config"), "package", pkg.Name)
		}
		fragment.applyExplicit(cfg)

		o.Logger.Debug(fmt.Sprintf("applied config %s from %s", name, pkg.Name))
	}

	return nil
}
