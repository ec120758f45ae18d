// Package packages discovers installed packages and builds the
// dependency-ordered registry.
package packages

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Builder reads the package graph below a root module.
type Builder struct {
	reader   ports.ManifestReader
	resolver ports.ModuleResolver
	hook     ports.ConfigHook
	logger   ports.Logger

	cache *Cache
	group singleflight.Group
}

// NewBuilder creates a new Builder with an empty cache.
func NewBuilder(
	reader ports.ManifestReader,
	resolver ports.ModuleResolver,
	hook ports.ConfigHook,
	logger ports.Logger,
) *Builder {
	return &Builder{
		reader:   reader,
		resolver: resolver,
		hook:     hook,
		logger:   logger,
		cache:    NewCache(),
	}
}

// Cache returns the registry cache owned by the builder.
func (b *Builder) Cache() *Cache {
	return b.cache
}

// ReadPackages returns the sorted registry for rootModule. An empty rootModule
// falls back to cfg.Root and then to the working directory. The result is a
// copy the caller may modify. Concurrent calls for the same root share one build;
// a caller whose ctx is canceled stops waiting without failing the others.
func (b *Builder) ReadPackages(ctx context.Context, rootModule string, cfg *domain.Config) (*domain.Registry, error) {
	if rootModule == "" {
		rootModule = cfg.Root
	}

	root, err := b.resolver.FindPackageRoot(rootModule)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if reg, ok := b.cache.Get(root); ok {
		b.logger.Debug("using cached registry for " + root)
		return reg, nil
	}

	// The shared build must not inherit the cancellation of whichever caller
	// started it. Every caller stops waiting on its own context instead.
	buildCtx := context.WithoutCancel(ctx)
	ch := b.group.DoChan(root, func() (any, error) {
		if reg, ok := b.cache.Get(root); ok {
			return reg, nil
		}
		reg, err := b.build(buildCtx, root, cfg)
		if err != nil {
			return nil, err
		}
		b.cache.Put(root, reg)
		return reg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Registry).Clone(), nil
	}
}

// discovery is the state of one registry build.
type discovery struct {
	reg *domain.Registry
	cfg *domain.Config
}

func (b *Builder) build(ctx context.Context, root string, cfg *domain.Config) (*domain.Registry, error) {
	d := &discovery{reg: domain.NewRegistry(root), cfg: cfg}

	// Pseudo-packages are all registered before any dependency is resolved so
	// that they win over installed packages of the same name.
	var pseudo []*domain.Package
	for _, pp := range cfg.Pseudo {
		pkg, err := b.reader.ReadPackage(domain.OverrideSource{Name: pp.Name, Path: pp.Path, ManifestPath: pp.Manifest})
		if err != nil {
			b.logger.Warn(fmt.Sprintf("skipping pseudo package %q: %v", pp.Name, err))
			continue
		}
		if b.register(d, pkg) {
			pseudo = append(pseudo, pkg)
		}
	}
	for _, pkg := range pseudo {
		if err := b.resolveDependencies(ctx, d, pkg); err != nil {
			return nil, err
		}
	}

	rootPkg, err := b.reader.ReadPackage(domain.OverrideSource{Name: filepath.Base(root), Path: root})
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrRootPackageUnreadable, err), "root", root)
	}
	d.reg.RootName = rootPkg.Name
	if b.register(d, rootPkg) {
		if err := b.resolveDependencies(ctx, d, rootPkg); err != nil {
			return nil, err
		}
	}

	if err := domain.SortPackages(d.reg); err != nil {
		return nil, err
	}

	applied, dropped, err := d.reg.ApplyOverrides()
	if err != nil {
		return nil, err
	}
	for _, o := range dropped {
		b.logger.Warn(fmt.Sprintf("ignoring manifest override from %q: package %q is not registered", o.Source, o.Target))
	}
	for _, o := range applied {
		b.logger.Debug(fmt.Sprintf("applied manifest override from %q to %q", o.Source, o.Target))
	}

	if err := domain.SortPackages(d.reg); err != nil {
		return nil, err
	}

	return d.reg, nil
}

// register adds pkg unless its name is taken. It reports whether pkg was added.
func (b *Builder) register(d *discovery, pkg *domain.Package) bool {
	if d.reg.Has(pkg.Name) {
		b.logger.Debug(fmt.Sprintf("package %q already registered, ignoring %s", pkg.Name, pkg.Path))
		return false
	}
	// Has was checked above, Add cannot fail.
	_ = d.reg.Add(pkg)
	b.logger.Debug(fmt.Sprintf("registered %s@%s from %s", pkg.Name, pkg.Version(), pkg.Path))
	return true
}

// resolveDependencies reads the browser dependencies of pkg depth first.
func (b *Builder) resolveDependencies(ctx context.Context, d *discovery, pkg *domain.Package) error {
	for _, name := range pkg.BrowserDependencies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.reg.Has(name) {
			continue
		}

		dep, err := b.reader.ReadPackage(domain.ResolvedSource{
			ModuleName:  name,
			SearchPaths: []string{pkg.Path, d.reg.Root},
			ModulePaths: d.cfg.ModulePaths,
		})
		if err != nil {
			b.logger.Warn(fmt.Sprintf("cannot read package %q required by %q: %v", name, pkg.Name, err))
			continue
		}

		if !b.register(d, dep) {
			continue
		}
		if err := b.resolveDependencies(ctx, d, dep); err != nil {
			return err
		}
	}
	return nil
}

// RequireFrameworkConfig loads the configuration files declared by pkg into
// cfg. It reports false, after logging a warning, when a config dependency
// is not registered or a file cannot be applied.
func (b *Builder) RequireFrameworkConfig(ctx context.Context, reg *domain.Registry, pkg *domain.Package, cfg *domain.Config) (bool, error) {
	if pkg.Framework == nil || len(pkg.Framework.Config) == 0 {
		return false, nil
	}

	for _, dep := range slices.Sorted(maps.Keys(pkg.Framework.Dependencies)) {
		if !reg.Has(dep) {
			b.logger.Warn(fmt.Sprintf("%v: %q needs %q", domain.ErrConfigDependencyMissing, pkg.Name, dep))
			return false, nil
		}
	}

	if err := b.hook.Apply(ctx, pkg, pkg.Framework.Config, cfg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		b.logger.Warn(fmt.Sprintf("cannot load config of %q: %v", pkg.Name, err))
		return false, nil
	}
	return true, nil
}

// LoadFrameworkConfigs calls RequireFrameworkConfig for every package in
// registry order and returns the names of the packages whose config was loaded.
func (b *Builder) LoadFrameworkConfigs(ctx context.Context, reg *domain.Registry, cfg *domain.Config) ([]string, error) {
	var loaded []string
	for pkg := range reg.Walk() {
		ok, err := b.RequireFrameworkConfig(ctx, reg, pkg, cfg)
		if err != nil {
			return loaded, err
		}
		if ok {
			loaded = append(loaded, pkg.Name)
		}
	}
	return loaded, nil
}
