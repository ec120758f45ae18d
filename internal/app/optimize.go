package app

import (
	"context"
	"fmt"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// OptimizeOptions selects the optimize stages. Both run when neither is set.
type OptimizeOptions struct {
	CSS bool
	JS  bool
}

// Optimize reads the registry once and then runs the CSS and JavaScript
// stages concurrently.
func (a *App) Optimize(ctx context.Context, opts Options, stages OptimizeOptions) error {
	_, err := a.optimize(ctx, opts, stages)
	return err
}

func (a *App) optimize(ctx context.Context, opts Options, stages OptimizeOptions) (*Session, error) {
	if !stages.CSS && !stages.JS {
		stages = OptimizeOptions{CSS: true, JS: true}
	}

	s, err := a.Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if stages.CSS {
		g.Go(func() error {
			_, err := a.OptimizeCSS(gctx, s)
			return err
		})
	}
	if stages.JS {
		g.Go(func() error {
			_, err := a.BundleJS(gctx, s)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return s, err
	}
	return s, nil
}

// BundleJS writes the root and import-all modules and bundles the import-all
// module with every registered package resolvable by name.
func (a *App) BundleJS(ctx context.Context, s *Session) (*Artifact, error) {
	if a.bundler == nil {
		return nil, zerr.Wrap(domain.ErrBundleFailed, "no bundler configured")
	}

	if err := a.synthesize(ctx, s); err != nil {
		return nil, err
	}

	ctx, vertex := a.telemetry.Record(ctx, domain.StageBundle)

	pkgs := make(map[string]string, s.Registry.Len())
	for pkg := range s.Registry.Walk() {
		pkgs[pkg.Name] = pkg.Path
	}
	task := domain.NewBuildTask([]string{s.Config.Paths.ImportAll}, pkgs, s.Config.Paths.Bundle, s.Config.Bundle)

	if err := a.bundler.Bundle(ctx, task); err != nil {
		vertex.Complete(err)
		return nil, err
	}

	art, err := statArtifact(task.OutputPath())
	if err != nil {
		err = zerr.With(zerr.Wrap(domain.ErrBundleFailed, "bundle was not written"), "output", task.OutputPath())
		vertex.Complete(err)
		return nil, err
	}
	vertex.Complete(nil)

	a.logger.Info(fmt.Sprintf("JavaScript %s bundle complete. %s written to: %s", task.Mode(), art.HumanSize(), art.Path))
	return art, nil
}

func (a *App) synthesize(ctx context.Context, s *Session) error {
	_, vertex := a.telemetry.Record(ctx, domain.StageSynthesize)

	if err := a.synthesizer.BuildRootModule(s.Registry, s.Config); err != nil {
		vertex.Complete(err)
		return err
	}

	all, err := a.synthesizer.BuildImportAllModule(s.Registry, s.Config)
	if err != nil {
		vertex.Complete(err)
		return err
	}
	vertex.Log(domain.LogLevelDebug, fmt.Sprintf("%d imports, %d package entries", len(all.Imports), len(all.System.Packages)))
	vertex.Complete(nil)
	return nil
}
