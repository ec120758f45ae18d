package app

import (
	"context"
	"fmt"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// CompileLess compiles the stylesheets of every package into one CSS file.
// It returns nil when no package ships a stylesheet.
func (a *App) CompileLess(ctx context.Context, s *Session) (*Artifact, error) {
	art, _, err := a.compileLess(ctx, s)
	return art, err
}

func (a *App) compileLess(ctx context.Context, s *Session) (*Artifact, []byte, error) {
	if a.compiler == nil {
		return nil, nil, zerr.Wrap(domain.ErrStyleCompileFailed, "no stylesheet compiler configured")
	}

	ctx, vertex := a.telemetry.Record(ctx, domain.StageCompileLess)

	src, err := a.synthesizer.LessImports(s.Registry, s.Config)
	if err != nil {
		vertex.Complete(err)
		return nil, nil, err
	}
	if src == "" {
		a.logger.Info("No less or css found.")
		vertex.Complete(nil)
		return nil, nil, nil
	}
	a.logger.Debug("compiling less imports:\n" + src)

	css, err := a.compiler.Compile(ctx, src, s.Registry.Root, s.Config.Less)
	if err != nil {
		vertex.Complete(err)
		return nil, nil, err
	}

	art, err := a.writeArtifact(s.Config.Paths.CSS, css)
	if err != nil {
		vertex.Complete(err)
		return nil, nil, err
	}
	if !art.Changed {
		vertex.Cached()
	}
	vertex.Complete(nil)

	a.logger.Info(fmt.Sprintf("Less compilation complete. %s written to: %s", art.HumanSize(), art.Path))
	return art, css, nil
}

// OptimizeCSS compiles the package stylesheets and writes a minified copy.
func (a *App) OptimizeCSS(ctx context.Context, s *Session) (*Artifact, error) {
	_, css, err := a.compileLess(ctx, s)
	if err != nil || css == nil {
		return nil, err
	}
	if a.minifier == nil {
		return nil, zerr.Wrap(domain.ErrMinifyFailed, "no css minifier configured")
	}

	ctx, vertex := a.telemetry.Record(ctx, domain.StageMinifyCSS)

	minified, err := a.minifier.Minify(ctx, css)
	if err != nil {
		vertex.Complete(err)
		return nil, err
	}

	art, err := a.writeArtifact(s.Config.Paths.MinifiedCSS, minified)
	if err != nil {
		vertex.Complete(err)
		return nil, err
	}
	if !art.Changed {
		vertex.Cached()
	}
	vertex.Complete(nil)

	a.logger.Info(fmt.Sprintf("CSS minification complete. %s written to: %s", art.HumanSize(), art.Path))
	return art, nil
}

func (a *App) writeArtifact(path string, data []byte) (*Artifact, error) {
	changed, err := a.writer.Write(path, data)
	if err != nil {
		return nil, err
	}
	return &Artifact{Path: path, Size: int64(len(data)), Changed: changed}, nil
}
