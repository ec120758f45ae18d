package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

//go:generate mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks

// ArtifactWriter persists generated files.
type ArtifactWriter interface {
	// Write stores data at path, creating parent directories. It reports
	// whether the file content changed.
	Write(path string, data []byte) (bool, error)
}

// StyleCompiler compiles a LESS source into CSS.
type StyleCompiler interface {
	// Compile compiles source with the compiler settings in cfg. Relative
	// imports resolve against dir.
	Compile(ctx context.Context, source, dir string, cfg domain.LessConfig) ([]byte, error)
}

// StyleMinifier minifies compiled CSS.
type StyleMinifier interface {
	Minify(ctx context.Context, css []byte) ([]byte, error)
}

// Bundler produces a JavaScript bundle.
type Bundler interface {
	Bundle(ctx context.Context, task domain.BuildTask) error
}
