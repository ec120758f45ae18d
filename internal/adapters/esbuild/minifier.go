package esbuild

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StyleMinifier = (*Minifier)(nil)

// Minifier implements ports.StyleMinifier with the esbuild CSS transform.
type Minifier struct {
	logger ports.Logger
}

// NewMinifier creates a new Minifier.
func NewMinifier(logger ports.Logger) *Minifier {
	return &Minifier{logger: logger}
}

// Minify returns css with whitespace, syntax and identifiers minified.
func (m *Minifier) Minify(ctx context.Context, css []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Transform(string(css), api.TransformOptions{
		Loader:            api.LoaderCSS,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		LogLevel:          api.LogLevelSilent,
	})

	for _, w := range result.Warnings {
		m.logger.Warn(formatMessage(w))
	}

	if len(result.Errors) > 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrMinifyFailed, formatMessage(result.Errors[0])), "errors", len(result.Errors))
	}

	return result.Code, nil
}
