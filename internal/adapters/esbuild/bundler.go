// Package esbuild bundles JavaScript and minifies CSS in-process with esbuild.
package esbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Bundler = (*Bundler)(nil)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var formats = map[string]api.Format{
	"iife": api.FormatIIFE,
	"esm":  api.FormatESModule,
	"cjs":  api.FormatCommonJS,
}

// Bundler implements ports.Bundler. Bare imports of registered packages are
// aliased to their directories so that the bundle sees the same package set
// as the registry.
type Bundler struct {
	logger ports.Logger
}

// NewBundler creates a new Bundler.
func NewBundler(logger ports.Logger) *Bundler {
	return &Bundler{logger: logger}
}

// Bundle builds task and writes the result to the task's output path.
func (b *Bundler) Bundle(ctx context.Context, task domain.BuildTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := task.EntryModulePaths()
	if len(entries) == 0 {
		return zerr.Wrap(domain.ErrBundleFailed, "no entry points")
	}

	format, ok := formats[strings.ToLower(task.Format())]
	if !ok {
		format = api.FormatIIFE
	}
	target, ok := targets[strings.ToLower(task.Target())]
	if !ok {
		target = api.ES2020
	}

	minify := task.Mode() == domain.BuildModeProduction
	sourcemap := api.SourceMapNone
	if task.Sourcemap() {
		sourcemap = api.SourceMapLinked
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       entries,
		Bundle:            true,
		Write:             true,
		Outfile:           task.OutputPath(),
		AbsWorkingDir:     filepath.Dir(entries[0]),
		Format:            format,
		Target:            target,
		Platform:          api.PlatformBrowser,
		MainFields:        []string{"browser", "module", "main"},
		Alias:             task.Packages(),
		MinifyWhitespace:  minify,
		MinifySyntax:      minify,
		MinifyIdentifiers: minify,
		Sourcemap:         sourcemap,
		LogLevel:          api.LogLevelSilent,
		Define: map[string]string{
			"process.env.NODE_ENV": fmt.Sprintf("%q", task.Mode().String()),
		},
	})

	for _, w := range result.Warnings {
		b.logger.Warn(formatMessage(w))
	}

	if len(result.Errors) > 0 {
		err := zerr.With(zerr.Wrap(domain.ErrBundleFailed, formatMessage(result.Errors[0])), "errors", len(result.Errors))
		return zerr.With(err, "output", task.OutputPath())
	}

	return nil
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
