// Package app implements the application layer for strata.
package app

import (
	"context"
	"strings"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/artifacts"
	"go.trai.ch/strata/internal/engine/packages"
	"go.trai.ch/zerr"
)

// Options are the settings shared by every command.
type Options struct {
	// ConfigPath is the configuration file. Empty means strata.yaml in the
	// working directory, which may be missing.
	ConfigPath string
	// Root overrides the configured root module.
	Root string
	// Minify forces the bundle mode: "true", "false" or "default".
	Minify string
}

// Session is a loaded configuration together with the registry built from it.
type Session struct {
	Config   *domain.Config
	Registry *domain.Registry
	// Configured lists the packages whose framework config was loaded.
	Configured []string
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      *packages.Builder
	synthesizer  *artifacts.Synthesizer
	writer       ports.ArtifactWriter
	logger       ports.Logger
	telemetry    ports.Telemetry

	compiler ports.StyleCompiler
	minifier ports.StyleMinifier
	bundler  ports.Bundler
	watcher  ports.Watcher
	hasher   ports.Hasher
	server   ports.StaticServer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	builder *packages.Builder,
	synthesizer *artifacts.Synthesizer,
	writer ports.ArtifactWriter,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		builder:      builder,
		synthesizer:  synthesizer,
		writer:       writer,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// WithStyles sets the stylesheet compiler and minifier.
func (a *App) WithStyles(compiler ports.StyleCompiler, minifier ports.StyleMinifier) *App {
	a.compiler = compiler
	a.minifier = minifier
	return a
}

// WithBundler sets the JavaScript bundler.
func (a *App) WithBundler(bundler ports.Bundler) *App {
	a.bundler = bundler
	return a
}

// WithWatcher sets the file watcher and the hasher used to detect manifest changes.
func (a *App) WithWatcher(watcher ports.Watcher, hasher ports.Hasher) *App {
	a.watcher = watcher
	a.hasher = hasher
	return a
}

// WithServer sets the static file server.
func (a *App) WithServer(server ports.StaticServer) *App {
	a.server = server
	return a
}

// LoadConfig reads the configuration and applies the command line overrides.
func (a *App) LoadConfig(opts Options) (*domain.Config, error) {
	path, allowMissing := opts.ConfigPath, false
	if path == "" {
		path, allowMissing = domain.ConfigFileName, true
	}

	cfg, err := a.configLoader.Load(path, allowMissing)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	switch strings.ToLower(opts.Minify) {
	case "", "default":
	case "true":
		cfg.Bundle.Mode = domain.BuildModeProduction
	case "false":
		cfg.Bundle.Mode = domain.BuildModeDevelopment
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "minify must be default, true or false"), "minify", opts.Minify)
	}

	return cfg, nil
}

// Prepare loads the configuration, reads the package registry and loads the
// framework configs of the registered packages.
func (a *App) Prepare(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := a.LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	ctx, vertex := a.telemetry.Record(ctx, domain.StageReadPackages)

	reg, err := a.builder.ReadPackages(ctx, opts.Root, cfg)
	if err != nil {
		vertex.Complete(err)
		return nil, err
	}

	configured, err := a.builder.LoadFrameworkConfigs(ctx, reg, cfg)
	vertex.Complete(err)
	if err != nil {
		return nil, err
	}

	vertex.Log(domain.LogLevelInfo, reportPackages(reg))
	return &Session{Config: cfg, Registry: reg, Configured: configured}, nil
}

// Packages returns the ordered registry for the listing command.
func (a *App) Packages(ctx context.Context, opts Options) (*Session, error) {
	return a.Prepare(ctx, opts)
}
