// Package config provides the configuration loader for strata.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dario.cat/mergo"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = domain.ConfigFileName

var validFormats = []string{"iife", "esm", "cjs"}

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration file at path and layers it over the defaults.
// Relative paths in the file resolve against the file's directory.
func (l *Loader) Load(path string, allowMissing bool) (*domain.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve config path"), "path", path)
	}
	baseDir := filepath.Dir(abs)

	var file Stratafile
	err = readAndUnmarshalYAML(abs, &file)
	switch {
	case err != nil && allowMissing && errors.Is(err, iofs.ErrNotExist):
		l.Logger.Debug(fmt.Sprintf("%s not found, using defaults", FileName))
		cfg := domain.DefaultConfig()
		resolveConfigPaths(cfg, baseDir)
		return cfg, nil
	case err != nil:
		return nil, zerr.With(err, "path", abs)
	}

	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unknown %s version %q", FileName, file.Version))
	}

	loaded, err := file.toConfig()
	if err != nil {
		return nil, zerr.With(err, "path", abs)
	}

	cfg := domain.DefaultConfig()
	if err := mergo.Merge(cfg, loaded, mergo.WithOverride); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to merge config"), "path", abs)
	}
	file.applyExplicit(cfg)
	resolveConfigPaths(cfg, baseDir)

	return cfg, nil
}

// toConfig maps the file onto a sparse domain.Config. Unset fields stay zero so
// that the result can be merged over another configuration.
func (f *Stratafile) toConfig() (*domain.Config, error) {
	mode, err := parseMode(f.Bundle.Mode)
	if err != nil {
		return nil, err
	}
	if f.Bundle.Format != "" && !slices.Contains(validFormats, f.Bundle.Format) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported bundle format"), "format", f.Bundle.Format)
		return nil, zerr.With(err, "supported", strings.Join(validFormats, ", "))
	}

	cfg := &domain.Config{
		Root:        f.Root,
		ModulePaths: slices.Clone(f.ModulePaths),
		MainFields:  slices.Clone(f.MainFields),
		Paths:       f.Output.toPaths(),
		System: domain.SystemConfig{
			ImportAllIgnore: slices.Clone(f.System.ImportAllIgnore),
		},
		Less: domain.LessConfig{
			Order:    slices.Clone(f.Less.Order),
			Files:    toLessFiles(f.Less.Files),
			Vars:     f.Less.Vars,
			Compiler: f.Less.Compiler,
			Args:     slices.Clone(f.Less.Args),
		},
		Bundle: domain.BundleConfig{
			Mode:   mode,
			Format: f.Bundle.Format,
			Target: f.Bundle.Target,
		},
	}

	for i, p := range f.Packages {
		if p.Path == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "package entry has no path"), "index", i)
		}
		cfg.Pseudo = append(cfg.Pseudo, domain.PseudoPackage{Name: p.Name, Path: p.Path, Manifest: p.Manifest})
	}

	if len(f.System.Packages) > 0 {
		cfg.System.Packages = make(map[string]domain.SystemPackage, len(f.System.Packages))
		for name, entry := range f.System.Packages {
			cfg.System.Packages[name] = domain.SystemPackage{Main: entry.Main, DefaultExtension: entry.DefaultExtension}
		}
	}

	if len(f.Less.Packages) > 0 {
		cfg.Less.Packages = make(map[string][]domain.LessFile, len(f.Less.Packages))
		for name, entry := range f.Less.Packages {
			cfg.Less.Packages[name] = toLessFiles(entry.Files)
		}
	}

	return cfg, nil
}

// applyExplicit copies values that may legitimately be empty or false, which a
// merge would otherwise skip.
func (f *Stratafile) applyExplicit(cfg *domain.Config) {
	if f.System.BaseURL != nil {
		cfg.System.BaseURL = *f.System.BaseURL
	}
	if f.Bundle.Sourcemap != nil {
		cfg.Bundle.Sourcemap = *f.Bundle.Sourcemap
	}
	if f.Bundle.Mode != "" {
		cfg.Bundle.Mode, _ = parseMode(f.Bundle.Mode)
	}
}

func (o OutputDTO) toPaths() domain.OutputPaths {
	var paths domain.OutputPaths
	if o.Dir != "" {
		paths = domain.DefaultOutputPaths(o.Dir)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&paths.RootModule, o.RootModule)
	set(&paths.ImportAll, o.ImportAll)
	set(&paths.SystemConfig, o.SystemConfig)
	set(&paths.CSS, o.CSS)
	set(&paths.MinifiedCSS, o.MinifiedCSS)
	set(&paths.Bundle, o.Bundle)

	return paths
}

func toLessFiles(dtos []LessFileDTO) []domain.LessFile {
	if len(dtos) == 0 {
		return nil
	}
	files := make([]domain.LessFile, len(dtos))
	for i, dto := range dtos {
		files[i] = domain.LessFile{Name: dto.Name, ImportAsLess: dto.ImportAsLess}
	}
	return files
}

func parseMode(s string) (domain.BuildMode, error) {
	switch strings.ToLower(s) {
	case "", "production", "prod", "development", "dev":
		return domain.ParseBuildMode(s), nil
	default:
		return domain.BuildModeProduction, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown bundle mode"), "mode", s)
	}
}

// resolveConfigPaths makes every relative filesystem path in cfg absolute
// against baseDir. A root that names a module rather than an existing path is
// left untouched.
func resolveConfigPaths(cfg *domain.Config, baseDir string) {
	if cfg.Root != "" && (isPathLike(cfg.Root) || exists(filepath.Join(baseDir, cfg.Root))) {
		cfg.Root = resolvePath(baseDir, cfg.Root)
	}

	for i, p := range cfg.ModulePaths {
		cfg.ModulePaths[i] = resolvePath(baseDir, p)
	}

	for i := range cfg.Pseudo {
		cfg.Pseudo[i].Path = resolvePath(baseDir, cfg.Pseudo[i].Path)
		cfg.Pseudo[i].Manifest = resolvePath(baseDir, cfg.Pseudo[i].Manifest)
	}

	for _, p := range []*string{
		&cfg.Paths.RootModule,
		&cfg.Paths.ImportAll,
		&cfg.Paths.SystemConfig,
		&cfg.Paths.CSS,
		&cfg.Paths.MinifiedCSS,
		&cfg.Paths.Bundle,
	} {
		*p = resolvePath(baseDir, *p)
	}

	for i := range cfg.Less.Files {
		cfg.Less.Files[i].Name = resolvePath(baseDir, cfg.Less.Files[i].Name)
	}
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}

func isPathLike(p string) bool {
	return p == "." || p == ".." || filepath.IsAbs(p) ||
		strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	data, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Join(domain.ErrConfigReadFailed, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return errors.Join(domain.ErrConfigParseFailed, err)
	}

	return nil
}
