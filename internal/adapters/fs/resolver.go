package fs

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleResolver = (*Resolver)(nil)

const (
	nodeModulesDir = "node_modules"
	maxRootDepth   = 64
)

// Resolver locates packages using node_modules lookup rules.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveManifest returns the package.json of module name. Each search path is
// walked upward, probing <dir>/node_modules/<name>/package.json, before the
// module paths are probed as <path>/<name>/package.json.
func (r *Resolver) ResolveManifest(name string, searchPaths, modulePaths []string) (string, error) {
	if name == "" || isPathLike(name) {
		return "", zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "invalid module name"), "module", name)
	}

	seen := make(map[string]bool)
	probe := func(candidate string) bool {
		if seen[candidate] {
			return false
		}
		seen[candidate] = true
		return isFile(candidate)
	}

	for _, start := range searchPaths {
		if start == "" {
			continue
		}
		dir, err := filepath.Abs(start)
		if err != nil {
			continue
		}
		for {
			if filepath.Base(dir) != nodeModulesDir {
				candidate := filepath.Join(dir, nodeModulesDir, name, domain.ManifestFile)
				if probe(candidate) {
					return candidate, nil
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	for _, modulePath := range modulePaths {
		candidate := filepath.Join(modulePath, name, domain.ManifestFile)
		if probe(candidate) {
			return candidate, nil
		}
	}

	err := zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "cannot resolve module"), "module", name)
	return "", zerr.With(err, "search_paths", searchPaths)
}

// FindPackageRoot returns the nearest directory at or above module that holds a
// package.json. module may be a file, a directory or a bare module name. An
// empty module means the current working directory.
//
// The search fails at the filesystem root or at a node_modules boundary, and
// gives up after a bounded number of levels.
func (r *Resolver) FindPackageRoot(module string) (string, error) {
	start, err := r.locate(module)
	if err != nil {
		return "", err
	}

	dir := start
	if !isDir(dir) {
		dir = filepath.Dir(dir)
	}

	for depth := 0; depth < maxRootDepth; depth++ {
		if isFile(filepath.Join(dir, domain.ManifestFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || filepath.Base(parent) == nodeModulesDir {
			break
		}
		dir = parent
	}

	return "", zerr.With(zerr.Wrap(domain.ErrPackageRootNotFound, "cannot locate package.json"), "module", module)
}

func (r *Resolver) locate(module string) (string, error) {
	if module == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		return cwd, nil
	}

	if isPathLike(module) || exists(module) {
		abs, err := filepath.Abs(module)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to resolve path"), "module", module)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	manifest, err := r.ResolveManifest(module, []string{cwd}, nil)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrPackageRootNotFound, err.Error()), "module", module)
	}
	return filepath.Dir(manifest), nil
}

func isPathLike(name string) bool {
	return filepath.IsAbs(name) ||
		name == "." || name == ".." ||
		strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
