package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/strata/internal/adapters/watcher" //nolint:depguard // Debouncer is shared infrastructure
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch builds every artifact, then rebuilds them whenever a watched file
// changes. Only the initial build is fatal; later failures are logged and the
// watch continues. Watch returns when ctx is done.
func (a *App) Watch(ctx context.Context, opts Options) error {
	if a.watcher == nil || a.hasher == nil {
		return zerr.New("watch mode is not available")
	}

	s, err := a.optimize(ctx, opts, OptimizeOptions{})
	if err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, watchRoots(s)); err != nil {
		return err
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Debug("failed to stop watcher: " + err.Error())
		}
	}()

	r := &rebuilder{app: a, opts: opts}
	r.remember(s)

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		r.run(ctx, paths)
	})

	a.logger.Info("Watching for changes...")
	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}
	return nil
}

// rebuilder serializes watch mode rebuilds.
type rebuilder struct {
	app  *App
	opts Options

	mu          sync.Mutex
	outputs     []string
	manifests   []string
	fingerprint string
}

func (r *rebuilder) remember(s *Session) {
	r.outputs = outputDirs(s.Config)
	r.manifests = manifestFiles(s, r.opts)

	fp, err := r.app.hasher.Fingerprint(r.manifests)
	if err != nil {
		r.app.logger.Debug("cannot fingerprint manifests: " + err.Error())
		fp = ""
	}
	r.fingerprint = fp
}

func (r *rebuilder) run(ctx context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	changed := slices.DeleteFunc(slices.Clone(paths), func(p string) bool {
		return slices.ContainsFunc(r.outputs, func(dir string) bool { return within(dir, p) })
	})
	if len(changed) == 0 {
		return
	}

	fp, err := r.app.hasher.Fingerprint(r.manifests)
	if err != nil || fp == "" || fp != r.fingerprint {
		r.app.logger.Debug("package manifests changed, rereading packages")
		r.app.builder.Cache().Invalidate()
	}

	r.app.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding...", len(changed)))

	s, err := r.app.optimize(ctx, r.opts, OptimizeOptions{})
	if s != nil {
		r.remember(s)
	}
	if err != nil {
		r.app.logger.Error(err)
	}
}

// watchRoots returns the root package directory and every package directory
// outside node_modules.
func watchRoots(s *Session) []string {
	roots := []string{s.Registry.Root}
	for pkg := range s.Registry.Walk() {
		if within(s.Registry.Root, pkg.Path) || inNodeModules(pkg.Path) {
			continue
		}
		roots = append(roots, pkg.Path)
	}
	return roots
}

// manifestFiles returns the files whose content determines the registry.
func manifestFiles(s *Session, opts Options) []string {
	files := []string{configPath(opts)}
	for pkg := range s.Registry.Walk() {
		files = append(files,
			pkg.ManifestPath,
			filepath.Join(filepath.Dir(pkg.ManifestPath), domain.FrameworkFile),
		)
		if pkg.Framework != nil {
			for _, f := range pkg.Framework.Config {
				files = append(files, filepath.Join(pkg.Path, f))
			}
		}
	}
	return files
}

func configPath(opts Options) string {
	path := opts.ConfigPath
	if path == "" {
		path = domain.ConfigFileName
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func outputDirs(cfg *domain.Config) []string {
	p := cfg.Paths
	dirs := make([]string, 0, 6)
	for _, path := range []string{p.RootModule, p.ImportAll, p.SystemConfig, p.CSS, p.MinifiedCSS, p.Bundle} {
		if path != "" {
			dirs = append(dirs, filepath.Dir(path))
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func inNodeModules(path string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "node_modules")
}
