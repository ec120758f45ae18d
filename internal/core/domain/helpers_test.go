package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
)

// newPkg builds a package named name that declares deps as dependencies.
func newPkg(name string, deps ...string) *domain.Package {
	m := domain.Manifest{"name": name, "version": "1.0.0"}
	if len(deps) > 0 {
		d := make(map[string]any, len(deps))
		for _, dep := range deps {
			d[dep] = "*"
		}
		m["dependencies"] = d
	}
	return newPkgFromManifest(m)
}

func newPkgFromManifest(m domain.Manifest) *domain.Package {
	dir := filepath.Join("/nm", m.Name())
	return domain.NewPackage(
		domain.ResolvedSource{ModuleName: m.Name()},
		dir,
		filepath.Join(dir, domain.ManifestFile),
		m,
		nil,
	)
}

func newRegistry(t *testing.T, pkgs ...*domain.Package) *domain.Registry {
	t.Helper()
	r := domain.NewRegistry("/app")
	for _, p := range pkgs {
		require.NoError(t, r.Add(p))
	}
	return r
}

// assertTopological checks that every package follows its registered edges.
func assertTopological(t *testing.T, r *domain.Registry) {
	t.Helper()
	pos := make(map[string]int)
	for i, name := range r.Names() {
		pos[name] = i
	}
	for p := range r.Walk() {
		for _, dep := range p.Edges() {
			if j, ok := pos[dep]; ok {
				require.Less(t, j, pos[p.Name], "%s must come before %s", dep, p.Name)
			}
		}
	}
}
