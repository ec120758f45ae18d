package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestSortPackages_Chain(t *testing.T) {
	r := newRegistry(t,
		newPkg("app", "ui"),
		newPkg("ui", "core"),
		newPkg("core"),
	)

	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, []string{"core", "ui", "app"}, r.Names())
}

func TestSortPackages_Diamond(t *testing.T) {
	r := newRegistry(t,
		newPkg("app", "left", "right"),
		newPkg("left", "base"),
		newPkg("right", "base"),
		newPkg("base"),
		newPkg("standalone"),
	)

	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, 5, r.Len())
	assertTopological(t, r)
	assert.Equal(t, "app", r.Names()[r.Len()-1])
}

func TestSortPackages_IndependentKeepRegistryOrder(t *testing.T) {
	r := newRegistry(t, newPkg("c"), newPkg("a"), newPkg("b"))

	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestSortPackages_IgnoresUnregisteredEdges(t *testing.T) {
	r := newRegistry(t, newPkg("app", "left-pad", "ui"), newPkg("ui", "react"))

	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, []string{"ui", "app"}, r.Names())
}

func TestSortPackages_BrowserOnlyBackEdgeIsNotCycle(t *testing.T) {
	app := newPkgFromManifest(domain.Manifest{
		"name":   "app",
		"strata": map[string]any{"browserDependencies": []any{"widgets"}},
	})
	r := newRegistry(t, app, newPkg("widgets", "app"))

	require.NoError(t, domain.DetectCycle(r))
	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, []string{"app", "widgets"}, r.Names())
}

func TestSortPackages_BrowserDependenciesDoNotOrder(t *testing.T) {
	app := newPkgFromManifest(domain.Manifest{
		"name":   "app",
		"strata": map[string]any{"browserDependencies": []any{"widgets"}},
	})
	r := newRegistry(t, app, newPkg("widgets"))

	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, []string{"app", "widgets"}, r.Names())
}

func TestSortPackages_Idempotent(t *testing.T) {
	r := newRegistry(t, newPkg("app", "ui"), newPkg("ui", "core"), newPkg("core"))

	require.NoError(t, domain.SortPackages(r))
	first := r.Names()
	require.NoError(t, domain.SortPackages(r))
	assert.Equal(t, first, r.Names())
}

func TestDetectCycle(t *testing.T) {
	tests := []struct {
		name      string
		pkgs      []*domain.Package
		wantChain []string
	}{
		{
			name:      "two packages",
			pkgs:      []*domain.Package{newPkg("a", "b"), newPkg("b", "a")},
			wantChain: []string{"a", "b", "a"},
		},
		{
			name:      "self dependency",
			pkgs:      []*domain.Package{newPkg("a", "a")},
			wantChain: []string{"a", "a"},
		},
		{
			name: "component unreachable from the first package",
			pkgs: []*domain.Package{
				newPkg("root", "leaf"),
				newPkg("leaf"),
				newPkg("p", "q"),
				newPkg("q", "r"),
				newPkg("r", "p"),
			},
			wantChain: []string{"p", "q", "r", "p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t, tt.pkgs...)

			err := domain.DetectCycle(r)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCycleDetected)

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			meta := zErr.Metadata()
			assert.Equal(t, tt.wantChain, meta["chain"])
			assert.Contains(t, meta["cycle"], tt.wantChain[0]+" -> ")

			assert.ErrorIs(t, domain.SortPackages(r), domain.ErrCycleDetected)
		})
	}
}

func TestDetectCycle_Acyclic(t *testing.T) {
	r := newRegistry(t, newPkg("a", "b"), newPkg("b"), newPkg("c", "a", "b"))
	assert.NoError(t, domain.DetectCycle(r))
}

func TestOrderPackages_Priority(t *testing.T) {
	r := newRegistry(t,
		newPkg("app", "theme"),
		newPkg("theme", "bootstrap"),
		newPkg("bootstrap"),
		newPkg("icons"),
	)

	order, err := domain.OrderPackages(r, []string{"icons", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"icons", "bootstrap", "theme", "app"}, order)
	assert.Equal(t, []string{"app", "theme", "bootstrap", "icons"}, r.Names(), "registry order is unchanged")
}
