package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/strata/internal/core/domain"
)

func TestExtractBrowserDependencies(t *testing.T) {
	tests := []struct {
		name     string
		manifest domain.Manifest
		file     map[string]any
		want     []string
	}{
		{
			name: "no framework config",
			manifest: domain.Manifest{
				"name":         "plain",
				"dependencies": map[string]any{"a": "1"},
			},
			want: nil,
		},
		{
			name: "explicit list keeps order",
			manifest: domain.Manifest{
				"name":   "app",
				"strata": map[string]any{"browserDependencies": []any{"zeta", "alpha", "zeta"}},
			},
			want: []string{"zeta", "alpha"},
		},
		{
			name: "all selects dependencies then peers",
			manifest: domain.Manifest{
				"name":             "app",
				"dependencies":     map[string]any{"ui": "1", "core": "1"},
				"peerDependencies": map[string]any{"react": "18", "core": "1"},
				"strata":           map[string]any{"browserDependencies": "all"},
			},
			want: []string{"core", "ui", "react"},
		},
		{
			name: "override blocks contribute nested names",
			manifest: domain.Manifest{
				"name": "app",
				"strata": map[string]any{
					"browserDependencies": []any{"chart"},
					"manifest": map[string]any{
						"chart": map[string]any{
							"strata": map[string]any{"browserDependencies": []any{"d3", "chart"}},
						},
					},
				},
			},
			want: []string{"chart", "d3"},
		},
		{
			name: "strata.json wins over the manifest section",
			manifest: domain.Manifest{
				"name":   "app",
				"strata": map[string]any{"browserDependencies": []any{"from-manifest"}},
			},
			file: map[string]any{"browserDependencies": []any{"from-file"}},
			want: []string{"from-file"},
		},
		{
			name:     "strata.json alone",
			manifest: domain.Manifest{"name": "app"},
			file:     map[string]any{"browserDependencies": "widgets"},
			want:     []string{"widgets"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewPackage(domain.ResolvedSource{ModuleName: "app"}, "/nm/app", "/nm/app/package.json", tt.manifest, tt.file)
			assert.Equal(t, tt.want, domain.ExtractBrowserDependencies(p))
			assert.Equal(t, tt.want, p.BrowserDependencies)
		})
	}
}

func TestParseFrameworkConfig(t *testing.T) {
	cfg := domain.ParseFrameworkConfig(map[string]any{
		"browserDependencies": 42,
		"dependencies":        map[string]any{"theme": "^1"},
		"config":              "config/strata.yaml",
		"manifest": map[string]any{
			"bad":  "not an object",
			"good": map[string]any{"main": "x.js"},
		},
	})

	assert.False(t, cfg.BrowserDependencies.All)
	assert.Empty(t, cfg.BrowserDependencies.Names)
	assert.Equal(t, map[string]string{"theme": "^1"}, cfg.Dependencies)
	assert.Equal(t, []string{"config/strata.yaml"}, cfg.Config)
	assert.Len(t, cfg.Manifest, 1)
	assert.Contains(t, cfg.Manifest, "good")
}

func TestNewPackage_OverrideSourceName(t *testing.T) {
	src := domain.OverrideSource{Name: "widgets", Path: "/local/widgets"}
	p := domain.NewPackage(src, "/local/widgets", "/local/widgets/package.json", domain.Manifest{"version": "0.1.0"}, nil)

	assert.Equal(t, "widgets", p.Name)
	assert.Equal(t, "0.1.0", p.Version())
	assert.Nil(t, p.Framework)
}
