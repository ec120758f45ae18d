package domain

import (
	"maps"
	"slices"

	"dario.cat/mergo"
)

// BrowserDependencySpec selects which dependencies are shipped to the browser.
type BrowserDependencySpec struct {
	// All selects every declared and peer dependency.
	All bool
	// Names is the explicit selection when All is false.
	Names []string
}

// FrameworkConfig is the strata section of a package, merged from the
// manifest and the co-located strata.json file.
type FrameworkConfig struct {
	BrowserDependencies BrowserDependencySpec
	// Dependencies must be registered before the Config files are loaded.
	Dependencies map[string]string
	// Config lists configuration files, relative to the package directory.
	Config []string
	// Manifest holds override patches keyed by target package name.
	Manifest map[string]map[string]any
}

// ParseFrameworkConfig converts a decoded strata section. Fields with
// unexpected types are ignored.
func ParseFrameworkConfig(raw map[string]any) *FrameworkConfig {
	cfg := &FrameworkConfig{}

	switch v := raw["browserDependencies"].(type) {
	case string:
		if v == "all" {
			cfg.BrowserDependencies.All = true
		} else {
			cfg.BrowserDependencies.Names = []string{v}
		}
	default:
		cfg.BrowserDependencies.Names = stringList(v)
	}

	if deps, ok := raw["dependencies"].(map[string]any); ok {
		cfg.Dependencies = make(map[string]string, len(deps))
		for k, v := range deps {
			s, _ := v.(string)
			cfg.Dependencies[k] = s
		}
	}

	cfg.Config = stringList(raw["config"])

	if overrides, ok := raw["manifest"].(map[string]any); ok {
		cfg.Manifest = make(map[string]map[string]any, len(overrides))
		for target, patch := range overrides {
			if p, ok := patch.(map[string]any); ok {
				cfg.Manifest[target] = p
			}
		}
	}

	return cfg
}

// Clone returns a deep copy of the config.
func (c *FrameworkConfig) Clone() *FrameworkConfig {
	out := &FrameworkConfig{
		BrowserDependencies: BrowserDependencySpec{
			All:   c.BrowserDependencies.All,
			Names: slices.Clone(c.BrowserDependencies.Names),
		},
		Dependencies: maps.Clone(c.Dependencies),
		Config:       slices.Clone(c.Config),
	}
	if c.Manifest != nil {
		out.Manifest = make(map[string]map[string]any, len(c.Manifest))
		for k, v := range c.Manifest {
			out.Manifest[k] = cloneMap(v)
		}
	}
	return out
}

// frameworkSection merges the manifest's strata section with strata.json.
// The file wins on conflicting keys. It returns nil when neither exists.
func frameworkSection(m Manifest, file map[string]any) map[string]any {
	section, inManifest := m[FrameworkKey].(map[string]any)
	if !inManifest && file == nil {
		return nil
	}

	merged := cloneMap(section)
	if merged == nil {
		merged = make(map[string]any)
	}
	if file != nil {
		// Both sides are map[string]any so the merge cannot fail on types.
		_ = mergo.Merge(&merged, cloneMap(file), mergo.WithOverride)
	}
	return merged
}
