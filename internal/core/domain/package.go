package domain

import (
	"cmp"
	"maps"
	"slices"
)

const (
	// FrameworkKey is the package.json section holding strata settings.
	FrameworkKey = "strata"
	// FrameworkFile is the optional settings file co-located with a package manifest.
	FrameworkFile = "strata.json"
	// ManifestFile is the conventional package descriptor filename.
	ManifestFile = "package.json"
)

// PackageSource describes where a package was read from.
// It is either a ResolvedSource or an OverrideSource.
type PackageSource interface {
	isPackageSource()
	String() string
}

// ResolvedSource is a package found by module resolution.
type ResolvedSource struct {
	// ModuleName is the name used to resolve the package.
	ModuleName string
	// SearchPaths are the directories resolution starts from, in order.
	SearchPaths []string
	// ModulePaths are probed directly after the search paths.
	ModulePaths []string
}

func (ResolvedSource) isPackageSource() {}

func (s ResolvedSource) String() string { return "module " + s.ModuleName }

// OverrideSource is a pseudo-package declared with an explicit location.
type OverrideSource struct {
	// Name is the configured name. The manifest name takes precedence when present.
	Name string
	// Path is the package directory or a file inside it.
	Path string
	// ManifestPath is the descriptor location. Empty means <dir>/package.json.
	ManifestPath string
}

func (OverrideSource) isPackageSource() {}

func (s OverrideSource) String() string { return "path " + s.Path }

// Package is a single entry in the registry.
type Package struct {
	Name         string
	Path         string
	ManifestPath string
	Manifest     Manifest
	Source       PackageSource

	// Framework is the merged strata configuration, nil when the package declares none.
	Framework *FrameworkConfig

	// BrowserDependencies is the ordered set of dependency names to discover.
	BrowserDependencies []string

	// Overrides lists the packages whose manifest overrides were merged into this one.
	Overrides []string

	frameworkFile map[string]any
}

// NewPackage assembles a package record from its decoded manifest and optional
// strata.json contents.
func NewPackage(src PackageSource, dir, manifestPath string, manifest Manifest, frameworkFile map[string]any) *Package {
	var name string
	switch s := src.(type) {
	case OverrideSource:
		name = cmp.Or(manifest.Name(), s.Name)
	case ResolvedSource:
		// Dependents refer to the package by the name it was resolved as.
		name = cmp.Or(s.ModuleName, manifest.Name())
	default:
		name = manifest.Name()
	}

	p := &Package{
		Name:          name,
		Path:          dir,
		ManifestPath:  manifestPath,
		Manifest:      manifest,
		Source:        src,
		frameworkFile: frameworkFile,
	}
	p.refresh()
	return p
}

// Version returns the informational version string from the manifest.
func (p *Package) Version() string {
	return p.Manifest.String("version")
}

// DeclaredDependencies returns the name to version constraint map of the manifest.
func (p *Package) DeclaredDependencies() map[string]string {
	return p.Manifest.StringMap("dependencies")
}

// Edges returns the names this package must be ordered after: its declared
// dependencies, sorted. Browser dependencies only drive discovery.
func (p *Package) Edges() []string {
	return slices.Sorted(maps.Keys(p.DeclaredDependencies()))
}

// Clone returns a deep copy of the package.
func (p *Package) Clone() *Package {
	c := *p
	c.Manifest = p.Manifest.Clone()
	c.frameworkFile = cloneMap(p.frameworkFile)
	c.BrowserDependencies = slices.Clone(p.BrowserDependencies)
	c.Overrides = slices.Clone(p.Overrides)
	if p.Framework != nil {
		c.Framework = p.Framework.Clone()
	}
	if rs, ok := p.Source.(ResolvedSource); ok {
		rs.SearchPaths = slices.Clone(rs.SearchPaths)
		rs.ModulePaths = slices.Clone(rs.ModulePaths)
		c.Source = rs
	}
	return &c
}

// refresh recomputes the values derived from the manifest.
func (p *Package) refresh() {
	raw := frameworkSection(p.Manifest, p.frameworkFile)
	if raw == nil {
		p.Framework = nil
	} else {
		p.Framework = ParseFrameworkConfig(raw)
	}
	p.BrowserDependencies = ExtractBrowserDependencies(p)
}
