package config

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Stratafile represents the structure of the strata.yaml configuration file.
// Package config fragments use the same structure.
type Stratafile struct {
	Version     string       `yaml:"version"`
	Root        string       `yaml:"root"`
	ModulePaths []string     `yaml:"modulePaths"`
	MainFields  []string     `yaml:"mainFields"`
	Packages    []PackageDTO `yaml:"packages"`
	Output      OutputDTO    `yaml:"output"`
	System      SystemDTO    `yaml:"system"`
	Less        LessDTO      `yaml:"less"`
	Bundle      BundleDTO    `yaml:"bundle"`
}

// PackageDTO registers a package from an explicit location.
type PackageDTO struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Manifest string `yaml:"manifest"`
}

// OutputDTO locates the generated artifacts. Dir relocates every artifact that
// is not set individually.
type OutputDTO struct {
	Dir          string `yaml:"dir"`
	RootModule   string `yaml:"rootModule"`
	ImportAll    string `yaml:"importAll"`
	SystemConfig string `yaml:"systemConfig"`
	CSS          string `yaml:"css"`
	MinifiedCSS  string `yaml:"minifiedCss"`
	Bundle       string `yaml:"bundle"`
}

// SystemDTO configures the import-all module.
type SystemDTO struct {
	BaseURL         *string                     `yaml:"baseURL"`
	ImportAllIgnore []string                    `yaml:"importAllIgnore"`
	Packages        map[string]SystemPackageDTO `yaml:"packages"`
}

// SystemPackageDTO is an externally supplied package table entry.
type SystemPackageDTO struct {
	Main             string `yaml:"main"`
	DefaultExtension string `yaml:"defaultExtension"`
}

// LessDTO configures the LESS import list and compiler.
type LessDTO struct {
	Order    []string                  `yaml:"order"`
	Packages map[string]LessPackageDTO `yaml:"packages"`
	Files    []LessFileDTO             `yaml:"files"`
	Vars     map[string]string         `yaml:"vars"`
	Compiler string                    `yaml:"compiler"`
	Args     []string                  `yaml:"args"`
}

// LessPackageDTO replaces the stylesheets of one package.
type LessPackageDTO struct {
	Files []LessFileDTO `yaml:"files"`
}

// LessFileDTO is either a plain file name or a {name, importAsLess} mapping.
type LessFileDTO struct {
	Name         string
	ImportAsLess bool
}

// UnmarshalYAML accepts a scalar file name or a mapping. A scalar is imported
// as LESS; a mapping is inlined unless importAsLess is true.
func (f *LessFileDTO) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Name = value.Value
		f.ImportAsLess = true
		return nil
	}

	var raw struct {
		Name         string `yaml:"name"`
		ImportAsLess bool   `yaml:"importAsLess"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return zerr.With(zerr.New("less file entry has no name"), "line", value.Line)
	}

	f.Name = raw.Name
	f.ImportAsLess = raw.ImportAsLess
	return nil
}

// BundleDTO configures the JavaScript bundler.
type BundleDTO struct {
	Mode      string `yaml:"mode"`
	Format    string `yaml:"format"`
	Target    string `yaml:"target"`
	Sourcemap *bool  `yaml:"sourcemap"`
}
