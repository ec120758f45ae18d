package domain

import "path/filepath"

const (
	// ConfigFileName is the configuration file looked up in the working directory.
	ConfigFileName = "strata.yaml"
	// DefaultOutputDir is the directory generated artifacts are written to.
	DefaultOutputDir = ".strata"
)

// Config holds the pipeline settings loaded from strata.yaml.
type Config struct {
	// Root identifies the root module: a directory, a file inside a package or a module name.
	Root string
	// ModulePaths are extra node_modules directories searched after the package-relative ones.
	ModulePaths []string
	// MainFields are the general manifest entry fields, in precedence order.
	MainFields []string
	// Pseudo lists packages registered from explicit locations before discovery.
	Pseudo []PseudoPackage

	Paths  OutputPaths
	System SystemConfig
	Less   LessConfig
	Bundle BundleConfig
}

// PseudoPackage is an explicitly located package.
type PseudoPackage struct {
	Name     string
	Path     string
	Manifest string
}

// OutputPaths are the locations of generated artifacts.
type OutputPaths struct {
	RootModule   string
	ImportAll    string
	SystemConfig string
	CSS          string
	MinifiedCSS  string
	Bundle       string
}

// SystemConfig configures the import-all module and bundler package table.
type SystemConfig struct {
	// BaseURL is the URL prefix packages are served under.
	BaseURL string
	// ImportAllIgnore lists packages left out of the import-all module.
	ImportAllIgnore []string
	// Packages is an externally supplied package table. Entries here are never re-declared.
	Packages map[string]SystemPackage
}

// SystemPackage is one bundler package table entry.
type SystemPackage struct {
	Main             string `json:"main"`
	DefaultExtension string `json:"defaultExtension,omitempty"`
}

// LessConfig configures the generated LESS import list.
type LessConfig struct {
	// Order lists packages imported before the dependency-ordered remainder.
	Order []string
	// Packages replaces the discovered stylesheets of the named packages.
	Packages map[string][]LessFile
	// Files are local stylesheets imported after all packages.
	Files []LessFile
	// Vars are appended as LESS variable declarations.
	Vars map[string]string
	// Compiler is the lessc executable.
	Compiler string
	// Args are extra compiler arguments.
	Args []string
}

// LessFile is a stylesheet in the import list.
type LessFile struct {
	Name string
	// ImportAsLess imports a .css file with the (less) option instead of (inline).
	ImportAsLess bool
}

// BundleConfig configures the JavaScript bundler.
type BundleConfig struct {
	Mode      BuildMode
	Format    string
	Target    string
	Sourcemap bool
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		MainFields: []string{"main"},
		Paths:      DefaultOutputPaths(DefaultOutputDir),
		System: SystemConfig{
			BaseURL: "/packages",
		},
		Less: LessConfig{
			Compiler: "lessc",
		},
		Bundle: BundleConfig{
			Mode:   BuildModeProduction,
			Format: "iife",
			Target: "es2020",
		},
	}
}

// DefaultOutputPaths lays out the generated artifacts under dir.
func DefaultOutputPaths(dir string) OutputPaths {
	return OutputPaths{
		RootModule:   filepath.Join(dir, "main.js"),
		ImportAll:    filepath.Join(dir, "importAll.js"),
		SystemConfig: filepath.Join(dir, "config.json"),
		CSS:          filepath.Join(dir, "css", "app.css"),
		MinifiedCSS:  filepath.Join(dir, "css", "app.min.css"),
		Bundle:       filepath.Join(dir, "js", "app.min.js"),
	}
}
