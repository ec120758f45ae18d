package domain

import (
	"maps"
	"slices"
	"strings"
)

// BuildMode selects a development or production bundle.
type BuildMode int

const (
	// BuildModeProduction produces a minified bundle.
	BuildModeProduction BuildMode = iota
	// BuildModeDevelopment produces an unminified bundle with source maps.
	BuildModeDevelopment
)

// String returns the string representation of the BuildMode.
func (m BuildMode) String() string {
	if m == BuildModeDevelopment {
		return "development"
	}
	return "production"
}

// ParseBuildMode converts a mode name. Unknown names select production.
func ParseBuildMode(s string) BuildMode {
	switch strings.ToLower(s) {
	case "development", "dev":
		return BuildModeDevelopment
	default:
		return BuildModeProduction
	}
}

// BuildTask describes one bundler invocation. It is not modified after creation.
type BuildTask struct {
	entryModulePaths []string
	packages         map[string]string
	outputPath       string
	mode             BuildMode
	bundle           BundleConfig
}

// NewBuildTask creates a build task. Packages maps package names to directories.
func NewBuildTask(entries []string, packages map[string]string, output string, bundle BundleConfig) BuildTask {
	return BuildTask{
		entryModulePaths: slices.Clone(entries),
		packages:         maps.Clone(packages),
		outputPath:       output,
		mode:             bundle.Mode,
		bundle:           bundle,
	}
}

// EntryModulePaths returns the bundle entry points.
func (t BuildTask) EntryModulePaths() []string { return slices.Clone(t.entryModulePaths) }

// Packages returns the package name to directory table.
func (t BuildTask) Packages() map[string]string { return maps.Clone(t.packages) }

// OutputPath returns the bundle location.
func (t BuildTask) OutputPath() string { return t.outputPath }

// Mode returns the build mode.
func (t BuildTask) Mode() BuildMode { return t.mode }

// Format returns the module format of the bundle.
func (t BuildTask) Format() string { return t.bundle.Format }

// Target returns the language target of the bundle.
func (t BuildTask) Target() string { return t.bundle.Target }

// Sourcemap reports whether a source map is written next to the bundle.
func (t BuildTask) Sourcemap() bool {
	return t.bundle.Sourcemap || t.mode == BuildModeDevelopment
}
