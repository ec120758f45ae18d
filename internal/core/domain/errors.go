package domain

import "go.trai.ch/zerr"

var (
	// ErrPackageRootNotFound is returned when no package.json can be found above the root module.
	ErrPackageRootNotFound = zerr.New("package root not found")

	// ErrRootPackageUnreadable is returned when the root package manifest exists but cannot be read.
	ErrRootPackageUnreadable = zerr.New("root package unreadable")

	// ErrCycleDetected is returned when a cycle is detected in the package dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPackageAlreadyExists is returned when attempting to register a package name twice.
	ErrPackageAlreadyExists = zerr.New("package already exists")

	// ErrPackageNotFound is returned when a requested package is not in the registry.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrModuleNotFound is returned when a module name cannot be resolved to a manifest on disk.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrInvalidManifest is returned when a package manifest cannot be decoded.
	ErrInvalidManifest = zerr.New("invalid package manifest")

	// ErrUnnamedPackage is returned when a manifest does not declare a name.
	ErrUnnamedPackage = zerr.New("package manifest has no name")

	// ErrUnknownPackageSource is returned when a package source variant is not recognized.
	ErrUnknownPackageSource = zerr.New("unknown package source")

	// ErrArtifactWriteFailed is returned when a generated artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write artifact")

	// ErrStyleCompileFailed is returned when the stylesheet compiler reports an error.
	ErrStyleCompileFailed = zerr.New("stylesheet compilation failed")

	// ErrMinifyFailed is returned when the CSS minifier reports an error.
	ErrMinifyFailed = zerr.New("css minification failed")

	// ErrBundleFailed is returned when the JavaScript bundler reports an error.
	ErrBundleFailed = zerr.New("bundle failed")

	// ErrConfigDependencyMissing is returned when a framework config requires a package that is not registered.
	ErrConfigDependencyMissing = zerr.New("framework config dependency missing")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")
)
