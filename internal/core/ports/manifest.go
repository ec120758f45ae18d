package ports

import "go.trai.ch/strata/internal/core/domain"

//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks

// ManifestReader reads a package record from disk.
type ManifestReader interface {
	// ReadPackage locates and decodes the package described by src.
	ReadPackage(src domain.PackageSource) (*domain.Package, error)
}

// ModuleResolver locates packages on disk.
type ModuleResolver interface {
	// ResolveManifest returns the package.json path of a module, searching
	// node_modules directories upward from each search path in order, then
	// each module path directly.
	ResolveManifest(name string, searchPaths, modulePaths []string) (string, error)
	// FindPackageRoot returns the directory of the package containing module.
	FindPackageRoot(module string) (string, error)
}
