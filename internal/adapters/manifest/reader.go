// Package manifest reads package.json and strata.json files into package records.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader on the local file system.
type Reader struct {
	logger   ports.Logger
	resolver ports.ModuleResolver
}

// NewReader creates a new Reader.
func NewReader(logger ports.Logger, resolver ports.ModuleResolver) *Reader {
	return &Reader{logger: logger, resolver: resolver}
}

// ReadPackage locates, reads and decodes the package described by src.
func (r *Reader) ReadPackage(src domain.PackageSource) (*domain.Package, error) {
	dir, manifestPath, err := r.locate(src)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- manifestPath comes from module resolution or configuration
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read package manifest"), "path", manifestPath)
	}

	manifest, err := domain.DecodeManifest(data)
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}

	pkg := domain.NewPackage(src, dir, manifestPath, manifest, r.readFrameworkFile(filepath.Dir(manifestPath)))
	if pkg.Name == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnnamedPackage, "cannot register package"), "path", manifestPath)
	}

	return pkg, nil
}

// locate returns the package directory and manifest path of src.
func (r *Reader) locate(src domain.PackageSource) (string, string, error) {
	switch s := src.(type) {
	case domain.ResolvedSource:
		manifestPath, err := r.resolver.ResolveManifest(s.ModuleName, s.SearchPaths, s.ModulePaths)
		if err != nil {
			return "", "", err
		}
		return filepath.Dir(manifestPath), manifestPath, nil

	case domain.OverrideSource:
		dir, err := filepath.Abs(s.Path)
		if err != nil {
			return "", "", zerr.With(zerr.Wrap(err, "failed to resolve package path"), "path", s.Path)
		}
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}

		manifestPath := s.ManifestPath
		if manifestPath == "" {
			manifestPath = filepath.Join(dir, domain.ManifestFile)
		}
		return dir, manifestPath, nil

	default:
		return "", "", zerr.With(zerr.Wrap(domain.ErrUnknownPackageSource, "cannot read package"), "source", fmt.Sprintf("%T", src))
	}
}

// readFrameworkFile returns the decoded strata.json next to the manifest. A
// missing file yields nil. A malformed file is reported and ignored.
func (r *Reader) readFrameworkFile(dir string) map[string]any {
	path := filepath.Join(dir, domain.FrameworkFile)

	// #nosec G304 -- path is derived from the manifest location
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err != nil {
		r.logger.Warn(fmt.Sprintf("cannot read %s: %v", path, err))
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		r.logger.Warn(fmt.Sprintf("ignoring malformed %s: %v", path, err))
		return nil
	}
	return raw
}
