// Package domain contains the core domain models and business logic for package discovery and ordering.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Registry is an ordered mapping from package name to package.
// After SortPackages succeeds, iteration order is a valid dependency order.
type Registry struct {
	// Root is the directory of the root package.
	Root string
	// RootName is the manifest name of the root package.
	RootName string

	packages map[string]*Package
	order    []string
}

// NewRegistry creates an empty registry for the given root directory.
func NewRegistry(root string) *Registry {
	return &Registry{
		Root:     root,
		packages: make(map[string]*Package),
	}
}

// Add appends a package to the registry.
// It returns an error if a package with the same name already exists.
func (r *Registry) Add(p *Package) error {
	if _, exists := r.packages[p.Name]; exists {
		return zerr.With(zerr.Wrap(ErrPackageAlreadyExists, "cannot register package"), "package_name", p.Name)
	}
	r.packages[p.Name] = p
	r.order = append(r.order, p.Name)
	return nil
}

// Has reports whether a package name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.packages[name]
	return ok
}

// Get returns the package registered under name.
func (r *Registry) Get(name string) (*Package, bool) {
	p, ok := r.packages[name]
	return p, ok
}

// RootPackage returns the root package, if it has been registered.
func (r *Registry) RootPackage() (*Package, bool) {
	return r.Get(r.RootName)
}

// Len returns the number of registered packages.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns the package names in registry order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Walk returns an iterator that yields packages in registry order.
func (r *Registry) Walk() iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		for _, name := range r.order {
			if !yield(r.packages[name]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		Root:     r.Root,
		RootName: r.RootName,
		packages: make(map[string]*Package, len(r.packages)),
		order:    slices.Clone(r.order),
	}
	for name, p := range r.packages {
		c.packages[name] = p.Clone()
	}
	return c
}

// inRegistryEdges returns the edges of p restricted to registered names.
func (r *Registry) inRegistryEdges(p *Package) []string {
	edges := p.Edges()
	out := edges[:0]
	for _, e := range edges {
		if r.Has(e) {
			out = append(out, e)
		}
	}
	return out
}
