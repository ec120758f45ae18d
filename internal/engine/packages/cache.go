package packages

import (
	"sync"

	"go.trai.ch/strata/internal/core/domain"
)

// Cache memoizes the registry of the most recently built root. Storing a
// registry for a different root replaces the previous entry.
type Cache struct {
	mu   sync.Mutex
	root string
	reg  *domain.Registry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns a deep copy of the registry cached for root.
func (c *Cache) Get(root string) (*domain.Registry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg == nil || c.root != root {
		return nil, false
	}
	return c.reg.Clone(), true
}

// Put stores reg as the registry for root.
func (c *Cache) Put(root string, reg *domain.Registry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.root = root
	c.reg = reg.Clone()
}

// Invalidate drops the cached registry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.root = ""
	c.reg = nil
}
