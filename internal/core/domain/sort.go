package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

const (
	unvisited = iota
	visiting
	done
)

// DetectCycle checks the registry for dependency cycles.
// Every package is used as a starting point, so disconnected components are covered.
// Edges to unregistered names are ignored.
func DetectCycle(r *Registry) error {
	state := make(map[string]int, r.Len())
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = visiting
		path = append(path, name)

		for _, dep := range r.inRegistryEdges(r.packages[name]) {
			switch state[dep] {
			case visiting:
				return buildCycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[name] = done
		path = path[:len(path)-1]
		return nil
	}

	for _, name := range r.order {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with the cycle chain as metadata.
func buildCycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	chain := append(slices.Clone(path[start:]), dep)

	err := zerr.Wrap(ErrCycleDetected, "invalid package graph")
	err = zerr.With(err, "cycle", strings.Join(chain, " -> "))
	return zerr.With(err, "chain", chain)
}

// SortPackages reorders the registry so every package follows its in-registry
// dependencies. It fails with ErrCycleDetected instead of looping.
func SortPackages(r *Registry) error {
	order, err := OrderPackages(r, nil)
	if err != nil {
		return err
	}
	r.order = order
	return nil
}

// OrderPackages returns a dependency order for the registry without modifying it.
// Names in priority that are registered are placed first, in the given order.
// The remaining packages are scanned repeatedly in registry order; a package is
// emitted once all of its in-registry edges have been emitted, otherwise it is
// moved to the back of the queue.
func OrderPackages(r *Registry, priority []string) ([]string, error) {
	if err := DetectCycle(r); err != nil {
		return nil, err
	}

	sorted := make([]string, 0, r.Len())
	placed := make(map[string]bool, r.Len())
	for _, name := range priority {
		if r.Has(name) && !placed[name] {
			sorted = append(sorted, name)
			placed[name] = true
		}
	}

	queue := make([]string, 0, r.Len())
	for _, name := range r.order {
		if !placed[name] {
			queue = append(queue, name)
		}
	}

	stalled := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		ready := true
		for _, dep := range r.inRegistryEdges(r.packages[name]) {
			if !placed[dep] {
				ready = false
				break
			}
		}

		if !ready {
			queue = append(queue, name)
			stalled++
			if stalled > len(queue) {
				return nil, zerr.With(zerr.Wrap(ErrCycleDetected, "unable to order packages"), "pending", slices.Clone(queue))
			}
			continue
		}

		sorted = append(sorted, name)
		placed[name] = true
		stalled = 0
	}

	return sorted, nil
}
