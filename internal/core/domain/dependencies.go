package domain

import (
	"maps"
	"slices"
)

// ExtractBrowserDependencies returns the dependency names a package ships to the browser.
//
// Without a browserDependencies setting the result is empty. The value "all"
// selects the declared dependencies followed by the peer dependencies, each in
// name order. Names listed under strata.browserDependencies inside the
// package's manifest override blocks are appended. Duplicates keep their first
// position.
func ExtractBrowserDependencies(p *Package) []string {
	cfg := p.Framework
	if cfg == nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	if cfg.BrowserDependencies.All {
		add(slices.Sorted(maps.Keys(p.Manifest.StringMap("dependencies")))...)
		add(slices.Sorted(maps.Keys(p.Manifest.StringMap("peerDependencies")))...)
	} else {
		add(cfg.BrowserDependencies.Names...)
	}

	for _, target := range slices.Sorted(maps.Keys(cfg.Manifest)) {
		section, ok := cfg.Manifest[target][FrameworkKey].(map[string]any)
		if !ok {
			continue
		}
		add(stringList(section["browserDependencies"])...)
	}

	return out
}
