package domain

import (
	"maps"
	"slices"

	"dario.cat/mergo"
	"go.trai.ch/zerr"
)

// Override is a manifest patch declared by Source for a registered Target.
type Override struct {
	Source string
	Target string
	Patch  map[string]any
}

// DroppedOverride is an override whose target is not in the registry.
type DroppedOverride struct {
	Source string
	Target string
}

// GetManifestOverride returns the overrides declared by the named package,
// keyed by target. Targets that are not registered are returned as dropped.
func GetManifestOverride(r *Registry, name string) (map[string]Override, []DroppedOverride) {
	p, ok := r.Get(name)
	if !ok || p.Framework == nil || len(p.Framework.Manifest) == 0 {
		return nil, nil
	}

	kept := make(map[string]Override, len(p.Framework.Manifest))
	var dropped []DroppedOverride
	for _, target := range slices.Sorted(maps.Keys(p.Framework.Manifest)) {
		if !r.Has(target) {
			dropped = append(dropped, DroppedOverride{Source: name, Target: target})
			continue
		}
		kept[target] = Override{
			Source: name,
			Target: target,
			Patch:  p.Framework.Manifest[target],
		}
	}
	return kept, dropped
}

// ApplyOverrides deep-merges every package's overrides onto their targets.
//
// Packages are processed in registry order and each package's targets in name
// order. When two packages patch the same field, the one applied last wins.
// Nested objects are merged key by key; scalars and lists are replaced; null
// and false are written through. The target's framework settings and browser
// dependencies are recomputed afterwards, so the registry must be re-sorted.
func (r *Registry) ApplyOverrides() ([]Override, []DroppedOverride, error) {
	var applied []Override
	var dropped []DroppedOverride

	for _, name := range slices.Clone(r.order) {
		kept, missing := GetManifestOverride(r, name)
		dropped = append(dropped, missing...)

		for _, target := range slices.Sorted(maps.Keys(kept)) {
			o := kept[target]
			pkg := r.packages[target]

			merged := pkg.Manifest.Clone()
			if merged == nil {
				merged = Manifest{}
			}
			if err := mergo.Merge(&merged, Manifest(cloneMap(o.Patch)), mergo.WithOverride); err != nil {
				return applied, dropped, zerr.With(zerr.With(zerr.Wrap(err, "failed to merge manifest override"),
					"source", o.Source), "target", o.Target)
			}

			pkg.Manifest = merged
			pkg.Overrides = append(pkg.Overrides, o.Source)
			pkg.refresh()
			applied = append(applied, o)
		}
	}

	return applied, dropped, nil
}
