// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"sort"
)

// Plan is the effective backend set for one build target: defaults, then
// backends enabled by feature flags, then platform-conditional backends, in
// that order with duplicates removed.
type Plan struct {
	Backends []PlannedBackend
}

// PlannedBackend pairs a backend name with its declaration.
type PlannedBackend struct {
	Name    string
	Backend Backend
}

// Resolve computes the effective backend plan for the given enabled feature
// flags and build target. The manifest must have been validated. An unknown
// feature flag is an error; a target block contributes only when its
// condition matches goos/goarch.
func (m *Manifest) Resolve(features []string, goos, goarch string) (Plan, error) {
	var plan Plan
	seen := make(map[string]struct{})

	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		plan.Backends = append(plan.Backends, PlannedBackend{Name: name, Backend: m.Backends[name]})
	}

	for _, name := range m.Defaults {
		add(name)
	}

	for _, flag := range features {
		feat, ok := m.Features[flag]
		if !ok {
			return Plan{}, fmt.Errorf("manifest: unknown feature %q (have: %v)", flag, m.FeatureNames())
		}
		add(feat.Backend)
	}

	for _, t := range m.Targets {
		if !t.Matches(goos, goarch) {
			continue
		}
		for _, name := range t.Backends {
			add(name)
		}
	}

	return plan, nil
}

// Has reports whether the plan activates the named backend.
func (p Plan) Has(name string) bool {
	for _, b := range p.Backends {
		if b.Name == name {
			return true
		}
	}
	return false
}

// FirstOfKind returns the first planned backend of the given kind.
func (p Plan) FirstOfKind(kind string) (PlannedBackend, bool) {
	for _, b := range p.Backends {
		if b.Backend.Kind == kind {
			return b, true
		}
	}
	return PlannedBackend{}, false
}

// OfKind returns all planned backends of the given kind, in plan order.
func (p Plan) OfKind(kind string) []PlannedBackend {
	var out []PlannedBackend
	for _, b := range p.Backends {
		if b.Backend.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// Names returns the planned backend names in plan order.
func (p Plan) Names() []string {
	names := make([]string, len(p.Backends))
	for i, b := range p.Backends {
		names[i] = b.Name
	}
	return names
}

// FeatureNames returns the declared feature flags, sorted.
func (m *Manifest) FeatureNames() []string {
	names := make([]string, 0, len(m.Features))
	for name := range m.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
