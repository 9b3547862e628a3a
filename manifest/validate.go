// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"regexp"
)

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?([-+][0-9A-Za-z.-]+)?$`)
)

// knownOS and knownArch bound the values a target condition may name. They
// cover the targets the runtime can actually be built for, including the
// mobile and web targets the conditional blocks exist for.
var knownOS = map[string]struct{}{
	"linux": {}, "darwin": {}, "windows": {},
	"android": {}, "ios": {}, "js": {}, "wasip1": {},
	"freebsd": {}, "openbsd": {}, "netbsd": {},
}

var knownArch = map[string]struct{}{
	"amd64": {}, "arm64": {}, "arm": {}, "386": {},
	"wasm": {}, "riscv64": {}, "ppc64le": {}, "s390x": {},
}

// Validate checks the manifest's structural properties:
//
//   - identity fields are present and well formed
//   - every backend declares a known kind
//   - every default names a declared backend
//   - every feature flag resolves to a declared, optional backend
//   - every target block names a known os/arch condition and declared backends
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("manifest: invalid name %q", m.Name)
	}
	if m.Version == "" {
		return fmt.Errorf("manifest: version is required")
	}
	if !versionPattern.MatchString(m.Version) {
		return fmt.Errorf("manifest: invalid version %q", m.Version)
	}

	if len(m.Backends) == 0 {
		return fmt.Errorf("manifest: at least one backend is required")
	}
	for name, b := range m.Backends {
		if !namePattern.MatchString(name) {
			return fmt.Errorf("manifest: invalid backend name %q", name)
		}
		switch b.Kind {
		case KindWriter, KindExporter, KindSampler, KindHook:
		default:
			return fmt.Errorf("manifest: backend %q: unknown kind %q", name, b.Kind)
		}
	}

	for _, name := range m.Defaults {
		if _, ok := m.Backends[name]; !ok {
			return fmt.Errorf("manifest: default %q: no such backend", name)
		}
	}

	for flag, feat := range m.Features {
		if !namePattern.MatchString(flag) {
			return fmt.Errorf("manifest: invalid feature name %q", flag)
		}
		b, ok := m.Backends[feat.Backend]
		if !ok {
			return fmt.Errorf("manifest: feature %q: no such backend %q", flag, feat.Backend)
		}
		if !b.Optional {
			return fmt.Errorf("manifest: feature %q: backend %q is not optional", flag, feat.Backend)
		}
	}

	for i, t := range m.Targets {
		if t.OS == "" && t.Arch == "" {
			return fmt.Errorf("manifest: target %d: os or arch condition is required", i)
		}
		if t.OS != "" {
			if _, ok := knownOS[t.OS]; !ok {
				return fmt.Errorf("manifest: target %d: unknown os %q", i, t.OS)
			}
		}
		if t.Arch != "" {
			if _, ok := knownArch[t.Arch]; !ok {
				return fmt.Errorf("manifest: target %d: unknown arch %q", i, t.Arch)
			}
		}
		if len(t.Backends) == 0 {
			return fmt.Errorf("manifest: target %d: backends list is empty", i)
		}
		for _, name := range t.Backends {
			if _, ok := m.Backends[name]; !ok {
				return fmt.Errorf("manifest: target %d: no such backend %q", i, name)
			}
		}
	}

	return nil
}
