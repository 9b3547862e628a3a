// SPDX-License-Identifier: MIT

// Package manifest defines the declarative backend manifest a diaglog host
// ships: package identity, a feature-flag table mapping each flag to an
// optional backend, and platform-conditional backend sets selected by target
// OS and architecture.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend kinds understood by the runtime.
const (
	KindWriter   = "writer"   // log output destination
	KindExporter = "exporter" // span exporter
	KindSampler  = "sampler"  // background stats sampler
	KindHook     = "hook"     // process-level hook (panic capture)
)

// Manifest is the root document.
type Manifest struct {
	// Package identity.
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	License  string `yaml:"license,omitempty"`
	Homepage string `yaml:"homepage,omitempty"`

	// Backends declares every backend the runtime may activate.
	Backends map[string]Backend `yaml:"backends"`

	// Defaults lists backends active without any feature flag.
	Defaults []string `yaml:"defaults,omitempty"`

	// Features is the feature-flag table. Each flag enables exactly one
	// optional backend.
	Features map[string]Feature `yaml:"features,omitempty"`

	// Targets holds platform-conditional backend sets. A block applies only
	// when its os/arch condition matches the build target.
	Targets []Target `yaml:"targets,omitempty"`
}

// Backend describes one activatable backend.
type Backend struct {
	Kind     string            `yaml:"kind"`
	Optional bool              `yaml:"optional,omitempty"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// Feature maps a feature flag to the optional backend it enables.
type Feature struct {
	Backend string `yaml:"backend"`
	Doc     string `yaml:"doc,omitempty"`
}

// Target is a platform-conditional backend set. Empty OS or Arch matches any
// value; at least one must be set.
type Target struct {
	OS       string   `yaml:"os,omitempty"`
	Arch     string   `yaml:"arch,omitempty"`
	Backends []string `yaml:"backends"`
}

// ErrEmptyManifest is returned when the document decodes to nothing.
var ErrEmptyManifest = errors.New("manifest: empty document")

// Parse decodes a manifest from r. Unknown fields are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyManifest
		}
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}

// Matches reports whether the target block applies to the given OS and
// architecture.
func (t Target) Matches(goos, goarch string) bool {
	if t.OS != "" && t.OS != goos {
		return false
	}
	if t.Arch != "" && t.Arch != goarch {
		return false
	}
	return true
}
