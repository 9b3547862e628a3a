// SPDX-License-Identifier: MIT

package zlog

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Filter is a parsed directive filter: a default level plus per-component
// overrides, e.g. "info,renderer=error,assets=warn".
type Filter struct {
	def  zerolog.Level
	dirs map[string]zerolog.Level
}

// DefaultFilter is applied until the host configures its own.
const DefaultFilter = "info"

var current atomic.Pointer[Filter]

// ParseFilter parses a comma-separated directive list. A bare level sets the
// default; "component=level" overrides that component. The last bare level
// wins. An empty string yields the info default.
func ParseFilter(s string) (*Filter, error) {
	f := &Filter{def: zerolog.InfoLevel, dirs: map[string]zerolog.Level{}}
	if strings.TrimSpace(s) == "" {
		return f, nil
	}
	for _, raw := range strings.Split(s, ",") {
		dir := strings.TrimSpace(raw)
		if dir == "" {
			return nil, fmt.Errorf("filter %q: empty directive", s)
		}
		name, levelStr, found := strings.Cut(dir, "=")
		if !found {
			lvl, err := zerolog.ParseLevel(dir)
			if err != nil {
				return nil, fmt.Errorf("filter %q: unknown level %q", s, dir)
			}
			f.def = lvl
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("filter %q: directive %q has empty component", s, dir)
		}
		lvl, err := zerolog.ParseLevel(strings.TrimSpace(levelStr))
		if err != nil {
			return nil, fmt.Errorf("filter %q: component %q: unknown level %q", s, name, levelStr)
		}
		f.dirs[name] = lvl
	}
	return f, nil
}

// MustParseFilter is ParseFilter for static directive strings.
func MustParseFilter(s string) *Filter {
	f, err := ParseFilter(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the filter's default level.
func (f *Filter) Default() zerolog.Level {
	if f == nil {
		return zerolog.InfoLevel
	}
	return f.def
}

// LevelFor returns the effective level for a component.
func (f *Filter) LevelFor(component string) zerolog.Level {
	if f == nil {
		return zerolog.InfoLevel
	}
	if lvl, ok := f.dirs[component]; ok {
		return lvl
	}
	return f.def
}

// String renders the filter back to directive syntax with components sorted.
func (f *Filter) String() string {
	if f == nil {
		return DefaultFilter
	}
	parts := []string{f.def.String()}
	names := make([]string, 0, len(f.dirs))
	for name := range f.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+f.dirs[name].String())
	}
	return strings.Join(parts, ",")
}

// CurrentFilter returns the active directive filter.
func CurrentFilter() *Filter {
	if f := current.Load(); f != nil {
		return f
	}
	return MustParseFilter(DefaultFilter)
}

// SetFilter atomically swaps the active directive filter. Loggers created by
// WithComponent after the swap observe the new levels.
func SetFilter(f *Filter) {
	if f == nil {
		return
	}
	setFilter(f)
}

func setFilter(f *Filter) {
	current.Store(f)
}
