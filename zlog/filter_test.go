// SPDX-License-Identifier: MIT

package zlog

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantDef zerolog.Level
		wantDir map[string]zerolog.Level
		wantErr string
	}{
		{
			name:    "empty defaults to info",
			input:   "",
			wantDef: zerolog.InfoLevel,
		},
		{
			name:    "bare level",
			input:   "debug",
			wantDef: zerolog.DebugLevel,
		},
		{
			name:    "components with default",
			input:   "info,renderer=error,assets=warn",
			wantDef: zerolog.InfoLevel,
			wantDir: map[string]zerolog.Level{
				"renderer": zerolog.ErrorLevel,
				"assets":   zerolog.WarnLevel,
			},
		},
		{
			name:    "last bare level wins",
			input:   "debug,warn",
			wantDef: zerolog.WarnLevel,
		},
		{
			name:    "whitespace tolerated",
			input:   " info , renderer = error ",
			wantDef: zerolog.InfoLevel,
			wantDir: map[string]zerolog.Level{"renderer": zerolog.ErrorLevel},
		},
		{
			name:    "unknown level",
			input:   "renderer=loud",
			wantErr: `unknown level "loud"`,
		},
		{
			name:    "unknown bare level",
			input:   "shouty",
			wantErr: `unknown level "shouty"`,
		},
		{
			name:    "empty directive",
			input:   "info,,renderer=error",
			wantErr: "empty directive",
		},
		{
			name:    "empty component",
			input:   "=error",
			wantErr: "empty component",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter: %v", err)
			}
			if f.Default() != tt.wantDef {
				t.Errorf("default level = %v, want %v", f.Default(), tt.wantDef)
			}
			for name, want := range tt.wantDir {
				if got := f.LevelFor(name); got != want {
					t.Errorf("LevelFor(%s) = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestFilter_LevelForFallsBackToDefault(t *testing.T) {
	f := MustParseFilter("warn,renderer=debug")

	if got := f.LevelFor("renderer"); got != zerolog.DebugLevel {
		t.Errorf("LevelFor(renderer) = %v, want debug", got)
	}
	if got := f.LevelFor("physics"); got != zerolog.WarnLevel {
		t.Errorf("LevelFor(physics) = %v, want warn", got)
	}
}

func TestFilter_StringRoundTrip(t *testing.T) {
	f := MustParseFilter("warn,renderer=error,assets=debug")

	s := f.String()
	if s != "warn,assets=debug,renderer=error" {
		t.Errorf("unexpected rendering: %q", s)
	}

	back, err := ParseFilter(s)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back.String() != s {
		t.Errorf("round trip mismatch: %q != %q", back.String(), s)
	}
}

func TestSetFilter_SwapsAtomically(t *testing.T) {
	orig := CurrentFilter()
	defer SetFilter(orig)

	SetFilter(MustParseFilter("error"))
	if got := CurrentFilter().Default(); got != zerolog.ErrorLevel {
		t.Errorf("current default = %v, want error", got)
	}

	// nil swap is ignored
	SetFilter(nil)
	if got := CurrentFilter().Default(); got != zerolog.ErrorLevel {
		t.Errorf("nil SetFilter must not replace the filter, got %v", got)
	}
}
