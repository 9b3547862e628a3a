// SPDX-License-Identifier: MIT

package envconf

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestString(t *testing.T) {
	t.Setenv("TEST_STR", "from-env")

	if got := String("TEST_STR", "fallback"); got != "from-env" {
		t.Errorf("String = %q, want from-env", got)
	}
	if got := String("TEST_STR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("String = %q, want fallback", got)
	}

	t.Setenv("TEST_STR_EMPTY", "")
	if got := String("TEST_STR_EMPTY", "fallback"); got != "fallback" {
		t.Errorf("empty value must fall back, got %q", got)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"banana", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := Bool("TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("Bool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := Int("TEST_INT", 7); got != 42 {
		t.Errorf("Int = %d, want 42", got)
	}

	t.Setenv("TEST_INT", "not-a-number")
	if got := Int("TEST_INT", 7); got != 7 {
		t.Errorf("invalid value must fall back, got %d", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	if got := Duration("TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", got)
	}

	t.Setenv("TEST_DUR", "soon")
	if got := Duration("TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("invalid value must fall back, got %v", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	if got := Float("TEST_FLOAT", 1.0); got != 0.25 {
		t.Errorf("Float = %f, want 0.25", got)
	}

	t.Setenv("TEST_FLOAT", "much")
	if got := Float("TEST_FLOAT", 1.0); got != 1.0 {
		t.Errorf("invalid value must fall back, got %f", got)
	}
}

func TestStrings(t *testing.T) {
	t.Setenv("TEST_LIST", "trace, trace-memory ,,pretty")
	want := []string{"trace", "trace-memory", "pretty"}
	if diff := cmp.Diff(want, Strings("TEST_LIST", nil)); diff != "" {
		t.Errorf("Strings mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("TEST_LIST", " , ")
	def := []string{"fallback"}
	if diff := cmp.Diff(def, Strings("TEST_LIST", def)); diff != "" {
		t.Errorf("blank list must fall back (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(def, Strings("TEST_LIST_UNSET", def)); diff != "" {
		t.Errorf("unset list must fall back (-want +got):\n%s", diff)
	}
}
