// SPDX-License-Identifier: MIT

// manifest-validate checks a diaglog backend manifest.
//
// Usage:
//
//	manifest-validate -f diaglog.yaml
//	manifest-validate --file diaglog.yaml --features trace,trace-memory
//
// Exit codes:
//   - 0: Manifest is valid
//   - 1: Manifest is invalid (parse, validation or resolution error)
//   - 2: Usage error (missing required flag)
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/corefold/diaglog/manifest"
)

var Version = "dev"

func main() {
	var file string
	var features string
	var showVersion bool

	flag.StringVar(&file, "file", "", "path to manifest file (YAML)")
	flag.StringVar(&file, "f", "", "path to manifest file (shorthand)")
	flag.StringVar(&features, "features", "", "comma-separated feature flags to resolve")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  manifest-validate -f diaglog.yaml")
		fmt.Fprintln(os.Stderr, "  manifest-validate --file diaglog.yaml --features trace")
		os.Exit(2)
	}

	m, err := manifest.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := m.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var flags []string
	for _, f := range strings.Split(features, ",") {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, f)
		}
	}
	plan, err := m.Resolve(flags, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s: valid\n", m.Name, m.Version)
	fmt.Printf("target %s/%s plan: %s\n", runtime.GOOS, runtime.GOARCH, strings.Join(plan.Names(), ", "))
}
