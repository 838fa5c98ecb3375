// Package gogen generates Go source from a mapry object-graph schema
// (§4.6): type definitions, the parse-error container, the class
// preallocation pass, the type-directed parse/serialize dispatch, and a
// duration round-trip test harness.
//
// Grounded on mapry/go/generate/*.py, mapry/go/jinja2_env.py,
// mapry/go/expr.py, and mapry/go/timeformat.py.
package gogen

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for Go-target generation, letting callers
// rename flags while keeping sensible defaults.
type Flags struct {
	Package   string
	Indention string
}

// Config holds CLI flag values for Go-target generation.
//
// Create instances with NewConfig and register CLI flags with
// Config.RegisterFlags.
type Config struct {
	Flags Flags

	// Package overrides the graph's go.package setting, if non-empty.
	Package string

	// Indention is accepted as a flag (default a tab) but is not applied:
	// the generated Go source is always tab-indented.
	Indention string
}

// NewConfig returns a new Config with default flag names and a
// tab-indented default.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Package:   "go-package",
			Indention: "go-indent",
		},
		Indention: "\t",
	}
}

// RegisterFlags adds Go-target generation flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Package, c.Flags.Package, "",
		"Go package name of the generated code (overrides the schema's go.package)")
	flags.StringVar(&c.Indention, c.Flags.Indention, c.Indention,
		"indentation unit (not applied: generated Go code is always tab-indented)")
}
