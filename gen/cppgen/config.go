// Package cppgen generates C++ source from a mapry object-graph schema:
// the types header (struct/class definitions, one per embed/class, plus
// the graph itself), a jsoncpp-backed parse/serialize dispatch for every
// type, and the bounded parse-error container those functions report
// into.
//
// Grounded on mapry/cpp/generate/types_header.py, jsoncpp_impl.py,
// parse_header.py, parse_impl.py, mapry/cpp/naming.py, and
// mapry/cpp/jinja2_env.py.
package cppgen

import (
	"github.com/spf13/pflag"

	"github.com/Parquery/mapry"
)

// Flags holds CLI flag names for C++-target generation, letting callers
// rename flags while keeping sensible defaults.
type Flags struct {
	Namespace       string
	PathAs          string
	OptionalAs      string
	DatetimeLibrary string
	Indention       string
}

// Config holds CLI flag values for C++-target generation, mirroring
// mapry.CPPSettings (the per-schema equivalent) for use when a schema
// document omits its cpp settings block.
//
// Create instances with NewConfig and register CLI flags with
// Config.RegisterFlags.
type Config struct {
	Flags Flags

	// Namespace is the "::"-separated C++ namespace wrapping the
	// generated header, e.g. "mycompany::schema".
	Namespace string

	// PathAs is the C++ type Path properties are represented as:
	// "std::filesystem::path" or "boost::filesystem::path".
	PathAs string

	// OptionalAs is the C++ wrapper optional properties are represented
	// as: "std::optional", "boost::optional", or
	// "std::experimental::optional".
	OptionalAs string

	// DatetimeLibrary is "ctime" or "date.h".
	DatetimeLibrary string

	// Indention is the unit substituted for one 4-space level of the
	// canonically-indented generated text (§4.6.5); defaults to 4 spaces,
	// matching the original's default C++ style.
	Indention string
}

// NewConfig returns a new Config with default flag names and the
// original's defaults: std::filesystem::path, std::optional, ctime,
// 4-space indention.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Namespace:       "cpp-namespace",
			PathAs:          "cpp-path-as",
			OptionalAs:      "cpp-optional-as",
			DatetimeLibrary: "cpp-datetime-library",
			Indention:       "cpp-indent",
		},
		PathAs:          "std::filesystem::path",
		OptionalAs:      "std::optional",
		DatetimeLibrary: "ctime",
		Indention:       "    ",
	}
}

// RegisterFlags adds C++-target generation flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Namespace, c.Flags.Namespace, c.Namespace,
		"C++ namespace (\"::\"-separated) wrapping the generated code")
	flags.StringVar(&c.PathAs, c.Flags.PathAs, c.PathAs,
		"C++ type Path properties are represented as")
	flags.StringVar(&c.OptionalAs, c.Flags.OptionalAs, c.OptionalAs,
		"C++ wrapper optional properties are represented as")
	flags.StringVar(&c.DatetimeLibrary, c.Flags.DatetimeLibrary, c.DatetimeLibrary,
		"C++ datetime library to target (\"ctime\" or \"date.h\")")
	flags.StringVar(&c.Indention, c.Flags.Indention, c.Indention,
		"indentation unit substituted for one 4-space level of generated code")
}

// FromSettings overrides cfg's path/optional/datetime settings with the
// schema's own cpp settings block, when present — a schema-level
// mapry.CPPSettings always wins over the CLI default.
func (c *Config) FromSettings(s *mapry.CPPSettings) {
	if s == nil {
		return
	}

	if s.Namespace != "" {
		c.Namespace = s.Namespace
	}

	if s.PathAs != "" {
		c.PathAs = s.PathAs
	}

	if s.OptionalAs != "" {
		c.OptionalAs = s.OptionalAs
	}

	if s.DatetimeLibrary != "" {
		c.DatetimeLibrary = s.DatetimeLibrary
	}

	if s.Indention != "" {
		c.Indention = s.Indention
	}
}
