package mapry

import "regexp"

// Pattern wraps a compiled regular expression constraint. The zero value
// (nil *regexp.Regexp) means "unconstrained".
type Pattern = *regexp.Regexp

// Type is the tagged sum of value types a property can carry (§3.1).
// Every concrete type below is a pointer type implementing Type, so that
// a type switch over Type (`switch v := t.(type) { case *Integer: ... }`)
// is exhaustive and comparable as a map key for recursion guards.
type Type interface {
	typeTag() string
}

// Boolean represents the boolean value type.
type Boolean struct{}

func (*Boolean) typeTag() string { return "boolean" }

// Integer represents a (optionally bounded) integer value type.
type Integer struct {
	Minimum          *int64
	MinimumExclusive bool
	Maximum          *int64
	MaximumExclusive bool
}

func (*Integer) typeTag() string { return "integer" }

// Float represents a (optionally bounded) floating-point value type.
//
// Per the Open Question in §9 ("minimum/maximum ... with int() coercion"),
// this model unifies on float64 for bounds; integer literals in the
// schema document are promoted to float64 by the loader.
type Float struct {
	Minimum          *float64
	MinimumExclusive bool
	Maximum          *float64
	MaximumExclusive bool
}

func (*Float) typeTag() string { return "float" }

// String represents a string value type with an optional regex pattern.
type String struct {
	Pattern Pattern
}

func (*String) typeTag() string { return "string" }

// Path represents a filesystem-path value type with an optional regex
// pattern.
type Path struct {
	Pattern Pattern
}

func (*Path) typeTag() string { return "path" }

// DefaultDateFormat is the default Date.Format.
const DefaultDateFormat = "%Y-%m-%d"

// Date represents a calendar-date value type.
type Date struct {
	// Format holds strftime directives; defaults to DefaultDateFormat.
	Format string
}

func (*Date) typeTag() string { return "date" }

// DefaultTimeFormat is the default Time.Format.
const DefaultTimeFormat = "%H:%M:%S"

// Time represents a time-of-day value type.
type Time struct {
	// Format holds strftime directives; defaults to DefaultTimeFormat.
	Format string
}

func (*Time) typeTag() string { return "time" }

// DefaultDatetimeFormat is the default Datetime.Format.
const DefaultDatetimeFormat = "%Y-%m-%dT%H:%M:%SZ"

// Datetime represents a combined date-and-time value type.
type Datetime struct {
	// Format holds strftime directives; defaults to DefaultDatetimeFormat.
	Format string
}

func (*Datetime) typeTag() string { return "datetime" }

// TimeZone represents an IANA time-zone identifier value type.
type TimeZone struct{}

func (*TimeZone) typeTag() string { return "time_zone" }

// Duration represents an ISO-8601-encoded duration value type.
type Duration struct{}

func (*Duration) typeTag() string { return "duration" }

// Array represents a homogeneous, optionally size-bounded list type.
type Array struct {
	Values      Type
	MinimumSize *int
	MaximumSize *int
}

func (*Array) typeTag() string { return "array" }

// Map represents a string-keyed mapping to a homogeneous value type.
type Map struct {
	Values Type
}

func (*Map) typeTag() string { return "map" }

// ClassRef represents a reference to a Class, resolved by name within the
// enclosing graph.
type ClassRef struct {
	Name  string
	Class *Class
}

func (*ClassRef) typeTag() string { return "class_ref" }

// EmbedRef represents a reference to an Embed, resolved by name within the
// enclosing graph.
type EmbedRef struct {
	Name  string
	Embed *Embed
}

func (*EmbedRef) typeTag() string { return "embed_ref" }
