package cppgen

import (
	"fmt"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/naming"
)

// AsComposite translates a composite identifier (class/embed/graph name)
// to a C++ type name: UpperCamelCase, same transform and capitalization
// precondition as mapry/cpp/naming.py's as_composite.
func AsComposite(identifier string) (string, error) {
	return naming.UpperCamel(identifier)
}

// TypeRepr renders the C++ type a mapry value type is represented as in a
// generated struct/class definition, honoring cfg's path/datetime/
// optional-wrapper settings.
//
// Ported from mapry/cpp/generate/__init__.py's type_repr.
func TypeRepr(t mapry.Type, cfg *Config) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return "bool", nil
	case *mapry.Integer:
		return "int64_t", nil
	case *mapry.Float:
		return "double", nil
	case *mapry.String:
		return "std::string", nil
	case *mapry.Path:
		return cfg.PathAs, nil
	case *mapry.Date, *mapry.Time, *mapry.Datetime:
		if cfg.DatetimeLibrary == "date.h" {
			return "date::sys_seconds", nil
		}

		return "std::tm", nil
	case *mapry.TimeZone:
		if cfg.DatetimeLibrary == "date.h" {
			return "const date::time_zone*", nil
		}

		return "std::string", nil
	case *mapry.Duration:
		return "std::chrono::nanoseconds", nil
	case *mapry.Array:
		values, err := TypeRepr(v.Values, cfg)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("std::vector<%s>", values), nil
	case *mapry.Map:
		values, err := TypeRepr(v.Values, cfg)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("std::map<std::string, %s>", values), nil
	case *mapry.ClassRef:
		name, err := AsComposite(v.Class.Name)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("std::shared_ptr<%s>", name), nil
	case *mapry.EmbedRef:
		return AsComposite(v.Embed.Name)
	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

// PropertyTypeRepr renders the C++ type of a property's binding, wrapping
// an optional property's non-pointer type in cfg's configured optional
// wrapper (std::optional by default).
func PropertyTypeRepr(prop *mapry.Property, cfg *Config) (string, error) {
	repr, err := TypeRepr(prop.Type, cfg)
	if err != nil {
		return "", err
	}

	if !prop.Optional {
		return repr, nil
	}

	if _, isClassRef := prop.Type.(*mapry.ClassRef); isClassRef {
		return repr, nil
	}

	return fmt.Sprintf("%s<%s>", cfg.OptionalAs, repr), nil
}

// DefaultValue renders the C++ default-value literal for a non-optional
// property of type t, or "" if the type has no sensible default
// (strings, paths, durations, containers, composites are left
// default-constructed).
//
// Ported from mapry/cpp/generate/types_header.py's _default_value.
func DefaultValue(t mapry.Type) string {
	switch t.(type) {
	case *mapry.Boolean:
		return "false"
	case *mapry.Integer:
		return "0"
	case *mapry.Float:
		return "0.0"
	default:
		return ""
	}
}
