package gogen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/naming"
)

// TypeRepr renders the Go type a mapry value type is represented as in
// generated struct definitions. Composite references resolve to the
// UpperCamel-cased composite name.
//
// Ported from mapry/go/generate/__init__.py's type_repr (referenced by
// go/generate/types.py).
func TypeRepr(t mapry.Type) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return "bool", nil
	case *mapry.Integer:
		return "int64", nil
	case *mapry.Float:
		return "float64", nil
	case *mapry.String:
		return "string", nil
	case *mapry.Path:
		return "string", nil
	case *mapry.Date, *mapry.Time, *mapry.Datetime:
		return "time.Time", nil
	case *mapry.TimeZone:
		return "*time.Location", nil
	case *mapry.Duration:
		return "time.Duration", nil
	case *mapry.Array:
		values, err := TypeRepr(v.Values)
		if err != nil {
			return "", err
		}

		return "[]" + values, nil
	case *mapry.Map:
		values, err := TypeRepr(v.Values)
		if err != nil {
			return "", err
		}

		return "map[string]" + values, nil
	case *mapry.ClassRef:
		name, err := naming.UpperCamel(v.Class.Name)
		if err != nil {
			return "", err
		}

		return "*" + name, nil
	case *mapry.EmbedRef:
		name, err := naming.UpperCamel(v.Embed.Name)
		if err != nil {
			return "", err
		}

		return name, nil
	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

// IsPointerType reports whether a type's TypeRepr is already a Go
// reference type (pointer, slice, or map) that represents "absent" as
// nil, so an optional property of that type needs no extra indirection.
func IsPointerType(t mapry.Type) bool {
	switch t.(type) {
	case *mapry.Array, *mapry.Map, *mapry.ClassRef, *mapry.TimeZone:
		return true
	default:
		return false
	}
}

// PropertyTypeRepr renders the Go type of a property's binding, adding a
// leading "*" for an optional property whose value type is not already a
// pointer/slice/map type.
func PropertyTypeRepr(prop *mapry.Property) (string, error) {
	repr, err := TypeRepr(prop.Type)
	if err != nil {
		return "", err
	}

	if prop.Optional && !IsPointerType(prop.Type) {
		return "*" + repr, nil
	}

	return repr, nil
}

// Imports computes the sorted set of standard-library import paths the
// generated types file needs, based on which value types the graph uses.
//
// Ported from mapry/go/generate/types.py's _imports.
func Imports(graph *mapry.Graph) []string {
	needed := map[string]bool{}

	if mapry.GraphNeedsType[*mapry.Date](graph) ||
		mapry.GraphNeedsType[*mapry.Time](graph) ||
		mapry.GraphNeedsType[*mapry.Datetime](graph) ||
		mapry.GraphNeedsType[*mapry.Duration](graph) ||
		mapry.GraphNeedsType[*mapry.TimeZone](graph) {
		needed["time"] = true
	}

	out := make([]string, 0, len(needed))
	for imp := range needed {
		out = append(out, imp)
	}

	sort.Strings(out)

	return out
}

// ImportDeclarations renders a Go import block for the given import
// paths, or an empty string if there are none.
func ImportDeclarations(imports []string) string {
	if len(imports) == 0 {
		return ""
	}

	if len(imports) == 1 {
		return fmt.Sprintf("import %q", imports[0])
	}

	var b strings.Builder

	b.WriteString("import (\n")

	for _, imp := range imports {
		fmt.Fprintf(&b, "\t%q\n", imp)
	}

	b.WriteString(")")

	return b.String()
}
