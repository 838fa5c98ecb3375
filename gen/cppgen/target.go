package cppgen

import (
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/validate"
)

// keywords is the set of C++ reserved words (a pragmatic subset of the
// C++17/20 keyword table: the words most likely to collide with a
// lowercased schema identifier, e.g. "class", "for", "new", "delete").
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "asm": true, "auto": true,
	"bool": true, "break": true, "case": true, "catch": true, "char": true,
	"class": true, "concept": true, "const": true, "constexpr": true, "continue": true,
	"default": true, "delete": true, "do": true, "double": true, "dynamic_cast": true,
	"else": true, "enum": true, "explicit": true, "export": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "not": true, "nullptr": true,
	"operator": true, "or": true, "private": true, "protected": true, "public": true,
	"register": true, "requires": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true, "template": true,
	"this": true, "throw": true, "true": true, "try": true, "typedef": true,
	"typeid": true, "typename": true, "union": true, "unsigned": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "wchar_t": true, "while": true,
	"xor": true,
}

func normalizeComposite(identifier string) (string, error) {
	return AsComposite(identifier)
}

func normalizeField(identifier string) (string, error) {
	return AsField(identifier), nil
}

// Validate runs the §4.5 target-specific checks for the C++ target:
// lowercased field names (AsField) and UpperCamelCase type names
// (AsComposite) against C++'s reserved words, class-plural-vs-
// graph-property collisions, intra-composite property collisions, and
// collisions with the explicit "id" member every generated class/struct
// carries.
func Validate(graph *mapry.Graph) []*validate.TargetError {
	errs := validate.Target(graph, validate.Rules{
		Target:             "cpp",
		NormalizeProperty:  normalizeField,
		NormalizeComposite: normalizeComposite,
		Keywords:           keywords,
		IDField:            "id",
	})

	for _, part := range strings.Split(namespaceOf(graph), "::") {
		if part != "" && keywords[part] {
			errs = append(errs, &validate.TargetError{
				Ref:     "#/cpp/namespace",
				Message: "cpp: namespace segment \"" + part + "\" is a reserved keyword",
			})
		}
	}

	return errs
}

func namespaceOf(graph *mapry.Graph) string {
	if graph.CPP != nil {
		return graph.CPP.Namespace
	}

	return ""
}
