package gogen

import (
	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/naming"
	"github.com/Parquery/mapry/validate"
)

// keywords is the set of Go reserved words (https://go.dev/ref/spec#Keywords).
var keywords = buildSet(
	"break", "case", "chan", "const", "continue",
	"default", "defer", "else", "fallthrough", "for",
	"func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return",
	"select", "struct", "switch", "type", "var",
)

func buildSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}

// Validate runs the §4.5 target-specific checks for the Go target:
// exported struct field names (fieldName) and type names
// (naming.UpperCamel) against Go's reserved words, class-plural-vs-
// graph-property collisions, intra-composite property collisions, and
// collisions with the implicit ID field every generated class carries.
func Validate(graph *mapry.Graph) []*validate.TargetError {
	errs := validate.Target(graph, validate.Rules{
		Target:             "go",
		NormalizeProperty:  fieldName,
		NormalizeComposite: naming.UpperCamel,
		Keywords:           keywords,
		IDField:            "ID",
	})

	if graph.Go != nil && keywords[graph.Go.Package] {
		errs = append(errs, &validate.TargetError{
			Ref:     "#/go/package",
			Message: "go: package name \"" + graph.Go.Package + "\" is a reserved keyword",
		})
	}

	return errs
}
