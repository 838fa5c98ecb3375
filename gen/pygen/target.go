package pygen

import (
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/validate"
)

// keywords is the Python 3 reserved-word set (https://docs.python.org/3/reference/lexical_analysis.html#keywords).
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

func normalizeAttribute(identifier string) (string, error) {
	return AsAttribute(identifier), nil
}

// Validate runs the §4.5 target-specific checks for the Python target:
// lowercased attribute names (AsAttribute) and UpperCamelCase class names
// (AsComposite) against Python's reserved words, class-plural-vs-graph-
// property collisions, intra-composite property collisions, and
// collisions with the explicit "id" attribute every generated class
// carries.
func Validate(graph *mapry.Graph) []*validate.TargetError {
	errs := validate.Target(graph, validate.Rules{
		Target:             "py",
		NormalizeProperty:  normalizeAttribute,
		NormalizeComposite: AsComposite,
		Keywords:           keywords,
		IDField:            "id",
	})

	for _, part := range strings.Split(moduleNameOf(graph), ".") {
		if part != "" && keywords[part] {
			errs = append(errs, &validate.TargetError{
				Ref:     "#/py/module_name",
				Message: "py: module path segment \"" + part + "\" is a reserved keyword",
			})
		}
	}

	return errs
}

func moduleNameOf(graph *mapry.Graph) string {
	if graph.Py != nil {
		return graph.Py.ModuleName
	}

	return ""
}
