package gen

import "regexp"

var bareIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)

// IsVariable reports whether expr is already a bare identifier (as opposed
// to a compound expression like "a.b" or "m[\"k\"]"), so a template can
// skip introducing a redundant local binding and reference expr directly.
//
// Ported from mapry/go/expr.py's is_variable (mirrored across cpp/expr.py
// and py/expr.py).
func IsVariable(expr string) bool {
	return bareIdentifierRe.MatchString(expr)
}
