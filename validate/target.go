package validate

import (
	"fmt"

	"github.com/Parquery/mapry"
)

// TargetError is a Stage C (target-specific) validation failure (§4.5): the
// schema is otherwise well-formed, but its identifiers collide, or collapse
// into a collision, once rendered in one particular target language.
type TargetError struct {
	Ref     string
	Message string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Message)
}

func tgtErr(ref, format string, args ...any) *TargetError {
	return &TargetError{Ref: ref, Message: fmt.Sprintf(format, args...)}
}

// Rules bundles the naming surface a concrete target (gogen, cppgen,
// pygen) exposes for §4.5's checks: how an identifier renders as a field
// or type name in that target, and the target's reserved-word set.
type Rules struct {
	// Target names the target for error messages ("go", "cpp", "py").
	Target string

	// NormalizeProperty renders a property identifier the way it will
	// appear as a struct field / attribute / member name in generated
	// code (e.g. gogen's fieldName, cppgen.AsField, pygen.AsAttribute).
	NormalizeProperty func(identifier string) (string, error)

	// NormalizeComposite renders a composite (class/embed/graph) name
	// the way it will appear as a type name in generated code.
	NormalizeComposite func(identifier string) (string, error)

	// Keywords is the target language's reserved-word set, matched
	// against normalized identifiers. Reserved words are expected in
	// whatever casing the target language actually reserves them in.
	Keywords map[string]bool

	// IDField is the literal name the target emits for a class's
	// implicit id member (e.g. "ID" for Go, "id" for C++/Python).
	// A declared property whose normalized form collides with it would
	// shadow the implicit id member (§4.5.4).
	IDField string
}

// Target runs the §4.5 checks over graph using rules, returning every
// violation found (validation does not stop at the first, matching
// Stage A/B's collect-everything behavior).
func Target(graph *mapry.Graph, rules Rules) []*TargetError {
	var errs []*TargetError

	errs = append(errs, checkKeywords(graph, rules)...)
	errs = append(errs, checkPluralCollisions(graph, rules)...)
	errs = append(errs, checkPropertyCollisions(graph, rules)...)
	errs = append(errs, checkIDCollisions(graph, rules)...)

	return errs
}

// checkIDCollisions rejects any class property whose target-normalized
// form collides with the target's explicit id member (§4.5.4): every
// class gets an implicit id field in every target's generated type
// definition (Go's ID, C++/Python's id), and the property name "id" is
// already reserved outright (Stage B), but a differently-cased property
// (e.g. "Id") could still collide with the rendered member once
// normalized.
func checkIDCollisions(graph *mapry.Graph, rules Rules) []*TargetError {
	if rules.IDField == "" {
		return nil
	}

	var errs []*TargetError

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		for p := cls.Properties.Oldest(); p != nil; p = p.Next() {
			prop := p.Value

			normalized, err := rules.NormalizeProperty(prop.Name)
			if err != nil {
				continue
			}

			if normalized == rules.IDField {
				errs = append(errs, tgtErr(cls.Ref+"/properties/"+prop.Name,
					"%s: property %q collides with the class's implicit id member", rules.Target, prop.Name))
			}
		}
	}

	return errs
}

// checkKeywords rejects any composite or property identifier whose
// target-normalized form equals a keyword reserved by that target
// language (§4.5.1).
func checkKeywords(graph *mapry.Graph, rules Rules) []*TargetError {
	var errs []*TargetError

	checkComposite := func(name, ref string) {
		normalized, err := rules.NormalizeComposite(name)
		if err != nil {
			return
		}

		if rules.Keywords[normalized] {
			errs = append(errs, tgtErr(ref, "%s: identifier %q is a reserved keyword", rules.Target, normalized))
		}
	}

	checkProperties := func(props *mapry.PropertyMap, ref string) {
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			prop := pair.Value

			normalized, err := rules.NormalizeProperty(prop.Name)
			if err != nil {
				continue
			}

			if rules.Keywords[normalized] {
				errs = append(errs, tgtErr(ref+"/properties/"+prop.Name,
					"%s: identifier %q is a reserved keyword", rules.Target, normalized))
			}
		}
	}

	checkComposite(graph.Name, "#")
	checkProperties(graph.Properties, "#")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value
		checkComposite(cls.Name, cls.Ref)
		checkProperties(cls.Properties, cls.Ref)
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		embed := pair.Value
		checkComposite(embed.Name, embed.Ref)
		checkProperties(embed.Properties, embed.Ref)
	}

	return errs
}

// checkPluralCollisions rejects any class whose plural, after
// target-normalization, coincides with a graph property (§4.5.2,
// invariant 3.3.4): classes are serialized under their plural as a
// nested registry on the graph, so a collision would overwrite a
// property.
func checkPluralCollisions(graph *mapry.Graph, rules Rules) []*TargetError {
	var errs []*TargetError

	graphPropsNormalized := map[string]string{}

	for pair := graph.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		normalized, err := rules.NormalizeProperty(prop.Name)
		if err != nil {
			continue
		}

		graphPropsNormalized[normalized] = prop.Name
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		normalizedPlural, err := rules.NormalizeProperty(cls.Plural)
		if err != nil {
			continue
		}

		if propName, ok := graphPropsNormalized[normalizedPlural]; ok {
			errs = append(errs, tgtErr(cls.Ref,
				"%s: plural %q of class %q collides with graph property %q",
				rules.Target, cls.Plural, cls.Name, propName))
		}
	}

	return errs
}

// checkPropertyCollisions rejects any two properties within the same
// composite whose target-normalized identifiers collide (§4.5.3), e.g.
// "some_URLs" and "some_urls" collapsing under a target that lowercases
// the whole identifier.
func checkPropertyCollisions(graph *mapry.Graph, rules Rules) []*TargetError {
	var errs []*TargetError

	check := func(props *mapry.PropertyMap, ref string) {
		seen := map[string]string{}

		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			prop := pair.Value

			normalized, err := rules.NormalizeProperty(prop.Name)
			if err != nil {
				continue
			}

			if other, ok := seen[normalized]; ok && other != prop.Name {
				errs = append(errs, tgtErr(ref+"/properties/"+prop.Name,
					"%s: property %q collides with property %q (both normalize to %q)",
					rules.Target, prop.Name, other, normalized))

				continue
			}

			seen[normalized] = prop.Name
		}
	}

	check(graph.Properties, "#")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		check(pair.Value.Properties, pair.Value.Ref)
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		check(pair.Value.Properties, pair.Value.Ref)
	}

	return errs
}
