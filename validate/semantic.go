package validate

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/Parquery/mapry/naming"
	"github.com/Parquery/mapry/strftime"
)

// SemanticError is one Stage B failure: the document has the right shape,
// but violates a constraint shape alone cannot express (bounds ordering,
// a pattern or format that fails to compile, a duplicate or colliding
// name). Grounded on mapry/validation.py's SchemaError.
type SemanticError struct {
	Ref     string
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Message)
}

func semErr(ref, format string, args ...any) *SemanticError {
	return &SemanticError{Ref: ref, Message: fmt.Sprintf(format, args...)}
}

var nonCompositeTypes = map[string]bool{
	"boolean": true, "integer": true, "float": true, "string": true,
	"path": true, "date": true, "time": true, "datetime": true,
	"duration": true, "time_zone": true, "array": true, "map": true,
}

var propertyNameRe = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9_]*[a-zA-Z0-9])?$`)

// Semantic checks the decoded JSON instance (the same map[string]any a
// plain encoding/json.Unmarshal into `any` would produce) for Stage B
// violations, after it has already passed Structural. ref identifies the
// document in error messages (e.g. a file path).
//
// Ported from mapry/validation.py's validate().
func Semantic(instance any, ref string) []*SemanticError {
	mapping, ok := instance.(map[string]any)
	if !ok {
		return []*SemanticError{semErr(ref, "expected a JSON object at the top level")}
	}

	var errs []*SemanticError

	names := map[string]bool{}
	if name, ok := mapping["name"].(string); ok {
		names[name] = true
	}

	classes, _ := mapping["classes"].([]any)
	embeds, _ := mapping["embeds"].([]any)

	for i, raw := range classes {
		cls, _ := raw.(map[string]any)

		name, _ := cls["name"].(string)
		if names[name] {
			errs = append(errs, semErr(fmt.Sprintf("%s/classes/%d/name", ref, i), "duplicate name: %q", name))
		}

		names[name] = true
	}

	for i, raw := range embeds {
		embed, _ := raw.(map[string]any)

		name, _ := embed["name"].(string)
		if names[name] {
			errs = append(errs, semErr(fmt.Sprintf("%s/embeds/%d/name", ref, i), "duplicate name: %q", name))
		}

		names[name] = true
	}

	for i, raw := range classes {
		cls, _ := raw.(map[string]any)
		errs = append(errs, validateClass(cls, fmt.Sprintf("%s/classes/%d", ref, i))...)
	}

	types := make(map[string]bool, len(nonCompositeTypes)+len(names))
	for k := range nonCompositeTypes {
		types[k] = true
	}

	for n := range names {
		types[n] = true
	}

	errs = append(errs, validateProperties(mapping, ref, types)...)

	for i, raw := range classes {
		cls, _ := raw.(map[string]any)
		errs = append(errs, validateProperties(cls, fmt.Sprintf("%s/classes/%d", ref, i), types)...)
	}

	for i, raw := range embeds {
		embed, _ := raw.(map[string]any)
		errs = append(errs, validateProperties(embed, fmt.Sprintf("%s/embeds/%d", ref, i), types)...)
	}

	errs = append(errs, validatePlurals(mapping, ref)...)

	return errs
}

func validateClass(cls map[string]any, ref string) []*SemanticError {
	var errs []*SemanticError

	if idPattern, ok := cls["id_pattern"].(string); ok {
		if _, err := regexp.Compile(idPattern); err != nil {
			errs = append(errs, semErr(ref+"/id_pattern", "invalid regular expression: %s", err))
		}
	}

	if props, ok := cls["properties"].(map[string]any); ok {
		if _, ok := props["id"]; ok {
			errs = append(errs, semErr(ref+"/properties",
				"'id' is a reserved property of the class; "+
					"use 'id_pattern' for a pattern on class identifiers"))
		}
	}

	return errs
}

func validateProperties(mapping map[string]any, ref string, types map[string]bool) []*SemanticError {
	props, ok := mapping["properties"].(map[string]any)
	if !ok {
		return nil
	}

	var errs []*SemanticError

	for name, raw := range props {
		if !propertyNameRe.MatchString(name) {
			errs = append(errs, semErr(ref+"/properties",
				"property name invalid, expected to match %s, got %q", propertyNameRe.String(), name))
		}

		propMapping, _ := raw.(map[string]any)

		if err := validateTypeRecursively(propMapping, fmt.Sprintf("%s/properties/%s", ref, name), types, 0); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func validateTypeRecursively(mapping map[string]any, ref string, types map[string]bool, depth int) *SemanticError {
	tag, _ := mapping["type"].(string)

	if !types[tag] {
		return semErr(ref+"/type", "invalid type: %q", tag)
	}

	switch tag {
	case "boolean", "duration", "time_zone":
		return nil

	case "integer":
		return validateIntegerBounds(mapping, ref)

	case "float":
		return validateFloatBounds(mapping, ref)

	case "string", "path":
		if pattern, ok := mapping["pattern"].(string); ok {
			if _, err := regexp.Compile(pattern); err != nil {
				return semErr(ref+"/pattern", "invalid regular expression: %s", err)
			}
		}

		return nil

	case "date":
		return validateFormat(mapping, ref, strftime.ValidateDateTokens)

	case "time":
		return validateFormat(mapping, ref, strftime.ValidateTimeTokens)

	case "datetime":
		if format, ok := mapping["format"].(string); ok {
			if _, err := strftime.Tokenize(format); err != nil {
				return semErr(ref+"/format", "%s", err)
			}
		}

		return nil

	case "array":
		return validateArray(mapping, ref, types, depth)

	case "map":
		return validateMap(mapping, ref, types, depth)

	default:
		// A composite (class_ref/embed_ref) type identifier; composites
		// carry no type-specific fields to check further.
		return nil
	}
}

func validateFormat(mapping map[string]any, ref string, validateTokens func([][]strftime.Token) error) *SemanticError {
	format, ok := mapping["format"].(string)
	if !ok {
		return nil
	}

	tokens, err := strftime.Tokenize(format)
	if err != nil {
		return semErr(ref+"/format", "%s", err)
	}

	if err := validateTokens(tokens); err != nil {
		return semErr(ref+"/format", "%s", err)
	}

	return nil
}

func validateIntegerBounds(mapping map[string]any, ref string) *SemanticError {
	minVal, hasMin := mapping["minimum"].(float64)
	maxVal, hasMax := mapping["maximum"].(float64)

	if !hasMin || !hasMax {
		return nil
	}

	if minVal > maxVal {
		return semErr(ref, "minimum (== %v) > maximum (== %v)", minVal, maxVal)
	}

	exclMin, _ := mapping["exclusive_minimum"].(bool)
	exclMax, _ := mapping["exclusive_maximum"].(bool)

	if minVal == maxVal && (exclMin || exclMax) {
		return semErr(ref, "minimum (== %v) == maximum and one bound is exclusive", minVal)
	}

	return nil
}

func validateFloatBounds(mapping map[string]any, ref string) *SemanticError {
	return validateIntegerBounds(mapping, ref)
}

func validateArray(mapping map[string]any, ref string, types map[string]bool, depth int) *SemanticError {
	minSize, hasMin := mapping["minimum_size"].(float64)
	maxSize, hasMax := mapping["maximum_size"].(float64)

	if hasMin && hasMax && minSize > maxSize {
		return semErr(ref+"/minimum_size", "minimum size is larger than the maximum size: %v > %v", minSize, maxSize)
	}

	values, ok := mapping["values"].(map[string]any)
	if !ok {
		return semErr(ref+"/values", "missing values type definition")
	}

	return validateTypeRecursively(values, ref+"/values", types, depth+1)
}

func validateMap(mapping map[string]any, ref string, types map[string]bool, depth int) *SemanticError {
	values, ok := mapping["values"].(map[string]any)
	if !ok {
		return semErr(ref+"/values", "missing values type definition")
	}

	return validateTypeRecursively(values, ref+"/values", types, depth+1)
}

func validatePlurals(mapping map[string]any, ref string) []*SemanticError {
	classes, ok := mapping["classes"].([]any)
	if !ok {
		return nil
	}

	props, ok := mapping["properties"].(map[string]any)
	if !ok {
		return nil
	}

	registryPropertyToClass := map[string]string{}

	for _, raw := range classes {
		cls, _ := raw.(map[string]any)

		name, hasName := cls["name"].(string)
		if !hasName {
			continue
		}

		plural, ok := cls["plural"].(string)
		if !ok {
			var err error

			plural, err = naming.Plural(name)
			if err != nil {
				continue
			}
		}

		jsonPlural, err := naming.JSONPlural(plural)
		if err != nil {
			continue
		}

		registryPropertyToClass[jsonPlural] = name
	}

	propertyNames := make([]string, 0, len(props))
	for name := range props {
		propertyNames = append(propertyNames, name)
	}

	sort.Strings(propertyNames)

	var errs []*SemanticError

	for _, name := range propertyNames {
		if clsName, collides := registryPropertyToClass[name]; collides {
			errs = append(errs, semErr(ref+"/"+name,
				"graph property %q conflicts with the registry field required for class %q", name, clsName))
		}
	}

	return errs
}
