package gogen

import (
	"fmt"
	"strconv"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/naming"
)

// uidGen hands out small monotonic suffixes so nested Array/Map parse
// blocks (which each need their own loop variable and index/key
// bindings) never shadow an enclosing one.
type uidGen struct{ n int }

func (u *uidGen) next() string {
	u.n++
	return strconv.Itoa(u.n)
}

// EmitParse renders the Go statements that parse a runtime value (held in
// the Go expression valueExpr, typed `any`) at reference path refExpr into
// targetExpr, appending to errsExpr on failure (§4.6.1). ctx supplies the
// composite-to-registry-variable mapping needed by ClassRef/EmbedRef.
//
// This is the type-directed dispatch mapry.Type demands: every branch
// below is one value-type tag, mirroring mapry/go/generate/fromjsonable.py.
func EmitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, ctx *ParseContext) (string, error) {
	return emitParse(targetExpr, valueExpr, refExpr, errsExpr, t, ctx, &uidGen{})
}

// ParseContext threads the registries of transitively referenced classes
// (§4.6.3) through nested ClassRef/EmbedRef parses.
type ParseContext struct {
	// Registries maps a class name to the Go expression (a local variable
	// or a field access) holding `map[string]*ClassName`.
	Registries map[string]string
}

func emitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, ctx *ParseContext, u *uidGen) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return fmt.Sprintf(`if parsed, ok := %s.(bool); ok {
	%s = parsed
} else {
	%s.Add(%s, fmt.Sprintf("Expected a boolean, but got: %%T", %s))
}`, valueExpr, targetExpr, errsExpr, refExpr, valueExpr), nil

	case *mapry.String:
		return emitPath(targetExpr, valueExpr, refExpr, errsExpr, &mapry.Path{Pattern: v.Pattern}), nil

	case *mapry.Path:
		return emitPath(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Integer:
		return emitInteger(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Float:
		return emitFloat(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Date:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format)

	case *mapry.Time:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format)

	case *mapry.Datetime:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format)

	case *mapry.TimeZone:
		return emitTimeZone(targetExpr, valueExpr, refExpr, errsExpr), nil

	case *mapry.Duration:
		return emitDuration(targetExpr, valueExpr, refExpr, errsExpr), nil

	case *mapry.Array:
		return emitArray(targetExpr, valueExpr, refExpr, errsExpr, v, ctx, u)

	case *mapry.Map:
		return emitMap(targetExpr, valueExpr, refExpr, errsExpr, v, ctx, u)

	case *mapry.ClassRef:
		return emitClassRef(targetExpr, valueExpr, refExpr, errsExpr, v, ctx)

	case *mapry.EmbedRef:
		return emitEmbedRef(targetExpr, valueExpr, refExpr, errsExpr, v, ctx)

	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

func emitString(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if parsed, ok := %s.(string); ok {
	%s = parsed
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, targetExpr, errsExpr, refExpr, valueExpr)
}

func emitPath(targetExpr, valueExpr, refExpr, errsExpr string, p *mapry.Path) string {
	if p.Pattern == nil {
		return emitString(targetExpr, valueExpr, refExpr, errsExpr)
	}

	return fmt.Sprintf(`if parsed, ok := %s.(string); ok {
	if %s.MatchString(parsed) {
		%s = parsed
	} else {
		%s.Add(%s, fmt.Sprintf("Expected to match %%s, but got: %%s", %s.String(), parsed))
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, patternVar(p.Pattern), targetExpr, errsExpr, refExpr, patternVar(p.Pattern),
		errsExpr, refExpr, valueExpr)
}

// patternVar names the package-level compiled *regexp.Regexp variable a
// pattern-bearing type's generated code refers to; patternDeclarations
// (generator.go) emits one such var per distinct pattern, keyed the same
// way.
func patternVar(p mapry.Pattern) string {
	return fmt.Sprintf("pattern%08x", patternHash(p.String()))
}

func patternHash(s string) uint32 {
	var h uint32 = 2166136261

	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}

	return h
}

func emitInteger(targetExpr, valueExpr, refExpr, errsExpr string, integer *mapry.Integer) string {
	body := fmt.Sprintf(`if asFloat, ok := %s.(float64); ok {
	if asFloat != float64(int64(asFloat)) {
		%s.Add(%s, fmt.Sprintf("Expected an integer, but got a fractional number: %%v", asFloat))
	} else if asFloat >= 9223372036854775808.0 || asFloat < -9223372036854775808.0 {
		%s.Add(%s, fmt.Sprintf("Expected an integer representable in 64 bits, but got: %%v", asFloat))
	} else {
		parsed := int64(asFloat)
`, valueExpr, errsExpr, refExpr, errsExpr, refExpr)

	body += emitIntegerBoundsChecks("parsed", refExpr, errsExpr, integer)
	body += fmt.Sprintf("\t\t%s = parsed\n\t}\n", targetExpr)
	body += fmt.Sprintf(`} else {
	%s.Add(%s, fmt.Sprintf("Expected an integer, but got: %%T", %s))
}`, errsExpr, refExpr, valueExpr)

	return body
}

func emitIntegerBoundsChecks(varExpr, refExpr, errsExpr string, integer *mapry.Integer) string {
	var out string

	if integer.Minimum != nil {
		op := ">="
		if integer.MinimumExclusive {
			op = ">"
		}

		out += fmt.Sprintf(`		if !(%s %s %d) {
			%s.Add(%s, fmt.Sprintf("Expected %s %d, but got: %%v", %s))
		}
`, varExpr, op, *integer.Minimum, errsExpr, refExpr, op, *integer.Minimum, varExpr)
	}

	if integer.Maximum != nil {
		op := "<="
		if integer.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`		if !(%s %s %d) {
			%s.Add(%s, fmt.Sprintf("Expected %s %d, but got: %%v", %s))
		}
`, varExpr, op, *integer.Maximum, errsExpr, refExpr, op, *integer.Maximum, varExpr)
	}

	return out
}

func emitFloat(targetExpr, valueExpr, refExpr, errsExpr string, float *mapry.Float) string {
	body := fmt.Sprintf(`if parsed, ok := %s.(float64); ok {
`, valueExpr)
	body += emitFloatBoundsChecks("parsed", refExpr, errsExpr, float)
	body += fmt.Sprintf("\t%s = parsed\n", targetExpr)
	body += fmt.Sprintf(`} else {
	%s.Add(%s, fmt.Sprintf("Expected a float, but got: %%T", %s))
}`, errsExpr, refExpr, valueExpr)

	return body
}

func emitFloatBoundsChecks(varExpr, refExpr, errsExpr string, float *mapry.Float) string {
	var out string

	if float.Minimum != nil {
		op := ">="
		if float.MinimumExclusive {
			op = ">"
		}

		out += fmt.Sprintf(`	if !(%s %s %v) {
		%s.Add(%s, fmt.Sprintf("Expected %s %v, but got: %%v", %s))
	}
`, varExpr, op, *float.Minimum, errsExpr, refExpr, op, *float.Minimum, varExpr)
	}

	if float.Maximum != nil {
		op := "<="
		if float.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`	if !(%s %s %v) {
		%s.Add(%s, fmt.Sprintf("Expected %s %v, but got: %%v", %s))
	}
`, varExpr, op, *float.Maximum, errsExpr, refExpr, op, *float.Maximum, varExpr)
	}

	return out
}

func emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, format string) (string, error) {
	layout, err := ConvertFormat(format)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if asStr, ok := %s.(string); ok {
	if parsed, err := time.Parse(%q, asStr); err == nil {
		%s = parsed
	} else {
		%s.Add(%s, fmt.Sprintf("Expected to strptime %%s, but got: %%s", %q, asStr))
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, layout, targetExpr, errsExpr, refExpr, format, errsExpr, refExpr, valueExpr), nil
}

func emitTimeZone(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if asStr, ok := %s.(string); ok {
	if loc, err := time.LoadLocation(asStr); err == nil {
		%s = loc
	} else {
		%s.Add(%s, fmt.Sprintf("Expected a valid IANA time zone, but got: %%s", asStr))
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, targetExpr, errsExpr, refExpr, errsExpr, refExpr, valueExpr)
}

func emitDuration(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if asStr, ok := %s.(string); ok {
	if parsed, err := durationFromString(asStr); err == nil {
		%s = parsed
	} else {
		%s.Add(%s, err.Error())
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, targetExpr, errsExpr, refExpr, errsExpr, refExpr, valueExpr)
}

func emitArray(targetExpr, valueExpr, refExpr, errsExpr string, arr *mapry.Array, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	itemVar := "item" + uid
	idxVar := "i" + uid
	parsedVar := "parsedItem" + uid

	itemType, err := TypeRepr(arr.Values)
	if err != nil {
		return "", err
	}

	itemParse, err := emitParse(parsedVar, itemVar, fmt.Sprintf(`fmt.Sprintf("%%s/%%d", %s, %s)`, refExpr, idxVar),
		errsExpr, arr.Values, ctx, u)
	if err != nil {
		return "", err
	}

	sizeChecks := ""

	if arr.MinimumSize != nil {
		sizeChecks += fmt.Sprintf(`	if len(asList) < %d {
		%s.Add(%s, fmt.Sprintf("Expected at least %d item(s), but got: %%d", len(asList)))
	}
`, *arr.MinimumSize, errsExpr, refExpr, *arr.MinimumSize)
	}

	if arr.MaximumSize != nil {
		sizeChecks += fmt.Sprintf(`	if len(asList) > %d {
		%s.Add(%s, fmt.Sprintf("Expected at most %d item(s), but got: %%d", len(asList)))
	}
`, *arr.MaximumSize, errsExpr, refExpr, *arr.MaximumSize)
	}

	return fmt.Sprintf(`if asList, ok := %s.([]any); ok {
%s	parsedList := make([]%s, 0, len(asList))
	for %s, %s := range asList {
		if %s.Full() {
			break
		}

		var %s %s
		%s
		parsedList = append(parsedList, %s)
	}
	%s = parsedList
} else {
	%s.Add(%s, fmt.Sprintf("Expected a list, but got: %%T", %s))
}`, valueExpr, sizeChecks, itemType, idxVar, itemVar, errsExpr, parsedVar, itemType,
		indentBlock(itemParse, 2), parsedVar, targetExpr, errsExpr, refExpr, valueExpr), nil
}

func emitMap(targetExpr, valueExpr, refExpr, errsExpr string, m *mapry.Map, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	keyVar := "key" + uid
	valVar := "val" + uid
	parsedVar := "parsedVal" + uid

	valType, err := TypeRepr(m.Values)
	if err != nil {
		return "", err
	}

	valParse, err := emitParse(parsedVar, valVar, fmt.Sprintf(`fmt.Sprintf("%%s/%%s", %s, %s)`, refExpr, keyVar),
		errsExpr, m.Values, ctx, u)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if asMap, ok := %s.(map[string]any); ok {
	parsedMap := make(map[string]%s, len(asMap))
	for %s, %s := range asMap {
		if %s.Full() {
			break
		}

		var %s %s
		%s
		parsedMap[%s] = %s
	}
	%s = parsedMap
} else {
	%s.Add(%s, fmt.Sprintf("Expected an object, but got: %%T", %s))
}`, valueExpr, valType, keyVar, valVar, errsExpr, parsedVar, valType,
		indentBlock(valParse, 2), keyVar, parsedVar, targetExpr, errsExpr, refExpr, valueExpr), nil
}

func emitClassRef(targetExpr, valueExpr, refExpr, errsExpr string, ref *mapry.ClassRef, ctx *ParseContext) (string, error) {
	classUC, err := naming.UpperCamel(ref.Class.Name)
	if err != nil {
		return "", err
	}

	registry, ok := ctx.Registries[ref.Class.Name]
	if !ok {
		return "", fmt.Errorf("gogen: no registry in scope for class %s", ref.Class.Name)
	}

	return fmt.Sprintf(`if asID, ok := %s.(string); ok {
	if instance, found := %s[asID]; found {
		%s = instance
	} else {
		%s.Add(%s, fmt.Sprintf("Reference to an instance of class %s not found: %%s", asID))
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected a string, but got: %%T", %s))
}`, valueExpr, registry, targetExpr, errsExpr, refExpr, classUC, errsExpr, refExpr, valueExpr), nil
}

func emitEmbedRef(targetExpr, valueExpr, refExpr, errsExpr string, ref *mapry.EmbedRef, ctx *ParseContext) (string, error) {
	nameUC, err := naming.UpperCamel(ref.Embed.Name)
	if err != nil {
		return "", err
	}

	registries, err := registryArgList(mapry.TransitiveClassRefs(ref.Embed), ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if asMap, ok := %s.(map[string]any); ok {
	parsed, parseErrs := parse%s(asMap, %s%s)
	if !parseErrs.Empty() {
		for _, parseErr := range parseErrs.Values() {
			%s.Add(parseErr.Ref, parseErr.Message)
		}
	} else {
		%s = parsed
	}
} else {
	%s.Add(%s, fmt.Sprintf("Expected an object, but got: %%T", %s))
}`, valueExpr, nameUC, refExpr, registries, errsExpr, targetExpr, errsExpr, refExpr, valueExpr), nil
}

func registryArgList(classes []*mapry.Class, ctx *ParseContext) (string, error) {
	var out string

	for _, cls := range classes {
		registry, ok := ctx.Registries[cls.Name]
		if !ok {
			return "", fmt.Errorf("gogen: no registry in scope for class %s", cls.Name)
		}

		out += ", " + registry
	}

	return out, nil
}

func indentBlock(text string, levels int) string {
	prefix := ""
	for i := 0; i < levels; i++ {
		prefix += "\t"
	}

	out := prefix

	for i := 0; i < len(text); i++ {
		out += string(text[i])

		if text[i] == '\n' && i+1 < len(text) {
			out += prefix
		}
	}

	return out
}
