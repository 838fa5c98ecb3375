package pygen

import (
	"fmt"
	"strconv"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
)

// uidGen hands out small monotonic suffixes so nested Array/Map parse
// blocks each get their own loop variable, mirroring gogen's uidGen.
type uidGen struct{ n int }

func (u *uidGen) next() string {
	u.n++
	return strconv.Itoa(u.n)
}

// ParseContext threads the registries of transitively referenced classes
// (§4.6.3) through nested ClassRef/EmbedRef parses: a class name maps to
// the Python expression (a parameter name) holding `typing.Dict[str, X]`.
type ParseContext struct {
	Registries map[string]string
}

// EmitParse renders the Python statements that parse a runtime value
// (held in the Python expression valueExpr) at reference path refExpr
// into targetExpr, appending to errsExpr on failure (§4.6.1). This is
// the same type-directed dispatch gogen.EmitParse performs, rendering
// Python instead of Go syntax; ported from mapry/py/generate/fromjsonable.py.
func EmitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, ctx *ParseContext) (string, error) {
	return emitParse(targetExpr, valueExpr, refExpr, errsExpr, t, ctx, &uidGen{})
}

func emitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, ctx *ParseContext, u *uidGen) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return emitSimpleCheck(targetExpr, valueExpr, refExpr, errsExpr, "bool", "a boolean"), nil

	case *mapry.String:
		if v.Pattern == nil {
			return emitString(targetExpr, valueExpr, refExpr, errsExpr), nil
		}

		return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
elif not %s.match(%s):
    %s.add(%s, "Expected to match {}, but got: {}".format(%s.pattern, %s))
else:
    %s = %s`, valueExpr, errsExpr, refExpr, valueExpr, patternVar(v.Pattern), valueExpr,
			errsExpr, refExpr, patternVar(v.Pattern), valueExpr, targetExpr, valueExpr), nil

	case *mapry.Path:
		return emitPath(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Integer:
		return emitInteger(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Float:
		return emitFloat(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Date:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format), nil

	case *mapry.Time:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format), nil

	case *mapry.Datetime:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format), nil

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

func emitSimpleCheck(targetExpr, valueExpr, refExpr, errsExpr, pyType, article string) string {
	return fmt.Sprintf(`if isinstance(%s, %s):
    %s = %s
else:
    %s.add(%s, "Expected %s, but got: {}".format(type(%s)))`,
		valueExpr, pyType, targetExpr, valueExpr, errsExpr, refExpr, article, valueExpr)
}

func emitString(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return emitSimpleCheck(targetExpr, valueExpr, refExpr, errsExpr, "str", "a string")
}

func emitPath(targetExpr, valueExpr, refExpr, errsExpr string, p *mapry.Path) string {
	if p.Pattern == nil {
		body := emitString(targetExpr, valueExpr, refExpr, errsExpr)

		if pathAs == "pathlib.Path" {
			return fmt.Sprintf(`if isinstance(%s, str):
    %s = pathlib.Path(%s)
else:
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))`,
				valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr)
		}

		return body
	}

	assign := fmt.Sprintf("%s = %s", targetExpr, valueExpr)
	if pathAs == "pathlib.Path" {
		assign = fmt.Sprintf("%s = pathlib.Path(%s)", targetExpr, valueExpr)
	}

	return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
elif not %s.match(%s):
    %s.add(%s, "Expected to match {}, but got: {}".format(%s.pattern, %s))
else:
    %s`, valueExpr, errsExpr, refExpr, valueExpr, patternVar(p.Pattern), valueExpr,
		errsExpr, refExpr, patternVar(p.Pattern), valueExpr, assign)
}

// pathAs and timezoneAs are set once per Generate call (package-level
// state mirrors the original generator's single-threaded, one-graph-at-
// a-time invocation) to the graph's py.path_as/py.timezone_as settings.
var pathAs = "str"
var timezoneAs = "str"

// patternVar names the module-level compiled `re.Pattern` variable a
// pattern-bearing type's generated code refers to.
func patternVar(p mapry.Pattern) string {
	return fmt.Sprintf("_PATTERN_%08x", patternHash(p.String()))
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
	checks := emitIntegerBoundsChecks(valueExpr, refExpr, errsExpr, integer)

	var inner string
	if checks == "" {
		inner = fmt.Sprintf("    %s = %s\n", targetExpr, valueExpr)
	} else {
		inner = checks + fmt.Sprintf("    else:\n        %s = %s\n", targetExpr, valueExpr)
	}

	return fmt.Sprintf(`if not isinstance(%s, int):
    %s.add(%s, "Expected an integer, but got: {}".format(type(%s)))
else:
%s`, valueExpr, errsExpr, refExpr, valueExpr, inner)
}

func emitIntegerBoundsChecks(varExpr, refExpr, errsExpr string, integer *mapry.Integer) string {
	var out string

	kw := "if"

	if integer.Minimum != nil {
		op := ">="
		if integer.MinimumExclusive {
			op = ">"
		}

		out += fmt.Sprintf(`    %s not (%s %s %d):
        %s.add(%s, "Expected %s %d, but got: {}".format(%s))
`, kw, varExpr, op, *integer.Minimum, errsExpr, refExpr, op, *integer.Minimum, varExpr)
		kw = "elif"
	}

	if integer.Maximum != nil {
		op := "<="
		if integer.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`    %s not (%s %s %d):
        %s.add(%s, "Expected %s %d, but got: {}".format(%s))
`, kw, varExpr, op, *integer.Maximum, errsExpr, refExpr, op, *integer.Maximum, varExpr)
	}

	return out
}

func emitFloat(targetExpr, valueExpr, refExpr, errsExpr string, float *mapry.Float) string {
	checks := emitFloatBoundsChecks(valueExpr, refExpr, errsExpr, float)

	var inner string
	if checks == "" {
		inner = fmt.Sprintf("    %s = float(%s)\n", targetExpr, valueExpr)
	} else {
		inner = checks + fmt.Sprintf("    else:\n        %s = float(%s)\n", targetExpr, valueExpr)
	}

	return fmt.Sprintf(`if not isinstance(%s, (int, float)):
    %s.add(%s, "Expected a number, but got: {}".format(type(%s)))
else:
%s`, valueExpr, errsExpr, refExpr, valueExpr, inner)
}

func emitFloatBoundsChecks(varExpr, refExpr, errsExpr string, float *mapry.Float) string {
	var out string

	kw := "if"

	if float.Minimum != nil {
		op := ">="
		if float.MinimumExclusive {
			op = ">"
		}

		out += fmt.Sprintf(`    %s not (%s %s %v):
        %s.add(%s, "Expected %s %v, but got: {}".format(%s))
`, kw, varExpr, op, *float.Minimum, errsExpr, refExpr, op, *float.Minimum, varExpr)
		kw = "elif"
	}

	if float.Maximum != nil {
		op := "<="
		if float.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`    %s not (%s %s %v):
        %s.add(%s, "Expected %s %v, but got: {}".format(%s))
`, kw, varExpr, op, *float.Maximum, errsExpr, refExpr, op, *float.Maximum, varExpr)
	}

	return out
}

func emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, format string) string {
	return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
else:
    try:
        %s = datetime.datetime.strptime(%s, %q)
    except ValueError:
        %s.add(%s, "Expected to strptime {}, but got: {}".format(%q, %s))`,
		valueExpr, errsExpr, refExpr, valueExpr, targetExpr, valueExpr, format,
		errsExpr, refExpr, format, valueExpr)
}

func emitTimeZone(targetExpr, valueExpr, refExpr, errsExpr string) string {
	if timezoneAs == "pytz.timezone" {
		return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
else:
    try:
        %s = pytz.timezone(%s)
    except pytz.exceptions.UnknownTimeZoneError:
        %s.add(%s, "Expected a valid IANA time zone, but got: {}".format(%s))`,
			valueExpr, errsExpr, refExpr, valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr)
	}

	return emitString(targetExpr, valueExpr, refExpr, errsExpr)
}

func emitDuration(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
else:
    try:
        %s = _duration_from_string(%s)
    except (ValueError, OverflowError) as err:
        %s.add(%s, str(err))`,
		valueExpr, errsExpr, refExpr, valueExpr, targetExpr, valueExpr, errsExpr, refExpr)
}

func emitArray(targetExpr, valueExpr, refExpr, errsExpr string, arr *mapry.Array, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	itemVar := "item" + uid
	idxVar := "i" + uid
	parsedVar := "parsed_item" + uid
	listVar := "parsed_list" + uid

	itemParse, err := emitParse(parsedVar, itemVar,
		fmt.Sprintf(`"{}/{}".format(%s, %s)`, refExpr, idxVar), errsExpr, arr.Values, ctx, u)
	if err != nil {
		return "", err
	}

	sizeChecks := ""

	if arr.MinimumSize != nil {
		sizeChecks += fmt.Sprintf(`    if len(%s) < %d:
        %s.add(%s, "Expected at least %d item(s), but got: {}".format(len(%s)))
`, valueExpr, *arr.MinimumSize, errsExpr, refExpr, *arr.MinimumSize, valueExpr)
	}

	if arr.MaximumSize != nil {
		sizeChecks += fmt.Sprintf(`    if len(%s) > %d:
        %s.add(%s, "Expected at most %d item(s), but got: {}".format(len(%s)))
`, valueExpr, *arr.MaximumSize, errsExpr, refExpr, *arr.MaximumSize, valueExpr)
	}

	return fmt.Sprintf(`if not isinstance(%s, list):
    %s.add(%s, "Expected a list, but got: {}".format(type(%s)))
else:
%s    %s = []
    for %s, %s in enumerate(%s):
        if %s.full():
            break

%s
        %s.append(%s)
    %s = %s`, valueExpr, errsExpr, refExpr, valueExpr, sizeChecks, listVar, idxVar, itemVar, valueExpr,
		errsExpr, indentBlock(itemParse, 2), listVar, parsedVar, targetExpr, listVar), nil
}

func emitMap(targetExpr, valueExpr, refExpr, errsExpr string, m *mapry.Map, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	keyVar := "key" + uid
	valVar := "val" + uid
	parsedVar := "parsed_val" + uid
	mapVar := "parsed_map" + uid

	valParse, err := emitParse(parsedVar, valVar,
		fmt.Sprintf(`"{}/{}".format(%s, %s)`, refExpr, keyVar), errsExpr, m.Values, ctx, u)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if not isinstance(%s, dict):
    %s.add(%s, "Expected an object, but got: {}".format(type(%s)))
else:
    %s = collections.OrderedDict()
    for %s, %s in %s.items():
        if %s.full():
            break

%s
        %s[%s] = %s
    %s = %s`, valueExpr, errsExpr, refExpr, valueExpr, mapVar, keyVar, valVar, valueExpr,
		errsExpr, indentBlock(valParse, 2), mapVar, keyVar, parsedVar, targetExpr, mapVar), nil
}

func emitClassRef(targetExpr, valueExpr, refExpr, errsExpr string, ref *mapry.ClassRef, ctx *ParseContext) (string, error) {
	className, err := AsComposite(ref.Class.Name)
	if err != nil {
		return "", err
	}

	registry, ok := ctx.Registries[ref.Class.Name]
	if !ok {
		return "", fmt.Errorf("pygen: no registry in scope for class %s", ref.Class.Name)
	}

	return fmt.Sprintf(`if not isinstance(%s, str):
    %s.add(%s, "Expected a string, but got: {}".format(type(%s)))
elif %s not in %s:
    %s.add(%s, "Reference to an instance of class %s not found: {}".format(%s))
else:
    %s = %s[%s]`, valueExpr, errsExpr, refExpr, valueExpr, valueExpr, registry,
		errsExpr, refExpr, className, valueExpr, targetExpr, registry, valueExpr), nil
}

func emitEmbedRef(targetExpr, valueExpr, refExpr, errsExpr string, ref *mapry.EmbedRef, ctx *ParseContext) (string, error) {
	name, err := AsComposite(ref.Embed.Name)
	if err != nil {
		return "", err
	}

	registries, err := registryArgList(mapry.TransitiveClassRefs(ref.Embed), ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if not isinstance(%s, dict):
    %s.add(%s, "Expected an object, but got: {}".format(type(%s)))
else:
    parsed, parse_errs = parse_%s(%s, %s%s)
    if not parse_errs.empty():
        for parse_err in parse_errs.values():
            %s.add(parse_err.ref, parse_err.message)
    else:
        %s = parsed`, valueExpr, errsExpr, refExpr, valueExpr, AsAttribute(name), valueExpr, refExpr, registries, errsExpr, targetExpr), nil
}

func registryArgList(classes []*mapry.Class, ctx *ParseContext) (string, error) {
	var out string

	for _, cls := range classes {
		registry, ok := ctx.Registries[cls.Name]
		if !ok {
			return "", fmt.Errorf("pygen: no registry in scope for class %s", cls.Name)
		}

		out += ", " + registry
	}

	return out, nil
}
