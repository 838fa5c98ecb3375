package cppgen

import (
	"fmt"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
)

// uidGen hands out small monotonic suffixes so nested Array/Map parse
// blocks (which each need their own loop variable and index/key
// bindings) never shadow an enclosing one.
type uidGen struct{ n int }

func (u *uidGen) next() string {
	u.n++
	return fmt.Sprintf("%d", u.n)
}

// ParseContext threads the registries of transitively referenced classes
// (§4.6.3) through nested ClassRef/EmbedRef parses.
type ParseContext struct {
	// Registries maps a class name to the C++ expression (a parameter or
	// a field access) holding a
	// `const std::map<std::string, std::shared_ptr<ClassName>>&`.
	Registries map[string]string
}

// EmitParse renders the C++ statements that parse a JSON value (held in
// the jsoncpp expression valueExpr) at reference path refExpr into
// targetExpr, appending to errsExpr (a `parse::Errors*`) on failure
// (§4.6.1). ctx supplies the composite-to-registry-expression mapping
// ClassRef/EmbedRef need.
//
// Ported from mapry/cpp/generate/jsoncpp_impl.py's per-type parse
// templates.
func EmitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, cfg *Config, ctx *ParseContext) (string, error) {
	return emitParse(targetExpr, valueExpr, refExpr, errsExpr, t, cfg, ctx, &uidGen{})
}

func emitParse(targetExpr, valueExpr, refExpr, errsExpr string, t mapry.Type, cfg *Config, ctx *ParseContext, u *uidGen) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return fmt.Sprintf(`if (%s.isBool()) {
    %s = %s.asBool();
} else {
    %s->add(%s, "Expected a boolean, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr), nil

	case *mapry.String:
		return emitPath(targetExpr, valueExpr, refExpr, errsExpr, &mapry.Path{Pattern: v.Pattern}), nil

	case *mapry.Path:
		return emitPath(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Integer:
		return emitInteger(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Float:
		return emitFloat(targetExpr, valueExpr, refExpr, errsExpr, v), nil

	case *mapry.Date:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format, cfg), nil

	case *mapry.Time:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format, cfg), nil

	case *mapry.Datetime:
		return emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, v.Format, cfg), nil

	case *mapry.TimeZone:
		return emitTimeZone(targetExpr, valueExpr, refExpr, errsExpr, cfg), nil

	case *mapry.Duration:
		return emitDuration(targetExpr, valueExpr, refExpr, errsExpr), nil

	case *mapry.Array:
		return emitArray(targetExpr, valueExpr, refExpr, errsExpr, v, cfg, ctx, u)

	case *mapry.Map:
		return emitMap(targetExpr, valueExpr, refExpr, errsExpr, v, cfg, ctx, u)

	case *mapry.ClassRef:
		return emitClassRef(targetExpr, valueExpr, refExpr, errsExpr, v, ctx)

	case *mapry.EmbedRef:
		return emitEmbedRef(targetExpr, valueExpr, refExpr, errsExpr, v, ctx)

	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

func emitString(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if (%s.isString()) {
    %s = %s.asString();
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr)
}

func emitPath(targetExpr, valueExpr, refExpr, errsExpr string, p *mapry.Path) string {
	if p.Pattern == nil {
		return emitString(targetExpr, valueExpr, refExpr, errsExpr)
	}

	return fmt.Sprintf(`if (%s.isString()) {
    const std::string parsed = %s.asString();
    if (std::regex_match(parsed, %s)) {
        %s = parsed;
    } else {
        %s->add(%s, "Expected to match " + std::string(%q) + ", but got: " + parsed);
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, valueExpr, patternVar(p.Pattern), targetExpr, errsExpr, refExpr, p.Pattern.String(),
		errsExpr, refExpr, valueExpr)
}

// patternVar names the package-level compiled std::regex variable a
// pattern-bearing type's generated code refers to; patternDeclarations
// (generator.go) emits one such var per distinct pattern, keyed the same way as the Go and
// Python targets.
func patternVar(p mapry.Pattern) string {
	return fmt.Sprintf("kPattern%08x", patternHash(p.String()))
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
	body := fmt.Sprintf(`if (%s.isIntegral()) {
    const int64_t parsed = %s.asInt64();
`, valueExpr, valueExpr)

	body += emitIntegerBoundsChecks("parsed", refExpr, errsExpr, integer)
	body += fmt.Sprintf("    %s = parsed;\n", targetExpr)
	body += fmt.Sprintf(`} else if (%s.isDouble()) {
    %s->add(%s, "Expected an integer, but got a fractional number: " + std::to_string(%s.asDouble()));
} else {
    %s->add(%s, "Expected an integer, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, errsExpr, refExpr, valueExpr, errsExpr, refExpr, valueExpr)

	return body
}

func emitIntegerBoundsChecks(varExpr, refExpr, errsExpr string, integer *mapry.Integer) string {
	var out string

	if integer.Minimum != nil {
		op := ">="
		if integer.MinimumExclusive {
			op = ">"
		}

		out += fmt.Sprintf(`    if (!(%s %s %d)) {
        %s->add(%s, "Expected %s %d, but got: " + std::to_string(%s));
    }
`, varExpr, op, *integer.Minimum, errsExpr, refExpr, op, *integer.Minimum, varExpr)
	}

	if integer.Maximum != nil {
		op := "<="
		if integer.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`    if (!(%s %s %d)) {
        %s->add(%s, "Expected %s %d, but got: " + std::to_string(%s));
    }
`, varExpr, op, *integer.Maximum, errsExpr, refExpr, op, *integer.Maximum, varExpr)
	}

	return out
}

func emitFloat(targetExpr, valueExpr, refExpr, errsExpr string, float *mapry.Float) string {
	body := fmt.Sprintf(`if (%s.isNumeric()) {
    const double parsed = %s.asDouble();
`, valueExpr, valueExpr)
	body += emitFloatBoundsChecks("parsed", refExpr, errsExpr, float)
	body += fmt.Sprintf("    %s = parsed;\n", targetExpr)
	body += fmt.Sprintf(`} else {
    %s->add(%s, "Expected a float, but got: " + value_type_to_string(%s.type()));
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

		out += fmt.Sprintf(`    if (!(%s %s %v)) {
        %s->add(%s, "Expected %s %v, but got: " + std::to_string(%s));
    }
`, varExpr, op, *float.Minimum, errsExpr, refExpr, op, *float.Minimum, varExpr)
	}

	if float.Maximum != nil {
		op := "<="
		if float.MaximumExclusive {
			op = "<"
		}

		out += fmt.Sprintf(`    if (!(%s %s %v)) {
        %s->add(%s, "Expected %s %v, but got: " + std::to_string(%s));
    }
`, varExpr, op, *float.Maximum, errsExpr, refExpr, op, *float.Maximum, varExpr)
	}

	return out
}

// emitDateTime renders a ctime-based parse: strptime/strftime natively
// consume the same directive syntax the schema's format string already
// uses (no Go-style layout conversion needed), mirroring std::tm.
//
// The date.h-backed representation (cfg.DatetimeLibrary == "date.h")
// uses date::parse against the same format string against a
// date::sys_seconds target.
func emitDateTime(targetExpr, valueExpr, refExpr, errsExpr, format string, cfg *Config) string {
	if cfg.DatetimeLibrary == "date.h" {
		return fmt.Sprintf(`if (%s.isString()) {
    const std::string parsed_str = %s.asString();
    std::istringstream iss(parsed_str);
    date::sys_seconds parsed;
    iss >> date::parse(%q, parsed);
    if (!iss.fail()) {
        %s = parsed;
    } else {
        %s->add(%s, "Expected to match the format " + std::string(%q) + ", but got: " + parsed_str);
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, valueExpr, format, targetExpr, errsExpr, refExpr, format, errsExpr, refExpr, valueExpr)
	}

	return fmt.Sprintf(`if (%s.isString()) {
    const std::string parsed_str = %s.asString();
    std::tm parsed = {};
    if (strptime(parsed_str.c_str(), %q, &parsed) != nullptr) {
        %s = parsed;
    } else {
        %s->add(%s, "Expected to strptime " + std::string(%q) + ", but got: " + parsed_str);
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, valueExpr, format, targetExpr, errsExpr, refExpr, format, errsExpr, refExpr, valueExpr)
}

func emitTimeZone(targetExpr, valueExpr, refExpr, errsExpr string, cfg *Config) string {
	if cfg.DatetimeLibrary == "date.h" {
		return fmt.Sprintf(`if (%s.isString()) {
    try {
        %s = date::locate_zone(%s.asString());
    } catch (const std::runtime_error&) {
        %s->add(%s, "Expected a valid IANA time zone, but got: " + %s.asString());
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr, errsExpr, refExpr, valueExpr)
	}

	return fmt.Sprintf(`if (%s.isString()) {
    %s = %s.asString();
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, targetExpr, valueExpr, errsExpr, refExpr, valueExpr)
}

func emitDuration(targetExpr, valueExpr, refExpr, errsExpr string) string {
	return fmt.Sprintf(`if (%s.isString()) {
    std::string duration_err;
    const std::chrono::nanoseconds parsed = duration_from_string(%s.asString(), &duration_err);
    if (duration_err.empty()) {
        %s = parsed;
    } else {
        %s->add(%s, duration_err);
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, valueExpr, targetExpr, errsExpr, refExpr, errsExpr, refExpr, valueExpr)
}

func emitArray(targetExpr, valueExpr, refExpr, errsExpr string, arr *mapry.Array, cfg *Config, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	itemVar := "item" + uid
	idxVar := "i" + uid
	parsedVar := "parsed_item" + uid

	itemType, err := TypeRepr(arr.Values, cfg)
	if err != nil {
		return "", err
	}

	itemParse, err := emitParse(parsedVar, itemVar, fmt.Sprintf(`%s + "/" + std::to_string(%s)`, refExpr, idxVar),
		errsExpr, arr.Values, cfg, ctx, u)
	if err != nil {
		return "", err
	}

	sizeChecks := ""

	if arr.MinimumSize != nil {
		sizeChecks += fmt.Sprintf(`    if (%s.size() < %d) {
        %s->add(%s, "Expected at least %d item(s), but got: " + std::to_string(%s.size()));
    }
`, valueExpr, *arr.MinimumSize, errsExpr, refExpr, *arr.MinimumSize, valueExpr)
	}

	if arr.MaximumSize != nil {
		sizeChecks += fmt.Sprintf(`    if (%s.size() > %d) {
        %s->add(%s, "Expected at most %d item(s), but got: " + std::to_string(%s.size()));
    }
`, valueExpr, *arr.MaximumSize, errsExpr, refExpr, *arr.MaximumSize, valueExpr)
	}

	return fmt.Sprintf(`if (%s.isArray()) {
%s    %s.resize(%s.size());
    for (Json::ArrayIndex %s = 0; %s < %s.size(); ++%s) {
        if (%s->full()) {
            break;
        }

        const Json::Value& %s = %s[%s];
        %s %s;
%s
        %s[%s] = %s;
    }
} else {
    %s->add(%s, "Expected a list, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, sizeChecks, targetExpr, valueExpr,
		idxVar, idxVar, valueExpr, idxVar,
		errsExpr,
		itemVar, valueExpr, idxVar,
		itemType, parsedVar,
		indentBlock(itemParse, 2),
		targetExpr, idxVar, parsedVar,
		errsExpr, refExpr, valueExpr), nil
}

func emitMap(targetExpr, valueExpr, refExpr, errsExpr string, m *mapry.Map, cfg *Config, ctx *ParseContext, u *uidGen) (string, error) {
	uid := u.next()
	keyVar := "key" + uid
	valVar := "val" + uid
	parsedVar := "parsed_val" + uid

	valType, err := TypeRepr(m.Values, cfg)
	if err != nil {
		return "", err
	}

	valParse, err := emitParse(parsedVar, valVar, fmt.Sprintf(`%s + "/" + %s`, refExpr, keyVar),
		errsExpr, m.Values, cfg, ctx, u)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`if (%s.isObject()) {
    for (Json::ValueConstIterator it%s = %s.begin(); it%s != %s.end(); ++it%s) {
        if (%s->full()) {
            break;
        }

        const std::string %s = it%s.key().asString();
        const Json::Value& %s = *it%s;
        %s %s;
%s
        %s[%s] = %s;
    }
} else {
    %s->add(%s, "Expected an object, but got: " + value_type_to_string(%s.type()));
}`, valueExpr,
		uid, valueExpr, uid, valueExpr, uid,
		errsExpr,
		keyVar, uid,
		valVar, uid,
		valType, parsedVar,
		indentBlock(valParse, 2),
		targetExpr, keyVar, parsedVar,
		errsExpr, refExpr, valueExpr), nil
}

func emitClassRef(targetExpr, valueExpr, refExpr, errsExpr string, ref *mapry.ClassRef, ctx *ParseContext) (string, error) {
	className, err := AsComposite(ref.Class.Name)
	if err != nil {
		return "", err
	}

	registry, ok := ctx.Registries[ref.Class.Name]
	if !ok {
		return "", fmt.Errorf("cppgen: no registry in scope for class %s", ref.Class.Name)
	}

	return fmt.Sprintf(`if (%s.isString()) {
    const std::string id = %s.asString();
    auto found = %s.find(id);
    if (found == %s.end()) {
        %s->add(%s, "Reference to an instance of class %s not found: " + id);
    } else {
        %s = found->second;
    }
} else {
    %s->add(%s, "Expected a string, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, valueExpr, registry, registry, errsExpr, refExpr, className, targetExpr,
		errsExpr, refExpr, valueExpr), nil
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

	return fmt.Sprintf(`if (%s.isObject()) {
    parse::Errors embed_errs(64);
    %s_from(&(%s), %s, %s%s, &embed_errs);
    if (!embed_errs.empty()) {
        for (const auto& embed_err : embed_errs.get()) {
            %s->add(embed_err.ref, embed_err.message);
        }
    }
} else {
    %s->add(%s, "Expected an object, but got: " + value_type_to_string(%s.type()));
}`, valueExpr, AsField(name), targetExpr, valueExpr, refExpr, registries,
		errsExpr, errsExpr, refExpr, valueExpr), nil
}

func registryArgList(classes []*mapry.Class, ctx *ParseContext) (string, error) {
	var out string

	for _, cls := range classes {
		registry, ok := ctx.Registries[cls.Name]
		if !ok {
			return "", fmt.Errorf("cppgen: no registry in scope for class %s", cls.Name)
		}

		out += ", " + registry
	}

	return out, nil
}
