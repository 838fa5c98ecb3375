package cppgen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/naming"
)

// registriesForComposite builds a ParseContext binding every class
// transitively referenced by composite to the registry parameter it is
// passed under in a generated parse function's signature (§4.6.3).
func registriesForComposite(composite mapry.Composite, cfg *Config) (*ParseContext, []string, error) {
	classes := mapry.TransitiveClassRefs(composite)

	ctx := &ParseContext{Registries: map[string]string{}}

	var params []string

	for _, cls := range classes {
		name, err := AsComposite(cls.Name)
		if err != nil {
			return nil, nil, err
		}

		paramName := "registry_of_" + AsField(name)
		ctx.Registries[cls.Name] = paramName
		params = append(params, fmt.Sprintf(
			"const std::map<std::string, std::shared_ptr<%s>>& %s", name, paramName))
	}

	return ctx, params, nil
}

// EmitEmbedParse renders the generated `<embed>_from` function: given an
// already-constructed target, it parses every declared property into it,
// reporting failures on errs (§4.6.1, §4.6.3).
//
// Ported from mapry/cpp/generate/jsoncpp_impl.py's _parse_composite,
// adapted from a single combined pass into the embed half of the same
// preallocate/parse split the Go and Python targets use for classes, for
// a uniform signature across composites.
func EmitEmbedParse(embed *mapry.Embed, cfg *Config) (string, error) {
	name, err := AsComposite(embed.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	ctx, registryParams, err := registriesForComposite(embed, cfg)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesParse("target", embed.Properties, cfg, ctx)
	if err != nil {
		return "", err
	}

	params := append([]string{fmt.Sprintf("%s* target", name), "const Json::Value& raw", "const std::string& ref"},
		registryParams...)
	params = append(params, "parse::Errors* errs")

	return fmt.Sprintf(`void %s_from(%s) {
%s
}`, field, strings.Join(params, ", "), indentBlock(body, 1)), nil
}

// emitPropertiesParse renders, for every property in props (in
// declaration order, §3.3.2), the lookup of its raw JSON value by key and
// the type-directed parse/error-collection dispatch into
// targetExpr-><PropName>.
func emitPropertiesParse(targetExpr string, props *mapry.PropertyMap, cfg *Config, ctx *ParseContext) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		field := AsField(prop.Name)
		rawVar := "raw_" + field
		refExpr := fmt.Sprintf(`ref + "/%s"`, prop.JSON)

		parseStmt, err := emitParse(targetExpr+"->"+field, rawVar, refExpr, "errs", prop.Type, cfg, ctx, &uidGen{})
		if err != nil {
			return "", fmt.Errorf("cppgen: parsing property %s: %w", prop.Name, err)
		}

		fmt.Fprintf(&b, "if (raw.isMember(%q)) {\n    const Json::Value& %s = raw[%q];\n%s\n} else if (!errs->full()) {\n",
			prop.JSON, rawVar, prop.JSON, indentBlock(parseStmt, 1))

		if prop.Optional {
			fmt.Fprintf(&b, "    // absent is fine: %s keeps its default value.\n", field)
		} else {
			fmt.Fprintf(&b, "    errs->add(%s, \"Expected the property, but it is missing\");\n", refExpr)
		}

		b.WriteString("}\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitClassPropertiesParse renders the generated
// `<class>_properties_from` function: given an already-preallocated
// shell instance (§4.6.2), it parses every declared property
// (everything but the implicit id, which preallocation already
// consumed).
func EmitClassPropertiesParse(cls *mapry.Class, cfg *Config) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	ctx, registryParams, err := registriesForComposite(cls, cfg)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesParse("target", cls.Properties, cfg, ctx)
	if err != nil {
		return "", err
	}

	params := append([]string{fmt.Sprintf("%s* target", name), "const Json::Value& raw", "const std::string& ref"},
		registryParams...)
	params = append(params, "parse::Errors* errs")

	return fmt.Sprintf(`void %s_properties_from(%s) {
%s
}`, field, strings.Join(params, ", "), indentBlock(body, 1)), nil
}

// EmitClassPreallocate renders the generated `preallocate_<class>`
// function implementing §4.6.2: it reads the class's registry field from
// the raw graph mapping, validates every id against the class's id
// pattern (if any), filling registry with shell instances (id set,
// nothing else) ready for the parse phase. The ids are the keys of the
// registry object; no separate duplicate-id check is made.
// Preallocation errors are critical: the caller must not proceed to the
// parse phase if any are reported.
func EmitClassPreallocate(cls *mapry.Class, cfg *Config) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	jsonPlural, err := naming.JSONPlural(cls.Plural)
	if err != nil {
		return "", err
	}

	idCheck := ""
	if cls.IDPattern != nil {
		idCheck = fmt.Sprintf(`        if (!std::regex_match(id, %s)) {
            errs->add(ref + "/%s/" + id, "Expected ID to match " + std::string(%q) + ", but got: " + id);
            continue;
        }

`, patternVar(cls.IDPattern), jsonPlural, cls.IDPattern.String())
	}

	return fmt.Sprintf(`void preallocate_%s(
        const Json::Value& raw, const std::string& ref,
        std::map<std::string, std::shared_ptr<%s>>* registry, parse::Errors* errs) {
    if (!raw.isMember(%q) || !raw[%q].isObject()) {
        errs->add(ref + "/%s", "Expected an object, but it is missing or not an object");
        return;
    }

    const Json::Value& raw_registry = raw[%q];

    for (Json::ValueConstIterator it = raw_registry.begin(); it != raw_registry.end(); ++it) {
        if (errs->full()) {
            break;
        }

        const std::string id = it.key().asString();

%s        if (!it->isObject()) {
            errs->add(ref + "/%s/" + id, "Expected an object, but got something else");
            continue;
        }

        auto instance = std::make_shared<%s>();
        instance->id = id;
        (*registry)[id] = instance;
    }
}`, field, name, jsonPlural, jsonPlural, jsonPlural, jsonPlural, idCheck, jsonPlural, name), nil
}

// EmitGraphParse renders the top-level `parse_<graph>` function,
// orchestrating the full load (§4.6.2, §4.6.3): preallocate every
// class's registry first (bailing out on any critical preallocation
// error), parse every instance's properties against the now-complete
// registries, then parse the graph's own properties.
func EmitGraphParse(graph *mapry.Graph, cfg *Config) (string, error) {
	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	var b strings.Builder

	fmt.Fprintf(&b, "std::unique_ptr<%s> parse_%s(const Json::Value& raw, parse::Errors* errs) {\n", name, field)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		className, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		classField := AsField(className)

		fmt.Fprintf(&b, "    std::map<std::string, std::shared_ptr<%s>> registry_of_%s;\n", className, classField)
		fmt.Fprintf(&b, "    preallocate_%s(raw, \"#\", &registry_of_%s, errs);\n\n", classField, classField)
	}

	b.WriteString("    if (!errs->empty()) {\n        return nullptr;\n    }\n\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		className, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		classField := AsField(className)

		jsonPlural, err := naming.JSONPlural(cls.Plural)
		if err != nil {
			return "", err
		}

		ctx, _, err := registriesForComposite(cls, cfg)
		if err != nil {
			return "", err
		}

		var regArgs string

		for _, refCls := range mapry.TransitiveClassRefs(cls) {
			regArgs += ", " + ctx.Registries[refCls.Name]
		}

		fmt.Fprintf(&b, "    const Json::Value& raw_registry_of_%s = raw[%q];\n", classField, jsonPlural)
		fmt.Fprintf(&b, "    for (auto& kv : registry_of_%s) {\n", classField)
		fmt.Fprintf(&b, "        const std::string instance_ref = \"#/%s/\" + kv.first;\n", jsonPlural)
		fmt.Fprintf(&b, "        %s_properties_from(kv.second.get(), raw_registry_of_%s[kv.first], instance_ref%s, errs);\n",
			classField, classField, regArgs)
		b.WriteString("        if (errs->full()) {\n            break;\n        }\n    }\n\n")
	}

	ctx := &ParseContext{Registries: map[string]string{}}
	for _, cls := range mapry.TransitiveClassRefs(graph) {
		className, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		ctx.Registries[cls.Name] = "registry_of_" + AsField(className)
	}

	propsBody, err := emitPropertiesParse("result", graph.Properties, cfg, ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "    auto result = std::make_unique<%s>();\n\n", name)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		className, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		pluralField := AsField(cls.Plural)

		fmt.Fprintf(&b, "    result->%s = registry_of_%s;\n", pluralField, AsField(className))
	}

	b.WriteString("\n    const std::string ref = \"#\";\n")
	b.WriteString(indentBlock(propsBody, 1) + "\n\n")

	b.WriteString("    if (!errs->empty()) {\n        return nullptr;\n    }\n\n")
	b.WriteString("    return result;\n}")

	return b.String(), nil
}

// EmitEmbedSerialize renders the generated `serialize_<embed>` function.
func EmitEmbedSerialize(embed *mapry.Embed, cfg *Config) (string, error) {
	name, err := AsComposite(embed.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	body, err := emitPropertiesSerialize("value", embed.Properties, cfg)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Json::Value serialize_%s(const %s& value) {
    Json::Value out(Json::objectValue);

%s

    return out;
}`, field, name, indentBlock(body, 1)), nil
}

// EmitClassSerialize renders the generated `serialize_<class>` function,
// also including the instance's id under "id".
func EmitClassSerialize(cls *mapry.Class, cfg *Config) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	body, err := emitPropertiesSerialize("value", cls.Properties, cfg)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Json::Value serialize_%s(const std::shared_ptr<%s>& value) {
    Json::Value out(Json::objectValue);
    out["id"] = value->id;

%s

    return out;
}`, field, name, indentBlock(body, 1)), nil
}

func emitPropertiesSerialize(valueExpr string, props *mapry.PropertyMap, cfg *Config) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		field := AsField(prop.Name)
		fieldExpr := valueExpr + "." + field

		if prop.Optional {
			_, isClassRef := prop.Type.(*mapry.ClassRef)

			guardExpr := fieldExpr + ".has_value()"
			derefExpr := "*" + fieldExpr

			if isClassRef {
				// a null std::shared_ptr doubles as its own absence check.
				guardExpr = fieldExpr
				derefExpr = fieldExpr
			}

			serExpr, err := emitSerialize(fmt.Sprintf("out[%q]", prop.JSON), derefExpr, prop.Type, cfg, &uidGen{})
			if err != nil {
				return "", err
			}

			fmt.Fprintf(&b, "if (%s) {\n%s\n}\n", guardExpr, indentBlock(serExpr, 1))

			continue
		}

		serExpr, err := emitSerialize(fmt.Sprintf("out[%q]", prop.JSON), fieldExpr, prop.Type, cfg, &uidGen{})
		if err != nil {
			return "", err
		}

		b.WriteString(serExpr + "\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitGraphSerialize renders the top-level `serialize_<graph>` function.
func EmitGraphSerialize(graph *mapry.Graph, cfg *Config) (string, error) {
	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	field := AsField(name)

	body, err := emitPropertiesSerialize("value", graph.Properties, cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Json::Value serialize_%s(const %s& value) {\n    Json::Value out(Json::objectValue);\n\n", field, name)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		className, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		classField := AsField(className)
		pluralField := AsField(cls.Plural)

		jsonPlural, err := naming.JSONPlural(cls.Plural)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "    Json::Value raw_registry_of_%s(Json::objectValue);\n", classField)
		fmt.Fprintf(&b, "    for (const auto& kv : value.%s) {\n", pluralField)
		fmt.Fprintf(&b, "        raw_registry_of_%s[kv.first] = serialize_%s(kv.second);\n    }\n", classField, classField)
		fmt.Fprintf(&b, "    out[%q] = raw_registry_of_%s;\n\n", jsonPlural, classField)
	}

	b.WriteString(indentBlock(body, 1))
	b.WriteString("\n\n    return out;\n}")

	return b.String(), nil
}
