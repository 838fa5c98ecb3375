package pygen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/naming"
)

// registriesForComposite builds a ParseContext binding every class
// transitively referenced by composite to the Python parameter name it
// is passed under in a generated parse function's signature (§4.6.3).
func registriesForComposite(composite mapry.Composite) (*ParseContext, []string, error) {
	classes := mapry.TransitiveClassRefs(composite)

	ctx := &ParseContext{Registries: map[string]string{}}

	var params []string

	for _, cls := range classes {
		name, err := AsComposite(cls.Name)
		if err != nil {
			return nil, nil, err
		}

		paramName := "registry_of_" + AsAttribute(name)
		ctx.Registries[cls.Name] = paramName
		params = append(params, paramName)
	}

	return ctx, params, nil
}

// EmitEmbedParse renders the generated `parse_<embed>` function: it takes
// the raw decoded dict, the reference path of the embed's own position,
// plus one registry parameter per transitively referenced class
// (§4.6.3), and returns a (instance, errors) pair the way the original
// mapry.py.generate.parse functions do.
func EmitEmbedParse(embed *mapry.Embed) (string, error) {
	name, err := AsComposite(embed.Name)
	if err != nil {
		return "", err
	}

	ctx, registryParams, err := registriesForComposite(embed)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesParse("result", embed.Properties, ctx)
	if err != nil {
		return "", err
	}

	params := append([]string{"raw", "ref"}, registryParams...)

	return fmt.Sprintf(`def parse_%s(%s):
    errs = Errors(64)
    result = %s()

%s

    if not errs.empty():
        return None, errs
    return result, errs`, AsAttribute(name), strings.Join(params, ", "), name, indentBlock(body, 1)), nil
}

// emitPropertiesParse renders, for every property in props (in
// declaration order, §3.3.2), the lookup of its raw JSON value by key
// and the type-directed parse/error-collection dispatch into
// targetExpr.<prop_attribute>.
func emitPropertiesParse(targetExpr string, props *mapry.PropertyMap, ctx *ParseContext) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		attr := AsAttribute(prop.Name)
		rawVar := "raw_" + attr
		refExpr := fmt.Sprintf(`"{}/%s".format(ref)`, prop.JSON)

		parseStmt, err := emitParse(targetExpr+"."+attr, rawVar, refExpr, "errs", prop.Type, ctx, &uidGen{})
		if err != nil {
			return "", fmt.Errorf("pygen: parsing property %s: %w", prop.Name, err)
		}

		fmt.Fprintf(&b, "if %q in raw:\n    %s = raw[%q]\n%s\nelif not errs.full():\n", prop.JSON, rawVar, prop.JSON,
			indentBlock(parseStmt, 1))

		if prop.Optional {
			b.WriteString("    pass\n")
		} else {
			fmt.Fprintf(&b, "    errs.add(%s, \"Expected the property, but it is missing\")\n", refExpr)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitClassPropertiesParse renders the generated
// `parse_<class>_properties` function: given an already-preallocated
// shell instance (§4.6.2), it parses every declared property (everything
// but the implicit id, which preallocation already consumed).
func EmitClassPropertiesParse(cls *mapry.Class) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	ctx, registryParams, err := registriesForComposite(cls)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesParse("instance", cls.Properties, ctx)
	if err != nil {
		return "", err
	}

	params := append([]string{"instance", "raw", "ref"}, registryParams...)

	return fmt.Sprintf(`def parse_%s_properties(%s):
    errs = Errors(64)

%s

    return errs`, AsAttribute(name), strings.Join(params, ", "), indentBlock(body, 1)), nil
}

// EmitClassPreallocate renders the generated `preallocate_<class>s`
// function implementing §4.6.2: it reads the class's registry key from
// the raw graph dict, validates every id against the class's id pattern
// (if any) and rejects duplicates implicitly (dict keys are already
// unique), and returns an OrderedDict of shell instances (id set, every
// other attribute None) ready for the parse phase.
func EmitClassPreallocate(cls *mapry.Class) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	jsonPlural, err := naming.JSONPlural(cls.Plural)
	if err != nil {
		return "", err
	}

	idCheck := ""
	if cls.IDPattern != nil {
		idCheck = fmt.Sprintf(`        if not %s.match(an_id):
            errs.add("{}/%s".format(ref), "Expected ID to match {}, but got: {}".format(
                %s.pattern, an_id))
            continue

`, patternVar(cls.IDPattern), jsonPlural, patternVar(cls.IDPattern))
	}

	return fmt.Sprintf(`def preallocate_%ss(raw, ref):
    errs = Errors(64)
    registry = collections.OrderedDict()

    raw_registry = raw.get(%q, None)
    if not isinstance(raw_registry, dict):
        errs.add("{}/%s".format(ref), "Expected an object, but it is missing or not an object")
        return registry, errs

    for an_id, raw_instance in raw_registry.items():
        if errs.full():
            break

%s        if not isinstance(raw_instance, dict):
            errs.add("{}/%s/{}".format(ref, an_id), "Expected an object, but got something else")
            continue

        registry[an_id] = %s(id=an_id)

    return registry, errs`, AsAttribute(name), jsonPlural, jsonPlural, idCheck, jsonPlural, name), nil
}

// EmitGraphParse renders the top-level `parse_<graph>` function,
// orchestrating the full load (§4.6.2, §4.6.3): preallocate every
// class's registry first (bailing out on any critical preallocation
// error), parse every instance's properties against the now-complete
// registries, then parse the graph's own properties.
func EmitGraphParse(graph *mapry.Graph) (string, error) {
	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "def parse_%s(raw):\n", AsAttribute(name))
	b.WriteString("    all_errs = Errors(64)\n\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		clsName, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		attr := AsAttribute(clsName)
		registryVar := "registry_of_" + attr

		fmt.Fprintf(&b, "    %s, prealloc_errs_%s = preallocate_%ss(raw, \"#\")\n", registryVar, attr, attr)
		fmt.Fprintf(&b, "    for an_err in prealloc_errs_%s.values():\n        all_errs.add(an_err.ref, an_err.message)\n\n", attr)
	}

	b.WriteString("    if not all_errs.empty():\n        return None, all_errs\n\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		clsName, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		attr := AsAttribute(clsName)

		jsonPlural, err := naming.JSONPlural(cls.Plural)
		if err != nil {
			return "", err
		}

		ctx, _, err := registriesForComposite(cls)
		if err != nil {
			return "", err
		}

		var regArgs string

		for _, refCls := range mapry.TransitiveClassRefs(cls) {
			regArgs += ", " + ctx.Registries[refCls.Name]
		}

		fmt.Fprintf(&b, "    raw_registry_of_%s = raw.get(%q, {})\n", attr, jsonPlural)
		fmt.Fprintf(&b, "    for an_id, instance in registry_of_%s.items():\n", attr)
		fmt.Fprintf(&b, "        raw_instance = raw_registry_of_%s.get(an_id, {})\n", attr)
		fmt.Fprintf(&b, "        instance_errs = parse_%s_properties(instance, raw_instance, \"#/%s/{}\".format(an_id)%s)\n",
			attr, jsonPlural, regArgs)
		fmt.Fprintf(&b, "        for an_err in instance_errs.values():\n            all_errs.add(an_err.ref, an_err.message)\n")
		fmt.Fprintf(&b, "        if all_errs.full():\n            break\n\n")
	}

	ctx := &ParseContext{Registries: map[string]string{}}
	for _, cls := range mapry.TransitiveClassRefs(graph) {
		clsName, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		ctx.Registries[cls.Name] = "registry_of_" + AsAttribute(clsName)
	}

	propsBody, err := emitPropertiesParse("result", graph.Properties, ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "    result = %s()\n", name)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		clsName, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		pluralName, err := AsComposite(cls.Plural)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "    result.%s = registry_of_%s\n", AsAttribute(pluralName), AsAttribute(clsName))
	}

	b.WriteString("\n    ref = \"#\"\n")
	b.WriteString(indentBlock(propsBody, 1) + "\n\n")

	b.WriteString("    if not all_errs.empty():\n        return None, all_errs\n")
	b.WriteString("    return result, all_errs")

	return b.String(), nil
}

// EmitEmbedSerialize renders the generated `serialize_<embed>` function.
func EmitEmbedSerialize(embed *mapry.Embed) (string, error) {
	name, err := AsComposite(embed.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", embed.Properties)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`def serialize_%s(value):
    out = collections.OrderedDict()
%s
    return out`, AsAttribute(name), indentBlock(body, 1)), nil
}

// EmitClassSerialize renders the generated `serialize_<class>` function,
// also including the instance's id under "id".
func EmitClassSerialize(cls *mapry.Class) (string, error) {
	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", cls.Properties)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`def serialize_%s(value):
    out = collections.OrderedDict()
    out["id"] = value.id
%s
    return out`, AsAttribute(name), indentBlock(body, 1)), nil
}

func emitPropertiesSerialize(valueExpr string, props *mapry.PropertyMap) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		attr := AsAttribute(prop.Name)
		fieldExpr := valueExpr + "." + attr

		serExpr, err := EmitSerialize(fieldExpr, prop.Type)
		if err != nil {
			return "", err
		}

		if prop.Optional {
			fmt.Fprintf(&b, "if %s is not None:\n    out[%q] = %s\n", fieldExpr, prop.JSON, serExpr)
		} else {
			fmt.Fprintf(&b, "out[%q] = %s\n", prop.JSON, serExpr)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitGraphSerialize renders the top-level `serialize_<graph>` function.
func EmitGraphSerialize(graph *mapry.Graph) (string, error) {
	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", graph.Properties)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "def serialize_%s(value):\n    out = collections.OrderedDict()\n\n", AsAttribute(name))

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		clsName, err := AsComposite(cls.Name)
		if err != nil {
			return "", err
		}

		pluralName, err := AsComposite(cls.Plural)
		if err != nil {
			return "", err
		}

		jsonPlural, err := naming.JSONPlural(cls.Plural)
		if err != nil {
			return "", err
		}

		attr := AsAttribute(clsName)

		fmt.Fprintf(&b, "    raw_registry_of_%s = collections.OrderedDict()\n", attr)
		fmt.Fprintf(&b, "    for an_id, instance in value.%s.items():\n", AsAttribute(pluralName))
		fmt.Fprintf(&b, "        raw_registry_of_%s[an_id] = serialize_%s(instance)\n", attr, attr)
		fmt.Fprintf(&b, "    out[%q] = raw_registry_of_%s\n\n", jsonPlural, attr)
	}

	b.WriteString(indentBlock(body, 1))
	b.WriteString("\n\n    return out")

	return b.String(), nil
}
