package gogen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/naming"
)

// registriesForComposite builds a ParseContext binding every class
// transitively referenced by composite to the registry parameter name it
// is passed under in a generated parse function's signature (§4.6.3).
func registriesForComposite(composite mapry.Composite) (*ParseContext, []string, error) {
	classes := mapry.TransitiveClassRefs(composite)

	ctx := &ParseContext{Registries: map[string]string{}}

	var params []string

	for _, cls := range classes {
		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return nil, nil, err
		}

		paramName := "registryOf" + classUC
		ctx.Registries[cls.Name] = paramName
		params = append(params, fmt.Sprintf("%s map[string]*%s", paramName, classUC))
	}

	return ctx, params, nil
}

// EmitEmbedParse renders the generated `parse<Embed>` function: it takes
// the raw decoded object, the reference path of the embed's own position
// (property errors are reported relative to it), plus one registry
// parameter per transitively referenced class (§4.6.3), and returns a
// fully populated *Embed or the errors collected along the way.
func EmitEmbedParse(embed *mapry.Embed) (string, error) {
	nameUC, err := naming.UpperCamel(embed.Name)
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

	params := append([]string{"raw map[string]any", "ref string"}, registryParams...)

	return fmt.Sprintf(`func parse%s(%s) (*%s, *Errors) {
	errs := NewErrors(64)
	result := &%s{}

%s

	if !errs.Empty() {
		return nil, errs
	}
	return result, errs
}`, nameUC, strings.Join(params, ", "), nameUC, nameUC, indentBlock(body, 1)), nil
}

// emitPropertiesParse renders, for every property in props (in
// declaration order, §3.3.2), the lookup of its raw JSON value by key and
// the type-directed parse/error-collection dispatch into
// targetExpr.<PropName>.
func emitPropertiesParse(targetExpr string, props *mapry.PropertyMap, ctx *ParseContext) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		nameUC, err := fieldName(prop.Name)
		if err != nil {
			return "", err
		}

		rawVar := "raw" + nameUC
		refExpr := fmt.Sprintf("fmt.Sprintf(\"%%s/%s\", ref)", prop.JSON)

		parseStmt, err := emitParse(targetExpr+"."+nameUC, rawVar, refExpr, "errs", prop.Type, ctx, &uidGen{})
		if err != nil {
			return "", fmt.Errorf("gogen: parsing property %s: %w", prop.Name, err)
		}

		fmt.Fprintf(&b, "if %s, ok := raw[%q]; ok {\n%s\n} else if !errs.Full() {\n", rawVar, prop.JSON, indentBlock(parseStmt, 1))

		if prop.Optional {
			// rawVar is already used in the "ok" branch above; this is
			// just a silent no-op for the "absent" branch, not a guard
			// against an unused-variable error.
			fmt.Fprintf(&b, "\t_ = %s\n", rawVar)
		} else {
			fmt.Fprintf(&b, "\terrs.Add(%s, \"Expected the property, but it is missing\")\n", refExpr)
		}

		b.WriteString("}\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitClassPropertiesParse renders the generated
// `parse<Class>Properties` function: given an already-preallocated shell
// instance (§4.6.2), it parses every declared property (everything but
// the implicit id, which preallocation already consumed).
func EmitClassPropertiesParse(cls *mapry.Class) (string, error) {
	nameUC, err := naming.UpperCamel(cls.Name)
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

	params := append([]string{fmt.Sprintf("instance *%s", nameUC), "raw map[string]any", "ref string"}, registryParams...)

	return fmt.Sprintf(`func parse%sProperties(%s) *Errors {
	errs := NewErrors(64)

%s

	return errs
}`, nameUC, strings.Join(params, ", "), indentBlock(body, 1)), nil
}

// EmitClassPreallocate renders the generated `preallocate<Class>s`
// function implementing §4.6.2: it reads the class's registry field from
// the raw graph mapping, validates every id against the class's id
// pattern (if any), and returns a map of shell instances (id set, every
// other field zero) ready for the parse phase. The ids are the keys of
// the decoded registry map; no separate duplicate-id check is made.
// Preallocation errors are critical: the caller must not proceed to the
// parse phase if any are reported.
func EmitClassPreallocate(cls *mapry.Class) (string, error) {
	nameUC, err := naming.UpperCamel(cls.Name)
	if err != nil {
		return "", err
	}

	jsonPlural, err := naming.JSONPlural(cls.Plural)
	if err != nil {
		return "", err
	}

	idCheck := ""
	if cls.IDPattern != nil {
		idCheck = fmt.Sprintf(`		if !%s.MatchString(id) {
			errs.Add(fmt.Sprintf("%%s/%s", ref), fmt.Sprintf("Expected ID to match %%s, but got: %%s", %s.String(), id))
			continue
		}
`, patternVar(cls.IDPattern), jsonPlural, patternVar(cls.IDPattern))
	}

	return fmt.Sprintf(`func preallocate%ss(raw map[string]any, ref string) (map[string]*%s, *Errors) {
	errs := NewErrors(64)

	registry := map[string]*%s{}

	rawRegistry, ok := raw[%q].(map[string]any)
	if !ok {
		errs.Add(fmt.Sprintf("%%s/%s", ref), "Expected an object, but it is missing or not an object")
		return registry, errs
	}

	for id, rawInstance := range rawRegistry {
		if errs.Full() {
			break
		}

%s
		if _, ok := rawInstance.(map[string]any); !ok {
			errs.Add(fmt.Sprintf("%%s/%s/%%s", ref, id), "Expected an object, but got something else")
			continue
		}

		registry[id] = &%s{ID: id}
	}

	return registry, errs
}`, nameUC, nameUC, nameUC, jsonPlural, jsonPlural, idCheck, jsonPlural, nameUC), nil
}

// EmitGraphParse renders the top-level `Parse<Graph>` function,
// orchestrating the full load (§4.6.2, §4.6.3): preallocate every class's
// registry first (bailing out on any critical preallocation error).
// parse every instance's properties against the now-complete registries,
// then parse the graph's own properties.
func EmitGraphParse(graph *mapry.Graph) (string, error) {
	nameUC, err := naming.UpperCamel(graph.Name)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "func Parse%s(raw map[string]any) (*%s, *Errors) {\n", nameUC, nameUC)
	b.WriteString("\tallErrs := NewErrors(64)\n\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return "", err
		}

		registryVar := "registryOf" + classUC

		fmt.Fprintf(&b, "\t%s, preallocErrs%s := preallocate%ss(raw, \"#\")\n", registryVar, classUC, classUC)
		fmt.Fprintf(&b, "\tfor _, e := range preallocErrs%s.Values() {\n\t\tallErrs.Add(e.Ref, e.Message)\n\t}\n\n", classUC)
	}

	b.WriteString("\tif !allErrs.Empty() {\n\t\treturn nil, allErrs\n\t}\n\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return "", err
		}

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

		fmt.Fprintf(&b, "\trawRegistryOf%s, _ := raw[%q].(map[string]any)\n", classUC, jsonPlural)
		fmt.Fprintf(&b, "\tfor id, instance := range registryOf%s {\n", classUC)
		fmt.Fprintf(&b, "\t\trawInstance, _ := rawRegistryOf%s[id].(map[string]any)\n", classUC)
		fmt.Fprintf(&b, "\t\tinstanceErrs := parse%sProperties(instance, rawInstance, fmt.Sprintf(\"#/%s/%%s\", id)%s)\n",
			classUC, jsonPlural, regArgs)
		fmt.Fprintf(&b, "\t\tfor _, e := range instanceErrs.Values() {\n\t\t\tallErrs.Add(e.Ref, e.Message)\n\t\t}\n")
		fmt.Fprintf(&b, "\t\tif allErrs.Full() {\n\t\t\tbreak\n\t\t}\n\t}\n\n")
	}

	ctx := &ParseContext{Registries: map[string]string{}}
	for _, cls := range mapry.TransitiveClassRefs(graph) {
		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return "", err
		}

		ctx.Registries[cls.Name] = "registryOf" + classUC
	}

	propsBody, err := emitPropertiesParse("result", graph.Properties, ctx)
	if err != nil {
		return "", err
	}

	b.WriteString("\tresult := &" + nameUC + "{}\n")

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return "", err
		}

		pluralUC, err := naming.UpperCamel(cls.Plural)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "\tresult.%s = registryOf%s\n", pluralUC, classUC)
	}

	b.WriteString("\n\tref := \"#\"\n")
	b.WriteString(indentBlock(propsBody, 1) + "\n\n")

	b.WriteString("\tif !allErrs.Empty() {\n\t\treturn nil, allErrs\n\t}\n")
	b.WriteString("\treturn result, allErrs\n}")

	return b.String(), nil
}

// EmitEmbedSerialize renders the generated `serialize<Embed>` function.
func EmitEmbedSerialize(embed *mapry.Embed) (string, error) {
	nameUC, err := naming.UpperCamel(embed.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", embed.Properties)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`func serialize%s(value *%s) map[string]any {
	out := map[string]any{}
%s
	return out
}`, nameUC, nameUC, indentBlock(body, 1)), nil
}

// EmitClassSerialize renders the generated `serialize<Class>` function,
// also including the instance's id under "id".
func EmitClassSerialize(cls *mapry.Class) (string, error) {
	nameUC, err := naming.UpperCamel(cls.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", cls.Properties)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`func serialize%s(value *%s) map[string]any {
	out := map[string]any{"id": value.ID}
%s
	return out
}`, nameUC, nameUC, indentBlock(body, 1)), nil
}

func emitPropertiesSerialize(valueExpr string, props *mapry.PropertyMap) (string, error) {
	var b strings.Builder

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		nameUC, err := fieldName(prop.Name)
		if err != nil {
			return "", err
		}

		fieldExpr := valueExpr + "." + nameUC

		if prop.Optional && !IsPointerType(prop.Type) {
			serExpr, err := EmitSerialize("*"+fieldExpr, prop.Type)
			if err != nil {
				return "", err
			}

			fmt.Fprintf(&b, "if %s != nil {\n\tout[%q] = %s\n}\n", fieldExpr, prop.JSON, serExpr)

			continue
		}

		serExpr, err := EmitSerialize(fieldExpr, prop.Type)
		if err != nil {
			return "", err
		}

		if prop.Optional {
			fmt.Fprintf(&b, "if %s != nil {\n\tout[%q] = %s\n}\n", fieldExpr, prop.JSON, serExpr)
		} else {
			fmt.Fprintf(&b, "out[%q] = %s\n", prop.JSON, serExpr)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// EmitGraphSerialize renders the top-level `Serialize<Graph>` function.
func EmitGraphSerialize(graph *mapry.Graph) (string, error) {
	nameUC, err := naming.UpperCamel(graph.Name)
	if err != nil {
		return "", err
	}

	body, err := emitPropertiesSerialize("value", graph.Properties)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "func Serialize%s(value *%s) map[string]any {\n\tout := map[string]any{}\n\n", nameUC, nameUC)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		cls := pair.Value

		classUC, err := naming.UpperCamel(cls.Name)
		if err != nil {
			return "", err
		}

		pluralUC, err := naming.UpperCamel(cls.Plural)
		if err != nil {
			return "", err
		}

		jsonPlural, err := naming.JSONPlural(cls.Plural)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "\trawRegistryOf%s := map[string]any{}\n", classUC)
		fmt.Fprintf(&b, "\tfor id, instance := range value.%s {\n", pluralUC)
		fmt.Fprintf(&b, "\t\trawRegistryOf%s[id] = serialize%s(instance)\n\t}\n", classUC, classUC)
		fmt.Fprintf(&b, "\tout[%q] = rawRegistryOf%s\n\n", jsonPlural, classUC)
	}

	b.WriteString(indentBlock(body, 1))
	b.WriteString("\n\n\treturn out\n}")

	return b.String(), nil
}
