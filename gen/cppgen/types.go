package cppgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/tmplenv"
)

// warning is repeated at the top and bottom of every generated file, in
// the teacher's convention for marking machine-generated source.
const warning = "// Code generated by mapry. DO NOT EDIT."

var typesEnv = tmplenv.New(nil)

type propView struct {
	TypeRepr    string
	Name        string
	DefaultVal  string
	Description string
}

type compositeView struct {
	Name        string
	Description string
	Properties  []propView
}

type registryView struct {
	PluralField string
	ClassName   string
}

type graphView struct {
	compositeView
	Registries []registryView
}

const propertyTpl = `{{- if .Description }}
// {{ .Description }}
{{- end }}
{{ .TypeRepr }} {{ .Name }}{{ if .DefaultVal }} = {{ .DefaultVal }}{{ end }};`

const embedTpl = `{{- if .Description }}
// {{ .Description }}
{{- end }}
struct {{ .Name }} {
{{- range .Properties }}
{{- if .Description }}
    // {{ .Description }}
{{- end }}
    {{ .TypeRepr }} {{ .Name }}{{ if .DefaultVal }} = {{ .DefaultVal }}{{ end }};
{{- end }}
};`

const classTpl = `{{- if .Description }}
// {{ .Description }}
{{- end }}
class {{ .Name }} {
public:
    // identifies the instance.
    std::string id;
{{- range .Properties }}
{{- if .Description }}
    // {{ .Description }}
{{- end }}
    {{ .TypeRepr }} {{ .Name }}{{ if .DefaultVal }} = {{ .DefaultVal }}{{ end }};
{{- end }}
};`

const graphTpl = `{{- if .Description }}
// {{ .Description }}
{{- end }}
struct {{ .Name }} {
{{- range .Properties }}
{{- if .Description }}
    // {{ .Description }}
{{- end }}
    {{ .TypeRepr }} {{ .Name }}{{ if .DefaultVal }} = {{ .DefaultVal }}{{ end }};
{{- end }}
{{- range .Registries }}
    // registers {{ .ClassName }} instances.
    std::map<std::string, std::shared_ptr<{{ .ClassName }}>> {{ .PluralField }};
{{- end }}
};`

func buildPropViews(props *mapry.PropertyMap, cfg *Config) ([]propView, error) {
	var views []propView

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		repr, err := PropertyTypeRepr(prop, cfg)
		if err != nil {
			return nil, err
		}

		defaultVal := ""
		if !prop.Optional {
			defaultVal = DefaultValue(prop.Type)
		}

		views = append(views, propView{
			TypeRepr: repr, Name: AsField(prop.Name),
			DefaultVal: defaultVal, Description: prop.Description,
		})
	}

	return views, nil
}

func defineEmbed(embed *mapry.Embed, cfg *Config) (string, error) {
	props, err := buildPropViews(embed.Properties, cfg)
	if err != nil {
		return "", err
	}

	name, err := AsComposite(embed.Name)
	if err != nil {
		return "", err
	}

	return typesEnv.Render(name, embedTpl, compositeView{
		Name: name, Description: embed.Description, Properties: props,
	})
}

func defineClass(cls *mapry.Class, cfg *Config) (string, error) {
	props, err := buildPropViews(cls.Properties, cfg)
	if err != nil {
		return "", err
	}

	name, err := AsComposite(cls.Name)
	if err != nil {
		return "", err
	}

	return typesEnv.Render(name, classTpl, compositeView{
		Name: name, Description: cls.Description, Properties: props,
	})
}

func defineGraph(graph *mapry.Graph, cfg *Config) (string, error) {
	props, err := buildPropViews(graph.Properties, cfg)
	if err != nil {
		return "", err
	}

	var registries []registryView

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		name, err := AsComposite(pair.Value.Name)
		if err != nil {
			return "", err
		}

		registries = append(registries, registryView{
			PluralField: AsField(pair.Value.Plural), ClassName: name,
		})
	}

	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	return typesEnv.Render(name, graphTpl, graphView{
		compositeView: compositeView{Name: name, Description: graph.Description, Properties: props},
		Registries:    registries,
	})
}

// forwardDeclarations renders the forward declarations of every
// graph-specific type, in the original's order: the graph, then classes,
// then embeds.
//
// Ported from mapry/cpp/generate/types_header.py's _forward_declarations.
func forwardDeclarations(graph *mapry.Graph) (string, error) {
	var lines []string

	name, err := AsComposite(graph.Name)
	if err != nil {
		return "", err
	}

	lines = append(lines, fmt.Sprintf("struct %s;", name))

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		name, err := AsComposite(pair.Value.Name)
		if err != nil {
			return "", err
		}

		lines = append(lines, fmt.Sprintf("class %s;", name))
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		name, err := AsComposite(pair.Value.Name)
		if err != nil {
			return "", err
		}

		lines = append(lines, fmt.Sprintf("struct %s;", name))
	}

	return strings.Join(lines, "\n"), nil
}

// includes computes the #include block the generated header needs, based
// on which value types the graph uses and cfg's path/optional/datetime
// settings.
//
// Ported from mapry/cpp/generate/types_header.py's _includes.
func includes(graph *mapry.Graph, cfg *Config) string {
	stl := map[string]bool{}
	thirdParty := map[string]bool{}

	if mapry.GraphNeedsType[*mapry.Integer](graph) {
		stl["#include <cstdint>"] = true
	}

	if mapry.GraphNeedsType[*mapry.String](graph) {
		stl["#include <string>"] = true
	}

	if mapry.GraphNeedsType[*mapry.Path](graph) {
		if cfg.PathAs == "boost::filesystem::path" {
			thirdParty["#include <boost/filesystem/path.hpp>"] = true
		} else {
			stl["#include <filesystem>"] = true
		}
	}

	needsDatetime := mapry.GraphNeedsType[*mapry.Date](graph) ||
		mapry.GraphNeedsType[*mapry.Time](graph) ||
		mapry.GraphNeedsType[*mapry.Datetime](graph)

	if cfg.DatetimeLibrary == "date.h" {
		if needsDatetime {
			thirdParty["#include <date/date.h>"] = true
		}

		if mapry.GraphNeedsType[*mapry.TimeZone](graph) {
			thirdParty["#include <date/tz.h>"] = true
		}
	} else {
		if needsDatetime {
			stl["#include <ctime>"] = true
		}

		if mapry.GraphNeedsType[*mapry.TimeZone](graph) {
			stl["#include <string>"] = true
		}
	}

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		stl["#include <chrono>"] = true
	}

	if mapry.GraphNeedsType[*mapry.Array](graph) {
		stl["#include <vector>"] = true
	}

	if mapry.GraphNeedsType[*mapry.Map](graph) || graph.Classes.Len() > 0 {
		stl["#include <map>"] = true
	}

	if graph.Classes.Len() > 0 {
		stl["#include <string>"] = true
		stl["#include <memory>"] = true
	}

	if hasOptionalProperty(graph) {
		switch cfg.OptionalAs {
		case "boost::optional":
			thirdParty["#include <boost/optional.hpp>"] = true
		case "std::experimental::optional":
			thirdParty["#include <optional.hpp>"] = true
		default:
			stl["#include <optional>"] = true
		}
	}

	var blocks []string

	if block := joinSorted(thirdParty); block != "" {
		blocks = append(blocks, block)
	}

	if block := joinSorted(stl); block != "" {
		blocks = append(blocks, block)
	}

	return strings.Join(blocks, "\n\n")
}

func hasOptionalProperty(graph *mapry.Graph) bool {
	for pair := graph.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Optional {
			return true
		}
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		for p := pair.Value.Properties.Oldest(); p != nil; p = p.Next() {
			if p.Value.Optional {
				return true
			}
		}
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		for p := pair.Value.Properties.Oldest(); p != nil; p = p.Next() {
			if p.Value.Optional {
				return true
			}
		}
	}

	return false
}

func joinSorted(set map[string]bool) string {
	lines := make([]string, 0, len(set))
	for line := range set {
		lines = append(lines, line)
	}

	sort.Strings(lines)

	return strings.Join(lines, "\n")
}

// GenerateTypes renders the C++ header defining the types of the object
// graph: forward declarations, then embeds, classes, and the graph
// itself, wrapped in cfg.Namespace if set.
//
// Ported from mapry/cpp/generate/types_header.py's generate.
func GenerateTypes(graph *mapry.Graph, cfg *Config) (string, error) {
	var blocks []string

	blocks = append(blocks, "#pragma once", warning)

	if inc := includes(graph, cfg); inc != "" {
		blocks = append(blocks, inc)
	}

	var namespaceParts []string
	if cfg.Namespace != "" {
		namespaceParts = strings.Split(cfg.Namespace, "::")

		var opening []string
		for _, part := range namespaceParts {
			opening = append(opening, fmt.Sprintf("namespace %s {", part))
		}

		blocks = append(blocks, strings.Join(opening, "\n"))
	}

	forward, err := forwardDeclarations(graph)
	if err != nil {
		return "", err
	}

	blocks = append(blocks, forward)

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineEmbed(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("cppgen: defining embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineClass(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("cppgen: defining class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	graphBlock, err := defineGraph(graph, cfg)
	if err != nil {
		return "", fmt.Errorf("cppgen: defining graph: %w", err)
	}

	blocks = append(blocks, graphBlock)

	if len(namespaceParts) > 0 {
		closing := make([]string, len(namespaceParts))
		for i := range namespaceParts {
			part := namespaceParts[len(namespaceParts)-1-i]
			closing[i] = fmt.Sprintf("}  // namespace %s", part)
		}

		blocks = append(blocks, strings.Join(closing, "\n"))
	}

	blocks = append(blocks, warning)

	return strings.Join(blocks, "\n\n") + "\n", nil
}
