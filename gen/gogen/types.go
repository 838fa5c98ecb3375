package gogen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/tmplenv"
	"github.com/Parquery/mapry/naming"
)

// warning is repeated at the top and bottom of every generated file, in
// the teacher's convention for marking machine-generated source.
const warning = "// Code generated by mapry. DO NOT EDIT."

var typesEnv = tmplenv.New(nil)

type propView struct {
	NameUC      string
	TypeRepr    string
	Description string
}

type compositeView struct {
	NameUC      string
	Description string
	Properties  []propView
}

type registryView struct {
	PluralUC string
	ClassUC  string
}

type graphView struct {
	compositeView
	Registries []registryView
}

const compositeTpl = `{{- if .Description }}
// {{ .NameUC }} {{ .Description }}
{{- end }}
type {{ .NameUC }} struct {
{{- range .Properties }}
{{- if .Description }}
	// {{ .Description }}
{{- end }}
	{{ .NameUC }} {{ .TypeRepr }}
{{- end }}
}`

const classTpl = `{{- if .Description }}
// {{ .NameUC }} {{ .Description }}
{{- end }}
type {{ .NameUC }} struct {
	// ID identifies the instance within its registry.
	ID string
{{- range .Properties }}
{{- if .Description }}
	// {{ .Description }}
{{- end }}
	{{ .NameUC }} {{ .TypeRepr }}
{{- end }}
}`

const graphTpl = `{{- if .Description }}
// {{ .NameUC }} {{ .Description }}
{{- end }}
type {{ .NameUC }} struct {
{{- range .Registries }}
	// {{ .ClassUC }}s registers instances of {{ .ClassUC }}.
	{{ .PluralUC }} map[string]*{{ .ClassUC }}
{{- end }}
{{- range .Properties }}
{{- if .Description }}
	// {{ .Description }}
{{- end }}
	{{ .NameUC }} {{ .TypeRepr }}
{{- end }}
}`

func buildPropViews(props *mapry.PropertyMap) ([]propView, error) {
	var views []propView

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value

		nameUC, err := fieldName(prop.Name)
		if err != nil {
			return nil, err
		}

		repr, err := PropertyTypeRepr(prop)
		if err != nil {
			return nil, err
		}

		views = append(views, propView{NameUC: nameUC, TypeRepr: repr, Description: prop.Description})
	}

	return views, nil
}

func defineEmbed(embed *mapry.Embed) (string, error) {
	nameUC, err := naming.UpperCamel(embed.Name)
	if err != nil {
		return "", err
	}

	props, err := buildPropViews(embed.Properties)
	if err != nil {
		return "", err
	}

	return typesEnv.Render("embed", compositeTpl, compositeView{
		NameUC: nameUC, Description: embed.Description, Properties: props,
	})
}

func defineClass(cls *mapry.Class) (string, error) {
	nameUC, err := naming.UpperCamel(cls.Name)
	if err != nil {
		return "", err
	}

	props, err := buildPropViews(cls.Properties)
	if err != nil {
		return "", err
	}

	return typesEnv.Render("class", classTpl, compositeView{
		NameUC: nameUC, Description: cls.Description, Properties: props,
	})
}

func defineGraph(graph *mapry.Graph) (string, error) {
	nameUC, err := naming.UpperCamel(graph.Name)
	if err != nil {
		return "", err
	}

	props, err := buildPropViews(graph.Properties)
	if err != nil {
		return "", err
	}

	var registries []registryView

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

		registries = append(registries, registryView{PluralUC: pluralUC, ClassUC: classUC})
	}

	return typesEnv.Render("graph", graphTpl, graphView{
		compositeView: compositeView{NameUC: nameUC, Description: graph.Description, Properties: props},
		Registries:    registries,
	})
}

// GenerateTypes renders the source file defining the Go types of the
// object graph: one struct per embed, one per class (with its implicit
// ID field), and one for the graph itself (holding a registry map per
// class plus the graph's own properties).
//
// Ported from mapry/go/generate/types.py.
func GenerateTypes(graph *mapry.Graph, pkg string) (string, error) {
	var blocks []string

	blocks = append(blocks, fmt.Sprintf("package %s", pkg), warning)

	if imports := Imports(graph); len(imports) > 0 {
		blocks = append(blocks, ImportDeclarations(imports))
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineEmbed(pair.Value)
		if err != nil {
			return "", fmt.Errorf("gogen: defining embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineClass(pair.Value)
		if err != nil {
			return "", fmt.Errorf("gogen: defining class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	graphBlock, err := defineGraph(graph)
	if err != nil {
		return "", fmt.Errorf("gogen: defining graph: %w", err)
	}

	blocks = append(blocks, graphBlock, warning)

	// Go source is always tab-indented regardless of Config.Indention
	// (gofmt would normalize it to tabs anyway); the indention knob only
	// affects targets whose formatter does not enforce a single style.
	return strings.Join(blocks, "\n\n") + "\n", nil
}
