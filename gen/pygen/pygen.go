// Package pygen generates Python source from a mapry object-graph
// schema (§4.6): type definitions (one plain class per embed/class/the
// graph itself), the parse-error container, the class preallocation
// pass, and the type-directed parse/serialize dispatch, mirroring what
// gen/gogen does for the Go target.
//
// Grounded on mapry/py/generate/types.py, mapry/py/generate/parse.py,
// mapry/py/generate/fromjsonable.py, mapry/py/generate/tojsonable.py,
// mapry/py/naming.py, and mapry/py/jinja2_env.py.
package pygen

import (
	"fmt"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/gen/tmplenv"
)

// AsAttribute translates a property identifier to a Python attribute name:
// the whole identifier lowercased (mapry/py/naming.py's as_attribute),
// unlike Go's per-word camel-casing.
func AsAttribute(identifier string) string {
	return strings.ToLower(identifier)
}

// AsComposite translates a composite identifier to a Python class name:
// UpperCamelCase, same transform as mapry/py/naming.py's as_composite.
func AsComposite(identifier string) (string, error) {
	return identifier, nil // composite names are already UpperCamelCase per §6.2.
}

// TypeRepr renders the Python type annotation for a mapry value type.
//
// Ported from mapry/py/generate/types.py's _type_repr. Class and embed
// references render as quoted forward-reference string literals (e.g.
// 'Node'), since GenerateTypes emits classes in schema order and a class
// may refer to one defined after it.
func TypeRepr(t mapry.Type) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean:
		return "bool", nil
	case *mapry.Integer:
		return "int", nil
	case *mapry.Float:
		return "float", nil
	case *mapry.String, *mapry.Path:
		return "str", nil
	case *mapry.Date, *mapry.Time, *mapry.Datetime:
		return "datetime.datetime", nil
	case *mapry.TimeZone:
		return "str", nil
	case *mapry.Duration:
		return "datetime.timedelta", nil
	case *mapry.Array:
		values, err := TypeRepr(v.Values)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("typing.List[%s]", values), nil
	case *mapry.Map:
		values, err := TypeRepr(v.Values)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("typing.MutableMapping[str, %s]", values), nil
	case *mapry.ClassRef:
		name, err := AsComposite(v.Class.Name)
		if err != nil {
			return "", err
		}

		return "'" + name + "'", nil
	case *mapry.EmbedRef:
		name, err := AsComposite(v.Embed.Name)
		if err != nil {
			return "", err
		}

		return "'" + name + "'", nil
	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

var typesEnv = tmplenv.New(nil)

type propView struct {
	Attribute string
	TypeRepr  string
}

type classView struct {
	Name       string
	HasID      bool
	Properties []propView
}

const classTpl = `class {{ .Name }}:
{{- if .HasID }}
    def __init__(self, id: str{{ range .Properties }}, {{ .Attribute }}: {{ .TypeRepr }} = None{{ end }}) -> None:
        self.id = id
{{- else }}
    def __init__(self{{ range .Properties }}, {{ .Attribute }}: {{ .TypeRepr }} = None{{ end }}) -> None:
{{- end }}
{{- range .Properties }}
        self.{{ .Attribute }} = {{ .Attribute }}
{{- end }}`

func buildPropViews(props *mapry.PropertyMap) ([]propView, error) {
	var views []propView

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		repr, err := TypeRepr(pair.Value.Type)
		if err != nil {
			return nil, err
		}

		views = append(views, propView{Attribute: AsAttribute(pair.Value.Name), TypeRepr: repr})
	}

	return views, nil
}

func defineComposite(name string, hasID bool, props *mapry.PropertyMap) (string, error) {
	views, err := buildPropViews(props)
	if err != nil {
		return "", err
	}

	return typesEnv.Render(name, classTpl, classView{Name: name, HasID: hasID, Properties: views})
}

// GenerateTypes renders the Python module defining one class per embed,
// one per class (with its id attribute), and one for the graph itself.
func GenerateTypes(graph *mapry.Graph) (string, error) {
	var blocks []string

	blocks = append(blocks, "import datetime", "import typing")

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineComposite(pair.Value.Name, false, pair.Value.Properties)
		if err != nil {
			return "", fmt.Errorf("pygen: defining embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		block, err := defineComposite(pair.Value.Name, true, pair.Value.Properties)
		if err != nil {
			return "", fmt.Errorf("pygen: defining class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	graphBlock, err := defineComposite(graph.Name, false, graph.Properties)
	if err != nil {
		return "", fmt.Errorf("pygen: defining graph: %w", err)
	}

	blocks = append(blocks, graphBlock)

	return strings.Join(blocks, "\n\n\n") + "\n", nil
}
