package pygen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/pygen"
)

// buildTestGraph mirrors gogen_test.go's fixture: a self-referential Node
// class and a Label embed, exercising ClassRef/EmbedRef rendering.
func buildTestGraph(t *testing.T) *mapry.Graph {
	t.Helper()

	label := &mapry.Embed{Name: "Label", Description: "A label.", Properties: mapry.NewPropertyMap(), Ref: "#/embeds/0"}
	label.Properties.Set("text", &mapry.Property{Name: "text", JSON: "text", Type: &mapry.String{}, Composite: label})

	node := &mapry.Class{
		Name: "Node", Plural: "Nodes", Description: "A graph node.",
		Properties: mapry.NewPropertyMap(), Ref: "#/classes/0",
	}
	node.Properties.Set("next", &mapry.Property{
		Name: "next", JSON: "next", Optional: true, Composite: node,
		Type: &mapry.ClassRef{Name: "Node", Class: node},
	})
	node.Properties.Set("tag", &mapry.Property{
		Name: "tag", JSON: "tag", Composite: node,
		Type: &mapry.EmbedRef{Name: "Label", Embed: label},
	})

	graph := &mapry.Graph{
		Name: "Graphy", Description: "A tiny graph.",
		Properties: mapry.NewPropertyMap(),
		Classes:    mapry.NewClassMap(),
		Embeds:     mapry.NewEmbedMap(),
	}
	graph.Classes.Set("Node", node)
	graph.Embeds.Set("Label", label)
	graph.Properties.Set("roots", &mapry.Property{
		Name: "roots", JSON: "roots", Composite: graph,
		Type: &mapry.Array{Values: &mapry.ClassRef{Name: "Node", Class: node}},
	})

	return graph
}

func TestAsAttribute(t *testing.T) {
	assert.Equal(t, "somenode", pygen.AsAttribute("SomeNode"))
	assert.Equal(t, "weight", pygen.AsAttribute("weight"))
}

func TestAsComposite(t *testing.T) {
	name, err := pygen.AsComposite("Node")
	require.NoError(t, err)
	assert.Equal(t, "Node", name)
}

func TestTypeRepr(t *testing.T) {
	node := &mapry.Class{Name: "Node"}
	label := &mapry.Embed{Name: "Label"}

	tcs := map[string]struct {
		t    mapry.Type
		want string
	}{
		"bool":     {&mapry.Boolean{}, "bool"},
		"int":      {&mapry.Integer{}, "int"},
		"float":    {&mapry.Float{}, "float"},
		"string":   {&mapry.String{}, "str"},
		"path":     {&mapry.Path{}, "str"},
		"date":     {&mapry.Date{}, "datetime.datetime"},
		"datetime": {&mapry.Datetime{}, "datetime.datetime"},
		"timezone": {&mapry.TimeZone{}, "str"},
		"duration": {&mapry.Duration{}, "datetime.timedelta"},
		"array":    {&mapry.Array{Values: &mapry.String{}}, "typing.List[str]"},
		"map":      {&mapry.Map{Values: &mapry.Integer{}}, "typing.MutableMapping[str, int]"},
		"classref": {&mapry.ClassRef{Name: "Node", Class: node}, "'Node'"},
		"embedref": {&mapry.EmbedRef{Name: "Label", Embed: label}, "'Label'"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := pygen.TypeRepr(tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGenerateTypes(t *testing.T) {
	graph := buildTestGraph(t)

	src, err := pygen.GenerateTypes(graph)
	require.NoError(t, err)
	assert.Contains(t, src, "import datetime")
	assert.Contains(t, src, "import typing")
	assert.Contains(t, src, "class Label:")
	assert.Contains(t, src, "class Node:")
	assert.Contains(t, src, "class Graphy:")
	assert.Contains(t, src, "def __init__(self, id: str")
	assert.Contains(t, src, "self.tag = tag")
	assert.Contains(t, src, "roots: typing.List['Node'] = None")
}
