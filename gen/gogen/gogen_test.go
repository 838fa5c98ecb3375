package gogen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/gogen"
)

// buildTestGraph constructs a small graph with a self-referential Node
// class and a Label embed, exercising ClassRef, EmbedRef, Array, and
// bounded-Integer dispatch in one shape.
func buildTestGraph(t *testing.T) *mapry.Graph {
	t.Helper()

	label := &mapry.Embed{Name: "Label", Description: "A label.", Properties: mapry.NewPropertyMap(), Ref: "#/embeds/0"}
	label.Properties.Set("text", &mapry.Property{Name: "text", JSON: "text", Type: &mapry.String{}, Composite: label})

	node := &mapry.Class{
		Name: "Node", Plural: "Nodes", Description: "A graph node.",
		Properties: mapry.NewPropertyMap(), Ref: "#/classes/0",
	}

	var minimum int64 = 0

	node.Properties.Set("weight", &mapry.Property{
		Name: "weight", JSON: "weight", Composite: node,
		Type: &mapry.Integer{Minimum: &minimum},
	})
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
		Go:         &mapry.GoSettings{Package: "graphy"},
	}
	graph.Classes.Set("Node", node)
	graph.Embeds.Set("Label", label)
	graph.Properties.Set("roots", &mapry.Property{
		Name: "roots", JSON: "roots", Composite: graph,
		Type: &mapry.Array{Values: &mapry.ClassRef{Name: "Node", Class: node}},
	})

	return graph
}

func TestGenerateTypes(t *testing.T) {
	graph := buildTestGraph(t)

	src, err := gogen.GenerateTypes(graph, "graphy")
	require.NoError(t, err)
	assert.Contains(t, src, "package graphy")
	assert.Contains(t, src, "type Node struct")
	assert.Contains(t, src, "type Label struct")
	assert.Contains(t, src, "type Graphy struct")
	assert.Contains(t, src, "Nodes map[string]*Node")
}

func TestTypeRepr(t *testing.T) {
	tcs := map[string]struct {
		t    mapry.Type
		want string
	}{
		"bool":     {&mapry.Boolean{}, "bool"},
		"int":      {&mapry.Integer{}, "int64"},
		"float":    {&mapry.Float{}, "float64"},
		"string":   {&mapry.String{}, "string"},
		"datetime": {&mapry.Datetime{}, "time.Time"},
		"timezone": {&mapry.TimeZone{}, "*time.Location"},
		"duration": {&mapry.Duration{}, "time.Duration"},
		"array":    {&mapry.Array{Values: &mapry.String{}}, "[]string"},
		"map":      {&mapry.Map{Values: &mapry.Integer{}}, "map[string]int64"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := gogen.TypeRepr(tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsPointerType(t *testing.T) {
	assert.True(t, gogen.IsPointerType(&mapry.Array{Values: &mapry.String{}}))
	assert.True(t, gogen.IsPointerType(&mapry.TimeZone{}))
	assert.False(t, gogen.IsPointerType(&mapry.Integer{}))
}

func TestConvertFormat(t *testing.T) {
	layout, err := gogen.ConvertFormat("%Y-%m-%d")
	require.NoError(t, err)
	assert.Equal(t, "2006-01-02", layout)

	layout, err = gogen.ConvertFormat("%A, %d %B %Y")
	require.NoError(t, err)
	assert.Equal(t, "Monday, 02 January 2006", layout)
}

func TestEmitParse_Boolean(t *testing.T) {
	src, err := gogen.EmitParse("result.Flag", "rawFlag", `"#/flag"`, "errs", &mapry.Boolean{}, &gogen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "rawFlag.(bool)")
	assert.Contains(t, src, "result.Flag = parsed")
}

func TestEmitParse_IntegerBounds(t *testing.T) {
	var minimum int64 = 0

	src, err := gogen.EmitParse("result.Weight", "rawWeight", `"#/weight"`, "errs",
		&mapry.Integer{Minimum: &minimum}, &gogen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "rawWeight.(float64)")
	assert.Contains(t, src, "parsed >= 0")
}

func TestEmitParse_Array(t *testing.T) {
	src, err := gogen.EmitParse("result.Items", "rawItems", `"#/items"`, "errs",
		&mapry.Array{Values: &mapry.String{}}, &gogen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "rawItems.([]any)")
	assert.Contains(t, src, "result.Items = parsedList")
}

func TestEmitParse_Duration(t *testing.T) {
	src, err := gogen.EmitParse("result.TTL", "rawTTL", `"#/ttl"`, "errs",
		&mapry.Duration{}, &gogen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "durationFromString(asStr)")
}

func TestEmitParse_ClassRef(t *testing.T) {
	node := &mapry.Class{Name: "Node"}

	src, err := gogen.EmitParse("result.Next", "rawNext", `"#/next"`, "errs",
		&mapry.ClassRef{Name: "Node", Class: node},
		&gogen.ParseContext{Registries: map[string]string{"Node": "registryOfNode"}})
	require.NoError(t, err)
	assert.Contains(t, src, "registryOfNode[asID]")
}

func TestEmitSerialize(t *testing.T) {
	node := &mapry.Class{Name: "Node"}
	label := &mapry.Embed{Name: "Label"}

	tcs := map[string]struct {
		t    mapry.Type
		want string
	}{
		"bool":     {&mapry.Boolean{}, "value"},
		"classref": {&mapry.ClassRef{Name: "Node", Class: node}, "value.ID"},
		"embedref": {&mapry.EmbedRef{Name: "Label", Embed: label}, "serializeLabel(value)"},
		"duration": {&mapry.Duration{}, "durationToString(value)"},
		"array":    {&mapry.Array{Values: &mapry.String{}}, "toAnySlice(value)"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := gogen.EmitSerialize("value", tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEmitSerialize_ArrayOfClassRef(t *testing.T) {
	node := &mapry.Class{Name: "Node"}

	got, err := gogen.EmitSerialize("value", &mapry.Array{Values: &mapry.ClassRef{Name: "Node", Class: node}})
	require.NoError(t, err)
	assert.Contains(t, got, "item.ID")
}

func TestEmitEmbedParse(t *testing.T) {
	graph := buildTestGraph(t)
	label, ok := graph.Embeds.Get("Label")
	require.True(t, ok)

	src, err := gogen.EmitEmbedParse(label)
	require.NoError(t, err)
	assert.Contains(t, src, "func parseLabel(raw map[string]any, ref string)")
	assert.Contains(t, src, `raw["text"]`)
}

func TestEmitClassPropertiesParse(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	src, err := gogen.EmitClassPropertiesParse(node)
	require.NoError(t, err)
	assert.Contains(t, src, "func parseNodeProperties(instance *Node, raw map[string]any, ref string, registryOfNode map[string]*Node)")
	assert.Contains(t, src, "parseLabel(asMap, fmt.Sprintf(\"%s/tag\", ref))")
}

func TestEmitEmbedSerialize(t *testing.T) {
	graph := buildTestGraph(t)
	label, ok := graph.Embeds.Get("Label")
	require.True(t, ok)

	src, err := gogen.EmitEmbedSerialize(label)
	require.NoError(t, err)
	assert.Contains(t, src, "func serializeLabel(value *Label) map[string]any")
	assert.Contains(t, src, `out["text"] = value.Text`)
}

func TestEmitClassSerialize(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	src, err := gogen.EmitClassSerialize(node)
	require.NoError(t, err)
	assert.Contains(t, src, "func serializeNode(value *Node) map[string]any")
	assert.Contains(t, src, `out := map[string]any{"id": value.ID}`)
}

func TestEmitClassPreallocate(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	src, err := gogen.EmitClassPreallocate(node)
	require.NoError(t, err)
	assert.Contains(t, src, "func preallocateNodes(")
	assert.Contains(t, src, `raw["nodes"]`)
}

func TestEmitGraphParse(t *testing.T) {
	graph := buildTestGraph(t)

	src, err := gogen.EmitGraphParse(graph)
	require.NoError(t, err)
	assert.Contains(t, src, "func ParseGraphy(")
	assert.Contains(t, src, "preallocateNodes(")
}

func TestEmitGraphSerialize(t *testing.T) {
	graph := buildTestGraph(t)

	src, err := gogen.EmitGraphSerialize(graph)
	require.NoError(t, err)
	assert.Contains(t, src, "func SerializeGraphy(")
	assert.Contains(t, src, "serializeNode(instance)")
}

func TestGenerate(t *testing.T) {
	graph := buildTestGraph(t)

	files, err := gogen.Generate(graph, gogen.NewConfig())
	require.NoError(t, err)
	assert.Contains(t, files, "types.go")
	assert.Contains(t, files, "fromjsonable.go")
	assert.Contains(t, files, "tojsonable.go")
}

func TestGenerate_NoPackage(t *testing.T) {
	graph := buildTestGraph(t)
	graph.Go = nil

	_, err := gogen.Generate(graph, gogen.NewConfig())
	assert.Error(t, err)
}
