package cppgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/cppgen"
)

// buildTestGraph mirrors gen/gogen's fixture: a self-referential Node
// class and a Label embed, exercising ClassRef/EmbedRef rendering plus
// an optional property.
func buildTestGraph(t *testing.T) *mapry.Graph {
	t.Helper()

	label := &mapry.Embed{Name: "Label", Description: "A label.", Properties: mapry.NewPropertyMap(), Ref: "#/embeds/0"}
	label.Properties.Set("text", &mapry.Property{Name: "text", JSON: "text", Type: &mapry.String{}, Composite: label})

	node := &mapry.Class{
		Name: "Node", Plural: "Nodes", Description: "A graph node.",
		Properties: mapry.NewPropertyMap(), Ref: "#/classes/0",
	}
	node.Properties.Set("weight", &mapry.Property{
		Name: "weight", JSON: "weight", Composite: node, Type: &mapry.Integer{},
	})
	node.Properties.Set("next", &mapry.Property{
		Name: "next", JSON: "next", Optional: true, Composite: node,
		Type: &mapry.ClassRef{Name: "Node", Class: node},
	})
	node.Properties.Set("tag", &mapry.Property{
		Name: "tag", JSON: "tag", Optional: true, Composite: node,
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

func TestAsField(t *testing.T) {
	assert.Equal(t, "some_url_property", cppgen.AsField("some_URL_property"))
}

func TestAsComposite(t *testing.T) {
	name, err := cppgen.AsComposite("Some_URL_class")
	require.NoError(t, err)
	assert.Equal(t, "SomeURLClass", name)
}

func TestTypeRepr(t *testing.T) {
	cfg := cppgen.NewConfig()
	node := &mapry.Class{Name: "Node"}
	label := &mapry.Embed{Name: "Label"}

	tcs := map[string]struct {
		t    mapry.Type
		want string
	}{
		"bool":     {&mapry.Boolean{}, "bool"},
		"int":      {&mapry.Integer{}, "int64_t"},
		"float":    {&mapry.Float{}, "double"},
		"string":   {&mapry.String{}, "std::string"},
		"path":     {&mapry.Path{}, "std::filesystem::path"},
		"datetime": {&mapry.Datetime{}, "std::tm"},
		"timezone": {&mapry.TimeZone{}, "std::string"},
		"duration": {&mapry.Duration{}, "std::chrono::nanoseconds"},
		"array":    {&mapry.Array{Values: &mapry.String{}}, "std::vector<std::string>"},
		"map":      {&mapry.Map{Values: &mapry.Integer{}}, "std::map<std::string, int64_t>"},
		"classref": {&mapry.ClassRef{Name: "Node", Class: node}, "std::shared_ptr<Node>"},
		"embedref": {&mapry.EmbedRef{Name: "Label", Embed: label}, "Label"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := cppgen.TypeRepr(tc.t, cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPropertyTypeRepr_Optional(t *testing.T) {
	cfg := cppgen.NewConfig()

	repr, err := cppgen.PropertyTypeRepr(&mapry.Property{Optional: true, Type: &mapry.Integer{}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "std::optional<int64_t>", repr)
}

func TestGenerateTypes(t *testing.T) {
	graph := buildTestGraph(t)
	cfg := cppgen.NewConfig()
	cfg.Namespace = "mycompany::schema"

	src, err := cppgen.GenerateTypes(graph, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "#pragma once")
	assert.Contains(t, src, "namespace mycompany {")
	assert.Contains(t, src, "namespace schema {")
	assert.Contains(t, src, "struct Graphy;")
	assert.Contains(t, src, "class Node;")
	assert.Contains(t, src, "struct Label;")
	assert.Contains(t, src, "class Node {")
	assert.Contains(t, src, "struct Label {")
	assert.Contains(t, src, "struct Graphy {")
	assert.Contains(t, src, "std::shared_ptr<Node> next")
	assert.Contains(t, src, "std::map<std::string, std::shared_ptr<Node>> nodes;")
	assert.Contains(t, src, "}  // namespace schema")
	assert.Contains(t, src, "}  // namespace mycompany")
}

func TestEmitParse_Boolean(t *testing.T) {
	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitParse("result->flag", "raw_flag", `ref + "/flag"`, "errs",
		&mapry.Boolean{}, cfg, &cppgen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "raw_flag.isBool()")
	assert.Contains(t, src, "result->flag = raw_flag.asBool();")
}

func TestEmitParse_IntegerBounds(t *testing.T) {
	var minimum int64

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitParse("result->weight", "raw_weight", `ref + "/weight"`, "errs",
		&mapry.Integer{Minimum: &minimum}, cfg, &cppgen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "raw_weight.isIntegral()")
	assert.Contains(t, src, "parsed >= 0")
}

func TestEmitParse_Array(t *testing.T) {
	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitParse("result->items", "raw_items", `ref + "/items"`, "errs",
		&mapry.Array{Values: &mapry.String{}}, cfg, &cppgen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "raw_items.isArray()")
	assert.Contains(t, src, "result->items[i1] = parsed_item1;")
}

func TestEmitParse_Duration(t *testing.T) {
	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitParse("result->ttl", "raw_ttl", `ref + "/ttl"`, "errs",
		&mapry.Duration{}, cfg, &cppgen.ParseContext{})
	require.NoError(t, err)
	assert.Contains(t, src, "duration_from_string(raw_ttl.asString(), &duration_err)")
}

func TestEmitParse_ClassRef(t *testing.T) {
	node := &mapry.Class{Name: "Node"}

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitParse("result->next", "raw_next", `ref + "/next"`, "errs",
		&mapry.ClassRef{Name: "Node", Class: node}, cfg,
		&cppgen.ParseContext{Registries: map[string]string{"Node": "registry_of_node"}})
	require.NoError(t, err)
	assert.Contains(t, src, "registry_of_node.find(id)")
}

func TestEmitSerialize(t *testing.T) {
	node := &mapry.Class{Name: "Node"}
	label := &mapry.Embed{Name: "Label"}

	cfg := cppgen.NewConfig()

	tcs := map[string]struct {
		t    mapry.Type
		want string
	}{
		"bool":     {&mapry.Boolean{}, "out[\"flag\"] = value;"},
		"classref": {&mapry.ClassRef{Name: "Node", Class: node}, "out[\"flag\"] = value->id;"},
		"embedref": {&mapry.EmbedRef{Name: "Label", Embed: label}, "out[\"flag\"] = serialize_label(value);"},
		"duration": {&mapry.Duration{}, "out[\"flag\"] = duration_to_string(value);"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := cppgen.EmitSerialize(`out["flag"]`, "value", tc.t, cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEmitEmbedParse(t *testing.T) {
	graph := buildTestGraph(t)
	label, ok := graph.Embeds.Get("Label")
	require.True(t, ok)

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitEmbedParse(label, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "void label_from(Label* target, const Json::Value& raw, const std::string& ref, parse::Errors* errs)")
	assert.Contains(t, src, `raw.isMember("text")`)
}

func TestEmitClassPropertiesParse(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitClassPropertiesParse(node, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "void node_properties_from(Node* target, const Json::Value& raw, const std::string& ref, "+
		"const std::map<std::string, std::shared_ptr<Node>>& registry_of_node, parse::Errors* errs)")
	assert.Contains(t, src, "label_from(")
}

func TestEmitClassPreallocate(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitClassPreallocate(node, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "void preallocate_node(")
	assert.Contains(t, src, `raw.isMember("nodes")`)
	assert.Contains(t, src, "std::make_shared<Node>()")
}

func TestEmitGraphParse(t *testing.T) {
	graph := buildTestGraph(t)
	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitGraphParse(graph, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "std::unique_ptr<Graphy> parse_graphy(const Json::Value& raw, parse::Errors* errs)")
	assert.Contains(t, src, "preallocate_node(raw, \"#\", &registry_of_node, errs);")
}

func TestEmitEmbedSerialize(t *testing.T) {
	graph := buildTestGraph(t)
	label, ok := graph.Embeds.Get("Label")
	require.True(t, ok)

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitEmbedSerialize(label, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "Json::Value serialize_label(const Label& value)")
	assert.Contains(t, src, `out["text"] = value.text;`)
}

func TestEmitClassSerialize(t *testing.T) {
	graph := buildTestGraph(t)
	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)

	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitClassSerialize(node, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "Json::Value serialize_node(const std::shared_ptr<Node>& value)")
	assert.Contains(t, src, `out["id"] = value->id;`)
}

func TestEmitGraphSerialize(t *testing.T) {
	graph := buildTestGraph(t)
	cfg := cppgen.NewConfig()

	src, err := cppgen.EmitGraphSerialize(graph, cfg)
	require.NoError(t, err)
	assert.Contains(t, src, "Json::Value serialize_graphy(const Graphy& value)")
	assert.Contains(t, src, "serialize_node(kv.second)")
}

func TestGenerate(t *testing.T) {
	graph := buildTestGraph(t)
	cfg := cppgen.NewConfig()

	files, err := cppgen.Generate(graph, cfg)
	require.NoError(t, err)
	assert.Contains(t, files, "graphy_types.h")
	assert.Contains(t, files, "parse.h")
	assert.Contains(t, files, "parse.cpp")
	assert.Contains(t, files, "graphy_jsoncpp.h")
	assert.Contains(t, files, "graphy_jsoncpp.cpp")

	assert.Contains(t, files["graphy_jsoncpp.h"], "std::unique_ptr<Graphy> parse_graphy(const Json::Value& raw, parse::Errors* errs);")
	assert.Contains(t, files["graphy_jsoncpp.cpp"], "std::unique_ptr<Graphy> parse_graphy(const Json::Value& raw, parse::Errors* errs) {")
}
