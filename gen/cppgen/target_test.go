package cppgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/cppgen"
)

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)

	errs := cppgen.Validate(graph)
	assert.Empty(t, errs)
}

func TestValidate_NamespaceKeyword(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)
	graph.CPP = &mapry.CPPSettings{Namespace: "foo::class"}

	errs := cppgen.Validate(graph)
	assert.NotEmpty(t, errs)
}

func TestValidate_PropertyCollision(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)
	graph.Properties.Set("Roots", &mapry.Property{
		Name: "Roots", JSON: "Roots", Composite: graph, Type: &mapry.Boolean{},
	})

	errs := cppgen.Validate(graph)
	assert.NotEmpty(t, errs)
}
