package gogen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/gogen"
)

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)

	errs := gogen.Validate(graph)
	assert.Empty(t, errs)
}

func TestValidate_PackageKeyword(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)
	graph.Go = &mapry.GoSettings{Package: "type"}

	errs := gogen.Validate(graph)
	assert.NotEmpty(t, errs)
}

func TestValidate_IDCollision(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Properties.Set("Id", &mapry.Property{
			Name: "Id", JSON: "Id", Type: &mapry.String{}, Composite: pair.Value,
		})
	}

	errs := gogen.Validate(graph)
	assert.NotEmpty(t, errs)
}
