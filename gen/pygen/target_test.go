package pygen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen/pygen"
)

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)

	errs := pygen.Validate(graph)
	assert.Empty(t, errs)
}

func TestValidate_ModuleKeyword(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)
	graph.Py = &mapry.PySettings{ModuleName: "schemas.import"}

	errs := pygen.Validate(graph)
	assert.NotEmpty(t, errs)
}

func TestValidate_IDCollision(t *testing.T) {
	t.Parallel()

	graph := buildTestGraph(t)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Properties.Set("ID", &mapry.Property{
			Name: "ID", JSON: "ID", Type: &mapry.String{}, Composite: pair.Value,
		})
	}

	errs := pygen.Validate(graph)
	assert.NotEmpty(t, errs)
}
