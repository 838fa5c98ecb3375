package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/validate"
)

func TestStructural_Valid(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"properties": {}
	}`)

	errs, err := validate.Structural(instance, "#")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestStructural_MissingRequired(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{"name": "Graph"}`)

	errs, err := validate.Structural(instance, "#")
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestStructural_AdditionalProperty(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"unexpected": 1
	}`)

	errs, err := validate.Structural(instance, "#")
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestTypeDefinition_IntegerBadField(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{"type": "integer", "minimum": "not a number"}`)

	errs, err := validate.TypeDefinition("integer", instance, "#/properties/x")
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}
