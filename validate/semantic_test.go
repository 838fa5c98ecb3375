package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/validate"
)

func decode(t *testing.T, doc string) any {
	t.Helper()

	var instance any
	require.NoError(t, json.Unmarshal([]byte(doc), &instance))

	return instance
}

func TestSemantic_Valid(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{"name": "Node", "description": "is a node.", "properties": {}}
		],
		"properties": {
			"count": {"description": "counts something.", "type": "integer", "minimum": 0, "maximum": 10}
		}
	}`)

	errs := validate.Semantic(instance, "#")
	assert.Empty(t, errs)
}

func TestSemantic_DuplicateName(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{"name": "Graph", "description": "collides.", "properties": {}}
		]
	}`)

	errs := validate.Semantic(instance, "#")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "duplicate name")
}

func TestSemantic_BadBounds(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"properties": {
			"count": {"description": "counts something.", "type": "integer", "minimum": 10, "maximum": 0}
		}
	}`)

	errs := validate.Semantic(instance, "#")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "minimum")
}

func TestSemantic_ReservedIDProperty(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{"name": "Node", "description": "is a node.", "properties": {"id": {"description": "x", "type": "string"}}}
		]
	}`)

	errs := validate.Semantic(instance, "#")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "reserved property")
}

func TestSemantic_PluralCollision(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{"name": "Node", "description": "is a node.", "properties": {}}
		],
		"properties": {
			"nodes": {"description": "collides with the Node registry.", "type": "string"}
		}
	}`)

	errs := validate.Semantic(instance, "#")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "conflicts with the registry field")
}

func TestSemantic_InvalidFormat(t *testing.T) {
	t.Parallel()

	instance := decode(t, `{
		"name": "Graph",
		"description": "defines a graph.",
		"properties": {
			"born": {"description": "gives a date.", "type": "date", "format": "%H"}
		}
	}`)

	errs := validate.Semantic(instance, "#")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "%H")
}
