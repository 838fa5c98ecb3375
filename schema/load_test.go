package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/schema"
)

const exampleDoc = `{
	"name": "SomeGraph",
	"description": "defines an example object graph.",
	"go": {"package": "somegraph"},
	"classes": [
		{
			"name": "Node",
			"description": "represents a node.",
			"properties": {
				"next": {
					"description": "refers to the next node.",
					"type": "Node",
					"optional": true
				},
				"label": {
					"description": "gives the label of the node.",
					"type": "string"
				}
			}
		}
	],
	"properties": {
		"root": {
			"description": "refers to the root node.",
			"type": "Node"
		}
	}
}`

func TestLoad(t *testing.T) {
	t.Parallel()

	graph, err := schema.Load([]byte(exampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "SomeGraph", graph.Name)
	require.NotNil(t, graph.Go)
	assert.Equal(t, "somegraph", graph.Go.Package)

	node, ok := graph.Classes.Get("Node")
	require.True(t, ok)
	assert.Equal(t, "Nodes", node.Plural)

	next, ok := node.Properties.Get("next")
	require.True(t, ok)
	require.True(t, next.Optional)

	ref, ok := next.Type.(*mapry.ClassRef)
	require.True(t, ok)
	assert.Same(t, node, ref.Class)

	root, ok := graph.Properties.Get("root")
	require.True(t, ok)

	rootRef, ok := root.Type.(*mapry.ClassRef)
	require.True(t, ok)
	assert.Same(t, node, rootRef.Class)
}

func TestLoad_UnresolvableType(t *testing.T) {
	t.Parallel()

	_, err := schema.Load([]byte(`{
		"name": "Bad",
		"description": "is a broken graph.",
		"properties": {
			"x": {"description": "is broken.", "type": "DoesNotExist"}
		}
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolvable")
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := schema.Load([]byte(`{not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnparsable)
}
