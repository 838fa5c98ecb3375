package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/schema"
	"github.com/Parquery/mapry/validate"
)

const exampleDoc = `{
	"name": "SomeGraph",
	"description": "defines an example object graph.",
	"classes": [
		{"name": "Node", "description": "represents a node.", "properties": {
			"next": {"description": "refers to the next node.", "type": "Node", "optional": true},
			"label": {"description": "gives the label of the node.", "type": "string"}
		}}
	],
	"properties": {
		"root": {"description": "refers to the root node.", "type": "Node"}
	}
}`

// lowercaseRules mimics a target (like C++/Python) that renders every
// identifier by lowercasing it whole, with a small reserved-word set, and
// an explicit "id" member on every class.
func lowercaseRules() validate.Rules {
	normalize := func(s string) (string, error) { return strings.ToLower(s), nil }

	return validate.Rules{
		Target:             "stub",
		NormalizeProperty:  normalize,
		NormalizeComposite: normalize,
		Keywords:           map[string]bool{"class": true, "import": true, "for": true},
		IDField:            "id",
	}
}

func TestTarget_Valid(t *testing.T) {
	t.Parallel()

	graph, err := schema.Load([]byte(exampleDoc))
	require.NoError(t, err)

	errs := validate.Target(graph, lowercaseRules())
	assert.Empty(t, errs)
}

func TestTarget_KeywordCollision(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Graph",
		"description": "defines a graph.",
		"properties": {
			"class": {"description": "collides with a keyword.", "type": "boolean"}
		}
	}`

	graph, err := schema.Load([]byte(doc))
	require.NoError(t, err)

	errs := validate.Target(graph, lowercaseRules())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "reserved keyword")
}

func TestTarget_PluralCollidesWithGraphProperty(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{"name": "Node", "description": "is a node.", "plural": "nodes", "properties": {}}
		],
		"properties": {
			"nodes": {"description": "collides with the Node registry.", "type": "boolean"}
		}
	}`

	graph, err := schema.Load([]byte(doc))
	require.NoError(t, err)

	errs := validate.Target(graph, lowercaseRules())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "collides with graph property")
}

func TestTarget_PropertyCollisionWithinComposite(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{
				"name": "Node",
				"description": "is a node.",
				"properties": {
					"some_URLs": {"description": "first spelling.", "type": "boolean"},
					"some_urls": {"description": "collapses once lowercased.", "type": "boolean"}
				}
			}
		]
	}`

	graph, err := schema.Load([]byte(doc))
	require.NoError(t, err)

	errs := validate.Target(graph, lowercaseRules())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "both normalize to")
}

func TestTarget_IDCollision(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Graph",
		"description": "defines a graph.",
		"classes": [
			{
				"name": "Node",
				"description": "is a node.",
				"properties": {
					"Id": {"description": "shadows the implicit id member.", "type": "string"}
				}
			}
		]
	}`

	graph, err := schema.Load([]byte(doc))
	require.NoError(t, err)

	errs := validate.Target(graph, lowercaseRules())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "implicit id member")
}
