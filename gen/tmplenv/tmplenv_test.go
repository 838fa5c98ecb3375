package tmplenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parquery/mapry/gen/tmplenv"
)

func TestRender_BaseFilters(t *testing.T) {
	env := tmplenv.New(nil)

	got, err := env.Render("t", `{{ ucamelCase .Name }} / {{ camelCase .Name }} / {{ plural .Name }}`,
		struct{ Name string }{"Some_node"})
	require.NoError(t, err)
	assert.Equal(t, "SomeNode / someNode / Some_nodes", got)
}

func TestRender_Extra(t *testing.T) {
	env := tmplenv.New(map[string]any{
		"shout": func(s string) string { return s + "!" },
	})

	got, err := env.Render("t", `{{ shout .Word }}`, struct{ Word string }{"hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}

func TestRender_Override(t *testing.T) {
	env := tmplenv.New(map[string]any{
		"ucamelCase": func(s string) string { return "X" + s },
	})

	got, err := env.Render("t", `{{ ucamelCase .Name }}`, struct{ Name string }{"foo"})
	require.NoError(t, err)
	assert.Equal(t, "Xfoo", got)
}

func TestRender_ParseError(t *testing.T) {
	env := tmplenv.New(nil)

	_, err := env.Render("t", `{{ .Unclosed`, nil)
	assert.Error(t, err)
}
