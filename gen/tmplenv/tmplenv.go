// Package tmplenv is the sandboxed template environment shared by every
// code-generation target (§4.8): a text/template engine carrying only the
// naming, escaping, comment, and predicate filters a target needs, with
// no access to the schema model beyond what is explicitly passed in.
//
// Ported from mapry/go/jinja2_env.py (mirrored by cpp/jinja2_env.py and
// py/jinja2_env.py), adapted from Jinja2 filters to Go template funcs.
package tmplenv

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/naming"
)

// Environment renders named template bodies against the base func map
// common to every target, extended with target-specific filters (string
// escaping, comment syntax, and so on).
type Environment struct {
	funcs template.FuncMap
}

// New builds an Environment whose func map is the common base filters
// plus extra, which may override a base entry (e.g. a target's own
// "escapedStr").
func New(extra template.FuncMap) *Environment {
	funcs := template.FuncMap{
		"camelCase":  naming.LowerCamel,
		"ucamelCase": naming.UpperCamel,
		"jsonPlural": naming.JSONPlural,
		"plural":     naming.Plural,
		"isVariable": gen.IsVariable,
		"reindent": func(level int, indention string, text string) string {
			return gen.Reindent(text, level, indention)
		},
	}

	for name, fn := range extra {
		funcs[name] = fn
	}

	return &Environment{funcs: funcs}
}

// Render parses body as a named text/template (trimming adjacent
// whitespace around "{{-"/"-}}" action delimiters is the caller's
// responsibility, same as stock text/template) and executes it against
// data.
func (e *Environment) Render(name, body string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Parse(body)
	if err != nil {
		return "", fmt.Errorf("tmplenv: parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("tmplenv: executing template %q: %w", name, err)
	}

	return buf.String(), nil
}
