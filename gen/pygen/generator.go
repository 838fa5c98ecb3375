package pygen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Parquery/mapry"
)

// Generate renders the complete set of Python source files implementing
// graph's schema (§4.6, §6.4): type definitions, the parse-error
// container, the class preallocation pass, the type-directed
// parse/serialize dispatch for every class/embed/the graph itself, and
// an `__init__.py` re-exporting the public surface the way a generated
// package is meant to be imported.
//
// The result maps a file name (relative to the target package
// directory) to its full source text.
func Generate(graph *mapry.Graph) (map[string]string, error) {
	pathAs = "str"
	timezoneAs = "str"

	if graph.Py != nil {
		if graph.Py.PathAs != "" {
			pathAs = graph.Py.PathAs
		}

		if graph.Py.TimezoneAs != "" {
			timezoneAs = graph.Py.TimezoneAs
		}
	}

	name, err := AsComposite(graph.Name)
	if err != nil {
		return nil, fmt.Errorf("pygen: %w", err)
	}

	module := AsAttribute(name)

	files := map[string]string{}

	typesSrc, err := GenerateTypes(graph)
	if err != nil {
		return nil, fmt.Errorf("pygen: generating %s_types.py: %w", module, err)
	}

	files[module+"_types.py"] = typesSrc

	parseSrc, err := generateParse(graph, module, name)
	if err != nil {
		return nil, fmt.Errorf("pygen: generating %s_parse.py: %w", module, err)
	}

	files[module+"_parse.py"] = parseSrc

	serializeSrc, err := generateSerialize(graph, module)
	if err != nil {
		return nil, fmt.Errorf("pygen: generating %s_tojsonable.py: %w", module, err)
	}

	files[module+"_tojsonable.py"] = serializeSrc

	files["__init__.py"] = generateInit(module, name)

	return files, nil
}

func generateInit(module, name string) string {
	return fmt.Sprintf(`"""provides %s as a parsed and serializable object graph."""

from .%s_types import *  # noqa: F401,F403
from .%s_parse import Error, Errors, parse_%s  # noqa: F401
from .%s_tojsonable import serialize_%s  # noqa: F401
`, name, module, module, module, module, module)
}

func generateParse(graph *mapry.Graph, module, graphName string) (string, error) {
	var blocks []string

	imports := []string{"typing"}

	if mapry.GraphNeedsType[*mapry.Date](graph) || mapry.GraphNeedsType[*mapry.Time](graph) ||
		mapry.GraphNeedsType[*mapry.Datetime](graph) || mapry.GraphNeedsType[*mapry.Duration](graph) {
		imports = append(imports, "datetime")
	}

	if pathAs == "pathlib.Path" {
		imports = append(imports, "pathlib")
	}

	if timezoneAs == "pytz.timezone" {
		imports = append(imports, "pytz", "pytz.exceptions")
	}

	if mapry.GraphNeedsType[*mapry.Map](graph) || graph.Classes.Len() > 0 {
		imports = append(imports, "collections")
	}

	needsRe := mapry.GraphNeedsType[*mapry.String](graph) || mapry.GraphNeedsType[*mapry.Path](graph) ||
		mapry.GraphNeedsType[*mapry.Duration](graph)

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IDPattern != nil {
			needsRe = true
		}
	}

	if needsRe {
		imports = append(imports, "re")
	}

	imports = dedupStrings(imports)
	sort.Strings(imports)

	for _, imp := range imports {
		blocks = append(blocks, "import "+imp)
	}

	blocks = append(blocks, fmt.Sprintf("from .%s_types import *  # noqa: F401,F403", module))

	if decls := patternDeclarations(graph); decls != "" {
		blocks = append(blocks, decls)
	}

	blocks = append(blocks, strings.TrimSpace(errorsContainerSrc))

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		blocks = append(blocks, strings.TrimSpace(durationHelperSrc))
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		block, err := EmitEmbedParse(pair.Value)
		if err != nil {
			return "", fmt.Errorf("parsing embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		preallocBlock, err := EmitClassPreallocate(pair.Value)
		if err != nil {
			return "", fmt.Errorf("preallocating class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, preallocBlock)

		propsBlock, err := EmitClassPropertiesParse(pair.Value)
		if err != nil {
			return "", fmt.Errorf("parsing class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, propsBlock)
	}

	graphBlock, err := EmitGraphParse(graph)
	if err != nil {
		return "", fmt.Errorf("parsing graph: %w", err)
	}

	blocks = append(blocks, graphBlock)

	return strings.Join(blocks, "\n\n\n") + "\n", nil
}

func patternDeclarations(graph *mapry.Graph) string {
	seen := map[string]string{}

	for _, ta := range mapry.IterateOverTypes(graph) {
		var pattern mapry.Pattern

		switch v := ta.Type.(type) {
		case *mapry.String:
			pattern = v.Pattern
		case *mapry.Path:
			pattern = v.Pattern
		}

		if pattern != nil {
			seen[patternVar(pattern)] = pattern.String()
		}
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IDPattern != nil {
			seen[patternVar(pair.Value.IDPattern)] = pair.Value.IDPattern.String()
		}
	}

	if len(seen) == 0 {
		return ""
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	var b strings.Builder

	for _, name := range names {
		fmt.Fprintf(&b, "%s = re.compile(%q)\n", name, seen[name])
	}

	return strings.TrimRight(b.String(), "\n")
}

func generateSerialize(graph *mapry.Graph, module string) (string, error) {
	var blocks []string

	blocks = append(blocks, "import collections")

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		blocks = append(blocks, fmt.Sprintf("from .%s_parse import _duration_to_string  # noqa: F401", module))
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		block, err := EmitEmbedSerialize(pair.Value)
		if err != nil {
			return "", fmt.Errorf("serializing embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		block, err := EmitClassSerialize(pair.Value)
		if err != nil {
			return "", fmt.Errorf("serializing class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, block)
	}

	graphBlock, err := EmitGraphSerialize(graph)
	if err != nil {
		return "", fmt.Errorf("serializing graph: %w", err)
	}

	blocks = append(blocks, graphBlock)

	return strings.Join(blocks, "\n\n\n") + "\n", nil
}
