package cppgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
)

// Generate renders the complete set of C++ source files implementing
// graph's schema (§4.6, §6.4): the types header, the parse-error
// container (its own translation unit, shared by every target file),
// and a jsoncpp-backed header/implementation pair declaring and
// defining the type-directed parse/serialize dispatch for every
// class/embed/the graph itself.
//
// The result maps a file name (relative to the target package
// directory) to its full source text.
func Generate(graph *mapry.Graph, cfg *Config) (map[string]string, error) {
	name, err := AsComposite(graph.Name)
	if err != nil {
		return nil, fmt.Errorf("cppgen: %w", err)
	}

	stem := AsField(name)

	files := map[string]string{}

	typesSrc, err := GenerateTypes(graph, cfg)
	if err != nil {
		return nil, fmt.Errorf("cppgen: generating %s_types.h: %w", stem, err)
	}

	files[stem+"_types.h"] = typesSrc

	files["parse.h"] = generateParseHeader()
	files["parse.cpp"] = generateParseImpl()

	jsoncppHeader, err := generateJSONCPPHeader(graph, cfg, stem)
	if err != nil {
		return nil, fmt.Errorf("cppgen: generating %s_jsoncpp.h: %w", stem, err)
	}

	files[stem+"_jsoncpp.h"] = jsoncppHeader

	jsoncppImpl, err := generateJSONCPPImpl(graph, cfg, stem)
	if err != nil {
		return nil, fmt.Errorf("cppgen: generating %s_jsoncpp.cpp: %w", stem, err)
	}

	files[stem+"_jsoncpp.cpp"] = jsoncppImpl

	if cfg.Indention != "" {
		for fileName, src := range files {
			files[fileName] = gen.Reindent(src, 0, cfg.Indention)
		}
	}

	return files, nil
}

func generateParseHeader() string {
	return strings.Join([]string{
		"#pragma once", warning,
		"#include <string>\n#include <vector>",
		errorsHeaderSrc,
		warning,
	}, "\n\n") + "\n"
}

func generateParseImpl() string {
	return strings.Join([]string{
		warning,
		`#include "parse.h"`,
		errorsImplSrc,
		warning,
	}, "\n\n") + "\n"
}

// patternDeclarations renders one static std::regex per distinct
// pattern reachable from graph (property patterns and class ID
// patterns), so emitPath (for String and Path) and EmitClassPreallocate
// can reference them by name instead of recompiling on every call.
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
		fmt.Fprintf(&b, "static const std::regex %s(%q);\n", name, seen[name])
	}

	return strings.TrimRight(b.String(), "\n")
}

// declarationOf extracts the function signature (everything up to the
// opening brace) from a generated definition, for splicing into the
// companion header as a prototype.
func declarationOf(def string) string {
	idx := strings.Index(def, "{")
	if idx < 0 {
		return def + ";"
	}

	return strings.TrimRight(def[:idx], " \n") + ";"
}

func generateJSONCPPHeader(graph *mapry.Graph, cfg *Config, stem string) (string, error) {
	var decls []string

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		parseDef, err := EmitEmbedParse(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("declaring embed parse %s: %w", pair.Value.Name, err)
		}

		serializeDef, err := EmitEmbedSerialize(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("declaring embed serialize %s: %w", pair.Value.Name, err)
		}

		decls = append(decls, declarationOf(parseDef), declarationOf(serializeDef))
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		preallocDef, err := EmitClassPreallocate(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("declaring class preallocate %s: %w", pair.Value.Name, err)
		}

		propsDef, err := EmitClassPropertiesParse(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("declaring class parse %s: %w", pair.Value.Name, err)
		}

		serializeDef, err := EmitClassSerialize(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("declaring class serialize %s: %w", pair.Value.Name, err)
		}

		decls = append(decls, declarationOf(preallocDef), declarationOf(propsDef), declarationOf(serializeDef))
	}

	graphParseDef, err := EmitGraphParse(graph, cfg)
	if err != nil {
		return "", fmt.Errorf("declaring graph parse: %w", err)
	}

	graphSerializeDef, err := EmitGraphSerialize(graph, cfg)
	if err != nil {
		return "", fmt.Errorf("declaring graph serialize: %w", err)
	}

	decls = append(decls, declarationOf(graphParseDef), declarationOf(graphSerializeDef))

	var blocks []string

	blocks = append(blocks, "#pragma once", warning)

	includes := fmt.Sprintf(`#include "%s_types.h"
#include "parse.h"

#include <json/json.h>
#include <memory>
#include <map>
#include <string>`, stem)

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		includes += "\n#include <chrono>"
	}

	blocks = append(blocks, includes)

	if cfg.Namespace != "" {
		parts := strings.Split(cfg.Namespace, "::")

		var opening []string
		for _, part := range parts {
			opening = append(opening, fmt.Sprintf("namespace %s {", part))
		}

		blocks = append(blocks, strings.Join(opening, "\n"))
	}

	blocks = append(blocks, "std::string value_type_to_string(Json::ValueType value_type);")

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		blocks = append(blocks, strings.Join([]string{
			"std::chrono::nanoseconds duration_from_string(const std::string& s, std::string* error);",
			"std::string duration_to_string(const std::chrono::nanoseconds& d);",
		}, "\n"))
	}

	blocks = append(blocks, strings.Join(decls, "\n\n"))

	if cfg.Namespace != "" {
		parts := strings.Split(cfg.Namespace, "::")

		closing := make([]string, len(parts))
		for i := range parts {
			part := parts[len(parts)-1-i]
			closing[i] = fmt.Sprintf("}  // namespace %s", part)
		}

		blocks = append(blocks, strings.Join(closing, "\n"))
	}

	blocks = append(blocks, warning)

	return strings.Join(blocks, "\n\n") + "\n", nil
}

func generateJSONCPPImpl(graph *mapry.Graph, cfg *Config, stem string) (string, error) {
	var blocks []string

	blocks = append(blocks, warning)
	blocks = append(blocks, fmt.Sprintf(`#include "%s_jsoncpp.h"

#include <cstdlib>
#include <regex>
#include <sstream>`, stem))

	if cfg.Namespace != "" {
		parts := strings.Split(cfg.Namespace, "::")

		var opening []string
		for _, part := range parts {
			opening = append(opening, fmt.Sprintf("namespace %s {", part))
		}

		blocks = append(blocks, strings.Join(opening, "\n"))
	}

	if decls := patternDeclarations(graph); decls != "" {
		blocks = append(blocks, decls)
	}

	blocks = append(blocks, strings.TrimSpace(valueTypeToStringSrc))

	if mapry.GraphNeedsType[*mapry.Duration](graph) {
		blocks = append(blocks, strings.TrimSpace(durationHelperSrc))
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		parseDef, err := EmitEmbedParse(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("parsing embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, parseDef)

		serializeDef, err := EmitEmbedSerialize(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("serializing embed %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, serializeDef)
	}

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		preallocDef, err := EmitClassPreallocate(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("preallocating class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, preallocDef)

		propsDef, err := EmitClassPropertiesParse(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("parsing class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, propsDef)

		serializeDef, err := EmitClassSerialize(pair.Value, cfg)
		if err != nil {
			return "", fmt.Errorf("serializing class %s: %w", pair.Value.Name, err)
		}

		blocks = append(blocks, serializeDef)
	}

	graphParseDef, err := EmitGraphParse(graph, cfg)
	if err != nil {
		return "", fmt.Errorf("parsing graph: %w", err)
	}

	blocks = append(blocks, graphParseDef)

	graphSerializeDef, err := EmitGraphSerialize(graph, cfg)
	if err != nil {
		return "", fmt.Errorf("serializing graph: %w", err)
	}

	blocks = append(blocks, graphSerializeDef)

	if cfg.Namespace != "" {
		parts := strings.Split(cfg.Namespace, "::")

		closing := make([]string, len(parts))
		for i := range parts {
			part := parts[len(parts)-1-i]
			closing[i] = fmt.Sprintf("}  // namespace %s", part)
		}

		blocks = append(blocks, strings.Join(closing, "\n"))
	}

	blocks = append(blocks, warning)

	return strings.Join(blocks, "\n\n") + "\n", nil
}
