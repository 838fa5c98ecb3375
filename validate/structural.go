// Package validate checks a parsed schema document against the structural
// shape mapry requires (Stage A, §4.4) and the semantic constraints that
// shape alone cannot express (Stage B, §4.4): bounds ordering, regex and
// strftime-format compilation, duplicate names, and registry/field
// collisions.
//
// Stage A is grounded on mapry/schemas.py, translated verbatim into a
// JSON-Schema document and checked with github.com/kaptinlin/jsonschema.
// Stage B is grounded on mapry/validation.py.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// ErrStructural is the sentinel wrapped by every Stage A failure.
var ErrStructural = errors.New("validate: document does not follow the schema shape")

// graphSchemaJSON is mapry/schemas.py's GRAPH definition, transliterated
// to JSON-Schema draft-04 text.
const graphSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "definitions": {
    "Graph": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Z][A-Za-z0-9]*"},
        "description": {"type": "string", "pattern": "^[a-z]+.*\\.$"},
        "cpp": {"$ref": "#/definitions/Cpp"},
        "go": {"$ref": "#/definitions/Go"},
        "py": {"$ref": "#/definitions/Py"},
        "classes": {"type": "array", "items": {"$ref": "#/definitions/Class"}},
        "embeds": {"type": "array", "items": {"$ref": "#/definitions/Embed"}},
        "properties": {
          "type": "object",
          "additionalProperties": {"$ref": "#/definitions/Property"}
        }
      },
      "required": ["name", "description"],
      "additionalProperties": false
    },
    "Cpp": {
      "type": "object",
      "properties": {
        "namespace": {"type": "string", "pattern": "^[a-zA-Z][a-zA-Z0-9_]*(::[a-zA-Z][a-zA-Z0-9_]*)*$"},
        "path_as": {"type": "string", "enum": ["std::filesystem::path", "boost::filesystem::path"]},
        "optional_as": {"type": "string", "enum": ["boost::optional", "std::optional", "std::experimental::optional"]},
        "datetime_library": {"type": "string", "enum": ["ctime", "date.h"]},
        "indention": {"type": "string", "pattern": "^[ \t]*$"}
      },
      "required": ["namespace", "path_as", "optional_as", "datetime_library"],
      "additionalProperties": false
    },
    "Go": {
      "type": "object",
      "properties": {
        "package": {"type": "string", "pattern": "^[a-zA-Z][a-zA-Z0-9_]*"}
      },
      "required": ["package"],
      "additionalProperties": false
    },
    "Py": {
      "type": "object",
      "properties": {
        "module_name": {"type": "string", "pattern": "^[a-zA-Z][a-zA-Z0-9_]*(\\.[a-zA-Z][a-zA-Z0-9_]*)*$"},
        "path_as": {"type": "string", "enum": ["str", "pathlib.Path"]},
        "timezone_as": {"type": "string", "enum": ["str", "pytz.timezone"]},
        "indention": {"type": "string", "pattern": "^[ \t]*$"}
      },
      "required": ["module_name", "path_as", "timezone_as"],
      "additionalProperties": false
    },
    "Class": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Z]([a-zA-Z0-9_]*[a-zA-Z0-9])?$"},
        "description": {"type": "string", "pattern": "^[a-z]+.*\\.$"},
        "plural": {"type": "string", "pattern": "^[A-Z]([a-zA-Z0-9_]*[a-zA-Z0-9])?$"},
        "id_pattern": {"type": "string"},
        "properties": {
          "type": "object",
          "additionalProperties": {"$ref": "#/definitions/Property"}
        }
      },
      "required": ["name", "description"],
      "additionalProperties": false
    },
    "Embed": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Z]([A-Za-z0-9_]*[a-zA-Z0-9])?"},
        "description": {"type": "string", "pattern": "^[a-z]+.*\\.$"},
        "properties": {
          "type": "object",
          "additionalProperties": {"$ref": "#/definitions/Property"}
        }
      },
      "required": ["name", "description"],
      "additionalProperties": false
    },
    "Property": {
      "type": "object",
      "properties": {
        "description": {"type": "string"},
        "type": {"type": "string", "pattern": "[A-Za-z][A-Za-z_0-9]*"},
        "json": {"type": "string"},
        "optional": {"type": "boolean"}
      },
      "required": ["description", "type"],
      "additionalProperties": true
    }
  },
  "$ref": "#/definitions/Graph"
}`

// typeSchemaJSON maps each non-composite value-type tag to the JSON-Schema
// text that validates its definition's type-specific fields, mirroring
// mapry.schemas.TYPE_TO_SCHEMA.
var typeSchemaJSON = map[string]string{
	"boolean": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"}}}`,
	"integer": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"minimum":{"type":"integer"},"exclusive_minimum":{"type":"boolean"},
		"maximum":{"type":"integer"},"exclusive_maximum":{"type":"boolean"}}}`,
	"float": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"minimum":{"type":"number"},"exclusive_minimum":{"type":"boolean"},
		"maximum":{"type":"number"},"exclusive_maximum":{"type":"boolean"}}}`,
	"string": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"pattern":{"type":"string"}}}`,
	"path": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"pattern":{"type":"string"}}}`,
	"date": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"format":{"type":"string"}}}`,
	"time": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"format":{"type":"string"}}}`,
	"datetime": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"format":{"type":"string"}}}`,
	"time_zone": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"}}}`,
	"duration":  `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"}}}`,
	"array": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"values":{"type":"object"},"minimum_size":{"type":"integer","minimum":0},
		"maximum_size":{"type":"integer","minimum":0}},"required":["values"]}`,
	"map": `{"type":"object","properties":{"type":{"type":"string"},"description":{"type":"string"},
		"values":{"type":"object"}},"required":["values"]}`,
}

var (
	compileOnce    sync.Once
	graphSchema    *jsonschema.Schema
	typeSchemas    map[string]*jsonschema.Schema
	compileErr     error
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()

	graphSchema, compileErr = compiler.Compile([]byte(graphSchemaJSON))
	if compileErr != nil {
		return
	}

	typeSchemas = make(map[string]*jsonschema.Schema, len(typeSchemaJSON))

	for tag, text := range typeSchemaJSON {
		var s *jsonschema.Schema

		s, compileErr = compiler.Compile([]byte(text))
		if compileErr != nil {
			return
		}

		typeSchemas[tag] = s
	}
}

// StructuralError is one Stage A failure, a direct analog of mapry's
// SchemaError: a human-readable message plus a JSON-pointer-like
// reference to where in the document it occurred.
type StructuralError struct {
	Ref     string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Message)
}

// Structural validates the decoded JSON instance against the shape mapry
// requires of a schema document (§4.4, Stage A). instance must be the
// result of decoding the document with encoding/json (map[string]any,
// []any, string, float64, bool, nil).
//
// §4.4's requirement that, at depth 0, "type" precede "description" is
// a document key-order constraint; map[string]any has already discarded
// key order by the time it reaches here, so this stage cannot and does
// not enforce it.
func Structural(instance any, ref string) ([]*StructuralError, error) {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return nil, fmt.Errorf("%w: compiling structural schema: %w", ErrStructural, compileErr)
	}

	result := graphSchema.Validate(instance)
	if result.IsValid() {
		return nil, nil
	}

	return toStructuralErrors(result, ref), nil
}

// TypeDefinition validates a single value-type definition's type-specific
// fields (e.g. integer's "minimum"/"maximum") against mapry's
// TYPE_TO_SCHEMA. Composite ("class_ref"/"embed_ref") definitions have no
// entry and are always reported valid.
func TypeDefinition(tag string, instance any, ref string) ([]*StructuralError, error) {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return nil, fmt.Errorf("%w: compiling structural schema: %w", ErrStructural, compileErr)
	}

	s, ok := typeSchemas[tag]
	if !ok {
		return nil, nil
	}

	result := s.Validate(instance)
	if result.IsValid() {
		return nil, nil
	}

	return toStructuralErrors(result, ref), nil
}

func toStructuralErrors(result *jsonschema.EvaluationResult, ref string) []*StructuralError {
	list := result.ToList()

	var out []*StructuralError

	collectFromList(list, ref, &out)

	if len(out) == 0 {
		out = append(out, &StructuralError{Ref: ref, Message: "does not follow the expected schema"})
	}

	return out
}

func collectFromList(list *jsonschema.List, ref string, out *[]*StructuralError) {
	if list == nil {
		return
	}

	location := ref
	if list.InstanceLocation != "" && list.InstanceLocation != "#" {
		location = ref + "/" + strings.TrimPrefix(list.InstanceLocation, "/")
	}

	for _, msg := range list.Errors {
		*out = append(*out, &StructuralError{Ref: location, Message: msg})
	}

	for i := range list.Details {
		collectFromList(&list.Details[i], ref, out)
	}
}
