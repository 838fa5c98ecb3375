// Package schema loads a mapry schema document (JSON) into the in-memory
// object model defined by package mapry (§4.3). Loading is split into two
// passes so that class and embed references can point forward or form
// cycles: the first pass registers every class and embed by name (and
// compiles its id_pattern, resolves its plural); the second pass parses
// every property, resolving "type" identifiers against the now-complete
// registries.
//
// Ported from mapry/parse.py (Parquery/mapry).
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/naming"
)

// ErrUnparsable is the sentinel wrapped by every error Load returns.
var ErrUnparsable = errors.New("schema: unparsable document")

// loadError records one failure at a specific reference path, mirroring
// the structural/semantic errors produced by package validate so that
// callers can report every problem with the same Ref-based shape.
type loadError struct {
	Ref string
	Err error
}

func (e *loadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Err)
}

func (e *loadError) Unwrap() []error {
	return []error{ErrUnparsable, e.Err}
}

func wrapf(ref string, format string, args ...any) error {
	return &loadError{Ref: ref, Err: fmt.Errorf(format, args...)}
}

type rawCPP struct {
	Namespace       string `json:"namespace"`
	PathAs          string `json:"path_as"`
	OptionalAs      string `json:"optional_as"`
	DatetimeLibrary string `json:"datetime_library"`
	Indention       string `json:"indention"`
}

type rawGo struct {
	Package string `json:"package"`
}

type rawPy struct {
	ModuleName string `json:"module_name"`
	PathAs     string `json:"path_as"`
	TimezoneAs string `json:"timezone_as"`
	Indention  string `json:"indention"`
}

type rawClass struct {
	Name        string                                            `json:"name"`
	Description string                                            `json:"description"`
	Plural      string                                            `json:"plural"`
	IDPattern   string                                            `json:"id_pattern"`
	Properties  *orderedmap.OrderedMap[string, json.RawMessage]   `json:"properties"`
}

type rawEmbed struct {
	Name        string                                          `json:"name"`
	Description string                                          `json:"description"`
	Properties  *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
}

type rawGraph struct {
	Name        string                                          `json:"name"`
	Description string                                          `json:"description"`
	CPP         *rawCPP                                         `json:"cpp"`
	Go          *rawGo                                          `json:"go"`
	Py          *rawPy                                          `json:"py"`
	Classes     []rawClass                                      `json:"classes"`
	Embeds      []rawEmbed                                      `json:"embeds"`
	Properties  *orderedmap.OrderedMap[string, json.RawMessage] `json:"properties"`
}

// rawProperty is a superset of every value-type definition's fields;
// which ones apply is decided by Type (§3.1, §4.2).
type rawProperty struct {
	Description      string          `json:"description"`
	Type             string          `json:"type"`
	JSON             string          `json:"json"`
	Optional         bool            `json:"optional"`
	Pattern          string          `json:"pattern"`
	Format           string          `json:"format"`
	Minimum          *json.Number    `json:"minimum"`
	ExclusiveMinimum bool            `json:"exclusive_minimum"`
	Maximum          *json.Number    `json:"maximum"`
	ExclusiveMaximum bool            `json:"exclusive_maximum"`
	Values           json.RawMessage `json:"values"`
	MinimumSize      *int            `json:"minimum_size"`
	MaximumSize      *int            `json:"maximum_size"`
}

// Load parses data as a mapry schema document and resolves it into a
// *mapry.Graph. Load does not perform structural or semantic validation
// (see package validate for Stage A/Stage B) beyond what is required to
// build the model: malformed JSON, an id_pattern/type pattern that does
// not compile, and an unresolvable "type" identifier are reported.
func Load(data []byte) (*mapry.Graph, error) {
	var raw rawGraph
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsable, err)
	}

	graph := &mapry.Graph{
		Name:        raw.Name,
		Description: raw.Description,
		Properties:  mapry.NewPropertyMap(),
		Classes:     mapry.NewClassMap(),
		Embeds:      mapry.NewEmbedMap(),
	}

	if raw.CPP != nil {
		graph.CPP = &mapry.CPPSettings{
			Namespace:       raw.CPP.Namespace,
			PathAs:          raw.CPP.PathAs,
			OptionalAs:      raw.CPP.OptionalAs,
			DatetimeLibrary: raw.CPP.DatetimeLibrary,
			Indention:       raw.CPP.Indention,
		}
	}

	if raw.Go != nil {
		graph.Go = &mapry.GoSettings{Package: raw.Go.Package}
	}

	if raw.Py != nil {
		graph.Py = &mapry.PySettings{
			ModuleName: raw.Py.ModuleName,
			PathAs:     raw.Py.PathAs,
			TimezoneAs: raw.Py.TimezoneAs,
			Indention:  raw.Py.Indention,
		}
	}

	// First pass: register every class and embed before parsing a single
	// property, so that forward and cyclic class/embed references resolve.
	for i := range raw.Classes {
		rc := raw.Classes[i]

		ref := fmt.Sprintf("#/classes/%d", i)

		cls := &mapry.Class{
			Name:        rc.Name,
			Description: rc.Description,
			Properties:  mapry.NewPropertyMap(),
			Ref:         ref,
		}

		if rc.Plural != "" {
			cls.Plural = rc.Plural
		} else {
			plural, err := naming.Plural(rc.Name)
			if err != nil {
				return nil, wrapf(ref+"/name", "could not infer plural: %w", err)
			}

			cls.Plural = plural
		}

		if rc.IDPattern != "" {
			pattern, err := regexp.Compile(rc.IDPattern)
			if err != nil {
				return nil, wrapf(ref+"/id_pattern", "invalid regular expression: %w", err)
			}

			cls.IDPattern = pattern
		}

		graph.Classes.Set(cls.Name, cls)
	}

	for i := range raw.Embeds {
		re := raw.Embeds[i]

		ref := fmt.Sprintf("#/embeds/%d", i)

		embed := &mapry.Embed{
			Name:        re.Name,
			Description: re.Description,
			Properties:  mapry.NewPropertyMap(),
			Ref:         ref,
		}

		graph.Embeds.Set(embed.Name, embed)
	}

	// Second pass: parse properties now that every composite is registered.
	for i := range raw.Classes {
		rc := raw.Classes[i]

		ref := fmt.Sprintf("#/classes/%d", i)

		cls, _ := graph.Classes.Get(rc.Name)
		if err := loadProperties(rc.Properties, ref, graph, cls.Properties); err != nil {
			return nil, err
		}
	}

	for i := range raw.Embeds {
		re := raw.Embeds[i]

		ref := fmt.Sprintf("#/embeds/%d", i)

		embed, _ := graph.Embeds.Get(re.Name)
		if err := loadProperties(re.Properties, ref, graph, embed.Properties); err != nil {
			return nil, err
		}
	}

	if err := loadProperties(raw.Properties, "#", graph, graph.Properties); err != nil {
		return nil, err
	}

	return graph, nil
}

func loadProperties(
	props *orderedmap.OrderedMap[string, json.RawMessage],
	ref string,
	graph *mapry.Graph,
	into *mapry.PropertyMap,
) error {
	if props == nil {
		return nil
	}

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		propRef := ref + "/properties/" + name

		prop, err := loadProperty(pair.Value, name, propRef, graph)
		if err != nil {
			return err
		}

		into.Set(name, prop)
	}

	return nil
}

func loadProperty(raw json.RawMessage, name string, ref string, graph *mapry.Graph) (*mapry.Property, error) {
	var rp rawProperty
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, wrapf(ref, "%w", err)
	}

	t, err := loadType(rp, ref, graph)
	if err != nil {
		return nil, err
	}

	jsonName := rp.JSON
	if jsonName == "" {
		jsonName = name
	}

	return &mapry.Property{
		Name:        name,
		Description: rp.Description,
		JSON:        jsonName,
		Type:        t,
		Optional:    rp.Optional,
		Ref:         ref,
	}, nil
}

func loadType(rp rawProperty, ref string, graph *mapry.Graph) (mapry.Type, error) {
	switch rp.Type {
	case "boolean":
		return &mapry.Boolean{}, nil

	case "integer":
		return loadIntegerBounds(rp, ref)

	case "float":
		return loadFloatBounds(rp, ref)

	case "string":
		pattern, err := compileOptionalPattern(rp.Pattern, ref)
		if err != nil {
			return nil, err
		}

		return &mapry.String{Pattern: pattern}, nil

	case "path":
		pattern, err := compileOptionalPattern(rp.Pattern, ref)
		if err != nil {
			return nil, err
		}

		return &mapry.Path{Pattern: pattern}, nil

	case "date":
		format := rp.Format
		if format == "" {
			format = mapry.DefaultDateFormat
		}

		return &mapry.Date{Format: format}, nil

	case "time":
		format := rp.Format
		if format == "" {
			format = mapry.DefaultTimeFormat
		}

		return &mapry.Time{Format: format}, nil

	case "datetime":
		format := rp.Format
		if format == "" {
			format = mapry.DefaultDatetimeFormat
		}

		return &mapry.Datetime{Format: format}, nil

	case "time_zone":
		return &mapry.TimeZone{}, nil

	case "duration":
		return &mapry.Duration{}, nil

	case "array":
		return loadArray(rp, ref, graph)

	case "map":
		return loadMap(rp, ref, graph)

	case "":
		return nil, wrapf(ref+"/type", "missing type")

	default:
		if cls, ok := graph.Classes.Get(rp.Type); ok {
			return &mapry.ClassRef{Name: rp.Type, Class: cls}, nil
		}

		if embed, ok := graph.Embeds.Get(rp.Type); ok {
			return &mapry.EmbedRef{Name: rp.Type, Embed: embed}, nil
		}

		return nil, wrapf(ref+"/type", "unresolvable type identifier: %q", rp.Type)
	}
}

func compileOptionalPattern(pattern string, ref string) (mapry.Pattern, error) {
	if pattern == "" {
		return nil, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, wrapf(ref+"/pattern", "invalid regular expression: %w", err)
	}

	return compiled, nil
}

func loadIntegerBounds(rp rawProperty, ref string) (*mapry.Integer, error) {
	integer := &mapry.Integer{
		MinimumExclusive: rp.ExclusiveMinimum,
		MaximumExclusive: rp.ExclusiveMaximum,
	}

	if rp.Minimum != nil {
		v, err := rp.Minimum.Int64()
		if err != nil {
			return nil, wrapf(ref+"/minimum", "not an integer: %w", err)
		}

		integer.Minimum = &v
	}

	if rp.Maximum != nil {
		v, err := rp.Maximum.Int64()
		if err != nil {
			return nil, wrapf(ref+"/maximum", "not an integer: %w", err)
		}

		integer.Maximum = &v
	}

	return integer, nil
}

func loadFloatBounds(rp rawProperty, ref string) (*mapry.Float, error) {
	float := &mapry.Float{
		MinimumExclusive: rp.ExclusiveMinimum,
		MaximumExclusive: rp.ExclusiveMaximum,
	}

	if rp.Minimum != nil {
		v, err := rp.Minimum.Float64()
		if err != nil {
			return nil, wrapf(ref+"/minimum", "not a number: %w", err)
		}

		float.Minimum = &v
	}

	if rp.Maximum != nil {
		v, err := rp.Maximum.Float64()
		if err != nil {
			return nil, wrapf(ref+"/maximum", "not a number: %w", err)
		}

		float.Maximum = &v
	}

	return float, nil
}

func loadArray(rp rawProperty, ref string, graph *mapry.Graph) (*mapry.Array, error) {
	if rp.Values == nil {
		return nil, wrapf(ref+"/values", "missing values type")
	}

	var rv rawProperty
	if err := json.Unmarshal(rp.Values, &rv); err != nil {
		return nil, wrapf(ref+"/values", "%w", err)
	}

	values, err := loadType(rv, ref+"/values", graph)
	if err != nil {
		return nil, err
	}

	return &mapry.Array{
		Values:      values,
		MinimumSize: rp.MinimumSize,
		MaximumSize: rp.MaximumSize,
	}, nil
}

func loadMap(rp rawProperty, ref string, graph *mapry.Graph) (*mapry.Map, error) {
	if rp.Values == nil {
		return nil, wrapf(ref+"/values", "missing values type")
	}

	var rv rawProperty
	if err := json.Unmarshal(rp.Values, &rv); err != nil {
		return nil, wrapf(ref+"/values", "%w", err)
	}

	values, err := loadType(rv, ref+"/values", graph)
	if err != nil {
		return nil, err
	}

	return &mapry.Map{Values: values}, nil
}
