// Package mapry defines the schema model of a polyglot object graph: the
// typed intermediate representation produced by the loader (package
// schema), checked by the validators (package validate), and consumed
// read-only by the code generators (package gen and its per-target
// sub-packages).
//
// A Graph is the root of the model. It owns zero or more Classes
// (referenceable, identity-bearing composites) and Embeds (inlined,
// identity-less composites), plus its own ordered Properties. Composites
// are frozen once the loader returns them; no component in this module
// mutates a Graph after it has been validated.
package mapry

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PropertyMap preserves the insertion order of a composite's properties,
// matching invariant 3.3.2 (property order is observable end to end).
type PropertyMap = orderedmap.OrderedMap[string, *Property]

// ClassMap preserves the insertion (schema-document) order of classes.
type ClassMap = orderedmap.OrderedMap[string, *Class]

// EmbedMap preserves the insertion (schema-document) order of embeds.
type EmbedMap = orderedmap.OrderedMap[string, *Embed]

// Composite is implemented by Class, Embed, and Graph: the three kinds of
// property-bearing structures in a schema.
type Composite interface {
	// CompositeName returns the unique name of the composite within the
	// graph (the graph's own name, for the Graph itself).
	CompositeName() string
}

// Property is a named, typed field of a composite.
type Property struct {
	// Name is the canonical (snake_case-by-convention, but not enforced
	// beyond §6.2) identifier of the property.
	Name string

	// Description is the human-readable, dot-terminated description.
	Description string

	// JSON is the key under which the property appears in JSONable
	// value trees. Defaults to Name.
	JSON string

	// Type is the value type of the property.
	Type Type

	// Optional indicates whether the property's absence is an error.
	Optional bool

	// Composite is a non-owning back-reference to the owning composite.
	Composite Composite

	// Ref is the JSON-pointer-like reference path to the property's
	// definition in the original schema document, e.g.
	// "#/classes/2/properties/foo". Retained post-validation so that
	// generators and diagnostics can cite the source location.
	Ref string
}

// Embed is a value-typed composite with no identity: it is always
// inlined wherever it is referenced and cannot be looked up by name at
// runtime.
type Embed struct {
	Name        string
	Description string
	Properties  *PropertyMap

	// Ref is the reference path to the embed's definition, e.g.
	// "#/embeds/0".
	Ref string
}

// CompositeName implements Composite.
func (e *Embed) CompositeName() string { return e.Name }

// Class is a referenceable composite. Every instance carries an implicit
// string "id" property that is never declared among Properties
// (invariant 3.3.3).
type Class struct {
	Name        string
	Plural      string
	Description string
	Properties  *PropertyMap

	// IDPattern is the compiled regular expression instances' ids must
	// match, or nil if unconstrained.
	IDPattern Pattern

	// Ref is the reference path to the class's definition, e.g.
	// "#/classes/0".
	Ref string
}

// CompositeName implements Composite.
func (c *Class) CompositeName() string { return c.Name }

// Graph is the root composite of a mapry schema: a named set of
// properties plus the classes and embeds it declares.
type Graph struct {
	Name        string
	Description string
	Properties  *PropertyMap
	Classes     *ClassMap
	Embeds      *EmbedMap

	// CPP, Go, Py hold target-specific generation settings, or nil if
	// the schema document omitted that target's configuration block.
	CPP *CPPSettings
	Go  *GoSettings
	Py  *PySettings
}

// CompositeName implements Composite.
func (g *Graph) CompositeName() string { return g.Name }

// CPPSettings configures C++ code generation (§4.6.5).
type CPPSettings struct {
	Namespace        string
	PathAs           string
	OptionalAs       string
	DatetimeLibrary  string
	Indention        string
}

// GoSettings configures Go code generation (§4.6.5).
type GoSettings struct {
	Package string
}

// PySettings configures Python code generation (§4.6.5).
type PySettings struct {
	ModuleName string
	PathAs     string
	TimezoneAs string
	Indention  string
}

// NewPropertyMap returns an empty, order-preserving property map.
func NewPropertyMap() *PropertyMap {
	return orderedmap.New[string, *Property]()
}

// NewClassMap returns an empty, order-preserving class map.
func NewClassMap() *ClassMap {
	return orderedmap.New[string, *Class]()
}

// NewEmbedMap returns an empty, order-preserving embed map.
func NewEmbedMap() *EmbedMap {
	return orderedmap.New[string, *Embed]()
}
