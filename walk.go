package mapry

import "sort"

// TypeAt pairs a value type with the reference path to where it was
// defined in the schema document.
type TypeAt struct {
	Type Type
	Ref  string
}

// IterateOverTypes walks every value type defined in the graph: the
// property types of every class, every embed, and the graph itself,
// recursing into Array/Map element types. It does not recurse into
// ClassRef/EmbedRef targets, matching the Python original (composites are
// walked once, at the top level, by their own entry).
func IterateOverTypes(graph *Graph) []TypeAt {
	var out []TypeAt

	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, iterateOverComposite(pair.Value)...)
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, iterateOverComposite(pair.Value)...)
	}

	out = append(out, iterateOverComposite(graph)...)

	return out
}

func iterateOverComposite(composite Composite) []TypeAt {
	var props *PropertyMap

	var ref string

	switch c := composite.(type) {
	case *Class:
		props, ref = c.Properties, c.Ref
	case *Embed:
		props, ref = c.Properties, c.Ref
	case *Graph:
		props, ref = c.Properties, "#"
	default:
		return nil
	}

	var out []TypeAt

	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, iterateOverTypeRecursively(
			pair.Value.Type, ref+"/properties/"+pair.Value.Name)...)
	}

	return out
}

func iterateOverTypeRecursively(t Type, ref string) []TypeAt {
	out := []TypeAt{{Type: t, Ref: ref}}

	switch v := t.(type) {
	case *Array:
		out = append(out, iterateOverTypeRecursively(v.Values, ref+"/values")...)
	case *Map:
		out = append(out, iterateOverTypeRecursively(v.Values, ref+"/values")...)
	}

	return out
}

// NeedsType reports whether the type tag of query appears anywhere in the
// recursive expansion of a_type: through Array/Map element types, or
// through the property types of the Class/Embed a ClassRef/EmbedRef
// refers to.
func NeedsType[Q Type](t Type) bool {
	return needsType[Q](t, map[Type]bool{})
}

func needsType[Q Type](t Type, visited map[Type]bool) bool {
	if visited[t] {
		return false
	}

	visited[t] = true

	if _, ok := t.(Q); ok {
		return true
	}

	switch v := t.(type) {
	case *Array:
		return needsType[Q](v.Values, visited)
	case *Map:
		return needsType[Q](v.Values, visited)
	case *ClassRef:
		return needsTypeInComposite[Q](v.Class.Properties, visited)
	case *EmbedRef:
		return needsTypeInComposite[Q](v.Embed.Properties, visited)
	}

	return false
}

func needsTypeInComposite[Q Type](props *PropertyMap, visited map[Type]bool) bool {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if needsType[Q](pair.Value.Type, visited) {
			return true
		}
	}

	return false
}

// GraphNeedsType reports whether any property type transitively defined in
// the graph (classes, embeds, graph properties) carries the tag Q.
func GraphNeedsType[Q Type](graph *Graph) bool {
	for pair := graph.Classes.Oldest(); pair != nil; pair = pair.Next() {
		if needsTypeInComposite[Q](pair.Value.Properties, map[Type]bool{}) {
			return true
		}
	}

	for pair := graph.Embeds.Oldest(); pair != nil; pair = pair.Next() {
		if needsTypeInComposite[Q](pair.Value.Properties, map[Type]bool{}) {
			return true
		}
	}

	return needsTypeInComposite[Q](graph.Properties, map[Type]bool{})
}

// referencedClasses recursively collects the set of classes transitively
// referenced by a composite's properties (through ClassRef, EmbedRef, and
// Array/Map element types), following EmbedRef into the embed's own
// properties.
func referencedClasses(props *PropertyMap, visited map[string]bool, acc map[string]*Class) {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		referencedClassesInType(pair.Value.Type, visited, acc)
	}
}

func referencedClassesInType(t Type, visited map[string]bool, acc map[string]*Class) {
	switch v := t.(type) {
	case *ClassRef:
		acc[v.Class.Name] = v.Class
	case *EmbedRef:
		key := "embed:" + v.Embed.Name
		if visited[key] {
			return
		}

		visited[key] = true

		referencedClasses(v.Embed.Properties, visited, acc)
	case *Array:
		referencedClassesInType(v.Values, visited, acc)
	case *Map:
		referencedClassesInType(v.Values, visited, acc)
	}
}

// TransitiveClassRefs computes the set of classes transitively referenced
// by a composite's properties, sorted by class name for deterministic
// emission (§4.6.3, §4.6.6, §9 "Registries keyed by class name ... are
// sorted when iterated").
func TransitiveClassRefs(composite Composite) []*Class {
	var props *PropertyMap

	switch c := composite.(type) {
	case *Class:
		props = c.Properties
	case *Embed:
		props = c.Properties
	case *Graph:
		props = c.Properties
	default:
		return nil
	}

	acc := map[string]*Class{}
	referencedClasses(props, map[string]bool{}, acc)

	out := make([]*Class, 0, len(acc))
	for _, cls := range acc {
		out = append(out, cls)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
