package gen

import "errors"

// ErrUnhandledType is wrapped by a generator when a type-directed dispatch
// (emit_parse/emit_serialize/type-definition/TypeRepr, §4.6) is given a
// mapry.Type it does not have a case for. Every target's dispatch is
// meant to be exhaustive over the tagged sum defined in package mapry;
// seeing this error means the dispatch fell out of sync with the model.
var ErrUnhandledType = errors.New("gen: unhandled value type in dispatch")

// ErrUnknownTarget is returned by the top-level CLI/config layer when
// asked to generate for a target name outside {cpp, go, py}.
var ErrUnknownTarget = errors.New("gen: unknown generation target")
