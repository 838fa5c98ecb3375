package gogen

import (
	"fmt"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
	"github.com/Parquery/mapry/naming"
)

// EmitSerialize renders the Go expression that converts valueExpr (a Go
// value of the type t represents) into its JSONable form (§4.6.4):
// `any`, built only from primitives, []any and map[string]any, so it can
// be handed straight to encoding/json or a YAML encoder.
//
// Ported from mapry/go/generate/tojsonable.py.
func EmitSerialize(valueExpr string, t mapry.Type) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean, *mapry.Integer, *mapry.Float, *mapry.String, *mapry.Path:
		return valueExpr, nil

	case *mapry.Date:
		return emitTimeSerialize(valueExpr, v.Format)

	case *mapry.Time:
		return emitTimeSerialize(valueExpr, v.Format)

	case *mapry.Datetime:
		return emitTimeSerialize(valueExpr, v.Format)

	case *mapry.TimeZone:
		return fmt.Sprintf("%s.String()", valueExpr), nil

	case *mapry.Duration:
		return fmt.Sprintf("durationToString(%s)", valueExpr), nil

	case *mapry.Array:
		return emitArraySerialize(valueExpr, v)

	case *mapry.Map:
		return emitMapSerialize(valueExpr, v)

	case *mapry.ClassRef:
		return fmt.Sprintf("%s.ID", valueExpr), nil

	case *mapry.EmbedRef:
		nameUC, err := naming.UpperCamel(v.Embed.Name)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("serialize%s(%s)", nameUC, valueExpr), nil

	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

func emitTimeSerialize(valueExpr, format string) (string, error) {
	layout, err := ConvertFormat(format)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.Format(%q)", valueExpr, layout), nil
}

func emitArraySerialize(valueExpr string, arr *mapry.Array) (string, error) {
	itemExpr, err := EmitSerialize("item", arr.Values)
	if err != nil {
		return "", err
	}

	if itemExpr == "item" {
		return fmt.Sprintf("toAnySlice(%s)", valueExpr), nil
	}

	return fmt.Sprintf(`func() []any {
	out := make([]any, 0, len(%s))
	for _, item := range %s {
		out = append(out, %s)
	}
	return out
}()`, valueExpr, valueExpr, itemExpr), nil
}

func emitMapSerialize(valueExpr string, m *mapry.Map) (string, error) {
	valExpr, err := EmitSerialize("val", m.Values)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`func() map[string]any {
	out := make(map[string]any, len(%s))
	for key, val := range %s {
		out[key] = %s
	}
	return out
}()`, valueExpr, valueExpr, valExpr), nil
}

// toAnySliceHelperSrc is spliced into the generated package whenever a
// plain (non-converted) array is serialized, so array serialization
// never needs a per-call closure for the common case.
const toAnySliceHelperSrc = `
func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
`
