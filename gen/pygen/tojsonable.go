package pygen

import (
	"fmt"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
)

// EmitSerialize renders the Python expression that converts valueExpr (a
// Python value of the type t represents) into its JSONable form (§4.6.4):
// only primitives, lists and dicts, ready for json.dumps or a YAML dumper.
//
// Ported from mapry/py/generate/tojsonable.py.
func EmitSerialize(valueExpr string, t mapry.Type) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean, *mapry.Integer, *mapry.Float, *mapry.String:
		return valueExpr, nil

	case *mapry.Path:
		if pathAs == "pathlib.Path" {
			return fmt.Sprintf("str(%s)", valueExpr), nil
		}

		return valueExpr, nil

	case *mapry.Date:
		return emitTimeSerialize(valueExpr, v.Format), nil

	case *mapry.Time:
		return emitTimeSerialize(valueExpr, v.Format), nil

	case *mapry.Datetime:
		return emitTimeSerialize(valueExpr, v.Format), nil

	case *mapry.TimeZone:
		if timezoneAs == "pytz.timezone" {
			return fmt.Sprintf("%s.zone", valueExpr), nil
		}

		return valueExpr, nil

	case *mapry.Duration:
		return fmt.Sprintf("_duration_to_string(%s)", valueExpr), nil

	case *mapry.Array:
		return emitArraySerialize(valueExpr, v)

	case *mapry.Map:
		return emitMapSerialize(valueExpr, v)

	case *mapry.ClassRef:
		return fmt.Sprintf("%s.id", valueExpr), nil

	case *mapry.EmbedRef:
		name, err := AsComposite(v.Embed.Name)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("serialize_%s(%s)", AsAttribute(name), valueExpr), nil

	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

func emitTimeSerialize(valueExpr, format string) string {
	return fmt.Sprintf("%s.strftime(%q)", valueExpr, format)
}

func emitArraySerialize(valueExpr string, arr *mapry.Array) (string, error) {
	itemExpr, err := EmitSerialize("item", arr.Values)
	if err != nil {
		return "", err
	}

	if itemExpr == "item" {
		return fmt.Sprintf("list(%s)", valueExpr), nil
	}

	return fmt.Sprintf("[%s for item in %s]", itemExpr, valueExpr), nil
}

func emitMapSerialize(valueExpr string, m *mapry.Map) (string, error) {
	valExpr, err := EmitSerialize("val", m.Values)
	if err != nil {
		return "", err
	}

	if valExpr == "val" {
		return fmt.Sprintf("dict(%s)", valueExpr), nil
	}

	return fmt.Sprintf("{key: %s for key, val in %s.items()}", valExpr, valueExpr), nil
}
