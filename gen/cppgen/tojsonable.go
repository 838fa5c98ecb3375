package cppgen

import (
	"fmt"

	"github.com/Parquery/mapry"
	"github.com/Parquery/mapry/gen"
)

// EmitSerialize renders the C++ statement that converts valueExpr (a
// value of the type t represents) into targetExpr, a `Json::Value&`
// (§4.6.4).
//
// Ported from mapry/cpp/generate/jsoncpp_impl.py's _serialize_value.
func EmitSerialize(targetExpr, valueExpr string, t mapry.Type, cfg *Config) (string, error) {
	return emitSerialize(targetExpr, valueExpr, t, cfg, &uidGen{})
}

func emitSerialize(targetExpr, valueExpr string, t mapry.Type, cfg *Config, u *uidGen) (string, error) {
	switch v := t.(type) {
	case *mapry.Boolean, *mapry.Integer, *mapry.Float, *mapry.String:
		return fmt.Sprintf("%s = %s;", targetExpr, valueExpr), nil

	case *mapry.Path:
		return fmt.Sprintf("%s = %s.string();", targetExpr, valueExpr), nil

	case *mapry.Date:
		return emitTimeSerialize(targetExpr, valueExpr, v.Format, cfg), nil

	case *mapry.Time:
		return emitTimeSerialize(targetExpr, valueExpr, v.Format, cfg), nil

	case *mapry.Datetime:
		return emitTimeSerialize(targetExpr, valueExpr, v.Format, cfg), nil

	case *mapry.TimeZone:
		if cfg.DatetimeLibrary == "date.h" {
			return fmt.Sprintf("%s = date::get_tzdb().locate_zone(%s)->name();", targetExpr, valueExpr), nil
		}

		return fmt.Sprintf("%s = %s;", targetExpr, valueExpr), nil

	case *mapry.Duration:
		return fmt.Sprintf("%s = duration_to_string(%s);", targetExpr, valueExpr), nil

	case *mapry.Array:
		return emitArraySerialize(targetExpr, valueExpr, v, cfg, u)

	case *mapry.Map:
		return emitMapSerialize(targetExpr, valueExpr, v, cfg, u)

	case *mapry.ClassRef:
		return fmt.Sprintf("%s = %s->id;", targetExpr, valueExpr), nil

	case *mapry.EmbedRef:
		name, err := AsComposite(v.Embed.Name)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s = serialize_%s(%s);", targetExpr, AsField(name), valueExpr), nil

	default:
		return "", fmt.Errorf("%w: %T", gen.ErrUnhandledType, t)
	}
}

func emitTimeSerialize(targetExpr, valueExpr, format string, cfg *Config) string {
	if cfg.DatetimeLibrary == "date.h" {
		return fmt.Sprintf("%s = date::format(%q, %s);", targetExpr, format, valueExpr)
	}

	return fmt.Sprintf(`{
    char buf[256];
    strftime(buf, sizeof(buf), %q, &(%s));
    %s = std::string(buf);
}`, format, valueExpr, targetExpr)
}

func emitArraySerialize(targetExpr, valueExpr string, arr *mapry.Array, cfg *Config, u *uidGen) (string, error) {
	uid := u.next()

	itemSerialize, err := emitSerialize(
		fmt.Sprintf("target_%s[i_%s]", uid, uid), fmt.Sprintf("vector_%s[i_%s]", uid, uid), arr.Values, cfg, u)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Json::Value target_%s(Json::arrayValue);
const auto& vector_%s = %s;
for (size_t i_%s = 0; i_%s < vector_%s.size(); ++i_%s) {
    %s
}
%s = std::move(target_%s);`, uid, uid, valueExpr, uid, uid, uid, uid,
		indentBlock(itemSerialize, 1), targetExpr, uid), nil
}

func emitMapSerialize(targetExpr, valueExpr string, m *mapry.Map, cfg *Config, u *uidGen) (string, error) {
	uid := u.next()

	valSerialize, err := emitSerialize(
		fmt.Sprintf("target_%s[kv_%s.first]", uid, uid), fmt.Sprintf("kv_%s.second", uid), m.Values, cfg, u)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Json::Value target_%s(Json::objectValue);
const auto& map_%s = %s;
for (const auto& kv_%s : map_%s) {
    %s
}
%s = std::move(target_%s);`, uid, uid, valueExpr, uid, uid, indentBlock(valSerialize, 1), targetExpr, uid), nil
}
