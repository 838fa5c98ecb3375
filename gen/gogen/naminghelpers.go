package gogen

import (
	"strings"

	"github.com/Parquery/mapry/naming"
)

// fieldName renders a property's identifier as an exported Go struct
// field name. Unlike composite names (classes, embeds, the graph itself),
// property identifiers are not required to start with an uppercase
// letter (§6.2), so naming.UpperCamel's capitalization precondition does
// not hold here; this camel-cases via naming.LowerCamel first and then
// capitalizes the leading rune.
func fieldName(identifier string) (string, error) {
	lower, err := naming.LowerCamel(identifier)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(lower[:1]) + lower[1:], nil
}
