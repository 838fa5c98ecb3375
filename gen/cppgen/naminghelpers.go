package cppgen

import "strings"

// AsField translates a mapry property identifier to a C++ field name: the
// whole identifier lowercased (mapry/cpp/naming.py's as_field), unlike
// Go's per-word camel-casing.
func AsField(identifier string) string {
	return strings.ToLower(identifier)
}
