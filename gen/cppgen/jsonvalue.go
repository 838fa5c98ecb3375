package cppgen

// valueTypeToStringSrc renders JSON values' run-time type into the
// human-readable word every generated "Expected X, but got: ..." message
// uses in place of Go's %T or Python's an object's type name.
//
// Ported from mapry/cpp/generate/jsoncpp_impl.py's _value_type_to_string.
const valueTypeToStringSrc = `
/**
 * converts a JSON value type to a human-readable string representation.
 *
 * @param value_type to be converted
 * @return string representation of the JSON value type
 */
std::string value_type_to_string(Json::ValueType value_type) {
    switch (value_type) {
        case Json::ValueType::nullValue: return "null";
        case Json::ValueType::intValue: return "int";
        case Json::ValueType::uintValue: return "uint";
        case Json::ValueType::realValue: return "real";
        case Json::ValueType::stringValue: return "string";
        case Json::ValueType::booleanValue: return "bool";
        case Json::ValueType::arrayValue: return "array";
        case Json::ValueType::objectValue: return "object";
        default:
            return "unknown";
    }
}
`
