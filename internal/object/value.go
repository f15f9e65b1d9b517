// Package object is the host object model the string iterator runs against:
// values, symbols, objects with a prototype chain and an internal data slot,
// native functions, iteration results and primitive coercion.
//
// It implements only what iteration needs. Anything resembling a full script
// engine (property enumeration order, accessors, proxies) is out of scope.
package object

import "github.com/okra-platform/striter/internal/text"

// Value is any host value. The supported dynamic types are:
//   - Undefined and Null
//   - bool
//   - float64 (and int, accepted as a convenience)
//   - text.Text (and Go string, converted on use)
//   - *Symbol
//   - *Object
type Value any

type undefinedValue struct{}

type nullValue struct{}

var (
	// Undefined is the absent value
	Undefined Value = undefinedValue{}

	// Null is the intentional empty value
	Null Value = nullValue{}
)

// IsUndefined reports whether v is Undefined (a nil Value counts as Undefined)
func IsUndefined(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(undefinedValue)
	return ok
}

// IsNullish reports whether v is Undefined or Null
func IsNullish(v Value) bool {
	if IsUndefined(v) {
		return true
	}
	_, ok := v.(nullValue)
	return ok
}

// String wraps a Go string as a text value
func String(s string) Value {
	return text.FromString(s)
}

// TypeOf returns the host type name of v
func TypeOf(v Value) string {
	switch v := v.(type) {
	case nil, undefinedValue:
		return "undefined"
	case nullValue:
		return "object"
	case bool:
		return "boolean"
	case float64, int:
		return "number"
	case text.Text, string:
		return "string"
	case *Symbol:
		return "symbol"
	case *Object:
		if v.Callable() {
			return "function"
		}
		return "object"
	default:
		return "unknown"
	}
}
