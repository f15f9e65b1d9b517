package object

import (
	"context"
	"math"
	"strconv"

	"github.com/okra-platform/striter/internal/text"
)

var (
	textUndefined = text.FromString("undefined")
	textNull      = text.FromString("null")
	textTrue      = text.FromString("true")
	textFalse     = text.FromString("false")
)

// ToString converts v to its text representation.
//
// Objects are converted through their toString, then valueOf, methods, so
// conversion may run user code, observe side effects and fail with whatever
// error that code returns.
func ToString(ctx context.Context, v Value) (text.Text, error) {
	switch v := v.(type) {
	case text.Text:
		return v, nil
	case string:
		return text.FromString(v), nil
	case nil, undefinedValue:
		return textUndefined, nil
	case nullValue:
		return textNull, nil
	case bool:
		if v {
			return textTrue, nil
		}
		return textFalse, nil
	case float64:
		return text.FromString(NumberToString(v)), nil
	case int:
		return text.FromString(strconv.Itoa(v)), nil
	case *Symbol:
		return text.Empty, NewTypeError("Cannot convert a Symbol value to a string")
	case *Object:
		prim, err := ToPrimitive(ctx, v)
		if err != nil {
			return text.Empty, err
		}
		return ToString(ctx, prim)
	default:
		return text.Empty, NewTypeError("Cannot convert %T to a string", v)
	}
}

// ToPrimitive converts an object to a primitive with a string hint by
// trying its toString and valueOf methods in turn
func ToPrimitive(ctx context.Context, o *Object) (Value, error) {
	for _, name := range []string{"toString", "valueOf"} {
		method := o.Get(Key(name))
		if fn, ok := method.(*Object); !ok || !fn.Callable() {
			continue
		}

		result, err := Call(ctx, method, o)
		if err != nil {
			return nil, err
		}
		if _, isObject := result.(*Object); !isObject {
			return result, nil
		}
	}
	return nil, NewTypeError("Cannot convert object to primitive value")
}

// RequireObjectCoercible rejects Undefined and Null
func RequireObjectCoercible(v Value, what string) error {
	if IsNullish(v) {
		return NewTypeError("%s called on null or undefined", what)
	}
	return nil
}

// ToBoolean applies the host truthiness rules
func ToBoolean(v Value) bool {
	switch v := v.(type) {
	case nil, undefinedValue, nullValue:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case text.Text:
		return v.Len() > 0
	case string:
		return v != ""
	default:
		return true
	}
}

// NumberToString formats a number the way the host prints it for the
// common cases: integers without a fraction, NaN, signed Infinity and -0 as "0".
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
