package object

import "context"

// NativeFunction is the Go implementation behind a host function object
type NativeFunction func(ctx context.Context, this Value, args []Value) (Value, error)

// NewFunction creates a function object with the standard "name" and
// "length" properties
func NewFunction(proto *Object, name string, length int, fn NativeFunction) *Object {
	f := New(proto, nil)
	f.call = fn
	// Fresh object, nothing to conflict with
	_ = f.DefineOwnProperty(Key("name"), ReadOnlyProperty(String(name)))
	_ = f.DefineOwnProperty(Key("length"), ReadOnlyProperty(float64(length)))
	return f
}

// DefineMethod installs a native function as a built-in method on o
func DefineMethod(o *Object, functionProto *Object, name string, length int, fn NativeFunction) (*Object, error) {
	f := NewFunction(functionProto, name, length, fn)
	if err := o.DefineOwnProperty(Key(name), MethodProperty(f)); err != nil {
		return nil, err
	}
	return f, nil
}

// Call invokes f with the given receiver. Calling a non-function is a TypeError.
func Call(ctx context.Context, f Value, this Value, args ...Value) (Value, error) {
	fn, ok := f.(*Object)
	if !ok || !fn.Callable() {
		return nil, NewTypeError("%s is not a function", TypeOf(f))
	}
	if args == nil {
		args = []Value{}
	}
	result, err := fn.call(ctx, this, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return Undefined, nil
	}
	return result, nil
}

// Arg returns args[i], or Undefined when not supplied
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
