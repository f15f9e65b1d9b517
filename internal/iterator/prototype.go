package iterator

import (
	"context"

	"github.com/okra-platform/striter/internal/object"
)

// ToStringTag is the Symbol.toStringTag value of %StringIteratorPrototype%
const ToStringTag = "String Iterator"

// Next is the native "next" method of %StringIteratorPrototype%.
// The receiver must be a String Iterator object.
func Next(ctx context.Context, this object.Value, _ []object.Value) (object.Value, error) {
	obj, ok := this.(*object.Object)
	if !ok {
		return nil, object.NewTypeError("`this` is not a String Iterator")
	}
	it, ok := obj.Data().(*StringIterator)
	if !ok {
		return nil, object.NewTypeError("`this` is not a String Iterator")
	}

	value, done, err := it.Step(ctx)
	if err != nil {
		return nil, err
	}
	if done {
		return object.CreateIterResultObject(object.Undefined, true), nil
	}
	return object.CreateIterResultObject(value, false), nil
}

// CreatePrototype builds %StringIteratorPrototype% on top of
// %IteratorPrototype%, with the next method and the "String Iterator" tag
func CreatePrototype(iteratorPrototype, functionPrototype *object.Object) (*object.Object, error) {
	proto := object.New(iteratorPrototype, nil)

	if _, err := object.DefineMethod(proto, functionPrototype, "next", 0, Next); err != nil {
		return nil, err
	}

	tag := object.ReadOnlyProperty(object.String(ToStringTag))
	if err := proto.DefineOwnProperty(object.SymbolKey(object.SymbolToStringTag), tag); err != nil {
		return nil, err
	}

	return proto, nil
}

// Create returns a String Iterator object over source inheriting from proto
func Create(proto *object.Object, source object.Value) *object.Object {
	return object.New(proto, New(source))
}
