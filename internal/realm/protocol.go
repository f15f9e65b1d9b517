package realm

import (
	"context"

	"github.com/okra-platform/striter/internal/object"
	"github.com/okra-platform/striter/internal/text"
)

// IteratorRecord is an iterator object paired with its next method
type IteratorRecord struct {
	Iterator   *object.Object
	NextMethod object.Value
	Done       bool
}

// GetIterator obtains an iterator from v through its Symbol.iterator method.
// Text values use String.prototype.
func (r *Realm) GetIterator(ctx context.Context, v object.Value) (*IteratorRecord, error) {
	var method object.Value
	switch val := v.(type) {
	case text.Text, string:
		method = r.stringPrototype.Get(object.SymbolKey(object.SymbolIterator))
	case *object.Object:
		method = val.Get(object.SymbolKey(object.SymbolIterator))
	default:
		method = object.Undefined
	}

	if fn, ok := method.(*object.Object); !ok || !fn.Callable() {
		return nil, object.NewTypeError("%s is not iterable", object.TypeOf(v))
	}

	result, err := object.Call(ctx, method, v)
	if err != nil {
		return nil, err
	}

	iter, ok := result.(*object.Object)
	if !ok {
		return nil, object.NewTypeError("Result of the Symbol.iterator method is not an object")
	}

	return &IteratorRecord{
		Iterator:   iter,
		NextMethod: iter.Get(object.Key("next")),
	}, nil
}

// Step calls next once and unpacks the result. After done, Step keeps
// returning done without calling next again.
func (rec *IteratorRecord) Step(ctx context.Context) (object.Value, bool, error) {
	if rec.Done {
		return object.Undefined, true, nil
	}

	result, err := object.Call(ctx, rec.NextMethod, rec.Iterator)
	if err != nil {
		rec.Done = true
		return nil, false, err
	}

	value, done, err := object.IterResult(result)
	if err != nil {
		rec.Done = true
		return nil, false, err
	}
	if done {
		rec.Done = true
		return object.Undefined, true, nil
	}
	return value, false, nil
}

// ForOf iterates v the way a for-of loop does, calling fn for each value.
// It stops at the first error from the iterator, fn or ctx.
func (r *Realm) ForOf(ctx context.Context, v object.Value, fn func(object.Value) error) error {
	rec, err := r.GetIterator(ctx, v)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, done, err := rec.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := fn(value); err != nil {
			return err
		}
	}
}
