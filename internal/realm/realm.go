// Package realm builds the intrinsic objects string iteration depends on
// and drives the generic iteration protocol over them.
package realm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/okra-platform/striter/internal/iterator"
	"github.com/okra-platform/striter/internal/object"
)

// Realm holds one set of intrinsics. Intrinsics carry no per-iterator state,
// so a single realm can serve any number of iterators.
type Realm struct {
	objectPrototype         *object.Object
	functionPrototype       *object.Object
	iteratorPrototype       *object.Object
	stringIteratorPrototype *object.Object
	stringPrototype         *object.Object

	logger zerolog.Logger
}

var (
	defaultRealm *Realm
	defaultOnce  sync.Once
)

// Default returns the process-wide realm, built on first use
func Default() *Realm {
	defaultOnce.Do(func() {
		r, err := New(log.Logger)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize default realm: %v", err))
		}
		defaultRealm = r
	})
	return defaultRealm
}

// New builds a fresh set of intrinsics
func New(logger zerolog.Logger) (*Realm, error) {
	r := &Realm{
		logger: logger.With().Str("component", "realm").Logger(),
	}

	r.objectPrototype = object.New(nil, nil)
	r.functionPrototype = object.New(r.objectPrototype, nil)

	if _, err := object.DefineMethod(r.objectPrototype, r.functionPrototype, "toString", 0, objectToString); err != nil {
		return nil, fmt.Errorf("failed to create %%Object.prototype%%: %w", err)
	}

	r.iteratorPrototype = object.New(r.objectPrototype, nil)
	if err := r.defineSymbolMethod(r.iteratorPrototype, object.SymbolIterator, "[Symbol.iterator]", returnThis); err != nil {
		return nil, fmt.Errorf("failed to create %%IteratorPrototype%%: %w", err)
	}

	stringIteratorPrototype, err := iterator.CreatePrototype(r.iteratorPrototype, r.functionPrototype)
	if err != nil {
		return nil, fmt.Errorf("failed to create %%StringIteratorPrototype%%: %w", err)
	}
	r.stringIteratorPrototype = stringIteratorPrototype

	r.stringPrototype = object.New(r.objectPrototype, nil)
	if err := r.defineSymbolMethod(r.stringPrototype, object.SymbolIterator, "[Symbol.iterator]", r.stringIterator); err != nil {
		return nil, fmt.Errorf("failed to create %%String.prototype%%: %w", err)
	}

	r.logger.Debug().Msg("intrinsics initialized")
	return r, nil
}

func (r *Realm) defineSymbolMethod(o *object.Object, sym *object.Symbol, name string, fn object.NativeFunction) error {
	f := object.NewFunction(r.functionPrototype, name, 0, fn)
	return o.DefineOwnProperty(object.SymbolKey(sym), object.MethodProperty(f))
}

// ObjectPrototype returns %Object.prototype%
func (r *Realm) ObjectPrototype() *object.Object { return r.objectPrototype }

// FunctionPrototype returns %Function.prototype%
func (r *Realm) FunctionPrototype() *object.Object { return r.functionPrototype }

// IteratorPrototype returns %IteratorPrototype%
func (r *Realm) IteratorPrototype() *object.Object { return r.iteratorPrototype }

// StringIteratorPrototype returns %StringIteratorPrototype%
func (r *Realm) StringIteratorPrototype() *object.Object { return r.stringIteratorPrototype }

// StringPrototype returns %String.prototype%
func (r *Realm) StringPrototype() *object.Object { return r.stringPrototype }

// CreateStringIterator creates a String Iterator object over source
func (r *Realm) CreateStringIterator(source object.Value) *object.Object {
	return iterator.Create(r.stringIteratorPrototype, source)
}

// stringIterator implements String.prototype[Symbol.iterator]
func (r *Realm) stringIterator(ctx context.Context, this object.Value, _ []object.Value) (object.Value, error) {
	if err := object.RequireObjectCoercible(this, "String.prototype[Symbol.iterator]"); err != nil {
		return nil, err
	}
	s, err := object.ToString(ctx, this)
	if err != nil {
		return nil, err
	}
	return r.CreateStringIterator(s), nil
}

func objectToString(_ context.Context, this object.Value, _ []object.Value) (object.Value, error) {
	switch v := this.(type) {
	case *object.Object:
		return object.String(object.Tag(v)), nil
	default:
		if object.IsUndefined(this) {
			return object.String("[object Undefined]"), nil
		}
		if object.IsNullish(this) {
			return object.String("[object Null]"), nil
		}
		return object.String("[object Object]"), nil
	}
}

func returnThis(_ context.Context, this object.Value, _ []object.Value) (object.Value, error) {
	return this, nil
}
