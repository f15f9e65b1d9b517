package object

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/striter/internal/text"
)

func TestToString_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"text", text.FromString("abc"), "abc"},
		{"go string", "xyz", "xyz"},
		{"undefined", Undefined, "undefined"},
		{"nil", nil, "undefined"},
		{"null", Null, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integer", 42.0, "42"},
		{"int", 7, "7"},
		{"fraction", 1.5, "1.5"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"nan", math.NaN(), "NaN"},
		{"infinity", math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToString(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToString_Symbol(t *testing.T) {
	_, err := ToString(context.Background(), SymbolIterator)
	assert.True(t, IsTypeError(err))
}

func TestToString_ObjectUsesToString(t *testing.T) {
	calls := 0
	obj := New(nil, nil)
	_, err := DefineMethod(obj, nil, "toString", 0, func(ctx context.Context, this Value, args []Value) (Value, error) {
		calls++
		return String("custom"), nil
	})
	require.NoError(t, err)

	got, err := ToString(context.Background(), obj)
	require.NoError(t, err)
	assert.Equal(t, "custom", got.String())
	assert.Equal(t, 1, calls)
}

func TestToString_ObjectFallsBackToValueOf(t *testing.T) {
	obj := New(nil, nil)
	_, err := DefineMethod(obj, nil, "toString", 0, func(ctx context.Context, this Value, args []Value) (Value, error) {
		return New(nil, nil), nil
	})
	require.NoError(t, err)
	_, err = DefineMethod(obj, nil, "valueOf", 0, func(ctx context.Context, this Value, args []Value) (Value, error) {
		return 12.0, nil
	})
	require.NoError(t, err)

	got, err := ToString(context.Background(), obj)
	require.NoError(t, err)
	assert.Equal(t, "12", got.String())
}

func TestToString_ObjectErrors(t *testing.T) {
	boom := errors.New("boom")
	obj := New(nil, nil)
	_, err := DefineMethod(obj, nil, "toString", 0, func(ctx context.Context, this Value, args []Value) (Value, error) {
		return nil, boom
	})
	require.NoError(t, err)

	_, err = ToString(context.Background(), obj)
	assert.Same(t, boom, err)

	_, err = ToString(context.Background(), New(nil, nil))
	assert.True(t, IsTypeError(err))
}

func TestToBoolean(t *testing.T) {
	assert.False(t, ToBoolean(Undefined))
	assert.False(t, ToBoolean(Null))
	assert.False(t, ToBoolean(0.0))
	assert.False(t, ToBoolean(math.NaN()))
	assert.False(t, ToBoolean(text.Empty))
	assert.True(t, ToBoolean(text.FromString("x")))
	assert.True(t, ToBoolean(New(nil, nil)))
	assert.True(t, ToBoolean(true))
}

func TestRequireObjectCoercible(t *testing.T) {
	assert.NoError(t, RequireObjectCoercible(String(""), "f"))
	assert.True(t, IsTypeError(RequireObjectCoercible(Null, "f")))
	assert.True(t, IsTypeError(RequireObjectCoercible(Undefined, "f")))
}
