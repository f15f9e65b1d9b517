package text

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan:
// 1. BMP units decode to themselves with a unit count of 1
// 2. Valid surrogate pairs combine into one scalar value
// 3. Lone leading and trailing surrogates pass through unmodified
// 4. Out-of-range indexes are rejected

func TestCodePointAt(t *testing.T) {
	tests := []struct {
		name  string
		units []uint16
		index int
		want  CodePoint
	}{
		{
			name:  "ascii",
			units: []uint16{'a', 'b'},
			index: 1,
			want:  CodePoint{Value: 'b', UnitCount: 1},
		},
		{
			name:  "bmp non-ascii",
			units: []uint16{0x03C0},
			index: 0,
			want:  CodePoint{Value: 'π', UnitCount: 1},
		},
		{
			name:  "surrogate pair",
			units: []uint16{'a', 0xD83D, 0xDE00},
			index: 1,
			want:  CodePoint{Value: 0x1F600, UnitCount: 2, Paired: true},
		},
		{
			name:  "highest scalar value",
			units: []uint16{0xDBFF, 0xDFFF},
			index: 0,
			want:  CodePoint{Value: 0x10FFFF, UnitCount: 2, Paired: true},
		},
		{
			name:  "lone lead at end",
			units: []uint16{'a', 0xD83D},
			index: 1,
			want:  CodePoint{Value: 0xD83D, UnitCount: 1},
		},
		{
			name:  "lead followed by non surrogate",
			units: []uint16{0xD83D, 'x'},
			index: 0,
			want:  CodePoint{Value: 0xD83D, UnitCount: 1},
		},
		{
			name:  "lead followed by lead",
			units: []uint16{0xD83D, 0xD83D, 0xDE00},
			index: 0,
			want:  CodePoint{Value: 0xD83D, UnitCount: 1},
		},
		{
			name:  "lone trail",
			units: []uint16{0xDE00, 0xD83D},
			index: 0,
			want:  CodePoint{Value: 0xDE00, UnitCount: 1},
		},
		{
			name:  "trail half of a pair decoded on its own",
			units: []uint16{0xD83D, 0xDE00},
			index: 1,
			want:  CodePoint{Value: 0xDE00, UnitCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CodePointAt(tt.units, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodePointAt_OutOfRange(t *testing.T) {
	for _, index := range []int{-1, 2, 10} {
		_, err := CodePointAt([]uint16{'a', 'b'}, index)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	}

	_, err := CodePointAt(nil, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSurrogateClassification(t *testing.T) {
	assert.True(t, IsLeadSurrogate(0xD800))
	assert.True(t, IsLeadSurrogate(0xDBFF))
	assert.False(t, IsLeadSurrogate(0xDC00))
	assert.True(t, IsTrailSurrogate(0xDC00))
	assert.True(t, IsTrailSurrogate(0xDFFF))
	assert.False(t, IsTrailSurrogate(0xDBFF))
	assert.False(t, IsTrailSurrogate(0xE000))
}
