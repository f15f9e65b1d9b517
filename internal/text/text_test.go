package text

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	tx := FromString("aπ😀b")
	assert.Equal(t, []uint16{'a', 0x03C0, 0xD83D, 0xDE00, 'b'}, tx.Units())
	assert.Equal(t, 5, tx.Len())
	assert.Equal(t, "aπ😀b", tx.String())

	assert.Equal(t, 0, FromString("").Len())
	assert.True(t, FromString("").Equal(Empty))
}

func TestFromUnits_Copies(t *testing.T) {
	units := []uint16{'a', 'b'}
	tx := FromUnits(units)
	units[0] = 'z'
	assert.Equal(t, uint16('a'), tx.At(0))
}

func TestSlice(t *testing.T) {
	tx := FromString("aπ😀b")

	assert.True(t, tx.Slice(2, 4).Equal(FromString("😀")))
	assert.True(t, tx.Slice(1, 1).Equal(Empty))
	assert.Equal(t, []uint16{0xD83D}, tx.Slice(2, 3).Units())
	assert.Panics(t, func() { tx.Slice(4, 6) })
}

func TestString_LoneSurrogate(t *testing.T) {
	tx := FromUnits([]uint16{'a', 0xD800})
	assert.Equal(t, "a�", tx.String())
	assert.False(t, tx.IsWellFormed())
	assert.True(t, FromString("😀").IsWellFormed())
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		in   Text
		want string
	}{
		{"empty", Empty, `""`},
		{"plain", FromString("aπ😀b"), `"aπ😀b"`},
		{"escapes", FromString("\"\\\n\t\x01"), `"\"\\\n\t\u0001"`},
		{"lone lead", FromUnits([]uint16{0xD83D, 'x'}), `"\ud83dx"`},
		{"lone trail", FromUnits([]uint16{0xDE00}), `"\ude00"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Quote())
		})
	}
}

func TestJSON_PreservesLoneSurrogates(t *testing.T) {
	in := FromUnits([]uint16{'a', 0xD83D, 0xD83D, 0xDE00, 0xDC00})

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Text
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Units(), out.Units())
}

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint16
		wantErr bool
	}{
		{name: "string", input: `"hi"`, want: []uint16{'h', 'i'}},
		{name: "escaped pair", input: `"\ud83d\ude00"`, want: []uint16{0xD83D, 0xDE00}},
		{name: "raw astral", input: `"😀"`, want: []uint16{0xD83D, 0xDE00}},
		{name: "units array", input: `[97, 55357]`, want: []uint16{'a', 0xD83D}},
		{name: "null", input: `null`, want: nil},
		{name: "number", input: `42`, wantErr: true},
		{name: "bad escape", input: `"\q"`, wantErr: true},
		{name: "short unicode escape", input: `"\u12"`, wantErr: true},
		{name: "unit out of range", input: `[70000]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Units())
		})
	}
}
