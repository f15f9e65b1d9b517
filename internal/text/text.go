// Package text provides an immutable UTF-16 text value and the decoder used
// to walk it one code point at a time.
//
// Text mirrors how script hosts store strings: as 16-bit code units that may
// contain unpaired surrogates. Go strings cannot carry those, so conversion
// to a Go string is lossy while the unit sequence itself is preserved
// exactly.
package text

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Text is an immutable sequence of UTF-16 code units.
// The zero value is the empty text.
type Text struct {
	units []uint16
}

// Empty is the text with no code units
var Empty = Text{}

// FromString encodes a Go string as UTF-16.
// Invalid UTF-8 bytes are encoded as U+FFFD.
func FromString(s string) Text {
	if s == "" {
		return Empty
	}
	return Text{units: utf16.Encode([]rune(s))}
}

// FromUnits copies the given code units into a new Text.
// The units are not validated; lone surrogates are kept.
func FromUnits(units []uint16) Text {
	if len(units) == 0 {
		return Empty
	}
	cp := make([]uint16, len(units))
	copy(cp, units)
	return Text{units: cp}
}

// Len returns the length in code units
func (t Text) Len() int {
	return len(t.units)
}

// Units returns the underlying code units. Callers must not modify the result.
func (t Text) Units() []uint16 {
	return t.units
}

// At returns the code unit at index i
func (t Text) At(i int) uint16 {
	return t.units[i]
}

// Slice returns the text spanning code units [start, end).
// It panics if the bounds are invalid, like a slice expression.
func (t Text) Slice(start, end int) Text {
	if start == end {
		return Empty
	}
	return Text{units: t.units[start:end:end]}
}

// Equal reports whether both texts hold the same code units
func (t Text) Equal(other Text) bool {
	if len(t.units) != len(other.units) {
		return false
	}
	for i, u := range t.units {
		if other.units[i] != u {
			return false
		}
	}
	return true
}

// String decodes the text into a Go string. Lone surrogates become U+FFFD.
func (t Text) String() string {
	return string(utf16.Decode(t.units))
}

// Quote returns a double-quoted, JSON compatible representation of the text.
// Lone surrogates are written as \uXXXX escapes so no unit is lost.
func (t Text) Quote() string {
	var b strings.Builder
	b.Grow(len(t.units) + 2)
	b.WriteByte('"')
	for i := 0; i < len(t.units); {
		cp, _ := CodePointAt(t.units, i)
		i += cp.UnitCount

		r := cp.Value
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || (!cp.Paired && utf16.IsSurrogate(r)):
			writeUnitEscape(&b, uint16(r))
		case r == 0x2028 || r == 0x2029:
			writeUnitEscape(&b, uint16(r))
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeUnitEscape(b *strings.Builder, u uint16) {
	b.WriteString(`\u`)
	hex := strconv.FormatUint(uint64(u), 16)
	for i := len(hex); i < 4; i++ {
		b.WriteByte('0')
	}
	b.WriteString(hex)
}

// IsWellFormed reports whether the text contains no lone surrogates
func (t Text) IsWellFormed() bool {
	for i := 0; i < len(t.units); {
		cp, _ := CodePointAt(t.units, i)
		if !cp.Paired && !utf8.ValidRune(cp.Value) {
			return false
		}
		i += cp.UnitCount
	}
	return true
}
