package text

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// Surrogate ranges in UTF-16
const (
	leadSurrogateMin  = 0xD800
	leadSurrogateMax  = 0xDBFF
	trailSurrogateMin = 0xDC00
	trailSurrogateMax = 0xDFFF
)

// ErrIndexOutOfRange is returned by CodePointAt when the index does not address a code unit
var ErrIndexOutOfRange = errors.New("code unit index out of range")

// CodePoint is a single decoded position of a UTF-16 sequence
type CodePoint struct {
	// Value is the scalar value, or the raw unit for a lone surrogate
	Value rune
	// UnitCount is the number of code units consumed (1 or 2)
	UnitCount int
	// Paired is true if Value was combined from a surrogate pair
	Paired bool
}

// IsLeadSurrogate reports whether u is a leading (high) surrogate
func IsLeadSurrogate(u uint16) bool {
	return u >= leadSurrogateMin && u <= leadSurrogateMax
}

// IsTrailSurrogate reports whether u is a trailing (low) surrogate
func IsTrailSurrogate(u uint16) bool {
	return u >= trailSurrogateMin && u <= trailSurrogateMax
}

// CodePointAt decodes the code point starting at index.
//
// A leading surrogate followed by a trailing surrogate is combined into one
// scalar value spanning two units. Any other unit, including a lone leading or
// trailing surrogate, is returned as is with a unit count of 1.
func CodePointAt(units []uint16, index int) (CodePoint, error) {
	if index < 0 || index >= len(units) {
		return CodePoint{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(units))
	}

	first := units[index]
	if !IsLeadSurrogate(first) || index+1 == len(units) {
		return CodePoint{Value: rune(first), UnitCount: 1}, nil
	}

	second := units[index+1]
	if !IsTrailSurrogate(second) {
		return CodePoint{Value: rune(first), UnitCount: 1}, nil
	}

	return CodePoint{
		Value:     utf16.DecodeRune(rune(first), rune(second)),
		UnitCount: 2,
		Paired:    true,
	}, nil
}
