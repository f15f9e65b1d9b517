// Package iterator implements the String Iterator: a stepwise walk over a
// text value that yields one code point per step, keeping surrogate pairs
// together and passing lone surrogates through unchanged.
package iterator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/okra-platform/striter/internal/object"
	"github.com/okra-platform/striter/internal/text"
)

// StringIterator owns the source value and the iteration state.
//
// The source is converted to text on every step rather than once at
// creation, so coercion side effects of an object source are observable per
// step. Not safe for concurrent use.
type StringIterator struct {
	source object.Value
	state  State
}

// New creates an iterator over source positioned at the first code unit
func New(source object.Value) *StringIterator {
	return &StringIterator{
		source: source,
		state:  Active{Cursor: 0},
	}
}

// State returns the current iteration state
func (it *StringIterator) State() State {
	return it.state
}

// Step advances the iterator by one code point.
//
// It returns the code units covering that code point as a text value, or
// done once the source is consumed. Calls after done keep returning done
// without touching the source. If converting the source fails the error is
// returned and the state is left as it was.
//
// The source is converted once per call and the yielded value is sliced
// from that same conversion. An engine that converts again to take the
// substring would observe twice as many toString calls per yielding step.
//
// A toString override that steps this same iterator while being converted
// is not guarded against: the outer step resumes from wherever the inner
// steps left the cursor.
func (it *StringIterator) Step(ctx context.Context) (text.Text, bool, error) {
	if _, ok := it.state.(Active); !ok {
		return text.Empty, true, nil
	}

	s, err := object.ToString(ctx, it.source)
	if err != nil {
		return text.Empty, false, err
	}

	// Re-read: conversion may have re-entered and moved the cursor
	active, ok := it.state.(Active)
	if !ok {
		return text.Empty, true, nil
	}

	if active.Cursor >= s.Len() {
		it.state = Exhausted{}
		it.source = nil
		zerolog.Ctx(ctx).Trace().Int("length", s.Len()).Msg("string iterator exhausted")
		return text.Empty, true, nil
	}

	cp := mustCodePointAt(s.Units(), active.Cursor)

	next := active.Cursor + cp.UnitCount
	it.state = Active{Cursor: next}
	return s.Slice(active.Cursor, next), false, nil
}

// mustCodePointAt decodes at a cursor already checked against the length.
// Failing here means that check was skipped.
func mustCodePointAt(units []uint16, cursor int) text.CodePoint {
	cp, err := text.CodePointAt(units, cursor)
	if err != nil {
		panic(fmt.Sprintf("string iterator: invalid code point position: %v", err))
	}
	return cp
}
