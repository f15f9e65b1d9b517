package object

import (
	"errors"
	"fmt"
)

// ErrorKind names the host error constructor an error surfaces as
type ErrorKind string

// Host error kinds
const (
	TypeError  ErrorKind = "TypeError"
	RangeError ErrorKind = "RangeError"
)

// Error is an error raised by the host itself, as opposed to one returned
// by user code during coercion or a native call
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewTypeError formats a TypeError
func NewTypeError(format string, args ...any) *Error {
	return &Error{Kind: TypeError, Message: fmt.Sprintf(format, args...)}
}

// NewRangeError formats a RangeError
func NewRangeError(format string, args ...any) *Error {
	return &Error{Kind: RangeError, Message: fmt.Sprintf(format, args...)}
}

// IsTypeError reports whether err is, or wraps, a host TypeError
func IsTypeError(err error) bool {
	var hostErr *Error
	return errors.As(err, &hostErr) && hostErr.Kind == TypeError
}
