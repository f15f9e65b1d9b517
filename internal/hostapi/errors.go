package hostapi

import "time"

// Resource limits
const (
	DefaultMaxIterators    = 100
	DefaultIteratorTimeout = 5 * time.Minute

	// 10MB each way
	DefaultMaxRequestSize  = 10 * 1024 * 1024
	DefaultMaxResponseSize = 10 * 1024 * 1024

	// DefaultMaxSourceUnits caps the UTF-16 length of texts accepted from guests
	DefaultMaxSourceUnits = 1 << 20
)

// Error codes
const (
	ErrorCodeResponseTooLarge      = "RESPONSE_TOO_LARGE"
	ErrorCodeSetClosed             = "HOST_API_SET_CLOSED"
	ErrorCodeAPINotFound           = "API_NOT_FOUND"
	ErrorCodeMethodNotFound        = "METHOD_NOT_FOUND"
	ErrorCodeInvalidParameters     = "INVALID_PARAMETERS"
	ErrorCodeInternalError         = "INTERNAL_ERROR"
	ErrorCodeIteratorNotFound      = "ITERATOR_NOT_FOUND"
	ErrorCodeIteratorLimitExceeded = "ITERATOR_LIMIT_EXCEEDED"
	ErrorCodeIndexOutOfRange       = "INDEX_OUT_OF_RANGE"
	ErrorCodeSourceTooLarge        = "SOURCE_TOO_LARGE"
	ErrorCodeTypeError             = "TYPE_ERROR"
)

// WASM memory error indicators
const (
	NullPointer = uint32(0)
	ZeroLength  = uint32(0)
)

// Error is a structured host API error, serialized into error responses
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " - " + e.Details
	}
	return e.Code + ": " + e.Message
}
