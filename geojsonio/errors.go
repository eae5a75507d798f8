package geojsonio

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrUnknown is an unknown error.
	ErrUnknown ErrorCode = iota
	// ErrOversize is returned when the payload fits no transport: it is over
	// RemoteLimit, or over InlineLimit with the remote store disallowed.
	ErrOversize
	// ErrStoreUnavailable is returned when the remote store is needed but no
	// store is configured.
	ErrStoreUnavailable
	// ErrStoreRequest is returned when the remote store call itself fails.
	ErrStoreRequest
	// ErrInvalidReference is returned when a URL carries neither a data nor an id fragment.
	ErrInvalidReference
)

func (c ErrorCode) String() string {
	switch c {
	case ErrOversize:
		return "oversize"
	case ErrStoreUnavailable:
		return "store_unavailable"
	case ErrStoreRequest:
		return "store_request"
	case ErrInvalidReference:
		return "invalid_reference"
	default:
		return "unknown"
	}
}

// Error represents a failure to build or parse a viewer reference.
type Error struct {
	Code    ErrorCode
	Message string
	// Err is the underlying cause, set for ErrStoreRequest.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geojsonio: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("geojsonio: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode carried by err, or ErrUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// IsOversize returns true if the payload exceeded every supported transport.
func IsOversize(err error) bool {
	return CodeOf(err) == ErrOversize
}

// IsStoreUnavailable returns true if no remote store was configured.
func IsStoreUnavailable(err error) bool {
	return CodeOf(err) == ErrStoreUnavailable
}

// IsStoreRequest returns true if the remote store call failed.
func IsStoreRequest(err error) bool {
	return CodeOf(err) == ErrStoreRequest
}

// IsInvalidReference returns true if a URL could not be parsed as a viewer reference.
func IsInvalidReference(err error) bool {
	return CodeOf(err) == ErrInvalidReference
}
