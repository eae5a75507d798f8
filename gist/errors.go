package gist

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrUnknown is an unknown error.
	ErrUnknown ErrorCode = iota
	// ErrEmptyContent is returned when trying to create a gist with empty content.
	ErrEmptyContent
	// ErrUnauthorized is returned when the token is missing, invalid or lacks the gist scope.
	ErrUnauthorized
	// ErrRateLimited is returned when the API rate limit is exhausted.
	ErrRateLimited
	// ErrNotFound is returned when a gist doesn't exist.
	ErrNotFound
	// ErrValidation is returned when the API rejects the request body.
	ErrValidation
	// ErrBadRequest is returned for invalid requests.
	ErrBadRequest
	// ErrServer is returned for server-side errors.
	ErrServer
)

// Error represents an error from the GitHub Gists API.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gist: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("gist: %s", e.Message)
}

func codeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// IsNotFound returns true if the error indicates the gist was not found.
func IsNotFound(err error) bool {
	return codeOf(err) == ErrNotFound
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return codeOf(err) == ErrRateLimited
}

// IsUnauthorized returns true if the error indicates bad or missing credentials.
func IsUnauthorized(err error) bool {
	return codeOf(err) == ErrUnauthorized
}
