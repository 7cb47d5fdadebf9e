// Package domainerrors defines the coded error type shared by the draw engine,
// its services and its transports.
//
// Codes describe the category of failure, not the HTTP status. Transports map
// codes to statuses with ToHTTPStatus so services stay transport-agnostic.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidArgument covers unknown categories, unknown districts and
	// non-positive counts. Rejected before any state mutation.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeBadRequest covers malformed transport input (bad JSON, missing form fields).
	CodeBadRequest Code = "bad_request"
	// CodeSchema is returned when a roster lacks a required column set entirely.
	CodeSchema Code = "schema_error"
	// CodeInsufficientPool means fewer eligible, unexcluded organizations remain
	// than were requested. Session state is unchanged.
	CodeInsufficientPool Code = "insufficient_pool"
	// CodeNotFound is returned for unknown sessions and rosters.
	CodeNotFound Code = "not_found"
	// CodePayloadTooLarge is returned when an upload exceeds the configured limit.
	CodePayloadTooLarge Code = "payload_too_large"
	// CodeInternal hides unexpected failures from callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It optionally wraps an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether any error in err's chain is an *Error with the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the code of the outermost *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost *Error in err's chain.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to the HTTP status used by the JSON API.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidArgument, CodeBadRequest:
		return http.StatusBadRequest
	case CodeSchema:
		return http.StatusUnprocessableEntity
	case CodeInsufficientPool:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
