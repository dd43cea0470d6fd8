// Package domainerrors defines the coded error type shared by all ledger
// services. Stores return sentinel errors; services wrap them with a code so
// transports can translate without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. The set is deliberately small: every failure
// the ledger can produce is either bad input, a missing record, an index past a
// collection bound, or an infrastructure fault.
type Code string

const (
	// CodeValidation covers malformed input: nil principals, empty
	// identifiers, inverted time windows.
	CodeValidation Code = "validation"

	// CodeNotFound covers operations whose contract requires an existing
	// record, such as revoking an absent grant.
	CodeNotFound Code = "not_found"

	// CodeOutOfRange covers index-based access beyond a collection's bound.
	CodeOutOfRange Code = "out_of_range"

	// CodeBadRequest covers transport-level problems (unparseable bodies,
	// missing query parameters) before input reaches a service.
	CodeBadRequest Code = "bad_request"

	// CodeInternal covers store and infrastructure failures.
	CodeInternal Code = "internal"
)

// Error carries a code plus a human-readable message. It wraps an underlying
// cause when one exists so errors.Is/As keep working through the chain.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transports always have something to map.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
