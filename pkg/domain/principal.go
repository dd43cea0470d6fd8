// Package domain holds the value types shared across the ledger: principals,
// access levels, and their trust-boundary parsers.
package domain

import (
	"github.com/google/uuid"

	dErrors "medledger/pkg/domain-errors"
)

// Principal is the opaque authenticated identity of an actor (patient,
// provider, accessor). The ledger neither issues nor verifies identities; it
// only rejects the nil principal as invalid input.
//
// Usage: construct via ParsePrincipal at trust boundaries to enforce the
// format; direct casting bypasses validation.
type Principal uuid.UUID

// NilPrincipal is the zero value, treated as invalid input by every mutation.
var NilPrincipal Principal

// ParsePrincipal constructs a Principal from external input.
//
// Errors: returns CodeValidation when the value is empty, malformed, or the
// nil UUID; no other errors are expected.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return NilPrincipal, dErrors.New(dErrors.CodeValidation, "principal cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilPrincipal, dErrors.New(dErrors.CodeValidation, "principal must be a valid UUID")
	}
	if u == uuid.Nil {
		return NilPrincipal, dErrors.New(dErrors.CodeValidation, "principal cannot be the nil UUID")
	}
	return Principal(u), nil
}

// MarshalText encodes the principal as its canonical UUID string, so JSON
// payloads carry the same form the HTTP API accepts.
func (p Principal) MarshalText() ([]byte, error) {
	return uuid.UUID(p).MarshalText()
}

// UnmarshalText decodes a canonical UUID string.
func (p *Principal) UnmarshalText(text []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(text); err != nil {
		return err
	}
	*p = Principal(u)
	return nil
}

// IsNil reports whether the principal is the null identity.
func (p Principal) IsNil() bool {
	return uuid.UUID(p) == uuid.Nil
}

// String returns the canonical UUID form.
func (p Principal) String() string {
	return uuid.UUID(p).String()
}

// NewPrincipal mints a random principal. Intended for tests and seeds; real
// principals arrive from the identity layer.
func NewPrincipal() Principal {
	return Principal(uuid.New())
}
