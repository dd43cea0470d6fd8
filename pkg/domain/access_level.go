package domain

import dErrors "medledger/pkg/domain-errors"

// AccessLevel is the scope of an authorized access. The ledger stores it
// verbatim; interpretation belongs to the caller.
type AccessLevel string

// Supported access levels.
const (
	AccessLevelFull      AccessLevel = "full"
	AccessLevelLimited   AccessLevel = "limited"
	AccessLevelTemporary AccessLevel = "temporary"
)

// validAccessLevels is the single source of truth for supported levels.
var validAccessLevels = map[AccessLevel]bool{
	AccessLevelFull:      true,
	AccessLevelLimited:   true,
	AccessLevelTemporary: true,
}

// ParseAccessLevel constructs an AccessLevel from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseAccessLevel(s string) (AccessLevel, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "access level cannot be empty")
	}
	l := AccessLevel(s)
	if !validAccessLevels[l] {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported access level: "+s)
	}
	return l, nil
}

// IsValid checks if the level is one of the supported enum values.
func (l AccessLevel) IsValid() bool {
	return validAccessLevels[l]
}

// String returns the string representation of the level.
func (l AccessLevel) String() string {
	return string(l)
}
