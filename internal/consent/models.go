// Package consent implements the consent registry: at most one active grant
// per (grantor, grantee) pair, with validity computed from the stored time
// window rather than stored state. Expired grants persist until revoked or
// replaced.
package consent

import (
	"time"

	id "medledger/pkg/domain"
)

// Grant is a time-windowed authorization allowing the grantee to access the
// grantor's data at the given level. Keyed by (Grantor, Grantee); a new grant
// for the same pair replaces the prior one entirely.
type Grant struct {
	Grantor    id.Principal
	Grantee    id.Principal
	Level      id.AccessLevel
	ValidFrom  time.Time
	ValidUntil time.Time
	Purpose    string
}

// IsValidAt reports whether the grant authorizes access at the given instant.
// Bounds are inclusive.
func (g Grant) IsValidAt(now time.Time) bool {
	return !now.Before(g.ValidFrom) && !now.After(g.ValidUntil)
}

// Status is the read-model returned by Check. Absence of a grant is a zero
// Status with Valid=false, never an error.
type Status struct {
	Valid      bool
	Level      id.AccessLevel
	ValidFrom  time.Time
	ValidUntil time.Time
	Purpose    string
}
