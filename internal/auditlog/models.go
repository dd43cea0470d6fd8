// Package auditlog implements the append-only access audit log: one growing
// arena of entries in global commit order plus per-patient and per-accessor
// position indices. Entries are never mutated or deleted.
package auditlog

import (
	"time"

	id "medledger/pkg/domain"
)

// Entry is an immutable record of one access event. Sequence is assigned at
// append time and is strictly increasing across the whole log.
type Entry struct {
	Sequence   uint64
	Patient    id.Principal
	Accessor   id.Principal
	ResourceID string
	AccessType string
	Timestamp  time.Time
}
