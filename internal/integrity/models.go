// Package integrity implements the integrity registry: one current digest per
// content identifier, used to detect tampering of externally stored content.
// The registry never touches content bytes; digests are computed by callers.
package integrity

import (
	"time"

	id "medledger/pkg/domain"
)

// Record is the current digest registered for a content identifier. Owner and
// CreatedAt are fixed at first store; Digest, ContentType, and UpdatedAt move
// on every subsequent store.
type Record struct {
	ContentID   string
	Digest      string
	ContentType string
	Owner       id.Principal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Exists      bool
}

// VerifyResult reports whether a candidate digest matches the stored one.
// A missing record verifies as IsValid=false with empty fields; absence and
// mismatch are deliberately indistinguishable here.
type VerifyResult struct {
	IsValid      bool
	StoredDigest string
	Timestamp    time.Time
	ContentType  string
}

// StoreResult describes what a StoreOrUpdate commit did, so the ledger can
// emit HashStored for first stores and HashUpdated{old,new} for replacements.
type StoreResult struct {
	Record    Record
	Created   bool
	OldDigest string
}
