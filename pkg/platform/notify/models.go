// Package notify carries the post-commit notification contract. Every ledger
// mutation emits exactly one event after its registry has committed; delivery
// to external sinks is at-least-once, in order within one registry, with no
// ordering guarantee across registries. Consumers must apply idempotently.
package notify

import (
	"time"

	id "medledger/pkg/domain"
)

// Registry names the ledger partition an event belongs to. Ordering guarantees
// hold within one registry only.
type Registry string

const (
	RegistryConsent   Registry = "consent"
	RegistryAudit     Registry = "audit"
	RegistryIntegrity Registry = "integrity"
)

// EventType identifies what committed.
type EventType string

const (
	EventConsentGranted EventType = "consent_granted"
	EventConsentRevoked EventType = "consent_revoked"
	EventAccessLogged   EventType = "access_logged"
	EventHashStored     EventType = "hash_stored"
	EventHashUpdated    EventType = "hash_updated"
)

// eventRegistries maps each event type to its registry partition.
var eventRegistries = map[EventType]Registry{
	EventConsentGranted: RegistryConsent,
	EventConsentRevoked: RegistryConsent,
	EventAccessLogged:   RegistryAudit,
	EventHashStored:     RegistryIntegrity,
	EventHashUpdated:    RegistryIntegrity,
}

// Registry returns the partition for this event type.
func (t EventType) Registry() Registry {
	return eventRegistries[t]
}

// Event is emitted from the ledger after commit. Keep it transport-agnostic so
// channel, Kafka, and test sinks can fan out the same value. Fields are flat;
// only the ones relevant to the event type are populated.
// Principals serialize as canonical UUID strings and fields of other
// registries are omitted, so sinks see the same identifiers the HTTP API uses.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Consent fields
	Grantor    id.Principal   `json:"grantor,omitzero"`
	Grantee    id.Principal   `json:"grantee,omitzero"`
	Level      id.AccessLevel `json:"access_level,omitempty"`
	ValidFrom  time.Time      `json:"valid_from,omitzero"`
	ValidUntil time.Time      `json:"valid_until,omitzero"`
	Purpose    string         `json:"purpose,omitempty"`

	// Audit fields
	Sequence   uint64       `json:"sequence,omitempty"`
	Patient    id.Principal `json:"patient,omitzero"`
	Accessor   id.Principal `json:"accessor,omitzero"`
	ResourceID string       `json:"resource_id,omitempty"`
	AccessType string       `json:"access_type,omitempty"`

	// Integrity fields
	ContentID   string       `json:"content_id,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
	Owner       id.Principal `json:"owner,omitzero"`
	OldDigest   string       `json:"old_digest,omitempty"`
	NewDigest   string       `json:"new_digest,omitempty"`
}
