package integrity

import (
	"context"

	id "medledger/pkg/domain"
)

// Store persists integrity records. Upsert is the single mutation and must be
// atomic: on an existing ContentID it replaces digest/contentType/UpdatedAt,
// preserves Owner and CreatedAt, and returns the previous record. Owner
// enumeration follows first-registration order and never reorders on update.
type Store interface {
	Upsert(ctx context.Context, record Record) (prev Record, existed bool, err error)
	Get(ctx context.Context, contentID string) (Record, error)
	CountByOwner(ctx context.Context, owner id.Principal) (int, error)
	ContentIDAt(ctx context.Context, owner id.Principal, index int) (string, error)
}
