package consent

import (
	"context"

	id "medledger/pkg/domain"
)

// Store persists consent grants. Implementations must make each call atomic
// and serialize mutations against each other: Put either fully replaces the
// pair's grant or leaves state untouched, and Delete is all-or-nothing.
//
// Stores return sentinel errors (pkg/platform/sentinel); the service layer
// translates them into coded domain errors.
type Store interface {
	Put(ctx context.Context, grant Grant) error
	Get(ctx context.Context, grantor, grantee id.Principal) (Grant, error)
	Delete(ctx context.Context, grantor, grantee id.Principal) error
}
