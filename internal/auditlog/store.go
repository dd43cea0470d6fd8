package auditlog

import (
	"context"
	"time"

	id "medledger/pkg/domain"
)

// Store persists the append-only log. Append assigns the next sequence number
// and must serialize against concurrent appends so sequences are strictly
// increasing with no gaps observable mid-commit. Reads observe the last
// committed state.
//
// Bounded queries return at most max entries, in insertion order, without
// over-collecting or re-sorting; max <= 0 yields an empty result.
type Store interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	CountForPatient(ctx context.Context, patient id.Principal) (int, error)
	EntryForPatient(ctx context.Context, patient id.Principal, index int) (Entry, error)
	EntriesInTimeRange(ctx context.Context, patient id.Principal, start, end time.Time, max int) ([]Entry, error)
	EntriesByAccessor(ctx context.Context, accessor id.Principal, max int) ([]Entry, error)
}
