package auditlog

import (
	"context"
	"errors"
	"time"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
)

// Service enforces the audit log contract in front of a Store. Validation runs
// before any store call; a rejected append leaves the log untouched.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// LogAccess appends a new entry with the next sequence number. Duplicates are
// permitted and recorded as distinct entries. A zero timestamp defaults to
// now.
//
// Errors: CodeValidation on nil patient/accessor or empty
// resourceId/accessType.
func (s *Service) LogAccess(ctx context.Context, patient, accessor id.Principal, resourceID, accessType string, ts time.Time) (Entry, error) {
	if patient.IsNil() {
		return Entry{}, dErrors.New(dErrors.CodeValidation, "patient cannot be the nil principal")
	}
	if accessor.IsNil() {
		return Entry{}, dErrors.New(dErrors.CodeValidation, "accessor cannot be the nil principal")
	}
	if resourceID == "" {
		return Entry{}, dErrors.New(dErrors.CodeValidation, "resourceId cannot be empty")
	}
	if accessType == "" {
		return Entry{}, dErrors.New(dErrors.CodeValidation, "accessType cannot be empty")
	}
	if ts.IsZero() {
		ts = s.now()
	}

	entry, err := s.store.Append(ctx, Entry{
		Patient:    patient,
		Accessor:   accessor,
		ResourceID: resourceID,
		AccessType: accessType,
		Timestamp:  ts,
	})
	if err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "append access log entry")
	}
	return entry, nil
}

// CountForPatient returns the number of entries indexed under the patient.
func (s *Service) CountForPatient(ctx context.Context, patient id.Principal) (int, error) {
	count, err := s.store.CountForPatient(ctx, patient)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count access log entries")
	}
	return count, nil
}

// EntryForPatient returns the patient's entry at the given position in
// insertion order.
//
// Errors: CodeOutOfRange when index is negative or >= CountForPatient.
func (s *Service) EntryForPatient(ctx context.Context, patient id.Principal, index int) (Entry, error) {
	entry, err := s.store.EntryForPatient(ctx, patient, index)
	if err != nil {
		if errors.Is(err, sentinel.ErrOutOfRange) {
			return Entry{}, dErrors.Newf(dErrors.CodeOutOfRange, "index %d out of range", index)
		}
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "read access log entry")
	}
	return entry, nil
}

// EntriesInTimeRange returns up to max of the patient's entries whose
// timestamp falls in [start, end], in insertion order.
//
// Errors: CodeValidation when start is after end.
func (s *Service) EntriesInTimeRange(ctx context.Context, patient id.Principal, start, end time.Time, max int) ([]Entry, error) {
	if start.After(end) {
		return nil, dErrors.New(dErrors.CodeValidation, "startTime must not be after endTime")
	}
	entries, err := s.store.EntriesInTimeRange(ctx, patient, start, end, max)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "query access log range")
	}
	return entries, nil
}

// EntriesByAccessor returns up to max entries recorded for the accessor, in
// insertion order.
func (s *Service) EntriesByAccessor(ctx context.Context, accessor id.Principal, max int) ([]Entry, error) {
	entries, err := s.store.EntriesByAccessor(ctx, accessor, max)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "query access log by accessor")
	}
	return entries, nil
}
