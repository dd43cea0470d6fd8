package integrity

import (
	"context"
	"errors"
	"time"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
)

// Service enforces the integrity contract in front of a Store. Validation runs
// before any store call; a rejected operation leaves state untouched.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// StoreOrUpdate registers a digest for contentID, or replaces the current one
// while preserving the record's owner and creation metadata. A zero timestamp
// defaults to now.
//
// Errors: CodeValidation on empty contentID/digest/contentType or nil owner.
func (s *Service) StoreOrUpdate(ctx context.Context, owner id.Principal, contentID, digest, contentType string, ts time.Time) (StoreResult, error) {
	if owner.IsNil() {
		return StoreResult{}, dErrors.New(dErrors.CodeValidation, "owner cannot be the nil principal")
	}
	if contentID == "" {
		return StoreResult{}, dErrors.New(dErrors.CodeValidation, "contentId cannot be empty")
	}
	if digest == "" {
		return StoreResult{}, dErrors.New(dErrors.CodeValidation, "digest cannot be empty")
	}
	if contentType == "" {
		return StoreResult{}, dErrors.New(dErrors.CodeValidation, "contentType cannot be empty")
	}
	if ts.IsZero() {
		ts = s.now()
	}

	record := Record{
		ContentID:   contentID,
		Digest:      digest,
		ContentType: contentType,
		Owner:       owner,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Exists:      true,
	}
	prev, existed, err := s.store.Upsert(ctx, record)
	if err != nil {
		return StoreResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "store integrity record")
	}
	if existed {
		record.Owner = prev.Owner
		record.CreatedAt = prev.CreatedAt
	}
	return StoreResult{Record: record, Created: !existed, OldDigest: prev.Digest}, nil
}

// Verify compares a candidate digest against the stored one using full-string
// equality. A missing record reports IsValid=false with empty fields rather
// than an error.
func (s *Service) Verify(ctx context.Context, contentID, candidateDigest string) (VerifyResult, error) {
	record, err := s.store.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return VerifyResult{}, nil
		}
		return VerifyResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "read integrity record")
	}
	return VerifyResult{
		IsValid:      record.Digest == candidateDigest,
		StoredDigest: record.Digest,
		Timestamp:    record.UpdatedAt,
		ContentType:  record.ContentType,
	}, nil
}

// GetDetails returns the record, or an Exists=false sentinel when absent.
func (s *Service) GetDetails(ctx context.Context, contentID string) (Record, error) {
	record, err := s.store.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{ContentID: contentID}, nil
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "read integrity record")
	}
	return record, nil
}

// CountByOwner returns how many content ids the owner has registered.
func (s *Service) CountByOwner(ctx context.Context, owner id.Principal) (int, error) {
	count, err := s.store.CountByOwner(ctx, owner)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count integrity records")
	}
	return count, nil
}

// ContentIDAt returns the owner's content id at the given position in
// registration order.
//
// Errors: CodeOutOfRange when index is negative or beyond the owner's count.
func (s *Service) ContentIDAt(ctx context.Context, owner id.Principal, index int) (string, error) {
	contentID, err := s.store.ContentIDAt(ctx, owner, index)
	if err != nil {
		if errors.Is(err, sentinel.ErrOutOfRange) {
			return "", dErrors.Newf(dErrors.CodeOutOfRange, "index %d out of range", index)
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "read integrity record id")
	}
	return contentID, nil
}
