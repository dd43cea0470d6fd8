package consent

import (
	"context"
	"errors"
	"time"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
)

// Service enforces the consent contract in front of a Store. Validation runs
// before any store call, so a rejected operation leaves state untouched and
// callers can retry after fixing input with no cleanup.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Grant atomically replaces any prior grant for the (grantor, grantee) pair.
//
// Errors: CodeValidation when grantee is the nil principal, the window is
// inverted, or ValidUntil is not strictly after the current time.
func (s *Service) Grant(ctx context.Context, grant Grant) (Grant, error) {
	if grant.Grantor.IsNil() {
		return Grant{}, dErrors.New(dErrors.CodeValidation, "grantor cannot be the nil principal")
	}
	if grant.Grantee.IsNil() {
		return Grant{}, dErrors.New(dErrors.CodeValidation, "grantee cannot be the nil principal")
	}
	if !grant.Level.IsValid() {
		return Grant{}, dErrors.New(dErrors.CodeValidation, "unsupported access level: "+string(grant.Level))
	}
	if !grant.ValidFrom.Before(grant.ValidUntil) {
		return Grant{}, dErrors.New(dErrors.CodeValidation, "validFrom must be before validUntil")
	}
	if !grant.ValidUntil.After(s.now()) {
		return Grant{}, dErrors.New(dErrors.CodeValidation, "validUntil must be in the future")
	}
	if err := s.store.Put(ctx, grant); err != nil {
		return Grant{}, dErrors.Wrap(err, dErrors.CodeInternal, "store consent grant")
	}
	return grant, nil
}

// Revoke deletes the grant for the pair.
//
// Errors: CodeNotFound when no grant exists or grantee is the nil principal.
func (s *Service) Revoke(ctx context.Context, grantor, grantee id.Principal) error {
	if grantee.IsNil() {
		return dErrors.New(dErrors.CodeNotFound, "no consent grant for the nil principal")
	}
	err := s.store.Delete(ctx, grantor, grantee)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "consent grant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "revoke consent grant")
	}
	return nil
}

// Check is a pure read. Absence is reported as a zero Status with Valid=false,
// never as an error, so callers can distinguish "not authorized" from
// "malformed request".
func (s *Service) Check(ctx context.Context, grantor, grantee id.Principal) (Status, error) {
	grant, err := s.store.Get(ctx, grantor, grantee)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Status{}, nil
		}
		return Status{}, dErrors.Wrap(err, dErrors.CodeInternal, "read consent grant")
	}
	return Status{
		Valid:      grant.IsValidAt(s.now()),
		Level:      grant.Level,
		ValidFrom:  grant.ValidFrom,
		ValidUntil: grant.ValidUntil,
		Purpose:    grant.Purpose,
	}, nil
}

// HasValidConsent is the boolean shorthand for Check().Valid.
func (s *Service) HasValidConsent(ctx context.Context, grantor, grantee id.Principal) (bool, error) {
	status, err := s.Check(ctx, grantor, grantee)
	if err != nil {
		return false, err
	}
	return status.Valid, nil
}
