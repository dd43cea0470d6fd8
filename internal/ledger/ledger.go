// Package ledger is the single operation boundary over the three registries.
// Every mutation commits atomically inside its registry and emits exactly one
// post-commit notification; reads pass straight through to the registries.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medledger/internal/auditlog"
	"medledger/internal/consent"
	"medledger/internal/integrity"
	"medledger/internal/platform/metrics"
	id "medledger/pkg/domain"
	"medledger/pkg/platform/notify"
)

// Ledger binds the registries to the notification publisher and the
// observability instruments. Construct once at process start and pass the
// handle explicitly; there is no ambient global state.
type Ledger struct {
	consent   *consent.Service
	integrity *integrity.Service
	audit     *auditlog.Service
	publisher notify.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func New(
	consentSvc *consent.Service,
	integritySvc *integrity.Service,
	auditSvc *auditlog.Service,
	publisher notify.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Ledger {
	return &Ledger{
		consent:   consentSvc,
		integrity: integritySvc,
		audit:     auditSvc,
		publisher: publisher,
		metrics:   m,
		tracer:    otel.Tracer("medledger/ledger"),
		logger:    logger,
	}
}

// emit publishes a post-commit notification. The registry mutation has already
// committed, so a failed emission (shutdown mid-flight) is logged rather than
// surfaced: the call's outcome is the committed state.
func (l *Ledger) emit(ctx context.Context, event notify.Event) {
	if err := l.publisher.Emit(ctx, event); err != nil {
		l.logger.WarnContext(ctx, "post-commit notification dropped",
			"event_type", string(event.Type),
			"error", err,
		)
	}
}

// --- Consent Registry ---

// GrantConsent atomically replaces any prior grant for the pair and emits
// ConsentGranted.
func (l *Ledger) GrantConsent(ctx context.Context, grant consent.Grant) (consent.Grant, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.GrantConsent")
	defer span.End()

	committed, err := l.consent.Grant(ctx, grant)
	if err != nil {
		return consent.Grant{}, err
	}
	l.metrics.ConsentGrants.Inc()
	l.emit(ctx, notify.Event{
		Type:       notify.EventConsentGranted,
		Grantor:    committed.Grantor,
		Grantee:    committed.Grantee,
		Level:      committed.Level,
		ValidFrom:  committed.ValidFrom,
		ValidUntil: committed.ValidUntil,
		Purpose:    committed.Purpose,
	})
	return committed, nil
}

// RevokeConsent deletes the pair's grant and emits ConsentRevoked.
func (l *Ledger) RevokeConsent(ctx context.Context, grantor, grantee id.Principal) error {
	ctx, span := l.tracer.Start(ctx, "ledger.RevokeConsent")
	defer span.End()

	if err := l.consent.Revoke(ctx, grantor, grantee); err != nil {
		return err
	}
	l.metrics.ConsentRevocations.Inc()
	l.emit(ctx, notify.Event{
		Type:    notify.EventConsentRevoked,
		Grantor: grantor,
		Grantee: grantee,
	})
	return nil
}

// CheckConsent is a pure read of the pair's current status.
func (l *Ledger) CheckConsent(ctx context.Context, grantor, grantee id.Principal) (consent.Status, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.CheckConsent")
	defer span.End()
	return l.consent.Check(ctx, grantor, grantee)
}

// HasValidConsent is the boolean shorthand for CheckConsent().Valid.
func (l *Ledger) HasValidConsent(ctx context.Context, grantor, grantee id.Principal) (bool, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.HasValidConsent")
	defer span.End()
	return l.consent.HasValidConsent(ctx, grantor, grantee)
}

// --- Access Audit Log ---

// LogAccess appends an immutable entry and emits AccessLogged.
func (l *Ledger) LogAccess(ctx context.Context, patient, accessor id.Principal, resourceID, accessType string, ts time.Time) (auditlog.Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.LogAccess")
	defer span.End()

	entry, err := l.audit.LogAccess(ctx, patient, accessor, resourceID, accessType, ts)
	if err != nil {
		return auditlog.Entry{}, err
	}
	l.metrics.AccessesLogged.Inc()
	l.emit(ctx, notify.Event{
		Type:       notify.EventAccessLogged,
		Sequence:   entry.Sequence,
		Patient:    entry.Patient,
		Accessor:   entry.Accessor,
		ResourceID: entry.ResourceID,
		AccessType: entry.AccessType,
		Timestamp:  entry.Timestamp,
	})
	return entry, nil
}

func (l *Ledger) AccessCountForPatient(ctx context.Context, patient id.Principal) (int, error) {
	return l.audit.CountForPatient(ctx, patient)
}

func (l *Ledger) AccessEntryForPatient(ctx context.Context, patient id.Principal, index int) (auditlog.Entry, error) {
	return l.audit.EntryForPatient(ctx, patient, index)
}

func (l *Ledger) AccessEntriesInTimeRange(ctx context.Context, patient id.Principal, start, end time.Time, max int) ([]auditlog.Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.AccessEntriesInTimeRange")
	defer span.End()
	return l.audit.EntriesInTimeRange(ctx, patient, start, end, max)
}

func (l *Ledger) AccessEntriesByAccessor(ctx context.Context, accessor id.Principal, max int) ([]auditlog.Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.AccessEntriesByAccessor")
	defer span.End()
	return l.audit.EntriesByAccessor(ctx, accessor, max)
}

// --- Integrity Registry ---

// StoreOrUpdateDigest registers or replaces a content digest and emits
// HashStored on first store, HashUpdated with both digests on replacement.
func (l *Ledger) StoreOrUpdateDigest(ctx context.Context, owner id.Principal, contentID, digest, contentType string, ts time.Time) (integrity.StoreResult, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.StoreOrUpdateDigest")
	defer span.End()

	result, err := l.integrity.StoreOrUpdate(ctx, owner, contentID, digest, contentType, ts)
	if err != nil {
		return integrity.StoreResult{}, err
	}
	l.metrics.DigestStores.Inc()
	event := notify.Event{
		ContentID:   result.Record.ContentID,
		ContentType: result.Record.ContentType,
		Owner:       result.Record.Owner,
		NewDigest:   result.Record.Digest,
	}
	if result.Created {
		event.Type = notify.EventHashStored
	} else {
		event.Type = notify.EventHashUpdated
		event.OldDigest = result.OldDigest
	}
	l.emit(ctx, event)
	return result, nil
}

// VerifyDigest is a pure read comparing a candidate digest to the stored one.
func (l *Ledger) VerifyDigest(ctx context.Context, contentID, candidateDigest string) (integrity.VerifyResult, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.VerifyDigest")
	defer span.End()

	result, err := l.integrity.Verify(ctx, contentID, candidateDigest)
	if err != nil {
		return integrity.VerifyResult{}, err
	}
	l.metrics.ObserveVerification(result.IsValid)
	return result, nil
}

func (l *Ledger) DigestDetails(ctx context.Context, contentID string) (integrity.Record, error) {
	return l.integrity.GetDetails(ctx, contentID)
}

func (l *Ledger) DigestCountByOwner(ctx context.Context, owner id.Principal) (int, error) {
	return l.integrity.CountByOwner(ctx, owner)
}

func (l *Ledger) DigestIDAt(ctx context.Context, owner id.Principal, index int) (string, error) {
	return l.integrity.ContentIDAt(ctx, owner, index)
}
