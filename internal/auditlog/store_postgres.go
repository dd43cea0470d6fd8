package auditlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// PostgresStore persists the log in the access_log table. The sequence column
// is a BIGSERIAL, so Postgres serializes appends and sequences are strictly
// increasing. Rows are never updated or deleted; the secondary indices are
// btree indexes on (patient, sequence) and (accessor, sequence).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	query := `
		INSERT INTO access_log (patient, accessor, resource_id, access_type, ts)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING sequence
	`
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(entry.Patient),
		uuid.UUID(entry.Accessor),
		entry.ResourceID,
		entry.AccessType,
		entry.Timestamp,
	).Scan(&entry.Sequence)
	if err != nil {
		return Entry{}, fmt.Errorf("append access log entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) CountForPatient(ctx context.Context, patient id.Principal) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM access_log WHERE patient = $1`
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(patient)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count access log entries: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) EntryForPatient(ctx context.Context, patient id.Principal, index int) (Entry, error) {
	if index < 0 {
		return Entry{}, sentinel.ErrOutOfRange
	}
	query := `
		SELECT sequence, patient, accessor, resource_id, access_type, ts
		FROM access_log
		WHERE patient = $1
		ORDER BY sequence
		OFFSET $2
		LIMIT 1
	`
	entry, err := s.scanEntry(s.db.QueryRowContext(ctx, query, uuid.UUID(patient), index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, sentinel.ErrOutOfRange
		}
		return Entry{}, fmt.Errorf("query access log entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) EntriesInTimeRange(ctx context.Context, patient id.Principal, start, end time.Time, max int) ([]Entry, error) {
	if max <= 0 {
		return []Entry{}, nil
	}
	query := `
		SELECT sequence, patient, accessor, resource_id, access_type, ts
		FROM access_log
		WHERE patient = $1 AND ts >= $2 AND ts <= $3
		ORDER BY sequence
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(patient), start, end, max)
	if err != nil {
		return nil, fmt.Errorf("query access log range: %w", err)
	}
	defer rows.Close()
	return s.scanEntries(rows)
}

func (s *PostgresStore) EntriesByAccessor(ctx context.Context, accessor id.Principal, max int) ([]Entry, error) {
	if max <= 0 {
		return []Entry{}, nil
	}
	query := `
		SELECT sequence, patient, accessor, resource_id, access_type, ts
		FROM access_log
		WHERE accessor = $1
		ORDER BY sequence
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(accessor), max)
	if err != nil {
		return nil, fmt.Errorf("query access log by accessor: %w", err)
	}
	defer rows.Close()
	return s.scanEntries(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanEntry(row rowScanner) (Entry, error) {
	var (
		entry    Entry
		patient  uuid.UUID
		accessor uuid.UUID
	)
	err := row.Scan(&entry.Sequence, &patient, &accessor, &entry.ResourceID, &entry.AccessType, &entry.Timestamp)
	if err != nil {
		return Entry{}, err
	}
	entry.Patient = id.Principal(patient)
	entry.Accessor = id.Principal(accessor)
	return entry, nil
}

func (s *PostgresStore) scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := make([]Entry, 0)
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access log entries: %w", err)
	}
	return entries, nil
}
