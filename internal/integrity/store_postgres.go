package integrity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// PostgresStore persists records in the integrity_records table. Upsert runs
// in a transaction with the existing row locked, so concurrent updates on the
// same ContentID serialize and each sees a consistent previous digest.
// Registration order comes from the created_seq BIGSERIAL column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, record Record) (Record, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("begin integrity upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	prev, existed, err := s.lockExisting(ctx, tx, record.ContentID)
	if err != nil {
		return Record{}, false, err
	}

	if existed {
		update := `
			UPDATE integrity_records
			SET digest = $2, content_type = $3, updated_at = $4
			WHERE content_id = $1
		`
		_, err = tx.ExecContext(ctx, update, record.ContentID, record.Digest, record.ContentType, record.UpdatedAt)
	} else {
		insert := `
			INSERT INTO integrity_records (content_id, digest, content_type, owner, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.ExecContext(ctx, insert,
			record.ContentID, record.Digest, record.ContentType,
			uuid.UUID(record.Owner), record.CreatedAt, record.UpdatedAt,
		)
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("write integrity record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("commit integrity upsert: %w", err)
	}
	return prev, existed, nil
}

func (s *PostgresStore) lockExisting(ctx context.Context, tx *sql.Tx, contentID string) (Record, bool, error) {
	query := `
		SELECT digest, content_type, owner, created_at, updated_at
		FROM integrity_records
		WHERE content_id = $1
		FOR UPDATE
	`
	prev := Record{ContentID: contentID, Exists: true}
	var owner uuid.UUID
	err := tx.QueryRowContext(ctx, query, contentID).Scan(
		&prev.Digest, &prev.ContentType, &owner, &prev.CreatedAt, &prev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("lock integrity record: %w", err)
	}
	prev.Owner = id.Principal(owner)
	return prev, true, nil
}

func (s *PostgresStore) Get(ctx context.Context, contentID string) (Record, error) {
	query := `
		SELECT digest, content_type, owner, created_at, updated_at
		FROM integrity_records
		WHERE content_id = $1
	`
	record := Record{ContentID: contentID, Exists: true}
	var owner uuid.UUID
	err := s.db.QueryRowContext(ctx, query, contentID).Scan(
		&record.Digest, &record.ContentType, &owner, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("query integrity record: %w", err)
	}
	record.Owner = id.Principal(owner)
	return record, nil
}

func (s *PostgresStore) CountByOwner(ctx context.Context, owner id.Principal) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM integrity_records WHERE owner = $1`
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(owner)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count integrity records: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ContentIDAt(ctx context.Context, owner id.Principal, index int) (string, error) {
	if index < 0 {
		return "", sentinel.ErrOutOfRange
	}
	query := `
		SELECT content_id
		FROM integrity_records
		WHERE owner = $1
		ORDER BY created_seq
		OFFSET $2
		LIMIT 1
	`
	var contentID string
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(owner), index).Scan(&contentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrOutOfRange
		}
		return "", fmt.Errorf("query integrity record id: %w", err)
	}
	return contentID, nil
}
