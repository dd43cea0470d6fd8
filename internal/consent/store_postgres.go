package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// PostgresStore persists grants in the consent_grants table. Each statement is
// its own transaction; the upsert makes replacement atomic and Postgres row
// locking serializes writers on the same pair.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, grant Grant) error {
	query := `
		INSERT INTO consent_grants (grantor, grantee, access_level, valid_from, valid_until, purpose)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (grantor, grantee) DO UPDATE SET
			access_level = EXCLUDED.access_level,
			valid_from   = EXCLUDED.valid_from,
			valid_until  = EXCLUDED.valid_until,
			purpose      = EXCLUDED.purpose
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(grant.Grantor),
		uuid.UUID(grant.Grantee),
		string(grant.Level),
		grant.ValidFrom,
		grant.ValidUntil,
		grant.Purpose,
	)
	if err != nil {
		return fmt.Errorf("upsert consent grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, grantor, grantee id.Principal) (Grant, error) {
	query := `
		SELECT access_level, valid_from, valid_until, purpose
		FROM consent_grants
		WHERE grantor = $1 AND grantee = $2
	`
	grant := Grant{Grantor: grantor, Grantee: grantee}
	var levelStr string
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(grantor), uuid.UUID(grantee)).Scan(
		&levelStr,
		&grant.ValidFrom,
		&grant.ValidUntil,
		&grant.Purpose,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, sentinel.ErrNotFound
		}
		return Grant{}, fmt.Errorf("query consent grant: %w", err)
	}
	grant.Level = id.AccessLevel(levelStr)
	return grant, nil
}

func (s *PostgresStore) Delete(ctx context.Context, grantor, grantee id.Principal) error {
	query := `DELETE FROM consent_grants WHERE grantor = $1 AND grantee = $2`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(grantor), uuid.UUID(grantee))
	if err != nil {
		return fmt.Errorf("delete consent grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete consent grant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
