//go:build integration

package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medledger/internal/platform/postgres"
	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	pc := containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(s.ctx, pc.DB))
	s.store = NewPostgresStore(pc.DB)
}

func (s *PostgresStoreSuite) grant(grantor, grantee id.Principal) Grant {
	return Grant{
		Grantor:    grantor,
		Grantee:    grantee,
		Level:      id.AccessLevelFull,
		ValidFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Purpose:    "checkup",
	}
}

func (s *PostgresStoreSuite) TestPutGetDelete() {
	grantor := id.NewPrincipal()
	grantee := id.NewPrincipal()
	grant := s.grant(grantor, grantee)

	s.Require().NoError(s.store.Put(s.ctx, grant))

	got, err := s.store.Get(s.ctx, grantor, grantee)
	s.Require().NoError(err)
	s.Equal(grant.Level, got.Level)
	s.Equal(grant.Purpose, got.Purpose)
	s.True(grant.ValidFrom.Equal(got.ValidFrom))
	s.True(grant.ValidUntil.Equal(got.ValidUntil))

	s.Require().NoError(s.store.Delete(s.ctx, grantor, grantee))
	_, err = s.store.Get(s.ctx, grantor, grantee)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPutUpsertsOnConflict() {
	grantor := id.NewPrincipal()
	grantee := id.NewPrincipal()

	first := s.grant(grantor, grantee)
	s.Require().NoError(s.store.Put(s.ctx, first))

	second := first
	second.Level = id.AccessLevelTemporary
	second.Purpose = "surgery"
	s.Require().NoError(s.store.Put(s.ctx, second))

	got, err := s.store.Get(s.ctx, grantor, grantee)
	s.Require().NoError(err)
	s.Equal(id.AccessLevelTemporary, got.Level)
	s.Equal("surgery", got.Purpose)
}

func (s *PostgresStoreSuite) TestDeleteMissingReturnsNotFound() {
	err := s.store.Delete(s.ctx, id.NewPrincipal(), id.NewPrincipal())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
