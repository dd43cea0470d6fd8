package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestPutAndGet() {
	grantor := id.NewPrincipal()
	grantee := id.NewPrincipal()
	grant := Grant{
		Grantor:    grantor,
		Grantee:    grantee,
		Level:      id.AccessLevelFull,
		ValidFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Purpose:    "checkup",
	}

	s.Require().NoError(s.store.Put(s.ctx, grant))

	got, err := s.store.Get(s.ctx, grantor, grantee)
	s.Require().NoError(err)
	s.Equal(grant, got)
}

func (s *InMemoryStoreSuite) TestPutReplacesExistingGrant() {
	grantor := id.NewPrincipal()
	grantee := id.NewPrincipal()
	first := Grant{Grantor: grantor, Grantee: grantee, Level: id.AccessLevelFull, Purpose: "checkup"}
	second := Grant{Grantor: grantor, Grantee: grantee, Level: id.AccessLevelLimited, Purpose: "surgery"}

	s.Require().NoError(s.store.Put(s.ctx, first))
	s.Require().NoError(s.store.Put(s.ctx, second))

	got, err := s.store.Get(s.ctx, grantor, grantee)
	s.Require().NoError(err)
	s.Equal(second, got)
}

func (s *InMemoryStoreSuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(s.ctx, id.NewPrincipal(), id.NewPrincipal())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDelete() {
	grantor := id.NewPrincipal()
	grantee := id.NewPrincipal()
	s.Require().NoError(s.store.Put(s.ctx, Grant{Grantor: grantor, Grantee: grantee, Level: id.AccessLevelFull}))

	s.Require().NoError(s.store.Delete(s.ctx, grantor, grantee))

	_, err := s.store.Get(s.ctx, grantor, grantee)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteMissingReturnsNotFound() {
	err := s.store.Delete(s.ctx, id.NewPrincipal(), id.NewPrincipal())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestPairsAreDirectional() {
	a := id.NewPrincipal()
	b := id.NewPrincipal()
	s.Require().NoError(s.store.Put(s.ctx, Grant{Grantor: a, Grantee: b, Level: id.AccessLevelFull}))

	_, err := s.store.Get(s.ctx, b, a)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
