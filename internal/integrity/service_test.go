package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

var fixedNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
	owner   id.Principal
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = NewService(s.store)
	s.service.now = func() time.Time { return fixedNow }
	s.ctx = context.Background()
	s.owner = id.NewPrincipal()
}

func (s *ServiceSuite) TestStoreOrUpdateRejectsInvalidInput() {
	cases := []struct {
		name        string
		owner       id.Principal
		contentID   string
		digest      string
		contentType string
	}{
		{"nil owner", id.NilPrincipal, "rec-1", "abc123", "lab_result"},
		{"empty contentId", s.owner, "", "abc123", "lab_result"},
		{"empty digest", s.owner, "rec-1", "", "lab_result"},
		{"empty contentType", s.owner, "rec-1", "abc123", ""},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.StoreOrUpdate(s.ctx, tc.owner, tc.contentID, tc.digest, tc.contentType, fixedNow)

			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	count, err := s.service.CountByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestStoreThenVerify() {
	result, err := s.service.StoreOrUpdate(s.ctx, s.owner, "rec-1", "abc123", "lab_result", fixedNow)
	s.Require().NoError(err)
	s.True(result.Created)
	s.Empty(result.OldDigest)

	s.Run("matching digest", func() {
		v, err := s.service.Verify(s.ctx, "rec-1", "abc123")
		s.Require().NoError(err)
		s.True(v.IsValid)
		s.Equal("abc123", v.StoredDigest)
		s.Equal("lab_result", v.ContentType)
		s.Equal(fixedNow, v.Timestamp)
	})

	s.Run("mismatching digest", func() {
		v, err := s.service.Verify(s.ctx, "rec-1", "tampered")
		s.Require().NoError(err)
		s.False(v.IsValid)
		s.Equal("abc123", v.StoredDigest)
	})

	s.Run("unknown content id", func() {
		v, err := s.service.Verify(s.ctx, "rec-404", "abc123")
		s.Require().NoError(err)
		s.False(v.IsValid)
		s.Empty(v.StoredDigest)
		s.Empty(v.ContentType)
		s.True(v.Timestamp.IsZero())
	})
}

func (s *ServiceSuite) TestUpdateReportsOldDigestAndKeepsIdentity() {
	created := fixedNow.Add(-24 * time.Hour)
	_, err := s.service.StoreOrUpdate(s.ctx, s.owner, "rec-1", "abc123", "lab_result", created)
	s.Require().NoError(err)

	other := id.NewPrincipal()
	result, err := s.service.StoreOrUpdate(s.ctx, other, "rec-1", "def456", "lab_result", fixedNow)
	s.Require().NoError(err)
	s.False(result.Created)
	s.Equal("abc123", result.OldDigest)
	s.Equal(s.owner, result.Record.Owner)
	s.Equal(created, result.Record.CreatedAt)
	s.Equal(fixedNow, result.Record.UpdatedAt)
}

func (s *ServiceSuite) TestStoreDefaultsZeroTimestamp() {
	result, err := s.service.StoreOrUpdate(s.ctx, s.owner, "rec-1", "abc123", "lab_result", time.Time{})
	s.Require().NoError(err)
	s.Equal(fixedNow, result.Record.CreatedAt)
	s.Equal(fixedNow, result.Record.UpdatedAt)
}

func (s *ServiceSuite) TestGetDetails() {
	_, err := s.service.StoreOrUpdate(s.ctx, s.owner, "rec-1", "abc123", "prescription", fixedNow)
	s.Require().NoError(err)

	record, err := s.service.GetDetails(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.True(record.Exists)
	s.Equal("prescription", record.ContentType)

	absent, err := s.service.GetDetails(s.ctx, "rec-404")
	s.Require().NoError(err)
	s.False(absent.Exists)
	s.Equal("rec-404", absent.ContentID)
	s.Empty(absent.Digest)
}

func (s *ServiceSuite) TestContentIDAtOutOfRangeCode() {
	_, err := s.service.StoreOrUpdate(s.ctx, s.owner, "rec-1", "abc123", "lab_result", fixedNow)
	s.Require().NoError(err)

	contentID, err := s.service.ContentIDAt(s.ctx, s.owner, 0)
	s.Require().NoError(err)
	s.Equal("rec-1", contentID)

	_, err = s.service.ContentIDAt(s.ctx, s.owner, 1)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeOutOfRange))
}
