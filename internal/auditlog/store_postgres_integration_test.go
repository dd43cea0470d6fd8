//go:build integration

package auditlog

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

func (s *PostgresStoreSuite) append(patient, accessor id.Principal, resource string, ts time.Time) Entry {
	entry, err := s.store.Append(s.ctx, Entry{
		Patient:    patient,
		Accessor:   accessor,
		ResourceID: resource,
		AccessType: "view",
		Timestamp:  ts,
	})
	s.Require().NoError(err)
	return entry
}

func (s *PostgresStoreSuite) TestAppendAssignsIncreasingSequences() {
	patient := id.NewPrincipal()
	accessor := id.NewPrincipal()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	first := s.append(patient, accessor, "rec-1", base)
	second := s.append(patient, accessor, "rec-2", base.Add(time.Minute))
	s.Greater(second.Sequence, first.Sequence)

	count, err := s.store.CountForPatient(s.ctx, patient)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestEntryForPatientByPosition() {
	patient := id.NewPrincipal()
	accessor := id.NewPrincipal()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.append(patient, accessor, "rec-1", base)
	s.append(patient, accessor, "rec-2", base.Add(time.Minute))

	entry, err := s.store.EntryForPatient(s.ctx, patient, 1)
	s.Require().NoError(err)
	s.Equal("rec-2", entry.ResourceID)

	_, err = s.store.EntryForPatient(s.ctx, patient, 2)
	s.Require().ErrorIs(err, sentinel.ErrOutOfRange)
}

func (s *PostgresStoreSuite) TestTimeRangeAndAccessorQueries() {
	patient := id.NewPrincipal()
	accessor := id.NewPrincipal()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.append(patient, accessor, "rec", base.Add(time.Duration(i)*time.Hour))
	}

	entries, err := s.store.EntriesInTimeRange(s.ctx, patient, base.Add(time.Hour), base.Add(3*time.Hour), 10)
	s.Require().NoError(err)
	s.Len(entries, 3)

	capped, err := s.store.EntriesInTimeRange(s.ctx, patient, base, base.Add(4*time.Hour), 2)
	s.Require().NoError(err)
	s.Len(capped, 2)

	byAccessor, err := s.store.EntriesByAccessor(s.ctx, accessor, 10)
	s.Require().NoError(err)
	s.Len(byAccessor, 5)
	for i := 1; i < len(byAccessor); i++ {
		s.Greater(byAccessor[i].Sequence, byAccessor[i-1].Sequence)
	}
}
