package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"medledger/internal/auditlog"
	"medledger/internal/consent"
	"medledger/internal/integrity"
	"medledger/internal/ledger"
	"medledger/internal/platform/metrics"
	id "medledger/pkg/domain"
	"medledger/pkg/platform/notify"
)

type HandlerSuite struct {
	suite.Suite
	server   *httptest.Server
	patient  id.Principal
	accessor id.Principal
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(
		consent.NewService(consent.NewInMemoryStore()),
		integrity.NewService(integrity.NewInMemoryStore()),
		auditlog.NewService(auditlog.NewInMemoryStore()),
		notify.NopPublisher{},
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
	)

	r := chi.NewRouter()
	New(l, logger).Register(r)
	s.server = httptest.NewServer(r)
	s.T().Cleanup(s.server.Close)

	s.patient = id.NewPrincipal()
	s.accessor = id.NewPrincipal()
}

func (s *HandlerSuite) logEntry(ts time.Time) {
	body := fmt.Sprintf(`{
		"patient": %q,
		"accessor": %q,
		"resource_id": "rec-1",
		"access_type": "view",
		"timestamp": %q
	}`, s.patient, s.accessor, ts.Format(time.RFC3339))
	resp, err := http.Post(s.server.URL+"/audit/entries", "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
}

func (s *HandlerSuite) get(path string) *http.Response {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *HandlerSuite) TestLogThenCount() {
	s.logEntry(time.Now().UTC())

	resp := s.get(fmt.Sprintf("/audit/patients/%s/count", s.patient))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var count struct {
		Count int `json:"count"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&count))
	s.Equal(1, count.Count)
}

func (s *HandlerSuite) TestTimeRangeQuery() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.logEntry(base)
	s.logEntry(base.Add(time.Hour))

	path := fmt.Sprintf("/audit/patients/%s/entries?start=%s&end=%s&max=1",
		s.patient, base.Format(time.RFC3339), base.Add(2*time.Hour).Format(time.RFC3339))
	resp := s.get(path)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Entries []struct {
			ResourceID string `json:"resource_id"`
		} `json:"entries"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Len(body.Entries, 1)
}

func (s *HandlerSuite) TestMalformedMaxIsRejected() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.logEntry(base)

	path := fmt.Sprintf("/audit/patients/%s/entries?start=%s&end=%s&max=plenty",
		s.patient, base.Format(time.RFC3339), base.Add(time.Hour).Format(time.RFC3339))
	resp := s.get(path)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.get(fmt.Sprintf("/audit/accessors/%s/entries?max=plenty", s.accessor))
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestByAccessorDefaultsMax() {
	s.logEntry(time.Now().UTC())

	resp := s.get(fmt.Sprintf("/audit/accessors/%s/entries", s.accessor))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Entries []struct {
			Accessor string `json:"accessor"`
		} `json:"entries"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().Len(body.Entries, 1)
	s.Equal(s.accessor.String(), body.Entries[0].Accessor)
}
