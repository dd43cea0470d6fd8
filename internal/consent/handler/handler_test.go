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
	server  *httptest.Server
	grantor id.Principal
	grantee id.Principal
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

	s.grantor = id.NewPrincipal()
	s.grantee = id.NewPrincipal()
}

func (s *HandlerSuite) postJSON(path, body string) *http.Response {
	resp, err := http.Post(s.server.URL+path, "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *HandlerSuite) grantBody(validFrom, validUntil time.Time) string {
	return fmt.Sprintf(`{
		"grantor": %q,
		"grantee": %q,
		"access_level": "limited",
		"valid_from": %q,
		"valid_until": %q,
		"purpose": "referral"
	}`, s.grantor, s.grantee, validFrom.Format(time.RFC3339), validUntil.Format(time.RFC3339))
}

func (s *HandlerSuite) TestGrantThenCheck() {
	resp := s.postJSON("/consent/grants", s.grantBody(time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var granted struct {
		Grantor     string `json:"grantor"`
		AccessLevel string `json:"access_level"`
		Purpose     string `json:"purpose"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&granted))
	s.Equal(s.grantor.String(), granted.Grantor)
	s.Equal("limited", granted.AccessLevel)
	s.Equal("referral", granted.Purpose)

	check, err := http.Get(fmt.Sprintf("%s/consent/status?grantor=%s&grantee=%s", s.server.URL, s.grantor, s.grantee))
	s.Require().NoError(err)
	defer check.Body.Close()
	s.Require().Equal(http.StatusOK, check.StatusCode)

	var status struct {
		Valid       bool   `json:"valid"`
		AccessLevel string `json:"access_level"`
	}
	s.Require().NoError(json.NewDecoder(check.Body).Decode(&status))
	s.True(status.Valid)
	s.Equal("limited", status.AccessLevel)
}

func (s *HandlerSuite) TestCheckUnknownPairReportsInvalid() {
	check, err := http.Get(fmt.Sprintf("%s/consent/status?grantor=%s&grantee=%s", s.server.URL, s.grantor, s.grantee))
	s.Require().NoError(err)
	defer check.Body.Close()
	s.Require().Equal(http.StatusOK, check.StatusCode)

	var status struct {
		Valid       bool   `json:"valid"`
		AccessLevel string `json:"access_level"`
	}
	s.Require().NoError(json.NewDecoder(check.Body).Decode(&status))
	s.False(status.Valid)
	s.Empty(status.AccessLevel)
}

func (s *HandlerSuite) TestGrantValidationFailures() {
	s.Run("malformed body", func() {
		resp := s.postJSON("/consent/grants", "{not json")
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("malformed grantor", func() {
		body := strings.Replace(s.grantBody(time.Now(), time.Now().Add(time.Hour)), s.grantor.String(), "not-a-uuid", 1)
		resp := s.postJSON("/consent/grants", body)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("inverted validity window", func() {
		resp := s.postJSON("/consent/grants", s.grantBody(time.Now().Add(time.Hour), time.Now()))
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestRevoke() {
	resp := s.postJSON("/consent/grants", s.grantBody(time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour)))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	revokeBody := fmt.Sprintf(`{"grantor": %q, "grantee": %q}`, s.grantor, s.grantee)
	resp = s.postJSON("/consent/revocations", revokeBody)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	// Revoking again is a 404: the grant is gone.
	resp = s.postJSON("/consent/revocations", revokeBody)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
