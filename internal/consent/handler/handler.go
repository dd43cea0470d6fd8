// Package handler exposes the consent registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/consent"
	"medledger/internal/transport/http/shared"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

// Service defines the consent operations the handler needs from the ledger.
type Service interface {
	GrantConsent(ctx context.Context, grant consent.Grant) (consent.Grant, error)
	RevokeConsent(ctx context.Context, grantor, grantee id.Principal) error
	CheckConsent(ctx context.Context, grantor, grantee id.Principal) (consent.Status, error)
}

// Handler handles consent endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// Register mounts the consent routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consent/grants", h.handleGrant)
	r.Post("/consent/revocations", h.handleRevoke)
	r.Get("/consent/status", h.handleCheck)
}

type grantRequest struct {
	Grantor     string    `json:"grantor"`
	Grantee     string    `json:"grantee"`
	AccessLevel string    `json:"access_level"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
	Purpose     string    `json:"purpose"`
}

type grantResponse struct {
	Grantor     string    `json:"grantor"`
	Grantee     string    `json:"grantee"`
	AccessLevel string    `json:"access_level"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
	Purpose     string    `json:"purpose"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	grantor, err := id.ParsePrincipal(req.Grantor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grantee, err := id.ParsePrincipal(req.Grantee)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	level, err := id.ParseAccessLevel(req.AccessLevel)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	grant, err := h.ledger.GrantConsent(ctx, consent.Grant{
		Grantor:    grantor,
		Grantee:    grantee,
		Level:      level,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Purpose:    req.Purpose,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "grant consent rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, grantResponse{
		Grantor:     grant.Grantor.String(),
		Grantee:     grant.Grantee.String(),
		AccessLevel: grant.Level.String(),
		ValidFrom:   grant.ValidFrom,
		ValidUntil:  grant.ValidUntil,
		Purpose:     grant.Purpose,
	})
}

type revokeRequest struct {
	Grantor string `json:"grantor"`
	Grantee string `json:"grantee"`
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	grantor, err := id.ParsePrincipal(req.Grantor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grantee, err := id.ParsePrincipal(req.Grantee)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.ledger.RevokeConsent(ctx, grantor, grantee); err != nil {
		h.logger.WarnContext(ctx, "revoke consent rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Valid       bool       `json:"valid"`
	AccessLevel string     `json:"access_level,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grantor, err := id.ParsePrincipal(r.URL.Query().Get("grantor"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grantee, err := id.ParsePrincipal(r.URL.Query().Get("grantee"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	status, err := h.ledger.CheckConsent(ctx, grantor, grantee)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := statusResponse{Valid: status.Valid}
	if status.Level != "" {
		resp.AccessLevel = status.Level.String()
		resp.ValidFrom = &status.ValidFrom
		resp.ValidUntil = &status.ValidUntil
		resp.Purpose = status.Purpose
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
