// Package handler exposes the integrity registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/integrity"
	"medledger/internal/transport/http/shared"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

// Service defines the integrity operations the handler needs from the ledger.
type Service interface {
	StoreOrUpdateDigest(ctx context.Context, owner id.Principal, contentID, digest, contentType string, ts time.Time) (integrity.StoreResult, error)
	VerifyDigest(ctx context.Context, contentID, candidateDigest string) (integrity.VerifyResult, error)
	DigestDetails(ctx context.Context, contentID string) (integrity.Record, error)
	DigestCountByOwner(ctx context.Context, owner id.Principal) (int, error)
	DigestIDAt(ctx context.Context, owner id.Principal, index int) (string, error)
}

// Handler handles integrity endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// Register mounts the integrity routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/integrity/records/{contentID}", h.handleStore)
	r.Post("/integrity/records/{contentID}/verify", h.handleVerify)
	r.Get("/integrity/records/{contentID}", h.handleDetails)
	r.Get("/integrity/owners/{owner}/count", h.handleCount)
	r.Get("/integrity/owners/{owner}/records/{index}", h.handleIDAt)
}

type storeRequest struct {
	Owner       string    `json:"owner"`
	Digest      string    `json:"digest"`
	ContentType string    `json:"content_type"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}

type recordResponse struct {
	ContentID   string     `json:"content_id"`
	Digest      string     `json:"digest,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Exists      bool       `json:"exists"`
}

func toRecordResponse(rec integrity.Record) recordResponse {
	resp := recordResponse{ContentID: rec.ContentID, Exists: rec.Exists}
	if rec.Exists {
		resp.Digest = rec.Digest
		resp.ContentType = rec.ContentType
		resp.Owner = rec.Owner.String()
		resp.CreatedAt = &rec.CreatedAt
		resp.UpdatedAt = &rec.UpdatedAt
	}
	return resp
}

func (h *Handler) handleStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	owner, err := id.ParsePrincipal(req.Owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	contentID := chi.URLParam(r, "contentID")

	result, err := h.ledger.StoreOrUpdateDigest(ctx, owner, contentID, req.Digest, req.ContentType, req.Timestamp)
	if err != nil {
		h.logger.WarnContext(ctx, "store digest rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	shared.WriteJSON(w, status, toRecordResponse(result.Record))
}

type verifyRequest struct {
	Digest string `json:"digest"`
}

type verifyResponse struct {
	IsValid      bool       `json:"is_valid"`
	StoredDigest string     `json:"stored_digest,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	ContentType  string     `json:"content_type,omitempty"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	result, err := h.ledger.VerifyDigest(r.Context(), chi.URLParam(r, "contentID"), req.Digest)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := verifyResponse{IsValid: result.IsValid}
	if result.StoredDigest != "" {
		resp.StoredDigest = result.StoredDigest
		resp.Timestamp = &result.Timestamp
		resp.ContentType = result.ContentType
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	record, err := h.ledger.DigestDetails(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	owner, err := id.ParsePrincipal(chi.URLParam(r, "owner"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	count, err := h.ledger.DigestCountByOwner(r.Context(), owner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleIDAt(w http.ResponseWriter, r *http.Request) {
	owner, err := id.ParsePrincipal(chi.URLParam(r, "owner"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "index must be an integer"))
		return
	}
	contentID, err := h.ledger.DigestIDAt(r.Context(), owner, index)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"content_id": contentID})
}
