// Package handler exposes the access audit log over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/auditlog"
	"medledger/internal/transport/http/shared"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

// defaultMaxResults caps range queries when the caller does not say.
const defaultMaxResults = 100

// Service defines the audit operations the handler needs from the ledger.
type Service interface {
	LogAccess(ctx context.Context, patient, accessor id.Principal, resourceID, accessType string, ts time.Time) (auditlog.Entry, error)
	AccessCountForPatient(ctx context.Context, patient id.Principal) (int, error)
	AccessEntryForPatient(ctx context.Context, patient id.Principal, index int) (auditlog.Entry, error)
	AccessEntriesInTimeRange(ctx context.Context, patient id.Principal, start, end time.Time, max int) ([]auditlog.Entry, error)
	AccessEntriesByAccessor(ctx context.Context, accessor id.Principal, max int) ([]auditlog.Entry, error)
}

// Handler handles audit log endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// Register mounts the audit routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/audit/entries", h.handleLogAccess)
	r.Get("/audit/patients/{patient}/count", h.handleCount)
	r.Get("/audit/patients/{patient}/entries/{index}", h.handleEntryAt)
	r.Get("/audit/patients/{patient}/entries", h.handleTimeRange)
	r.Get("/audit/accessors/{accessor}/entries", h.handleByAccessor)
}

type logAccessRequest struct {
	Patient    string    `json:"patient"`
	Accessor   string    `json:"accessor"`
	ResourceID string    `json:"resource_id"`
	AccessType string    `json:"access_type"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

type entryResponse struct {
	Sequence   uint64    `json:"sequence"`
	Patient    string    `json:"patient"`
	Accessor   string    `json:"accessor"`
	ResourceID string    `json:"resource_id"`
	AccessType string    `json:"access_type"`
	Timestamp  time.Time `json:"timestamp"`
}

func toEntryResponse(e auditlog.Entry) entryResponse {
	return entryResponse{
		Sequence:   e.Sequence,
		Patient:    e.Patient.String(),
		Accessor:   e.Accessor.String(),
		ResourceID: e.ResourceID,
		AccessType: e.AccessType,
		Timestamp:  e.Timestamp,
	}
}

func (h *Handler) handleLogAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req logAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	patient, err := id.ParsePrincipal(req.Patient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	accessor, err := id.ParsePrincipal(req.Accessor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entry, err := h.ledger.LogAccess(ctx, patient, accessor, req.ResourceID, req.AccessType, req.Timestamp)
	if err != nil {
		h.logger.WarnContext(ctx, "log access rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	patient, err := id.ParsePrincipal(chi.URLParam(r, "patient"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	count, err := h.ledger.AccessCountForPatient(r.Context(), patient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleEntryAt(w http.ResponseWriter, r *http.Request) {
	patient, err := id.ParsePrincipal(chi.URLParam(r, "patient"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "index must be an integer"))
		return
	}
	entry, err := h.ledger.AccessEntryForPatient(r.Context(), patient, index)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) handleTimeRange(w http.ResponseWriter, r *http.Request) {
	patient, err := id.ParsePrincipal(chi.URLParam(r, "patient"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	start, err := parseTimeParam(r, "start")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	max, err := parseMaxParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.ledger.AccessEntriesInTimeRange(r.Context(), patient, start, end, max)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.writeEntries(w, entries)
}

func (h *Handler) handleByAccessor(w http.ResponseWriter, r *http.Request) {
	accessor, err := id.ParsePrincipal(chi.URLParam(r, "accessor"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	max, err := parseMaxParam(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.ledger.AccessEntriesByAccessor(r.Context(), accessor, max)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.writeEntries(w, entries)
}

func (h *Handler) writeEntries(w http.ResponseWriter, entries []auditlog.Entry) {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" query parameter is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be RFC3339")
	}
	return t, nil
}

func parseMaxParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("max")
	if raw == "" {
		return defaultMaxResults, nil
	}
	max, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "max must be an integer")
	}
	return max, nil
}
