/*
handlers.go - HTTP handlers for the fiscal engine

PURPOSE:
  Exposes the computation pipeline and the entry store over REST.
  Handlers parse and validate requests, delegate to the core, and
  serialize value objects back. No business figure is ever derived
  here.

ENDPOINTS:
  POST   /api/compute        Run the pipeline on entries in the body
  GET    /api/entries        List stored entries for a year
  POST   /api/entries        Create/replace a stored entry
  DELETE /api/entries/{id}   Delete a stored entry
  POST   /api/snapshot       Compute over stored entries for a context
  GET    /api/health         Liveness probe

ERROR HANDLING:
  - 400: boundary validation failures (structured issue list)
  - 404: unknown entry id
  - 500: internal errors (never validation)

SEE ALSO:
  - dto.go: request/response shapes and conversion
  - server.go: router and middleware
*/
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/fiscal-engine/dashboard"
	"github.com/warp/fiscal-engine/engine"
	"github.com/warp/fiscal-engine/fiscal"
)

// SnapshotSaver is the optional persistence hook for computed
// snapshots; nil disables persistence (e.g. in tests).
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, year int, fiscalHash string, payload []byte) error
}

// Handler holds the API dependencies.
type Handler struct {
	Entries   fiscal.EntryStore
	Snapshots SnapshotSaver
	Log       *logrus.Logger
}

// NewHandler wires the handler with its stores.
func NewHandler(entries fiscal.EntryStore, snapshots SnapshotSaver, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Entries: entries, Snapshots: snapshots, Log: log}
}

// =============================================================================
// COMPUTE
// =============================================================================

// ComputeResponse bundles the snapshot with its dashboard model.
type ComputeResponse struct {
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Dashboard *dashboard.Model `json:"dashboard"`
}

func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", nil)
		return
	}
	h.computeAndRespond(w, r, req)
}

func (h *Handler) computeAndRespond(w http.ResponseWriter, r *http.Request, req ComputeRequest) {
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", structIssues(err))
		return
	}

	var issues []fiscal.ValidationIssue
	entries := make([]fiscal.Entry, 0, len(req.Entries))
	for _, d := range req.Entries {
		e, iss := d.ToEntry()
		issues = append(issues, iss...)
		entries = append(entries, e)
	}
	fctx, iss := req.Context.ToContext()
	issues = append(issues, iss...)
	anchor, iss := req.Anchor.ToAnchor()
	issues = append(issues, iss...)
	if len(issues) > 0 {
		writeError(w, http.StatusBadRequest, "validation failed", issues)
		return
	}

	snap, err := engine.ComputeSnapshot(entries, fctx, anchor)
	if err != nil {
		status := http.StatusInternalServerError
		if fiscal.IsBoundaryError(err) {
			status = http.StatusBadRequest
		}
		var verr *fiscal.ValidationError
		if errors.As(err, &verr) {
			writeError(w, status, err.Error(), verr.Issues)
			return
		}
		writeError(w, status, err.Error(), nil)
		return
	}

	model, err := dashboard.Compile(snap, fctx.AsOf)
	if err != nil {
		// Reconciliation failure is an engine defect, never shown as
		// silently-wrong numbers.
		h.Log.WithError(err).Error("dashboard compilation failed")
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	h.persistSnapshot(r, snap)
	writeJSON(w, http.StatusOK, ComputeResponse{Snapshot: snap, Dashboard: model})
}

func (h *Handler) persistSnapshot(r *http.Request, snap *engine.Snapshot) {
	if h.Snapshots == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		h.Log.WithError(err).Warn("snapshot serialization failed")
		return
	}
	meta := snap.Output.Metadata
	if err := h.Snapshots.SaveSnapshot(r.Context(), meta.RulesetYear, meta.FiscalHash, payload); err != nil {
		h.Log.WithError(err).Warn("snapshot persistence failed")
	}
}

// ComputeStored runs the pipeline over the entries stored for the
// context's year.
func (h *Handler) ComputeStored(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Context ContextDTO `json:"context" validate:"required"`
		Anchor  *AnchorDTO `json:"anchor,omitempty"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", nil)
		return
	}

	stored, err := h.Entries.ListEntries(r.Context(), req.Context.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	dtos := make([]EntryDTO, len(stored))
	for i, e := range stored {
		dtos[i] = entryToDTO(e)
	}
	h.computeAndRespond(w, r, ComputeRequest{Entries: dtos, Context: req.Context, Anchor: req.Anchor})
}

// =============================================================================
// ENTRIES CRUD
// =============================================================================

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		year = time.Now().UTC().Year()
	}
	entries, err := h.Entries.ListEntries(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryToDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var dto EntryDTO
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", nil)
		return
	}
	if err := validate.Struct(dto); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", structIssues(err))
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}

	entry, issues := dto.ToEntry()
	if len(issues) == 0 {
		if err := entry.Validate(); err != nil {
			var verr *fiscal.ValidationError
			errors.As(err, &verr)
			writeError(w, http.StatusBadRequest, "validation failed", verr.Issues)
			return
		}
	} else {
		writeError(w, http.StatusBadRequest, "validation failed", issues)
		return
	}

	if err := h.Entries.SaveEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, entryToDTO(entry))
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Entries.DeleteEntry(r.Context(), fiscal.EntryID(id))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "entry not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": engine.Version,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func entryToDTO(e fiscal.Entry) EntryDTO {
	dto := EntryDTO{
		ID:          string(e.ID),
		Nature:      string(e.Nature),
		Label:       e.Label,
		AmountTTC:   json.Number(strconv.FormatInt(e.AmountTTC, 10)),
		Date:        e.Date,
		Scope:       string(e.Scope),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Periodicity: string(e.Periodicity),
	}
	if e.VATRate != fiscal.VATRateUnset {
		n := json.Number(strconv.FormatInt(e.VATRate, 10))
		dto.VATRate = &n
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, issues []fiscal.ValidationIssue) {
	writeJSON(w, status, ErrorResponse{Error: msg, Issues: issues})
}
