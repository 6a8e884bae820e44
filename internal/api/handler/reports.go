package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxNoteLen       = 2000
)

// ReportsHandler serves the stored analysis reports of the authenticated user.
type ReportsHandler struct {
	store store.Store
}

func NewReportsHandler(s store.Store) *ReportsHandler {
	return &ReportsHandler{store: s}
}

// List handles GET /api/v1/reports. Supports ?status= filtering and
// page/limit pagination, newest first.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidStatus(status) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"status must be one of red, yellow, green", nil)
		return
	}

	var (
		reports []*models.Report
		err     error
	)
	if status != "" {
		reports, err = h.store.ListReportsByStatus(r.Context(), user.ID, status)
	} else {
		reports, err = h.store.ListReports(r.Context(), user.ID)
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reports", nil)
		return
	}

	page, limit := pageParams(r)
	total := len(reports)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	response.Collection(w, reports[start:end], response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: end < total,
	})
}

// Get handles GET /api/v1/reports/{reportID}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "reportID must be a UUID", nil)
		return
	}

	report, err := h.store.GetReport(r.Context(), reportID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load report", nil)
		return
	}

	response.JSON(w, report)
}

// UpdateStatus handles PATCH /api/v1/reports/{reportID}/status. A null status
// clears the classification; the note travels with it.
func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "reportID must be a UUID", nil)
		return
	}

	var req struct {
		Status *string `json:"status"`
		Note   string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"status must be one of red, yellow, green or null", nil)
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if len(req.Note) > maxNoteLen {
		req.Note = req.Note[:maxNoteLen]
	}

	if err := h.store.UpdateReportStatus(r.Context(), reportID, user.ID, req.Status, req.Note); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update report", nil)
		return
	}

	report, err := h.store.GetReport(r.Context(), reportID, user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load report", nil)
		return
	}
	response.JSON(w, report)
}

// Delete handles DELETE /api/v1/reports/{reportID}. Deleting a report does
// not refund the credit spent on it.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "reportID must be a UUID", nil)
		return
	}

	if err := h.store.DeleteReport(r.Context(), reportID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete report", nil)
		return
	}

	response.NoContent(w)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
