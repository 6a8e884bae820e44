package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// ArchiveHandler manages a user's compliance document archive.
type ArchiveHandler struct {
	store store.Store
}

func NewArchiveHandler(s store.Store) *ArchiveHandler {
	return &ArchiveHandler{store: s}
}

// Sections handles GET /api/v1/archive/sections and returns the fixed
// section/document-type taxonomy the archive accepts.
func (h *ArchiveHandler) Sections(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, models.ArchiveSections)
}

// Upload handles POST /api/v1/archive: a multipart form with section,
// doc_type and a single PDF file.
func (h *ArchiveHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Request must be multipart/form-data with a PDF file", nil)
		return
	}

	section := strings.TrimSpace(r.FormValue("section"))
	docType := strings.TrimSpace(r.FormValue("doc_type"))
	if !models.ValidArchiveSlot(section, docType) {
		response.Error(w, http.StatusBadRequest, "INVALID_ARCHIVE_SLOT",
			"section and doc_type must match the archive taxonomy", nil)
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
		return
	}
	defer f.Close()

	if fh.Size > maxUploadSize {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			"Each file must be 25MB or less", map[string]string{"filename": fh.Filename})
		return
	}
	if !strings.EqualFold(fileExt(fh.Filename), ".pdf") {
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE",
			"Only PDF files are accepted", map[string]string{"filename": fh.Filename})
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", nil)
		return
	}

	doc := &models.ArchiveDocument{
		ID:        uuid.New(),
		UserID:    user.ID,
		Section:   section,
		DocType:   docType,
		Filename:  fh.Filename,
		Content:   data,
		Size:      fh.Size,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateArchiveDocument(r.Context(), doc); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store document", nil)
		return
	}

	response.Created(w, doc)
}

// List handles GET /api/v1/archive with optional section and doc_type filters.
// The response carries metadata only, never the file bytes.
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	section := r.URL.Query().Get("section")
	docType := r.URL.Query().Get("doc_type")

	docs, err := h.store.ListArchiveDocuments(r.Context(), user.ID, section, docType)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list documents", nil)
		return
	}

	response.JSON(w, docs)
}

// Delete handles DELETE /api/v1/archive/{documentID}.
func (h *ArchiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	docID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "documentID must be a UUID", nil)
		return
	}

	if err := h.store.DeleteArchiveDocument(r.Context(), docID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Document not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete document", nil)
		return
	}

	response.NoContent(w)
}
