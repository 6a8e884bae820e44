package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/urbanosolucoes/licitahub/internal/ai"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

const (
	maxUploadSize  = 25 << 20 // per file
	maxUploadFiles = 5
)

// Auditor is the slice of the AI service the analysis handlers depend on.
type Auditor interface {
	Analyze(ctx context.Context, user *models.User, docs []models.Document) (*models.Report, error)
	CrossCheck(ctx context.Context, user *models.User, reportID uuid.UUID) (*models.Report, error)
	Ask(ctx context.Context, userID uuid.UUID, reportID uuid.UUID, question string) (string, error)
}

// NewAnalyzeHandler returns the handler for POST /api/v1/analyze. It accepts
// a multipart form with one or more PDF files under the "files" field and
// runs the full audit, consuming one analysis credit.
func NewAnalyzeHandler(svc Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := mw.GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Request must be multipart/form-data with PDF files", nil)
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"At least one file is required", nil)
			return
		}
		if len(files) > maxUploadFiles {
			response.Error(w, http.StatusBadRequest, "TOO_MANY_FILES",
				"At most 5 files per analysis", nil)
			return
		}

		docs := make([]models.Document, 0, len(files))
		for _, fh := range files {
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

			f, err := fh.Open()
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", nil)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read upload", nil)
				return
			}
			docs = append(docs, models.Document{Filename: fh.Filename, Data: data})
		}

		report, err := svc.Analyze(r.Context(), user, docs)
		if err != nil {
			writeAIError(w, err)
			return
		}

		response.Created(w, report)
	}
}

// NewCrossCheckHandler returns the handler for POST /api/v1/reports/{reportID}/viability.
func NewCrossCheckHandler(svc Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		report, err := svc.CrossCheck(r.Context(), user, reportID)
		if err != nil {
			writeAIError(w, err)
			return
		}

		response.JSON(w, report)
	}
}

// NewAskHandler returns the handler for POST /api/v1/reports/{reportID}/ask.
func NewAskHandler(svc Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		req.Question = strings.TrimSpace(req.Question)
		if req.Question == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
			return
		}

		answer, err := svc.Ask(r.Context(), user.ID, reportID, req.Question)
		if err != nil {
			writeAIError(w, err)
			return
		}

		response.JSON(w, map[string]string{"answer": answer})
	}
}

func writeAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNoCredits):
		response.Error(w, http.StatusPaymentRequired, "NO_CREDITS",
			"Analysis quota for the current plan is exhausted", nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
	case errors.Is(err, ai.ErrViabilityNotAllowed):
		response.Error(w, http.StatusForbidden, "UPGRADE_REQUIRED",
			"The viability cross-check is not available on the free plan", nil)
	case errors.Is(err, ai.ErrNoArchiveDocuments):
		response.Error(w, http.StatusConflict, "EMPTY_ARCHIVE",
			"Upload company documents to the archive before running a cross-check", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, ai.ErrEmptyAnswer):
		response.Error(w, http.StatusBadGateway, "AI_EMPTY_ANSWER",
			"The AI provider returned an empty answer", nil)
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"AI analysis took too long and was cancelled", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
