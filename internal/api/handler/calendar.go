package handler

import (
	"net/http"

	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/extract"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// CalendarEvent is one session date taken from an approved report's title.
type CalendarEvent struct {
	ReportID uuid.UUID `json:"report_id"`
	Title    string    `json:"title"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Platform string    `json:"platform"`
}

// NewCalendarHandler returns the handler for GET /api/v1/calendar. Only green
// reports whose title carries a parseable date become events; the rest are
// silently skipped.
func NewCalendarHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := mw.GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		reports, err := s.ListReportsByStatus(r.Context(), user.ID, models.StatusGreen)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reports", nil)
			return
		}

		events := make([]CalendarEvent, 0, len(reports))
		for _, report := range reports {
			isoDate, ok := extract.ISODateFromTitle(report.Title)
			if !ok {
				continue
			}
			fields := extract.ExtractFields(report.Content)
			events = append(events, CalendarEvent{
				ReportID: report.ID,
				Title:    report.Title,
				Date:     isoDate,
				Time:     fields.Time,
				Platform: fields.Platform,
			})
		}

		response.JSON(w, events)
	}
}
