package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RegisterHandler http.HandlerFunc
	LoginHandler    http.HandlerFunc
	LogoutHandler   http.HandlerFunc
	RecoverHandler  http.HandlerFunc

	AnalyzeHandler    http.HandlerFunc
	CrossCheckHandler http.HandlerFunc
	AskHandler        http.HandlerFunc

	ListReports         http.HandlerFunc
	GetReport           http.HandlerFunc
	UpdateReportStatus  http.HandlerFunc
	DeleteReport        http.HandlerFunc

	CalendarHandler http.HandlerFunc

	ArchiveSections http.HandlerFunc
	ArchiveUpload   http.HandlerFunc
	ArchiveList     http.HandlerFunc
	ArchiveDelete   http.HandlerFunc

	AdminListUsers        http.HandlerFunc
	AdminUpdatePlan       http.HandlerFunc
	AdminSetCredits       http.HandlerFunc
	AdminTestEmail        http.HandlerFunc
	AdminRunDeadlineCheck http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/auth/register", orNotImplemented(deps.RegisterHandler))
	r.Post("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))
	r.Post("/api/v1/auth/recover", orNotImplemented(deps.RecoverHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/auth/logout", orNotImplemented(deps.LogoutHandler))

		r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))

		r.Get("/api/v1/reports", orNotImplemented(deps.ListReports))
		r.Get("/api/v1/reports/{reportID}", orNotImplemented(deps.GetReport))
		r.Patch("/api/v1/reports/{reportID}/status", orNotImplemented(deps.UpdateReportStatus))
		r.Delete("/api/v1/reports/{reportID}", orNotImplemented(deps.DeleteReport))
		r.Post("/api/v1/reports/{reportID}/viability", orNotImplemented(deps.CrossCheckHandler))
		r.Post("/api/v1/reports/{reportID}/ask", orNotImplemented(deps.AskHandler))

		r.Get("/api/v1/calendar", orNotImplemented(deps.CalendarHandler))

		r.Get("/api/v1/archive/sections", orNotImplemented(deps.ArchiveSections))
		r.Post("/api/v1/archive", orNotImplemented(deps.ArchiveUpload))
		r.Get("/api/v1/archive", orNotImplemented(deps.ArchiveList))
		r.Delete("/api/v1/archive/{documentID}", orNotImplemented(deps.ArchiveDelete))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleAdmin))

			r.Get("/api/v1/admin/users", orNotImplemented(deps.AdminListUsers))
			r.Put("/api/v1/admin/users/{userID}/plan", orNotImplemented(deps.AdminUpdatePlan))
			r.Put("/api/v1/admin/users/{userID}/credits", orNotImplemented(deps.AdminSetCredits))
			r.Post("/api/v1/admin/test-email", orNotImplemented(deps.AdminTestEmail))
			r.Post("/api/v1/admin/deadline-check", orNotImplemented(deps.AdminRunDeadlineCheck))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
