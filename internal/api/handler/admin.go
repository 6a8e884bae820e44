package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/notify"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// DeadlineRunner is the slice of the notify scanner the admin handler uses
// to trigger an on-demand deadline sweep.
type DeadlineRunner interface {
	Run(ctx context.Context) ([]string, error)
}

// AdminHandler serves the back-office endpoints: account management, plan
// and credit adjustments, and operational triggers.
type AdminHandler struct {
	store   store.Store
	mailer  notify.Mailer
	scanner DeadlineRunner
}

func NewAdminHandler(s store.Store, m notify.Mailer, scanner DeadlineRunner) *AdminHandler {
	return &AdminHandler{store: s, mailer: m, scanner: scanner}
}

type adminUserView struct {
	*models.User
	PlanLimit        int `json:"plan_limit"`
	CreditsRemaining int `json:"credits_remaining"`
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", nil)
		return
	}

	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		limit := models.PlanLimit(u.Plan)
		remaining := limit - u.CreditsUsed
		if remaining < 0 {
			remaining = 0
		}
		views = append(views, adminUserView{User: u, PlanLimit: limit, CreditsRemaining: remaining})
	}

	response.JSON(w, views)
}

// UpdatePlan handles PUT /api/v1/admin/users/{userID}/plan. Switching plans
// resets the credit counter, matching a new billing cycle.
func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "userID must be a UUID", nil)
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if !models.ValidPlan(req.Plan) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"plan must be one of free, plan_15, plan_30, plan_60, plan_90, unlimited", nil)
		return
	}

	if err := h.store.UpdateUserPlan(r.Context(), userID, req.Plan); err != nil {
		writeAdminStoreError(w, err)
		return
	}
	if err := h.store.SetCreditsUsed(r.Context(), userID, 0); err != nil {
		writeAdminStoreError(w, err)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		writeAdminStoreError(w, err)
		return
	}
	response.JSON(w, user)
}

// SetCredits handles PUT /api/v1/admin/users/{userID}/credits and overwrites
// the used-credit counter, typically to reset a cycle or grant extra runs.
func (h *AdminHandler) SetCredits(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "userID must be a UUID", nil)
		return
	}

	var req struct {
		CreditsUsed *int `json:"credits_used"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.CreditsUsed == nil || *req.CreditsUsed < 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"credits_used must be zero or positive", nil)
		return
	}

	if err := h.store.SetCreditsUsed(r.Context(), userID, *req.CreditsUsed); err != nil {
		writeAdminStoreError(w, err)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		writeAdminStoreError(w, err)
		return
	}
	response.JSON(w, user)
}

// TestEmail handles POST /api/v1/admin/test-email and sends a probe message
// through the configured SMTP relay to the admin's own address.
func (h *AdminHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	admin, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	var req struct {
		To string `json:"to"`
	}
	// Body is optional; default to the caller's address.
	_ = json.NewDecoder(r.Body).Decode(&req)
	to := strings.TrimSpace(req.To)
	if to == "" {
		to = admin.Email
	}

	body := "<p>SMTP relay is configured correctly. This is a test message.</p>"
	if err := h.mailer.Send(r.Context(), to, "✉️ SMTP Test", body); err != nil {
		response.Error(w, http.StatusBadGateway, "EMAIL_FAILED", "Failed to send test email",
			map[string]string{"error": err.Error()})
		return
	}

	response.JSON(w, map[string]string{"status": "sent", "to": to})
}

// RunDeadlineCheck handles POST /api/v1/admin/deadline-check. It runs the
// same sweep the scheduled notifier runs and returns the per-user outcome
// lines.
func (h *AdminHandler) RunDeadlineCheck(w http.ResponseWriter, r *http.Request) {
	lines, err := h.scanner.Run(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Deadline sweep failed", map[string]string{"error": err.Error()})
		return
	}

	response.JSON(w, map[string]any{"results": lines})
}

func writeAdminStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		return
	}
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
}
