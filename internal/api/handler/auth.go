package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/cache"
	"github.com/urbanosolucoes/licitahub/internal/notify"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// AuthHandler serves registration, login, logout and password recovery.
type AuthHandler struct {
	store      store.Store
	cache      cache.Cache
	mailer     notify.Mailer
	sessionTTL time.Duration
}

func NewAuthHandler(s store.Store, c cache.Cache, m notify.Mailer, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: s, cache: c, mailer: m, sessionTTL: sessionTTL}
}

// Register handles POST /api/v1/auth/register. New accounts start on the
// free plan with the user role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Username == "" || req.Email == "" || req.Name == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"username, name and email are required", nil)
		return
	}
	if !strings.Contains(req.Email, "@") {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email is not valid", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("password must have at least %d characters", minPasswordLen), nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "ALREADY_EXISTS",
				"Username or email is already taken", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
		return
	}

	response.Created(w, user)
}

// Login handles POST /api/v1/auth/login. A successful login issues a fresh
// session token, invalidating any previous session for the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), strings.TrimSpace(strings.ToLower(req.Username)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
				"Incorrect username or password", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load account", nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
			"Incorrect username or password", nil)
		return
	}

	token := uuid.NewString()
	if err := h.store.UpdateSessionToken(r.Context(), user.ID, token); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open session", nil)
		return
	}
	if old := user.SessionToken; old != "" {
		h.cache.DeleteSession(r.Context(), old)
	}
	if err := h.cache.SetSession(r.Context(), token, user.ID, h.sessionTTL); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open session", nil)
		return
	}
	user.SessionToken = token

	response.JSON(w, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/v1/auth/logout for the authenticated user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
		return
	}

	if err := h.store.UpdateSessionToken(r.Context(), user.ID, ""); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to close session", nil)
		return
	}
	h.cache.DeleteSession(r.Context(), user.SessionToken)

	response.JSON(w, map[string]string{"status": "logged_out"})
}

// Recover handles POST /api/v1/auth/recover. It always answers 200 so that
// the endpoint cannot be used to probe which emails exist.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	accepted := map[string]string{"status": "recovery_email_sent_if_account_exists"}

	user, err := h.store.GetUserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.JSON(w, accepted)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load account", nil)
		return
	}

	tempPassword := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password", nil)
		return
	}
	if err := h.store.UpdatePasswordHash(r.Context(), user.ID, string(hash)); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password", nil)
		return
	}

	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your temporary password is: <b>%s</b></p><p>Log in and change it right away.</p>",
		user.Name, tempPassword)
	if err := h.mailer.Send(r.Context(), user.Email, "🔑 Password Recovery", body); err != nil {
		response.Error(w, http.StatusBadGateway, "EMAIL_FAILED", "Failed to send recovery email", nil)
		return
	}

	response.JSON(w, accepted)
}
