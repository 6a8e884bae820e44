package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/urbanosolucoes/licitahub/internal/api/response"
	"github.com/urbanosolucoes/licitahub/internal/cache"
	"github.com/urbanosolucoes/licitahub/internal/store"
)

// Auth provides session authentication and role-checking middleware.
type Auth struct {
	store store.Store
	cache cache.Cache
}

// NewAuth creates a new Auth middleware.
func NewAuth(s store.Store, c cache.Cache) *Auth {
	return &Auth{store: s, cache: c}
}

// Authenticate validates the Bearer session token against Redis, loads the
// user and sets it in the request context. The token must also match the one
// on the user row so that a password change or forced logout revokes it.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		userID, found, err := a.cache.GetSession(r.Context(), token)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate session", nil)
			return
		}
		if !found {
			response.Error(w, http.StatusUnauthorized,
				"SESSION_EXPIRED", "Session expired or unknown, log in again", nil)
			return
		}

		user, err := a.store.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Account no longer exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to load account", nil)
			return
		}

		if user.SessionToken != token {
			response.Error(w, http.StatusUnauthorized,
				"SESSION_REVOKED", "Session was revoked by a newer login", nil)
			return
		}

		r = r.WithContext(SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that checks the authenticated user's role.
func (a *Auth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r)
			if !ok || user.Role != role {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
