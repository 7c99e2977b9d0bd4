package middleware

import (
	"net/http"

	"github.com/davquintana/contactbook-backend/internal/api/httpx"
	"github.com/davquintana/contactbook-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

// RequireRole allows only the given role through.
func RequireRole(need string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := Role(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing identity", nil)
				return
			}
			if role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin checks the token identity against the user id in the
// given chi URL parameter. The legacy backend trusted the path id outright;
// here a mismatch is forbidden unless the actor is an administrator.
func RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserID(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing identity", nil)
				return
			}
			role, _ := Role(r.Context())
			if uid != chi.URLParam(r, param) && role != models.RoleAdmin {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "identity does not match resource", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
