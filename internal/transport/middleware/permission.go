package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/user-management/internal/auth"
)

// RequireResource guards a route behind one effective resource: the
// authenticated user's resolved resource set must contain it. Administrators
// pass automatically since resolution already grants them everything.
func RequireResource(resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasResource(resource) {
				slog.Warn("access denied: missing resource",
					"user_id", user.ID,
					"required_resource", resource)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
