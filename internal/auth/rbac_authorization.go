package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates every domain route. The resolved user must already
// be in the request context (AuthMiddleware runs first).
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// RequireModule allows the request through when the user holds the action
// flag for the module, or is an Admin.
func (ra *RBACAuthorization) RequireModule(module Module, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.Can(module, action) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient module permission",
					"user_id", user.ID,
					"module", module,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.IsAdmin() {
				ra.logger.WarnContext(r.Context(), "access denied: admin role required", "user_id", user.ID)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
