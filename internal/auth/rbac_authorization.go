package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

type RBACAuthorization struct {
	authorizer PermissionAuthorizer
	logger     *slog.Logger
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		authorizer: authorizer,
		logger:     logger,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := internal.IdentityFromContext(r.Context())
		if !ok {
			ra.logger.WarnContext(r.Context(), "authorization check failed: identity not found in context")
			ra.deny(w, http.StatusUnauthorized, internal.ErrUnauthenticated.Message)
			return
		}

		hasAccess, err := ra.authorizer.HasPermission(r.Context(), identity.Role, permission)
		if err != nil {
			ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", identity.UserID, "permission", permission)
			ra.deny(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !hasAccess {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", identity.UserID,
				"role", identity.Role,
				"required_permission", permission)
			ra.deny(w, http.StatusForbidden, internal.ErrForbidden.Message)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequirePermission guards a route with a single role permission.
func (ra *RBACAuthorization) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}

func (ra *RBACAuthorization) deny(w http.ResponseWriter, status int, message string) {
	transport.WriteJSON(w, status, internal.APIResponse{Success: false, Error: message}, ra.logger)
}
