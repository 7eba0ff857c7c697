package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/transport"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

const loginPage = "/login"

// Identity headers forwarded to API handlers. Client supplied values are
// always stripped first.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

// Access decision outcomes reported to the AccessRecorder.
const (
	OutcomePass          = "pass"
	OutcomeAuthenticated = "authenticated"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeExpired       = "expired"
	OutcomeForbidden     = "forbidden"
	OutcomeRedirectLogin = "redirect_login"
	OutcomeRedirectRole  = "redirect_role"
)

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

type AccessRecorder interface {
	RecordAccess(class, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAccess(string, string) {}

// Access gates every request by the route table: public paths pass, API
// paths without a valid session get a 401 envelope, page paths get sent to
// the login page, and role allowlists are enforced on both.
type Access struct {
	routes   *auth.RouteTable
	verifier SessionVerifier
	recorder AccessRecorder
	logger   *slog.Logger
}

func NewAccess(routes *auth.RouteTable, verifier SessionVerifier, recorder AccessRecorder, logger *slog.Logger) *Access {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Access{
		routes:   routes,
		verifier: verifier,
		recorder: recorder,
		logger:   logger,
	}
}

func (a *Access) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderUserID)
		r.Header.Del(HeaderUserRole)
		r.Header.Del(HeaderUserEmail)

		rule := a.routes.Classify(r.URL.Path)
		class := string(rule.Class)

		if rule.Class == auth.ClassPublic {
			a.recorder.RecordAccess(class, OutcomePass)
			next.ServeHTTP(w, r)
			return
		}

		token := auth.TokenFromRequest(r)
		if token == "" {
			a.reject(w, r, rule, internal.ErrUnauthenticated, OutcomeUnauthorized)
			return
		}

		claims, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrTokenExpired) {
				logger.From(r.Context()).Error("session verification failed", "error", err, "path", r.URL.Path)
			}
			a.reject(w, r, rule, internal.ErrSessionExpired, OutcomeExpired)
			return
		}

		identity := claims.Identity()
		ctx := internal.ContextWithIdentity(r.Context(), identity)
		ctx = logger.With(ctx, "userID", identity.UserID)
		r = r.WithContext(ctx)

		if !rule.Allows(identity.Role) {
			a.denyRole(w, r, rule, identity)
			return
		}

		if rule.Class == auth.ClassProtectedAPI {
			r.Header.Set(HeaderUserID, identity.UserID)
			r.Header.Set(HeaderUserRole, identity.Role)
			r.Header.Set(HeaderUserEmail, identity.Email)
		}

		a.recorder.RecordAccess(class, OutcomeAuthenticated)
		next.ServeHTTP(w, r)
	})
}

func (a *Access) reject(w http.ResponseWriter, r *http.Request, rule auth.RouteRule, appErr *internal.AppError, outcome string) {
	if rule.Class == auth.ClassProtectedAPI {
		a.recorder.RecordAccess(string(rule.Class), outcome)
		status, body := appErr.ToHTTPResponse()
		transport.WriteJSON(w, status, body, a.logger)
		return
	}

	a.recorder.RecordAccess(string(rule.Class), OutcomeRedirectLogin)
	http.Redirect(w, r, loginPage, http.StatusFound)
}

func (a *Access) denyRole(w http.ResponseWriter, r *http.Request, rule auth.RouteRule, identity *internal.Identity) {
	logger.From(r.Context()).Warn("access denied for role",
		"role", identity.Role,
		"path", r.URL.Path,
		"allowed_roles", rule.Roles)

	if rule.Class == auth.ClassProtectedAPI || rule.Redirect == "" {
		a.recorder.RecordAccess(string(rule.Class), OutcomeForbidden)
		status, body := internal.ErrForbidden.ToHTTPResponse()
		transport.WriteJSON(w, status, body, a.logger)
		return
	}

	// Role redirects only lead between pages of known roles; anything else
	// would bounce between them forever.
	if !user.IsKnownRole(identity.Role) {
		a.recorder.RecordAccess(string(rule.Class), OutcomeRedirectLogin)
		http.Redirect(w, r, loginPage, http.StatusFound)
		return
	}

	a.recorder.RecordAccess(string(rule.Class), OutcomeRedirectRole)
	http.Redirect(w, r, rule.Redirect, http.StatusFound)
}
