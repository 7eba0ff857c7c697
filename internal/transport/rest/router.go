package rest

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/observability"
	"github.com/frahmantamala/hr-portal/internal/transport/middleware"
	"github.com/frahmantamala/hr-portal/internal/transport/swagger"
	"github.com/frahmantamala/hr-portal/internal/user"
)

const openAPIPath = "/openapi.yml"

// Routes bundles everything RegisterAllRoutes mounts. Nil handlers leave
// their routes out.
type Routes struct {
	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	DepartmentHandler *department.Handler
	Health            *HealthHandler
	Access            *middleware.Access
	RBAC              *auth.RBACAuthorization
	Metrics           *observability.Metrics
	MetricsPath       string
	OpenAPISpec       []byte
	AllowedOrigins    []string
	TrustProxyHeaders bool
	Production        bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Logger            *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	logger := routes.Logger

	// Apply global middleware
	router.Use(chiMiddleware.RequestID)
	if routes.TrustProxyHeaders {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.SecureHeaders(routes.Production))
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(routes.Metrics.Middleware)
	if routes.Access != nil {
		router.Use(routes.Access.Handler)
	}

	if routes.Health != nil {
		router.Get("/healthz", routes.Health.HealthCheckHandler)
		router.Get("/ping", routes.Health.PingHandler)
	}

	if routes.Metrics != nil && routes.MetricsPath != "" {
		router.Handle(routes.MetricsPath, routes.Metrics.Handler())
	}

	if len(routes.OpenAPISpec) > 0 {
		router.Get(openAPIPath, swagger.SpecHandler(routes.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler(openAPIPath))
	}

	router.Route("/api", func(r chi.Router) {
		if routes.AuthHandler != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Group(func(lr chi.Router) {
					lr.Use(middleware.RateLimit(routes.RateLimitRequests, routes.RateLimitWindow, logger))
					lr.Post("/login", routes.AuthHandler.Login)
					lr.Post("/register", routes.AuthHandler.Register)
				})
				ar.Post("/logout", routes.AuthHandler.Logout)
				ar.Get("/me", routes.AuthHandler.Me)
			})
		}

		if routes.DepartmentHandler != nil {
			r.Get("/departments", routes.DepartmentHandler.GetDepartments)
		}

		if routes.UserHandler != nil && routes.RBAC != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.With(routes.RBAC.RequirePermission(user.PermissionListUsers)).
					Get("/", routes.UserHandler.ListUsers)
				ur.With(routes.RBAC.RequirePermission(user.PermissionManageUsers)).
					Patch("/{id}", routes.UserHandler.UpdateUser)
			})
		}
	})
}
