package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/audit"
	"github.com/amit1797/Eduadmin-sub000/internal/auth"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
	"github.com/amit1797/Eduadmin-sub000/internal/school"
	"github.com/amit1797/Eduadmin-sub000/internal/student"
	"github.com/amit1797/Eduadmin-sub000/internal/transport/middleware"
	"github.com/amit1797/Eduadmin-sub000/internal/transport/swagger"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Routes bundles everything the HTTP surface is built from. Nil handlers
// leave their routes unmounted.
type Routes struct {
	DB         *sql.DB
	Cache      redis.UniversalClient
	Auth       *auth.Handler
	Authorizer *access.Authorizer
	Audit      *audit.Middleware

	Schools   *school.Handler
	Users     *user.Handler
	Students  *student.Handler
	AuditLogs *audit.Handler

	// StudentPreImage feeds oldValues of student updates and deletes.
	StudentPreImage audit.PreImageLoader

	Metrics        *observability.Metrics
	MetricsPath    string
	Gatherer       prometheus.Gatherer
	AllowedOrigins string
}

func RegisterAllRoutes(router *chi.Mux, routes Routes, logger *slog.Logger) {
	healthHandler := NewHealthHandler(routes.DB, routes.Cache)

	// Apply global middleware
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if routes.Metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(routes.Metrics))
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler().ServeHTTP)
	router.Handle("/swagger/*", swagger.Handler())

	if routes.Gatherer != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, observability.Handler(routes.Gatherer))
	}

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if routes.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", routes.Auth.Login)
			sr.Post("/refresh", routes.Auth.RefreshToken)
			sr.Post("/set-password", routes.Auth.SetPassword)
			sr.With(routes.Auth.AuthMiddleware).Post("/logout", routes.Auth.Logout)
			sr.With(routes.Auth.AuthMiddleware).Get("/me", routes.Auth.Me)
		})

		if routes.Authorizer == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(routes.Auth.AuthMiddleware)
			registerSchoolRoutes(pr, routes)
		})
	})
}

func registerSchoolRoutes(r chi.Router, routes Routes) {
	authz := routes.Authorizer
	track := func(resource string, loader audit.PreImageLoader) func(http.Handler) http.Handler {
		if routes.Audit == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return routes.Audit.Track(resource, loader)
	}
	trackCreated := func(resource string, locate audit.Locator) func(http.Handler) http.Handler {
		if routes.Audit == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return routes.Audit.TrackCreated(resource, locate)
	}
	superAdmin := authz.RequireRole(identity.RoleSuperAdmin)

	r.Route("/schools", func(sr chi.Router) {
		if routes.Schools != nil {
			sr.With(superAdmin).Get("/", routes.Schools.List)
			sr.With(superAdmin, trackCreated("school", audit.NestedID("school", true))).Post("/", routes.Schools.Create)
		}

		sr.Route("/{schoolId}", func(tr chi.Router) {
			if routes.Schools != nil {
				tr.With(authz.RequireTenant()).Get("/", routes.Schools.Get)
				tr.With(authz.RequireTenant()).Get("/modules", routes.Schools.Modules)
				tr.With(superAdmin, track("school_module", nil)).Put("/modules/{module}", routes.Schools.SetModule)
			}

			if routes.Users != nil {
				tr.Route("/users", func(ur chi.Router) {
					ur.With(authz.Require(access.ModuleUserManagement, access.PermissionRead)).Get("/", routes.Users.List)
					ur.With(authz.Require(access.ModuleUserManagement, access.PermissionCreate), track("user", nil)).Post("/invite", routes.Users.Invite)
					ur.With(authz.Require(access.ModuleUserManagement, access.PermissionRead)).Get("/{id}", routes.Users.Get)
				})
			}

			if routes.Students != nil {
				tr.Route("/students", func(st chi.Router) {
					st.With(authz.Require(access.ModuleStudentManagement, access.PermissionRead)).Get("/", routes.Students.List)
					st.With(authz.Require(access.ModuleStudentManagement, access.PermissionCreate), track("student", nil)).Post("/", routes.Students.Create)
					st.With(authz.Require(access.ModuleStudentManagement, access.PermissionRead)).Get("/{id}", routes.Students.Get)
					st.With(authz.Require(access.ModuleStudentManagement, access.PermissionUpdate), track("student", routes.StudentPreImage)).Put("/{id}", routes.Students.Update)
					st.With(authz.Require(access.ModuleStudentManagement, access.PermissionDelete), track("student", routes.StudentPreImage)).Delete("/{id}", routes.Students.Delete)
				})
			}

			if routes.AuditLogs != nil {
				tr.With(authz.Require(access.ModuleAuditManagement, access.PermissionRead)).Get("/audit-logs", routes.AuditLogs.List)
			}
		})
	})
}
