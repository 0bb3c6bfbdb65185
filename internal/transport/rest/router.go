package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/user-management/internal/access"
	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/describe"
	"github.com/frahmantamala/user-management/internal/profile"
	"github.com/frahmantamala/user-management/internal/transport/middleware"
	"github.com/frahmantamala/user-management/internal/transport/swagger"
	"github.com/frahmantamala/user-management/internal/user"
)

// Resources guarding the destructive routes. The seeder provisions matching
// permission rows; non-administrators need an explicit grant.
const (
	ResourceUsersDelete       = "users:delete"
	ResourceProfilesDelete    = "profiles:delete"
	ResourcePermissionsUpdate = "permissions:update"
)

type RouterConfig struct {
	CORS           middleware.CORSConfig
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	cfg RouterConfig,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	profileHandler *profile.Handler,
	accessHandler *access.Handler,
	describeHandler *describe.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, middleware.MetricsHandler())
	}

	// Mount API under /api/v1 to match the OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", userHandler.GetCurrentUser)
					ur.Get("/", userHandler.GetUsers)
					ur.Post("/", userHandler.CreateUser)
					ur.Get("/{id}", userHandler.GetUser)
					ur.Put("/{id}", userHandler.UpdateUser)

					ur.Group(func(dr chi.Router) {
						dr.Use(middleware.RequireResource(ResourceUsersDelete))
						dr.Delete("/{id}", userHandler.DeleteUser)
					})
				})
			}

			if profileHandler != nil {
				pr.Route("/profiles", func(prr chi.Router) {
					prr.Get("/", profileHandler.GetProfiles)
					prr.Post("/", profileHandler.CreateProfile)
					prr.Get("/{id}", profileHandler.GetProfile)
					prr.Put("/{id}", profileHandler.UpdateProfile)

					prr.Group(func(dr chi.Router) {
						dr.Use(middleware.RequireResource(ResourceProfilesDelete))
						dr.Delete("/{id}", profileHandler.DeleteProfile)
					})
				})

				pr.Route("/permissions", func(pmr chi.Router) {
					pmr.Get("/", profileHandler.GetPermissions)

					pmr.Group(func(wr chi.Router) {
						wr.Use(middleware.RequireResource(ResourcePermissionsUpdate))
						wr.Post("/", profileHandler.SavePermissions)
						wr.Post("/delete", profileHandler.DeletePermissions)
					})
				})
			}

			if accessHandler != nil {
				pr.Get("/accesses", accessHandler.GetAccesses)
			}

			if describeHandler != nil {
				pr.Get("/describe", describeHandler.GetDescription)
			}
		})
	})
}
