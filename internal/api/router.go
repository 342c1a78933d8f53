package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/go-projects/internal/api/handlers"
	"github.com/hugh/go-projects/internal/api/middleware"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/documents"
	"github.com/hugh/go-projects/internal/projects"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	limiters []*middleware.RateLimiter
}

type RouterConfig struct {
	DB              *gorm.DB
	Redis           *redis.Client
	Logger          *slog.Logger
	AuthService     *auth.Service
	Projects        *projects.Service
	Documents       *documents.Service
	ClientIP        *middleware.ClientIP // nil trusts no proxy headers
	AllowedOrigins  []string             // CORS allowed origins
	RateLimitReqs   int                  // Rate limit requests per window
	RateLimitSecs   int                  // Rate limit window in seconds
	LoginRateLimit  int                  // Login attempts per window and client
	UploadRateLimit int                  // Uploads per window and user
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	clientIPs := cfg.ClientIP
	if clientIPs == nil {
		clientIPs, _ = middleware.NewClientIP(nil)
	}

	// Global middleware
	r.Use(clientIPs.Handler)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)
		router.limiters = append(router.limiters, limiter)
		r.Use(middleware.RateLimit(limiter))
	}

	// CORS - restrict to configured origins
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Logger)
	projectHandler := handlers.NewProjectHandler(cfg.AuthService, cfg.Projects, cfg.Logger)
	documentHandler := handlers.NewDocumentHandler(cfg.AuthService, cfg.Documents, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Group(func(r chi.Router) {
			if cfg.LoginRateLimit > 0 {
				limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.RateLimitSecs)
				router.limiters = append(router.limiters, limiter)
				r.Use(middleware.RateLimit(limiter))
			}
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes
		uploadLimit := func(next http.Handler) http.Handler { return next }
		if cfg.UploadRateLimit > 0 {
			limiter := middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.RateLimitSecs)
			router.limiters = append(router.limiters, limiter)
			uploadLimit = middleware.RateLimitByUser(limiter)
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.AuthService, cfg.Logger))

			r.Get("/me", authHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)

					r.Get("/participants", projectHandler.ListParticipants)
					r.Post("/participants", projectHandler.AddParticipant)
					r.Delete("/participants/{userID}", projectHandler.RemoveParticipant)

					r.Route("/documents", func(r chi.Router) {
						r.Get("/", documentHandler.List)
						r.With(uploadLimit).Post("/", documentHandler.Upload)
						r.Get("/{documentID}", documentHandler.Get)
						r.Delete("/{documentID}", documentHandler.Delete)
						r.Get("/{documentID}/metadata", documentHandler.Metadata)
						r.Get("/{documentID}/content", documentHandler.Content)
					})
				})
			})
		})
	})

	return router
}

// Close stops the rate limiter cleanup goroutines.
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
}
