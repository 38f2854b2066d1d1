package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hasib072/BookNest/internal/auth"
	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/service"
	"github.com/Hasib072/BookNest/pkg/health"
	"github.com/Hasib072/BookNest/pkg/middleware"
)

// RouterConfig holds the dependencies and settings for the HTTP router.
type RouterConfig struct {
	UserService   *service.UserService
	BookService   *service.BookService
	ReviewService *service.ReviewService
	JWTManager    *auth.JWTManager
	Health        *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	Cookie        SessionCookieConfig

	// MediaDir, when non-empty, is served under /media/ for locally stored
	// cover images.
	MediaDir string
}

// NewRouter creates a chi router with all booknest routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("booknest"))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Locally stored cover images
	if cfg.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWTManager.ValidateSessionToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Role:     claims.Role,
			Verified: claims.Verified,
		}, nil
	}

	authHandler := NewAuthHandler(cfg.UserService, cfg.Cookie, cfg.Logger)
	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	bookHandler := NewBookHandler(cfg.BookService, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.ReviewService, cfg.Logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)
		})

		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/check-auth", authHandler.CheckAuth)
		})
	})

	// Profile endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)
	})

	// Catalog endpoints (reads public, creation admin only)
	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", bookHandler.List)
		r.Get("/{id}", bookHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/", bookHandler.Create)
		})
	})

	// Review endpoints (reads public, submission requires a session)
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/", reviewHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/", reviewHandler.Submit)
		})
	})

	return r
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
