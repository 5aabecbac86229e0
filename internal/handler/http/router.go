package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trimly/accounts/internal/service"
	"github.com/trimly/accounts/internal/session"
	"github.com/trimly/accounts/pkg/health"
	"github.com/trimly/accounts/pkg/middleware"
)

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(
	accountService *service.AccountService,
	sessions session.Store,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("accounts"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Auth endpoints (public)
	authHandler := NewAuthHandler(accountService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	// Signout needs the raw bearer token, not just the resolved email, so it
	// sits outside the Auth middleware.
	r.Post("/api/v1/auth/signout", authHandler.Signout)

	// Account and catalog endpoints (auth required)
	accountHandler := NewAccountHandler(accountService, logger)
	commerceHandler := NewCommerceHandler(accountService, logger)

	r.Route("/api/v1/accounts/me", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(sessions.Resolve))

		r.Get("/", accountHandler.GetProfile)
		r.Patch("/", accountHandler.UpdateProfile)

		r.Get("/blocked", accountHandler.ListBlocked)
		r.Post("/blocked", accountHandler.BlockUser)
		r.Delete("/blocked/{email}", accountHandler.UnblockUser)

		r.Get("/payments", accountHandler.ListPayments)
		r.Post("/payments", accountHandler.RecordPayment)

		r.Post("/services", commerceHandler.CreateService)
		r.Put("/services/{priceId}", commerceHandler.UpdateService)
		r.Delete("/services/{priceId}", commerceHandler.DeleteService)
	})

	return r
}
