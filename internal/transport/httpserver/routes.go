package httpserver

import (
	"net/http"
	"time"

	"budget-tracker-go/internal/config"
	"budget-tracker-go/internal/transport/httpserver/handler"
	"budget-tracker-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *middleware.SupabaseAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Group(func(r chi.Router) {
			if cfg.RateLimit.Enabled {
				limiter := middleware.NewKeyedRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
				r.Use(limiter.Middleware)
			}

			r.Post("/auth/signup", handlers.Signup)
			r.Post("/auth/login", handlers.Login)
			r.Post("/auth/refresh", handlers.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			r.Post("/auth/logout", handlers.Logout)

			r.Get("/categories", handlers.ListCategories)
			r.Post("/categories", handlers.CreateCategory)
			r.Delete("/categories/{id}", handlers.DeleteCategory)

			r.Get("/transactions", handlers.ListTransactions)
			r.Post("/transactions", handlers.CreateTransaction)
			r.Delete("/transactions/{id}", handlers.DeleteTransaction)

			r.Get("/budgets", handlers.ListBudgets)
			r.Post("/budgets", handlers.CreateBudget)
			r.Delete("/budgets/{id}", handlers.DeleteBudget)

			r.Get("/dashboard", handlers.GetDashboard)
		})
	})

	return r
}
