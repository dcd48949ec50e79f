package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loan-origination/docs"
	"loan-origination/internal/api/handler"
	mw "loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/officer"
	"loan-origination/internal/pkg/identity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Services struct {
	Loans     loan.LoanService
	Customers customer.CustomerService
	Officers  officer.OfficerService
}

func SetupRouter(rateLimiter *mw.RateLimiterMiddleware, svc Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)
	setupAuthRoutes(router, cfg, logger)

	router.Route("/api", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		setupLoanRoutes(r, svc.Loans, logger)
		setupOfficerRoutes(r, svc.Loans, svc.Officers, logger)
		setupCustomerRoutes(r, svc.Customers, logger)
	})

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(r chi.Router, svc loan.LoanService, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc, logger)
	officerOnly := mw.RequireRole(identity.RoleOfficer)

	r.Route("/loans", func(r chi.Router) {
		r.With(mw.RequireRole(identity.RoleCustomer)).Post("/apply", h.ApplyForLoan)
		r.With(officerOnly).Get("/", h.ListLoans)
		r.Get("/customer/{customerID}", h.ListCustomerLoans)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/status", h.GetLoanStatus)
			r.With(officerOnly).Post("/evaluate", h.EvaluateLoan)
		})
	})
}

func setupOfficerRoutes(r chi.Router, loans loan.LoanService, officers officer.OfficerService, logger *slog.Logger) {
	lh := handler.NewLoanHandler(loans, logger)
	oh := handler.NewOfficerHandler(officers, logger)

	r.Route("/officer", func(r chi.Router) {
		r.Use(mw.RequireRole(identity.RoleOfficer))
		r.Get("/profile", oh.GetProfile)
		r.Post("/profile", oh.CreateProfile)
		r.Get("/stats", lh.Statistics)
		r.Route("/loans", func(r chi.Router) {
			r.Get("/pending", lh.ListPendingLoans)
			r.Get("/my-reviews", lh.MyReviews)
			r.Post("/{loanID}/review", lh.ReviewLoan)
		})
	})
}

func setupCustomerRoutes(r chi.Router, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Route("/customer", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(identity.RoleCustomer))
			r.Get("/profile", h.GetProfile)
			r.Post("/profile", h.CreateProfile)
			r.Put("/profile", h.UpdateProfile)
		})
		r.Get("/{customerID}", h.GetCustomer)
	})
}
