package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/handler"
	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/middleware"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanRequestHandler *handler.LoanRequestHandler
	LoanHandler        *handler.LoanHandler
	RepaymentHandler   *handler.RepaymentHandler
	CreditHandler      *handler.CreditHandler
	SweepHandler       *handler.SweepHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Loan requests
		r.Route("/loan-requests", func(r chi.Router) {
			r.Post("/", cfg.LoanRequestHandler.Submit)
			r.Get("/", cfg.LoanRequestHandler.List)
			r.Get("/{id}", cfg.LoanRequestHandler.Get)
			r.Post("/{id}/approve", cfg.LoanRequestHandler.Approve)
			r.Post("/{id}/reject", cfg.LoanRequestHandler.Reject)
			r.Post("/{id}/verify-nid", cfg.LoanRequestHandler.VerifyNid)
		})

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Get("/", cfg.LoanHandler.List)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Get("/{id}/schedule", cfg.LoanHandler.Schedule)
		})

		// Repayments
		r.Route("/repayments", func(r chi.Router) {
			r.Get("/{id}", cfg.RepaymentHandler.Get)
			r.Post("/{id}/paid", cfg.RepaymentHandler.MarkPaid)
			r.Post("/{id}/unpaid", cfg.RepaymentHandler.MarkUnpaid)
		})

		// Credit account
		r.Route("/credit", func(r chi.Router) {
			r.Get("/", cfg.CreditHandler.GetAccount)
			r.Post("/deposit", cfg.CreditHandler.Deposit)
			r.Post("/withdraw", cfg.CreditHandler.Withdraw)
			r.Get("/net-activity", cfg.CreditHandler.NetActivity)
			r.Get("/transactions", cfg.CreditHandler.ListTransactions)
			r.Get("/transactions/{code}", cfg.CreditHandler.GetTransaction)
		})

		// Sweeps
		r.Route("/sweeps", func(r chi.Router) {
			r.Post("/late", cfg.SweepHandler.Late)
			r.Post("/upcoming", cfg.SweepHandler.Upcoming)
		})
	})

	return r
}
