package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// RouterConfig carries the collaborators of the HTTP router
type RouterConfig struct {
	Handler     *Handler
	Verifier    *TokenVerifier
	Idempotency IdempotencyStore
	// Metrics wraps every request when set
	Metrics func(http.Handler) http.Handler
}

// NewRouter builds the /api/v1 routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics)
	}

	h := cfg.Handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.Verifier.Authenticate)
		r.Use(Idempotency(cfg.Idempotency))

		r.Route("/account", func(r chi.Router) {
			r.Get("/info", h.HandleAccountInfo)
			r.Post("/lays", h.HandleCreateLay)
			r.Get("/lays/{id}", h.HandleGetLay)
			r.Post("/withdraw", h.HandleWithdraw)
			r.Get("/deposit/generate", h.HandleGenerateDeposit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff)
			r.Post("/lays/{id}/status", h.HandleTransitionLay)
			r.Post("/rollover", h.HandleRollover)
			r.Post("/deposit/seed", h.HandleSeedDeposits)
		})
	})

	return r
}

// NewServer wraps the router in an http.Server with the usual timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}
