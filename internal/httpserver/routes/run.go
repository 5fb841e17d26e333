package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/httpserver/handlers"
	"github.com/expiryguard/expiryguard/internal/httpserver/mw"
)

func init() { Register(registerRun) }

func registerRun(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{Burst: 3, RefillPerIPPerMin: 6, TrustProxy: d.TrustProxy}),
	).Post("/run", handlers.Run(d))
}
