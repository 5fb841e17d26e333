package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/httpserver/handlers"
	"github.com/expiryguard/expiryguard/internal/httpserver/mw"
)

func init() { Register(registerNotifyTest) }

func registerNotifyTest(r chi.Router, d deps.Deps) {
	r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{Burst: 2, RefillPerIPPerMin: 4, TrustProxy: d.TrustProxy}),
	).Post("/notify/test", handlers.NotifyTest(d))
}
