package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/httpserver/handlers"
	"github.com/expiryguard/expiryguard/internal/httpserver/mw"
)

func init() { Register(registerSecrets) }

func registerSecrets(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/secrets", handlers.ListSecrets(d))
	guarded.Get("/secrets/{id}", handlers.GetSecret(d))
	guarded.With(mw.RateLimit(mw.RateLimitConfig{Burst: 10, RefillPerIPPerMin: 30, TrustProxy: d.TrustProxy})).
		Post("/secrets", handlers.CreateSecret(d))
	guarded.Delete("/secrets/{id}", handlers.DeleteSecret(d))
}
