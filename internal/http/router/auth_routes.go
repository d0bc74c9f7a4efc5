package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/lockerbridge/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
	"github.com/dropDatabas3/lockerbridge/internal/rate"
)

// AuthRouterDeps contiene las dependencias para el router de auth.
type AuthRouterDeps struct {
	Controllers    *ctrl.Controllers
	Guard          *mw.Guard
	RefreshLimiter rate.Limiter // Opcional: throttling del refresh
	RefreshCookie  string
	Debug          bool
}

// RegisterAuthRoutes registra las rutas de sesión y login.
func RegisterAuthRoutes(r chi.Router, deps AuthRouterDeps) {
	c := deps.Controllers

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.WithLogging())

		// GET /auth/login, GET /auth/callback
		r.Get("/login", c.Login.Login)
		r.Get("/callback", c.Login.Callback)

		// POST /auth/exchange-code
		r.Post("/exchange-code", c.Login.ExchangeCode)

		// POST /auth/refresh (throttled por cookie de refresh, fallback IP)
		r.Method(http.MethodPost, "/refresh", refreshHandler(deps, http.HandlerFunc(c.Session.Refresh)))

		// POST /auth/logout
		r.Post("/logout", c.Session.Logout)

		// GET /auth/user (requiere sesión)
		r.With(deps.Guard.RequireSession()).Get("/user", c.Session.User)

		// QR cross-device
		r.Get("/qr-session", c.QR.Session)
		r.Get("/qr-status/{sessionId}", c.QR.Status)
		r.Get("/qr-callback", c.QR.Callback)

		if deps.Debug {
			r.Get("/debug/encryption", c.Debug.Encryption)
		}
	})
}

func refreshHandler(deps AuthRouterDeps, handler http.Handler) http.Handler {
	if deps.RefreshLimiter == nil {
		return handler
	}
	return mw.Chain(handler, mw.WithRateLimit(mw.RateLimitConfig{
		Limiter: deps.RefreshLimiter,
		KeyFunc: mw.CookieRateKey(deps.RefreshCookie),
		Scope:   "refresh",
	}))
}
