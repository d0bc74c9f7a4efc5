// Package router arma el árbol de rutas HTTP sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lockerbridge/internal/http/controllers"
	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/rate"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Controllers *controllers.Controllers
	Guard       *mw.Guard

	// Middlewares globales
	CORSOrigins []string

	// Rate limiting de POST /auth/refresh (nil = sin límite)
	RefreshLimiter rate.Limiter
	RefreshCookie  string

	// Handler de /metrics (nil = no se monta)
	Metrics http.Handler

	// Debug monta /auth/debug/* (nunca en producción)
	Debug bool
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Orden: recover envuelve todo; request id antes del logging.
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		metrics.WithMetrics,
		mw.WithSecurityHeaders(),
	)
	if len(deps.CORSOrigins) > 0 {
		r.Use(mw.WithCORS(deps.CORSOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := deps.Controllers
	RegisterHealthRoutes(r, HealthRouterDeps{Controllers: c.Health, Metrics: deps.Metrics})
	RegisterAuthRoutes(r, AuthRouterDeps{
		Controllers:    c.Auth,
		Guard:          deps.Guard,
		RefreshLimiter: deps.RefreshLimiter,
		RefreshCookie:  deps.RefreshCookie,
		Debug:          deps.Debug,
	})
	RegisterDocumentsRoutes(r, DocumentsRouterDeps{Controllers: c.Documents, Guard: deps.Guard})
	RegisterSetuRoutes(r, SetuRouterDeps{Controllers: c.Setu})

	return r
}
