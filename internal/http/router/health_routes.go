package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/lockerbridge/internal/http/controllers/health"
)

// HealthRouterDeps contiene las dependencias para el router de health.
type HealthRouterDeps struct {
	Controllers *ctrl.Controllers
	Metrics     http.Handler
}

// RegisterHealthRoutes registra rutas de health check y métricas.
// Sin logging (muy frecuentes).
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	c := deps.Controllers

	r.Get("/healthz", c.Health.Healthz)
	r.Head("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
	r.Head("/readyz", c.Health.Readyz)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}
