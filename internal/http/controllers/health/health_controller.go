// Package health contiene los controllers de liveness y readiness.
package health

import (
	"net/http"

	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/health"
)

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(s svc.HealthService) *HealthController {
	return &HealthController{service: s}
}

// Healthz maneja GET /healthz. Solo indica que el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, c.service.Live(r.Context()))
}

// Readyz maneja GET /readyz. 503 si un componente crítico falla.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	res := c.service.Check(r.Context())
	status := http.StatusOK
	if res.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, status, res)
}
