// Package controllers agrupa todos los controllers HTTP.
// Este es el "composition root" de controllers.
//
//  1. CREAR EL SUB-PAQUETE:
//     internal/http/controllers/{dominio}/
//     - {nombre}_controller.go  → implementación del controller
//     - controllers.go          → aggregator del dominio
//
//  2. AGREGAR AL AGGREGATOR PRINCIPAL (este archivo).
//
//  3. USO EN server/wiring.go:
//
//     svcs := services.New(deps)
//     ctrls := controllers.New(svcs, Deps{Cookies: writer, Reader: accessor})
//     router.New(router.Deps{Controllers: ctrls, ...})
package controllers

import (
	"github.com/dropDatabas3/lockerbridge/internal/http/controllers/auth"
	"github.com/dropDatabas3/lockerbridge/internal/http/controllers/documents"
	"github.com/dropDatabas3/lockerbridge/internal/http/controllers/health"
	"github.com/dropDatabas3/lockerbridge/internal/http/controllers/setu"
	"github.com/dropDatabas3/lockerbridge/internal/http/services"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// Deps son los adapters HTTP que los controllers usan además de los services.
type Deps struct {
	Cookies *session.Writer
	Reader  *session.Accessor
}

// Controllers agrupa todos los sub-controllers por dominio.
type Controllers struct {
	Auth      *auth.Controllers      // login, callback, refresh, logout, qr
	Documents *documents.Controllers // proxy de documentos
	Setu      *setu.Controllers      // consent requests API Setu
	Health    *health.Controllers    // healthz / readyz
}

// New crea el agregador de controllers con todos los services inyectados.
func New(svc *services.Services, d Deps) *Controllers {
	return &Controllers{
		Auth:      auth.NewControllers(svc.Auth, d.Cookies, d.Reader),
		Documents: documents.NewControllers(svc.Documents),
		Setu:      setu.NewControllers(svc.Setu),
		Health:    health.NewControllers(svc.Health),
	}
}
