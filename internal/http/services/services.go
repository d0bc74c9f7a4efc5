// Package services agrupa todos los services HTTP.
// Este es el "composition root" de services.
//
//  1. CREAR EL SUB-PAQUETE:
//     internal/http/services/{dominio}/
//     - {nombre}_service.go  → implementación del service
//     - services.go          → aggregator del dominio (si tiene más de uno)
//
//  2. AGREGAR AL AGGREGATOR PRINCIPAL (este archivo):
//     - Importar el paquete del dominio
//     - Agregar campo al struct Services
//     - Inicializar en el constructor New()
//
//  3. USO EN server/wiring.go:
//
//     svcs := services.New(services.Deps{...})
//     // svcs.Auth.Login, svcs.Documents, svcs.Setu, svcs.Health.Health
package services

import (
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/http/services/documents"
	"github.com/dropDatabas3/lockerbridge/internal/http/services/health"
	"github.com/dropDatabas3/lockerbridge/internal/http/services/setu"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	// ─── Infraestructura ───
	KV     cache.Client            // backend compartido (state, qr, setu)
	Store  *state.Store            // namespaces del flujo de autenticación
	Cipher *cipher.Cipher          // cifrado de refresh tokens
	Issuer *jwt.Issuer             // firma propia (Mode A); nil en Mode B
	Env    environment.Environment // mock o proveedor real

	// ─── Configuración ───
	PublicURL      string
	QRAuthEndpoint string
	Setu           setu.Config
	Version        string
	Now            func() time.Time
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Auth      auth.Services     // login, callback, refresh, logout, qr
	Documents documents.Service // proxy de recursos del proveedor
	Setu      setu.Service      // consent requests de API Setu
	Health    health.Services   // healthz/readyz
}

// New crea el agregador de services con todas las dependencias inyectadas.
// Este es el único lugar donde se instancian los services.
func New(d Deps) *Services {
	return &Services{
		Auth: auth.NewServices(auth.Deps{
			Env:            d.Env,
			Store:          d.Store,
			Cipher:         d.Cipher,
			PublicURL:      d.PublicURL,
			QRAuthEndpoint: d.QRAuthEndpoint,
			Now:            d.Now,
		}),
		Documents: documents.NewService(documents.Deps{Docs: d.Env.Documents()}),
		Setu: setu.NewService(setu.Deps{
			Config: d.Setu,
			KV:     d.KV,
			Now:    d.Now,
		}),
		Health: health.NewServices(health.Deps{
			Store:   d.KV,
			Cipher:  d.Cipher,
			Issuer:  d.Issuer,
			Env:     d.Env,
			Version: d.Version,
			Now:     d.Now,
		}),
	}
}
