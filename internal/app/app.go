// Package app arma la aplicación HTTP a partir de dependencias ya
// construidas: services → controllers → guard → router.
package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/http/controllers"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
	"github.com/dropDatabas3/lockerbridge/internal/http/router"
	"github.com/dropDatabas3/lockerbridge/internal/http/services"
	"github.com/dropDatabas3/lockerbridge/internal/http/services/setu"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/rate"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/dropDatabas3/lockerbridge/internal/session"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

// Deps contiene las dependencias crudas para construir la app.
type Deps struct {
	Config  *config.Config
	KV      cache.Client
	Cipher  *cipher.Cipher
	Issuer  *jwt.Issuer // nil fuera de Mode A
	Env     environment.Environment
	Limiter rate.Limiter // refresh throttling; nil = sin límite
	Metrics http.Handler // nil = sin /metrics
	Now     func() time.Time
}

// App representa la aplicación cableada.
type App struct {
	Handler  http.Handler
	Env      environment.Environment
	Services *services.Services
	Cookies  *session.Writer
	Reader   *session.Accessor
}

// New cablea la aplicación. Es el único lugar donde se crean services,
// controllers y el guard.
func New(d Deps) (*App, error) {
	if d.Config == nil || d.KV == nil || d.Env == nil {
		return nil, errors.New("app: config, store and environment are required")
	}
	if d.Env.GuardMode() == environment.SelfIssued && d.Issuer == nil {
		return nil, errors.New("app: self-issued guard mode requires a JWT issuer")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	cfg := d.Config

	// 1. Adapters de cookies
	names := session.Names{
		AccessToken:  cfg.Cookies.AccessTokenName,
		RefreshToken: cfg.Cookies.RefreshTokenName,
		ExpiresAt:    cfg.Cookies.ExpiresAtName,
	}
	writer := session.NewWriter(session.WriterConfig{
		Names:         names,
		Cipher:        d.Cipher,
		Domain:        cfg.Cookies.Domain,
		Secure:        d.Env.SecureCookies(),
		RefreshMaxAge: cfg.Cookies.RefreshMaxAge,
		Now:           d.Now,
	})
	reader := session.NewAccessor(names, d.Cipher).WithClock(d.Now)

	// 2. Services
	svcs := services.New(services.Deps{
		KV:             d.KV,
		Store:          state.New(d.KV),
		Cipher:         d.Cipher,
		Issuer:         d.Issuer,
		Env:            d.Env,
		PublicURL:      cfg.Server.PublicURL,
		QRAuthEndpoint: cfg.Provider.QRAuthEndpoint,
		Setu: setu.Config{
			BaseURL:           cfg.Setu.BaseURL,
			ClientID:          cfg.Setu.ClientID,
			ClientSecret:      cfg.Setu.ClientSecret,
			ProductInstanceID: cfg.Setu.ProductInstanceID,
		},
		Version: cfg.App.Version,
		Now:     d.Now,
	})

	// 3. Controllers
	ctrls := controllers.New(svcs, controllers.Deps{Cookies: writer, Reader: reader})

	// 4. Guard
	guard := mw.NewGuard(mw.GuardDeps{
		Mode:     d.Env.GuardMode(),
		Issuer:   d.Issuer,
		Accessor: reader,
		Writer:   writer,
		Refresh:  svcs.Auth.Refresh,
		Identity: svcs.Documents,
	})

	// 5. Rutas
	handler := router.New(router.Deps{
		Controllers:    ctrls,
		Guard:          guard,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		RefreshLimiter: d.Limiter,
		RefreshCookie:  names.RefreshToken,
		Metrics:        d.Metrics,
		Debug:          !cfg.IsProduction(),
	})

	return &App{Handler: handler, Env: d.Env, Services: svcs, Cookies: writer, Reader: reader}, nil
}
