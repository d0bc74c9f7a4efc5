// Package server construye la infraestructura desde la configuración y
// corre el servidor HTTP.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/lockerbridge/internal/app"
	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/rate"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

// Built es la aplicación cableada más la infraestructura que el caller
// debe supervisar y cerrar.
type Built struct {
	App     *app.App
	KV      cache.Client
	Cleanup func() error
}

// BuildHandler construye todas las dependencias a partir de una
// configuración ya validada.
func BuildHandler(cfg *config.Config) (*Built, error) {
	// 1. Store (memoria o Redis)
	kv, err := cache.New(cache.Config{
		Driver:          cfg.Store.Driver,
		URL:             cfg.Store.RedisURL,
		Prefix:          cfg.Store.Prefix,
		CleanupInterval: cfg.Store.CleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("store init failed: %w", err)
	}
	cleanup := kv.Close

	// 2. Cipher (la clave ya pasó Validate)
	c, err := cipher.New(cfg.Security.EncryptionKey)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("cipher init failed: %w", err)
	}

	// 3. Issuer propio: solo si hay secreto (obligatorio en mock)
	var issuer *jwt.Issuer
	if cfg.Security.JWTSecret != "" {
		issuer = jwt.NewIssuer(cfg.Security.JWTSecret)
	}

	// 4. Entorno (mock o proveedor real)
	env := environment.FromConfig(cfg, issuer)

	// 5. Rate limiter del refresh; comparte la conexión Redis si existe
	var limiter rate.Limiter
	if cfg.Rate.RefreshLimit > 0 {
		var rdb *redis.Client
		if r, ok := kv.(interface{ Redis() *redis.Client }); ok {
			rdb = r.Redis()
		}
		limiter = rate.New(rate.Config{
			Redis:  rdb,
			Prefix: cfg.Store.Prefix + ":rl:",
			Max:    cfg.Rate.RefreshLimit,
			Window: cfg.Rate.RefreshWindow,
		})
	}

	// 6. Métricas
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler, err = metrics.Register(nil)
		if err != nil {
			_ = cleanup()
			return nil, fmt.Errorf("metrics init failed: %w", err)
		}
	}

	a, err := app.New(app.Deps{
		Config:  cfg,
		KV:      kv,
		Cipher:  c,
		Issuer:  issuer,
		Env:     env,
		Limiter: limiter,
		Metrics: metricsHandler,
		Now:     time.Now,
	})
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("failed to build app: %w", err)
	}

	return &Built{App: a, KV: kv, Cleanup: cleanup}, nil
}
