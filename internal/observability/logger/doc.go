// Package logger provee un logger Zap global con scoping por contexto.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Refresh"))
//	log.Warn("refresh rejected", logger.Status(resp.StatusCode))
//
// Los tokens nunca se loguean completos; usar TokenPrefix.
package logger
