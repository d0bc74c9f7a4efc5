package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

const shutdownTimeout = 15 * time.Second

// sweeper lo implementa el store en memoria.
type sweeper interface{ Cleanup() }

// Run construye la app y sirve HTTP hasta que ctx se cancela. El sweep del
// store en memoria corre en el mismo errgroup.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.L().With(logger.Component("server"))

	built, err := BuildHandler(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := built.Cleanup(); err != nil {
			log.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           built.App.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return logger.ToContext(context.Background(), logger.L())
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("env", cfg.App.Env),
			logger.GuardMode(string(built.App.Env.GuardMode())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})

	if s, ok := built.KV.(sweeper); ok {
		g.Go(func() error {
			t := time.NewTicker(cfg.Store.CleanupInterval)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					s.Cleanup()
				}
			}
		})
	}

	return g.Wait()
}
