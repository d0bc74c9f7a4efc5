package auth

import (
	"context"

	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// LogoutService borra la sesión del navegador. Es idempotente.
type LogoutService interface {
	Logout(ctx context.Context) session.Credentials
}

type logoutService struct{}

func NewLogoutService() LogoutService { return logoutService{} }

func (logoutService) Logout(ctx context.Context) session.Credentials {
	logger.From(ctx).Debug("session cleared",
		logger.Layer("service"), logger.Component("auth.logout"), logger.Op("Logout"))
	return session.Cleared()
}
