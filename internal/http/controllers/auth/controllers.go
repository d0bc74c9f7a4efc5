// Package auth contiene los controllers de autenticación y sesión.
package auth

import (
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login   *LoginController
	Session *SessionController
	QR      *QRController
	Debug   *DebugController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, cookies *session.Writer, reader *session.Accessor) *Controllers {
	return &Controllers{
		Login:   NewLoginController(s, cookies),
		Session: NewSessionController(s, cookies, reader),
		QR:      NewQRController(s, cookies),
		Debug:   NewDebugController(s),
	}
}
