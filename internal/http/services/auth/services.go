// Package auth contiene los services del ciclo de vida de la sesión:
// login, callback, exchange-code, refresh, logout y el flujo QR.
package auth

import (
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
	"github.com/dropDatabas3/lockerbridge/internal/state"
)

// Deps contiene las dependencias para crear los services auth.
type Deps struct {
	Env            environment.Environment
	Store          *state.Store
	Cipher         *cipher.Cipher
	PublicURL      string // SERVER_URL, base del redirect del flujo QR
	QRAuthEndpoint string // base del deep link QR
	Now            func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Login    LoginService
	Callback CallbackService
	Exchange ExchangeService
	Refresh  RefreshService
	Logout   LogoutService
	QR       QRService
	Debug    DebugService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	return Services{
		Login:    NewLoginService(d),
		Callback: NewCallbackService(d),
		Exchange: NewExchangeService(d),
		Refresh:  NewRefreshService(d),
		Logout:   NewLogoutService(),
		QR:       NewQRService(d),
		Debug:    NewDebugService(d.Cipher),
	}
}
