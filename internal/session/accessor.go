package session

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

// Accessor lee las cookies de sesión de un request. Nunca escribe.
type Accessor struct {
	names  Names
	cipher *cipher.Cipher
	now    func() time.Time
}

// NewAccessor crea un accessor. c puede ser nil; en ese caso RefreshToken
// devuelve siempre "" y lo loguea como error.
func NewAccessor(names Names, c *cipher.Cipher) *Accessor {
	return &Accessor{names: names.withDefaults(), cipher: c, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (a *Accessor) WithClock(now func() time.Time) *Accessor {
	cp := *a
	cp.now = now
	return &cp
}

// Names expone los nombres de cookie configurados.
func (a *Accessor) Names() Names { return a.names }

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (a *Accessor) AccessToken(r *http.Request) string {
	return cookieValue(r, a.names.AccessToken)
}

func (a *Accessor) EncryptedRefreshToken(r *http.Request) string {
	return cookieValue(r, a.names.RefreshToken)
}

// RefreshToken devuelve el refresh token descifrado o "" si no hay cookie,
// no hay clave o el descifrado falla.
func (a *Accessor) RefreshToken(r *http.Request) string {
	enc := a.EncryptedRefreshToken(r)
	if enc == "" {
		return ""
	}
	log := logger.From(r.Context()).With(logger.Component("session.accessor"), logger.Op("RefreshToken"))
	if a.cipher == nil {
		log.Error("encryption key not configured, cannot read refresh token")
		return ""
	}
	plain, err := a.cipher.Decrypt(enc)
	if err != nil {
		log.Warn("refresh token cookie could not be decrypted", logger.Err(err))
		return ""
	}
	return plain
}

// Expiry devuelve dl_expires_at en epoch ms.
func (a *Accessor) Expiry(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(cookieValue(r, a.names.ExpiresAt))
	if raw == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// IsExpired es true si no hay expiración o ya pasó.
func (a *Accessor) IsExpired(r *http.Request) bool {
	ms, ok := a.Expiry(r)
	if !ok {
		return true
	}
	return ms <= a.now().UnixMilli()
}

// SecondsLeft = max(0, floor((expiry-now)/1000)).
func (a *Accessor) SecondsLeft(r *http.Request) int64 {
	ms, ok := a.Expiry(r)
	if !ok {
		return 0
	}
	left := ms - a.now().UnixMilli()
	if left <= 0 {
		return 0
	}
	return left / 1000
}
