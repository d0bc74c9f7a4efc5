// Package jwt emite y valida los access tokens propios (HS256).
//
// Se usan en el entorno mock, donde no hay proveedor de identidad, y en el
// guard de modo "self_issued".
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL es la vida de un access token propio.
const DefaultAccessTTL = time.Hour

var ErrNoSecret = errors.New("jwt: signing secret not configured")

// Issuer firma tokens con un secreto compartido.
type Issuer struct {
	secret    []byte
	Iss       string        // "iss", opcional
	AccessTTL time.Duration // TTL por defecto (1h)
	now       func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret:    []byte(secret),
		AccessTTL: DefaultAccessTTL,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Keyfunc devuelve el secreto para jwtv5.Parse.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(*jwtv5.Token) (any, error) {
		if len(i.secret) == 0 {
			return nil, ErrNoSecret
		}
		return i.secret, nil
	}
}

// IssueAccess emite un access token con los claims dados más iat/exp.
func (i *Issuer) IssueAccess(claims map[string]any) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	now := i.now().UTC()
	exp := now.Add(i.AccessTTL)

	mc := jwtv5.MapClaims{
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	if i.Iss != "" {
		mc["iss"] = i.Iss
	}
	for k, v := range claims {
		mc[k] = v
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mc)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
