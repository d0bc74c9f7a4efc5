package session

import "time"

// Credentials es lo que un service quiere dejar en el navegador.
// Con Clear=true el resto de los campos se ignora y las tres cookies se borran.
type Credentials struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string // en claro; Writer lo cifra
	Clear        bool
}

// NewCredentials arma credenciales a partir de la respuesta del token endpoint.
func NewCredentials(accessToken string, expiresIn int64, refreshToken string, now time.Time) Credentials {
	return Credentials{
		AccessToken:  accessToken,
		ExpiresAt:    now.Add(time.Duration(expiresIn) * time.Second),
		RefreshToken: refreshToken,
	}
}

// Cleared devuelve credenciales que borran la sesión.
func Cleared() Credentials { return Credentials{Clear: true} }

// IsZero reporta si no hay nada que escribir.
func (c Credentials) IsZero() bool {
	return !c.Clear && c.AccessToken == "" && c.RefreshToken == ""
}

// ExpiresIn son los segundos que le quedan al access token respecto de now.
func (c Credentials) ExpiresIn(now time.Time) int64 {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	secs := int64(c.ExpiresAt.Sub(now) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
