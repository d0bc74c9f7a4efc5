package session

import (
	"net/http"
	"strings"
	"time"
)

// Names son los nombres de las tres cookies de sesión.
type Names struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    string
}

// DefaultNames devuelve dl_token / dl_rtoken / dl_expires_at.
func DefaultNames() Names {
	return Names{
		AccessToken:  "dl_token",
		RefreshToken: "dl_rtoken",
		ExpiresAt:    "dl_expires_at",
	}
}

func (n Names) withDefaults() Names {
	d := DefaultNames()
	if n.AccessToken == "" {
		n.AccessToken = d.AccessToken
	}
	if n.RefreshToken == "" {
		n.RefreshToken = d.RefreshToken
	}
	if n.ExpiresAt == "" {
		n.ExpiresAt = d.ExpiresAt
	}
	return n
}

func buildCookie(name, value, domain string, secure bool, ttl time.Duration, now time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if strings.TrimSpace(domain) != "" {
		ck.Domain = domain
	}
	if ttl > 0 {
		ck.Expires = now.Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func buildDeletionCookie(name, domain string, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(domain) != "" {
		ck.Domain = domain
	}
	return ck
}
