// Package environment elige, una sola vez en el arranque, cómo se comporta
// el servicio frente al proveedor de identidad: real (DigiLocker) o mock
// (tokens propios y datos enlatados).
package environment

import (
	"context"

	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

// GuardMode define cómo el guard valida un access token.
type GuardMode string

const (
	// SelfIssued: JWT HS256 firmado con JWT_SECRET, sin refresh.
	SelfIssued GuardMode = "self_issued"
	// Federated: token opaco del proveedor, expiración por cookie y refresh.
	Federated GuardMode = "federated"
)

// Documents es la API de recursos del proveedor.
type Documents interface {
	UserInfo(ctx context.Context, accessToken string) (digilocker.Profile, error)
	IssuedFiles(ctx context.Context, accessToken string) (*digilocker.IssuedFiles, error)
	FileContent(ctx context.Context, accessToken, uri string) (*digilocker.File, error)
}

// Environment encapsula todo lo que difiere entre mock y proveedor real.
type Environment interface {
	Name() string
	GuardMode() GuardMode
	SecureCookies() bool
	// RequiresVerifier: si el callback exige un PKCE verifier en el state.
	RequiresVerifier() bool
	ClientID() string
	// AuthorizeURL devuelve a dónde redirigir el login.
	AuthorizeURL(state, verifier string) string
	ExchangeCode(ctx context.Context, code, verifier, redirectURI string) (*digilocker.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*digilocker.Token, error)
	UserInfo(ctx context.Context, accessToken string) (digilocker.Profile, error)
	Documents() Documents
}

// FromConfig selecciona el entorno según la configuración validada.
func FromConfig(cfg *config.Config, issuer *jwt.Issuer) Environment {
	if cfg.IsMock() {
		return NewMock(issuer)
	}
	client := digilocker.New(digilocker.Config{
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		RedirectURI:  cfg.Provider.RedirectURI,
		AuthURL:      cfg.Provider.AuthURL,
		TokenURL:     cfg.Provider.TokenURL,
		UserInfoURL:  cfg.Provider.UserInfoURL,
		APIBaseURL:   cfg.Provider.APIBaseURL,
		Timeout:      cfg.Provider.Timeout,
	})
	return NewReal(cfg.App.Env, cfg.IsProduction(), client)
}
