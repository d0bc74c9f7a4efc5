package environment

import (
	"context"

	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

// Real delega todo en el cliente DigiLocker.
type Real struct {
	name   string
	secure bool
	client *digilocker.Client
}

func NewReal(name string, secureCookies bool, client *digilocker.Client) *Real {
	return &Real{name: name, secure: secureCookies, client: client}
}

func (r *Real) Name() string           { return r.name }
func (r *Real) GuardMode() GuardMode   { return Federated }
func (r *Real) SecureCookies() bool    { return r.secure }
func (r *Real) RequiresVerifier() bool { return true }
func (r *Real) ClientID() string       { return r.client.ClientID() }
func (r *Real) Documents() Documents   { return r.client }

func (r *Real) AuthorizeURL(state, verifier string) string {
	return r.client.AuthorizeURL(state, verifier)
}

func (r *Real) ExchangeCode(ctx context.Context, code, verifier, redirectURI string) (*digilocker.Token, error) {
	return r.client.Exchange(ctx, code, verifier, redirectURI)
}

func (r *Real) RefreshToken(ctx context.Context, refreshToken string) (*digilocker.Token, error) {
	return r.client.Refresh(ctx, refreshToken)
}

func (r *Real) UserInfo(ctx context.Context, accessToken string) (digilocker.Profile, error) {
	return r.client.UserInfo(ctx, accessToken)
}
