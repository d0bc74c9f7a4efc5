package auth

import "github.com/dropDatabas3/lockerbridge/internal/session"

// RefreshResult es el resultado del refresh.
// OK=false con Credentials.Clear=true significa "borrar la sesión";
// OK=false con Credentials vacías significa "no tocar las cookies".
type RefreshResult struct {
	OK          bool
	Credentials session.Credentials
	AccessToken string // nuevo access token si OK
}
