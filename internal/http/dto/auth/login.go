// Package auth contiene DTOs para endpoints de autenticación.
package auth

import "github.com/dropDatabas3/lockerbridge/internal/session"

// LoginRequest: GET /auth/login?frontend_callback=...
type LoginRequest struct {
	FrontendCallback string
}

// LoginResult es a dónde redirigir el navegador.
type LoginResult struct {
	RedirectURL string
}

// CallbackRequest: GET /auth/callback?code=&state=
type CallbackRequest struct {
	Code  string
	State string
}

// TokenResponse es la respuesta del token endpoint tal como se devuelve al
// cliente en el callback sin frontend_callback.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// CallbackResult es el resultado interno del callback.
// Con RedirectURL != "" el controller redirige; si no, responde JSON.
type CallbackResult struct {
	Credentials session.Credentials
	RedirectURL string
	Token       TokenResponse
}

// CallbackResponse es el body JSON del callback sin redirect.
type CallbackResponse struct {
	Message string        `json:"message"`
	Token   TokenResponse `json:"token"`
}

// MessageResponse es un body {message}.
type MessageResponse struct {
	Message string `json:"message"`
}
