package auth

import "github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"

// ExchangeCodeRequest: POST /auth/exchange-code
type ExchangeCodeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// ExchangeCodeResponse se devuelve al SPA; no se setean cookies.
type ExchangeCodeResponse struct {
	AccessToken  string             `json:"accessToken"`
	ExpiresIn    int64              `json:"expiresIn"`
	RefreshToken string             `json:"refreshToken,omitempty"`
	UserInfo     digilocker.Profile `json:"userInfo"`
	Message      string             `json:"message"`
}
