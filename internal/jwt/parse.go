package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrExpiredToken  = errors.New("jwt: token expired")
	ErrInvalidIssuer = errors.New("jwt: invalid issuer")
)

// Parse valida firma HS256, exp/nbf con 30s de tolerancia y, si el issuer
// tiene Iss, el claim iss. Devuelve los claims como map.
func (i *Issuer) Parse(token string) (map[string]any, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(30 * time.Second),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}

	tok, err := jwtv5.Parse(token, i.Keyfunc(), opts...)
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case err != nil || !tok.Valid:
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}
