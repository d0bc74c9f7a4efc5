// Package digilocker es el cliente del proveedor de identidad DigiLocker:
// token endpoint (authorization_code / refresh_token con PKCE), userinfo y
// la API de documentos emitidos.
package digilocker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTimeout acota las llamadas de token y JSON completas, y la espera de
// headers en la descarga de documentos.
const DefaultTimeout = 10 * time.Second

var (
	// ErrRejected: el token endpoint respondió 400/401 (code o refresh inválido).
	ErrRejected = errors.New("digilocker: token request rejected")
	// ErrTimeout: la llamada saliente superó el timeout.
	ErrTimeout = errors.New("digilocker: request timed out")
	// ErrNotFound: la API de recursos respondió 404.
	ErrNotFound = errors.New("digilocker: resource not found")
)

// UpstreamError es cualquier respuesta no-2xx (salvo 404) de la API de recursos
// o un fallo no clasificado del token endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("digilocker: upstream status %d", e.Status)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	APIBaseURL   string
	Timeout      time.Duration
	HTTPClient   *http.Client // opcional; si es nil se crea uno con ResponseHeaderTimeout
}

// Token es la respuesta del token endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	ExpiresIn    int64 // segundos
}

type Client struct {
	cfg   Config
	oauth *oauth2.Config
	http  *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		// Sin http.Client.Timeout: cortaría la lectura de documentos
		// largos. Las llamadas cortas llevan su propio deadline.
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.ResponseHeaderTimeout = cfg.Timeout
		hc = &http.Client{Transport: tr}
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http: hc,
	}
}

// ClientID expone el client id (deep link QR).
func (c *Client) ClientID() string { return c.cfg.ClientID }

// AuthorizeURL arma la URL de autorización con code_challenge S256 derivado
// del verifier.
func (c *Client) AuthorizeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// oauthCtx agrega el http client y el deadline de la llamada.
func (c *Client) oauthCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	return context.WithValue(ctx, oauth2.HTTPClient, c.http), cancel
}

// Exchange canjea un authorization code. redirectURI vacío usa el configurado.
func (c *Client) Exchange(ctx context.Context, code, verifier, redirectURI string) (*Token, error) {
	conf := c.oauth
	if redirectURI != "" && redirectURI != conf.RedirectURL {
		cp := *conf
		cp.RedirectURL = redirectURI
		conf = &cp
	}
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}
	octx, cancel := c.oauthCtx(ctx)
	defer cancel()
	tok, err := conf.Exchange(octx, code, opts...)
	if err != nil {
		return nil, classify(err)
	}
	return fromOAuth(tok), nil
}

// Refresh pide un access token nuevo. Si el proveedor no rota el refresh
// token, el devuelto es el mismo que se envió.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	octx, cancel := c.oauthCtx(ctx)
	defer cancel()
	src := c.oauth.TokenSource(octx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classify(err)
	}
	out := fromOAuth(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

func fromOAuth(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}
	if out.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		out.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
	}
	if idt, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = idt
	}
	return out
}

// classify traduce errores de x/oauth2 y de red a los sentinels del paquete.
func classify(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrRejected, oauthErrCode(re))
		}
		return &UpstreamError{Status: re.Response.StatusCode, Body: string(re.Body)}
	}
	return fmt.Errorf("digilocker: token request: %w", err)
}

func oauthErrCode(re *oauth2.RetrieveError) string {
	if re.ErrorCode != "" {
		return re.ErrorCode
	}
	return http.StatusText(re.Response.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
