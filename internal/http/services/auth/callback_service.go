package auth

import (
	"context"
	"net/url"
	"strings"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// DashboardPath es el destino por defecto tras un login sin frontend callback
// en el entorno mock y tras un login QR.
const DashboardPath = "/auth/files-dashboard"

// CallbackService completa el login: consume el state y canjea el code.
type CallbackService interface {
	Callback(ctx context.Context, in dto.CallbackRequest) (*dto.CallbackResult, error)
}

type callbackService struct {
	deps Deps
}

func NewCallbackService(deps Deps) CallbackService {
	return &callbackService{deps: deps}
}

func (s *callbackService) Callback(ctx context.Context, in dto.CallbackRequest) (*dto.CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Op("Callback"),
	)

	st, ok := s.deps.Store.ValidateState(ctx, strings.TrimSpace(in.State))
	if !ok {
		log.Warn("invalid or expired state")
		metrics.Login("invalid_state")
		return nil, ErrInvalidState
	}
	if strings.TrimSpace(in.Code) == "" {
		metrics.Login("missing_code")
		return nil, ErrMissingCode
	}
	if s.deps.Env.RequiresVerifier() && st.Verifier == "" {
		log.Error("state has no pkce verifier")
		metrics.Login("missing_verifier")
		return nil, ErrMissingVerifier
	}

	tok, err := s.deps.Env.ExchangeCode(ctx, in.Code, st.Verifier, "")
	if err != nil {
		log.Error("code exchange failed", logger.Upstream("provider"), logger.Err(err))
		metrics.Login("exchange_failed")
		return nil, exchangeFailure(err)
	}

	out := &dto.CallbackResult{
		Credentials: session.NewCredentials(tok.AccessToken, tok.ExpiresIn, tok.RefreshToken, s.deps.now()),
		Token:       tokenResponse(tok),
	}

	switch {
	case st.CallbackURL != "":
		out.RedirectURL = frontendRedirect(st.CallbackURL, in.State, tok.IDToken)
	case !s.deps.Env.RequiresVerifier():
		out.RedirectURL = DashboardPath
	}

	metrics.Login("success")
	log.Info("login completed", logger.TokenPrefix(tok.AccessToken), logger.Bool("redirect", out.RedirectURL != ""))
	return out, nil
}

func tokenResponse(tok *digilocker.Token) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
		RefreshToken: tok.RefreshToken,
		IDToken:      tok.IDToken,
	}
}

// frontendRedirect agrega state e id_token (si hay) a la URL del frontend.
func frontendRedirect(callback, state, idToken string) string {
	u, err := url.Parse(callback)
	if err != nil {
		return callback
	}
	q := u.Query()
	q.Set("state", state)
	if idToken != "" {
		q.Set("id_token", idToken)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
