package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/security/pkce"
)

// LoginService inicia el authorization code flow.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error)
}

type loginService struct {
	deps Deps
}

func NewLoginService(deps Deps) LoginService {
	return &loginService{deps: deps}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	callback := strings.TrimSpace(in.FrontendCallback)
	if callback != "" && !isHTTPURL(callback) {
		return nil, ErrInvalidCallbackURL
	}

	// El entorno mock no usa PKCE: el state se guarda sin verifier.
	var verifier string
	if s.deps.Env.RequiresVerifier() {
		v, err := pkce.NewVerifier()
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		verifier = v
	}

	id, err := s.deps.Store.CreateState(ctx, verifier, callback)
	if err != nil {
		log.Error("could not persist authorization state", logger.Err(err))
		metrics.Login("state_error")
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}

	log.Debug("authorization state created",
		logger.String("env", s.deps.Env.Name()),
		logger.Bool("frontend_callback", callback != ""),
	)
	return &dto.LoginResult{RedirectURL: s.deps.Env.AuthorizeURL(id, verifier)}, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
