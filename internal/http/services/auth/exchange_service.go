package auth

import (
	"context"
	"fmt"
	"strings"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

// ExchangeService canjea un code para un SPA: devuelve tokens y perfil en el
// body y no toca cookies.
type ExchangeService interface {
	ExchangeCode(ctx context.Context, in dto.ExchangeCodeRequest) (*dto.ExchangeCodeResponse, error)
}

type exchangeService struct {
	deps Deps
}

func NewExchangeService(deps Deps) ExchangeService {
	return &exchangeService{deps: deps}
}

func (s *exchangeService) ExchangeCode(ctx context.Context, in dto.ExchangeCodeRequest) (*dto.ExchangeCodeResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.exchange"),
		logger.Op("ExchangeCode"),
	)

	in.Code = strings.TrimSpace(in.Code)
	in.State = strings.TrimSpace(in.State)
	if in.Code == "" {
		return nil, ErrMissingCode
	}
	if in.State == "" {
		return nil, ErrInvalidState
	}

	st, ok := s.deps.Store.ValidateState(ctx, in.State)
	if !ok {
		log.Warn("invalid or expired state")
		return nil, ErrInvalidState
	}
	if s.deps.Env.RequiresVerifier() && st.Verifier == "" {
		return nil, ErrMissingVerifier
	}

	tok, err := s.deps.Env.ExchangeCode(ctx, in.Code, st.Verifier, "")
	if err != nil {
		log.Error("code exchange failed", logger.Upstream("provider"), logger.Err(err))
		return nil, exchangeFailure(err)
	}

	profile, err := s.deps.Env.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		log.Error("userinfo after exchange failed", logger.Upstream("provider"), logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}

	return &dto.ExchangeCodeResponse{
		AccessToken:  tok.AccessToken,
		ExpiresIn:    tok.ExpiresIn,
		RefreshToken: tok.RefreshToken,
		UserInfo:     profile,
		Message:      "Successfully exchanged code for token.",
	}, nil
}
