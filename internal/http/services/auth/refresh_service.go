package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// RefreshService rota el access token a partir del refresh token cifrado de
// la cookie. Nunca retorna error: el resultado indica qué hacer con las
// cookies.
type RefreshService interface {
	Refresh(ctx context.Context, encrypted string) dto.RefreshResult
}

type refreshService struct {
	deps Deps
}

func NewRefreshService(deps Deps) RefreshService {
	return &refreshService{deps: deps}
}

func (s *refreshService) Refresh(ctx context.Context, encrypted string) dto.RefreshResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.refresh"),
		logger.Op("Refresh"),
	)

	encrypted = strings.TrimSpace(encrypted)
	if encrypted == "" {
		metrics.Refresh("empty")
		return dto.RefreshResult{}
	}

	if s.deps.Cipher == nil {
		log.Error("no cipher configured, clearing session")
		metrics.Refresh("decrypt_failed")
		return dto.RefreshResult{Credentials: session.Cleared()}
	}
	refreshToken, err := s.deps.Cipher.Decrypt(encrypted)
	if err != nil || refreshToken == "" {
		log.Warn("refresh cookie could not be decrypted, clearing session", logger.Err(err))
		metrics.Refresh("decrypt_failed")
		return dto.RefreshResult{Credentials: session.Cleared()}
	}

	tok, err := s.deps.Env.RefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, digilocker.ErrRejected) {
			log.Info("refresh token rejected by provider", logger.Upstream("provider"), logger.Err(err))
			metrics.Refresh("rejected")
			return dto.RefreshResult{Credentials: session.Cleared()}
		}
		// Fallo transitorio: las cookies quedan como están.
		log.Warn("refresh failed", logger.Upstream("provider"), logger.Err(err))
		metrics.Refresh("transient")
		return dto.RefreshResult{}
	}

	rotated := tok.RefreshToken
	if rotated == "" {
		rotated = refreshToken
	}

	metrics.Refresh("success")
	log.Debug("access token refreshed", logger.TokenPrefix(tok.AccessToken))
	return dto.RefreshResult{
		OK:          true,
		Credentials: session.NewCredentials(tok.AccessToken, tok.ExpiresIn, rotated, s.deps.now()),
		AccessToken: tok.AccessToken,
	}
}
