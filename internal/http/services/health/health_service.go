// Package health contiene el service para health checks.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/lockerbridge/internal/cache"
	"github.com/dropDatabas3/lockerbridge/internal/environment"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/health"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Live(ctx context.Context) dto.LivenessResponse
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Store   cache.Client // backend del state store (crítico)
	Cipher  *cipher.Cipher
	Issuer  *jwt.Issuer // solo en Mode A
	Env     environment.Environment
	Version string
	Now     func() time.Time
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &healthService{deps: deps}
}

const (
	componentHealth = "health"
	pingTimeout     = 2 * time.Second
	cipherSample    = "health-sample"
)

func (s *healthService) Live(context.Context) dto.LivenessResponse {
	return dto.LivenessResponse{Status: "ok", Timestamp: s.deps.Now().UTC()}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Components: make(map[string]dto.HealthStatus),
		Version:    s.deps.Version,
		Timestamp:  s.deps.Now().UTC(),
	}
	if s.deps.Env != nil {
		response.Environment = s.deps.Env.Name()
		response.GuardMode = string(s.deps.Env.GuardMode())
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) State store (crítico)
	if s.deps.Store != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.deps.Store.Ping(pctx)
		cancel()
		if err != nil {
			response.Components["store"] = dto.HealthStatus{Status: "error", Message: "unavailable"}
			hasCriticalErrors = true
			log.Error("state store unavailable", logger.Err(err))
		} else {
			status := dto.HealthStatus{Status: "ok"}
			if st, err := s.deps.Store.Stats(ctx); err == nil {
				status.Message = fmt.Sprintf("driver=%s keys=%d", st.Driver, st.Keys)
			}
			response.Components["store"] = status
		}
	} else {
		response.Components["store"] = dto.HealthStatus{Status: "error", Message: "store not initialized"}
		hasCriticalErrors = true
	}

	// 2) Cipher (crítico): sin clave no hay cookies de refresh
	if err := s.checkCipher(); err != nil {
		response.Components["cipher"] = dto.HealthStatus{Status: "error", Message: err.Error()}
		hasCriticalErrors = true
		log.Error("cipher check failed", logger.Err(err))
	} else {
		response.Components["cipher"] = dto.HealthStatus{Status: "ok"}
	}

	// 3) Firma propia (solo Mode A)
	if s.deps.Issuer != nil {
		if err := s.checkIssuer(); err != nil {
			response.Components["jwt"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			hasErrors = true
			log.Error("jwt self-check failed", logger.Err(err))
		} else {
			response.Components["jwt"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["jwt"] = dto.HealthStatus{Status: "disabled"}
	}

	if hasCriticalErrors {
		response.Status = "unavailable"
	} else if hasErrors {
		response.Status = "degraded"
	} else {
		response.Status = "ready"
	}
	return response
}

func (s *healthService) checkCipher() error {
	if s.deps.Cipher == nil {
		return errors.New("cipher not initialized")
	}
	enc, err := s.deps.Cipher.Encrypt(cipherSample)
	if err != nil {
		return errors.New("encrypt failed")
	}
	dec, err := s.deps.Cipher.Decrypt(enc)
	if err != nil || dec != cipherSample {
		return errors.New("decrypt failed")
	}
	return nil
}

func (s *healthService) checkIssuer() error {
	signed, _, err := s.deps.Issuer.IssueAccess(map[string]any{"sub": "selfcheck"})
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	if _, err := s.deps.Issuer.Parse(signed); err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	return nil
}
