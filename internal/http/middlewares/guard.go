package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dropDatabas3/lockerbridge/internal/environment"
	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/metrics"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// =================================================================================
// DENIAL REASONS
// =================================================================================

// Motivos de rechazo del guard. Solo se loguean y se cuentan: al cliente
// siempre le llega el mismo 401.
var (
	ErrNoAccessToken       = errors.New("no access token")
	ErrInvalidToken        = errors.New("invalid access token")
	ErrNoRefreshToken      = errors.New("access token expired and no refresh token")
	ErrRefreshFailed       = errors.New("refresh failed")
	ErrIdentityFetchFailed = errors.New("identity fetch failed")
	ErrSessionExpired      = errors.New("session expired")
)

func denialReason(err error) string {
	switch {
	case errors.Is(err, ErrNoAccessToken):
		return "no_access_token"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrNoRefreshToken):
		return "no_refresh_token"
	case errors.Is(err, ErrRefreshFailed):
		return "refresh_failed"
	case errors.Is(err, ErrIdentityFetchFailed):
		return "identity_fetch_failed"
	default:
		return "session_expired"
	}
}

// =================================================================================
// GUARD
// =================================================================================

// Refresher rota el access token a partir del refresh token cifrado.
type Refresher interface {
	Refresh(ctx context.Context, encrypted string) dto.RefreshResult
}

// IdentityFetcher resuelve el perfil del usuario con un access token del
// proveedor.
type IdentityFetcher interface {
	Profile(ctx context.Context, accessToken string) (digilocker.Profile, error)
}

// GuardDeps contiene las dependencias del guard. Issuer solo se usa en
// Mode A; Refresh, Writer e Identity solo en Mode B.
type GuardDeps struct {
	Mode     environment.GuardMode
	Issuer   *jwt.Issuer
	Accessor *session.Accessor
	Writer   *session.Writer
	Refresh  Refresher
	Identity IdentityFetcher
}

// Guard decide, por request, si hay una sesión válida.
type Guard struct {
	d GuardDeps
}

func NewGuard(d GuardDeps) *Guard {
	return &Guard{d: d}
}

// RequireSession exige una sesión con identidad resuelta.
func (g *Guard) RequireSession() Middleware {
	return g.middleware(true)
}

// RequireCredential exige alguna credencial; la identidad se adjunta si se
// puede obtener pero su falta no rechaza el request.
func (g *Guard) RequireCredential() Middleware {
	return g.middleware(false)
}

func (g *Guard) middleware(requireIdentity bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := g.authorize(w, r, requireIdentity)
			if err != nil {
				reason := denialReason(err)
				metrics.GuardDenied(reason)
				logger.From(r.Context()).Info("access denied",
					logger.Layer("middleware"),
					logger.Component("guard"),
					logger.GuardMode(string(g.d.Mode)),
					logger.Reason(reason),
					logger.Err(err),
				)
				w.Header().Set("Cache-Control", "no-store")
				httperrors.WriteError(w, httperrors.ErrAuthenticationRequired)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authorize nunca deja escapar un panic: cualquier fallo inesperado es
// ErrSessionExpired.
func (g *Guard) authorize(w http.ResponseWriter, r *http.Request, requireIdentity bool) (ctx context.Context, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.From(r.Context()).Error("guard panic", logger.Component("guard"), logger.Any("panic", rec))
			ctx, err = nil, fmt.Errorf("%w: %v", ErrSessionExpired, rec)
		}
	}()

	if g.d.Mode == environment.SelfIssued {
		return g.selfIssued(r)
	}
	return g.federated(w, r, requireIdentity)
}

// selfIssued: Mode A. El token (Bearer o cookie) es un JWT propio; las
// claims son la identidad. Sin refresh.
func (g *Guard) selfIssued(r *http.Request) (context.Context, error) {
	token := bearerToken(r)
	if token == "" && g.d.Accessor != nil {
		token = g.d.Accessor.AccessToken(r)
	}
	if token == "" {
		return nil, ErrNoAccessToken
	}
	if g.d.Issuer == nil {
		return nil, fmt.Errorf("%w: no issuer configured", ErrSessionExpired)
	}
	claims, err := g.d.Issuer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	ctx := WithIdentity(r.Context(), claims)
	return WithAccessToken(ctx, token), nil
}

// federated: Mode B. Token opaco; la expiración sale de la cookie y un token
// vencido se rota con el refresh token antes de resolver la identidad.
func (g *Guard) federated(w http.ResponseWriter, r *http.Request, requireIdentity bool) (context.Context, error) {
	ctx := r.Context()
	acc := g.d.Accessor

	token := acc.AccessToken(r)
	if token == "" {
		return nil, ErrNoAccessToken
	}

	if acc.IsExpired(r) {
		enc := acc.EncryptedRefreshToken(r)
		if enc == "" {
			return nil, ErrNoRefreshToken
		}
		res := g.d.Refresh.Refresh(ctx, enc)
		if !res.OK {
			if res.Credentials.Clear {
				g.d.Writer.Clear(w)
			}
			return nil, ErrRefreshFailed
		}
		if err := g.d.Writer.Write(w, res.Credentials); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		token = res.AccessToken
	}

	ctx = WithAccessToken(ctx, token)
	identity, err := g.d.Identity.Profile(ctx, token)
	if err != nil {
		if requireIdentity {
			return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
		}
		logger.From(ctx).Debug("identity unavailable, continuing with credential only",
			logger.Component("guard"), logger.Err(err))
		return ctx, nil
	}
	return WithIdentity(ctx, identity), nil
}

func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}
