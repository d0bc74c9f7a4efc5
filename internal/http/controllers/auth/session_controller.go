package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// SessionController maneja refresh, logout y la identidad de la sesión.
type SessionController struct {
	refresh svc.RefreshService
	logout  svc.LogoutService
	cookies *session.Writer
	reader  *session.Accessor
}

func NewSessionController(s svc.Services, cookies *session.Writer, reader *session.Accessor) *SessionController {
	return &SessionController{
		refresh: s.Refresh,
		logout:  s.Logout,
		cookies: cookies,
		reader:  reader,
	}
}

// Refresh maneja POST /auth/refresh
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SessionController.Refresh"))

	if !helpers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	helpers.NoStore(w)

	res := c.refresh.Refresh(ctx, c.reader.EncryptedRefreshToken(r))
	if !res.OK {
		if res.Credentials.Clear {
			c.cookies.Clear(w)
		}
		httperrors.WriteError(w, httperrors.ErrRefreshFailed)
		return
	}

	if err := c.cookies.Write(w, res.Credentials); err != nil {
		log.Error("could not set refreshed cookies", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrRefreshFailed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Access token refreshed successfully."})
}

// Logout maneja POST /auth/logout. Idempotente.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	helpers.NoStore(w)
	_ = c.cookies.Write(w, c.logout.Logout(r.Context()))
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully."})
}

// User maneja GET /auth/user (detrás del guard).
func (c *SessionController) User(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	identity := mw.GetIdentity(r.Context())
	if identity == nil {
		httperrors.WriteError(w, httperrors.ErrAuthenticationRequired)
		return
	}
	helpers.NoStore(w)
	w.Header().Add("Vary", "Cookie, Authorization")
	helpers.WriteJSON(w, http.StatusOK, identity)
}
