package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// LoginController maneja el authorization code flow del navegador y el
// canje para SPAs.
type LoginController struct {
	login    svc.LoginService
	callback svc.CallbackService
	exchange svc.ExchangeService
	cookies  *session.Writer
}

func NewLoginController(s svc.Services, cookies *session.Writer) *LoginController {
	return &LoginController{
		login:    s.Login,
		callback: s.Callback,
		exchange: s.Exchange,
		cookies:  cookies,
	}
}

// Login maneja GET /auth/login[?frontend_callback=URL]
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	res, err := c.login.Login(r.Context(), dto.LoginRequest{
		FrontendCallback: r.URL.Query().Get("frontend_callback"),
	})
	if err != nil {
		writeServiceError(w, r, "LoginController.Login", err)
		return
	}

	helpers.NoStore(w)
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// Callback maneja GET /auth/callback?code=&state=
func (c *LoginController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Callback"))

	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		// El proveedor canceló; el state igual se consume para no dejarlo vivo.
		log.Info("provider returned error", logger.String("error", e))
	}

	res, err := c.callback.Callback(ctx, dto.CallbackRequest{Code: q.Get("code"), State: q.Get("state")})
	if err != nil {
		writeServiceError(w, r, "LoginController.Callback", err)
		return
	}

	if err := c.cookies.Write(w, res.Credentials); err != nil {
		log.Error("could not set session cookies", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.NoStore(w)
	if res.RedirectURL != "" {
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CallbackResponse{
		Message: "Login successful, cookies set.",
		Token:   res.Token,
	})
}

// ExchangeCode maneja POST /auth/exchange-code {code, state}
func (c *LoginController) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodPost) {
		return
	}

	var req dto.ExchangeCodeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.exchange.ExchangeCode(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "LoginController.ExchangeCode", err)
		return
	}

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}
