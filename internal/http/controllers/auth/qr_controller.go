package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/auth"
	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/auth"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/session"
)

// QRController maneja el login cross-device.
type QRController struct {
	qr      svc.QRService
	cookies *session.Writer
}

func NewQRController(s svc.Services, cookies *session.Writer) *QRController {
	return &QRController{qr: s.QR, cookies: cookies}
}

// Session maneja GET /auth/qr-session
func (c *QRController) Session(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res, err := c.qr.InitiateQR(r.Context())
	if err != nil {
		writeServiceError(w, r, "QRController.Session", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Status maneja GET /auth/qr-status/{sessionId}
func (c *QRController) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	helpers.NoStore(w)

	res := c.qr.QRStatus(ctx, chi.URLParam(r, "sessionId"))
	if err := c.cookies.Write(w, res.Credentials); err != nil {
		logger.From(ctx).Error("could not set qr session cookies",
			logger.Layer("controller"), logger.Op("QRController.Status"), logger.Err(err))
		helpers.WriteJSON(w, http.StatusInternalServerError, dto.QRStatusResponse{
			SessionID: res.Response.SessionID,
			Status:    dto.QRStatusError,
			Message:   "Could not establish session",
		})
		return
	}
	helpers.WriteJSON(w, res.HTTPStatus, res.Response)
}

// Callback maneja GET /auth/qr-callback?code=&state= (lo abre el móvil).
func (c *QRController) Callback(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	ack := c.qr.QRCallback(r.Context(), dto.QRCallbackRequest{Code: q.Get("code"), State: q.Get("state")})

	status := http.StatusOK
	if !ack.Success {
		status = http.StatusBadRequest
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, status, ack)
}
