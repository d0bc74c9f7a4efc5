// Package documents contiene los controllers del proxy de documentos.
package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/lockerbridge/internal/http/middlewares"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/documents"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

// DocumentsController expone perfil, documentos emitidos y contenido.
// Todas las rutas van detrás del guard; el access token sale del contexto.
type DocumentsController struct {
	service svc.Service
}

func NewDocumentsController(s svc.Service) *DocumentsController {
	return &DocumentsController{service: s}
}

// Files maneja GET /digilocker/files
func (c *DocumentsController) Files(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	files, err := c.service.IssuedFiles(r.Context(), mw.GetAccessToken(r.Context()))
	if err != nil {
		c.handleError(w, r, "DocumentsController.Files", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, files)
}

// Profile maneja GET /digilocker/profile
func (c *DocumentsController) Profile(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	p, err := c.service.Profile(r.Context(), mw.GetAccessToken(r.Context()))
	if err != nil {
		c.handleError(w, r, "DocumentsController.Profile", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, p)
}

// File maneja GET /digilocker/file?uri=
func (c *DocumentsController) File(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	uri := r.URL.Query().Get("uri")
	f, err := c.service.FileContent(ctx, mw.GetAccessToken(ctx), uri)
	if err != nil {
		c.handleError(w, r, "DocumentsController.File", err)
		return
	}
	defer f.Body.Close()

	h := w.Header()
	h.Set("Content-Type", f.ContentType)
	if f.ContentLength > 0 {
		h.Set("Content-Length", strconv.FormatInt(f.ContentLength, 10))
	}
	if name := path.Base(uri); name != "." && name != "/" {
		if cd := mime.FormatMediaType("inline", map[string]string{"filename": name}); cd != "" {
			h.Set("Content-Disposition", cd)
		}
	}
	h.Set("X-Content-Type-Options", "nosniff")
	helpers.NoStore(w)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f.Body); err != nil {
		// Headers ya enviados: solo queda loguear.
		logger.From(ctx).Warn("document stream interrupted",
			logger.Layer("controller"), logger.Op("DocumentsController.File"), logger.Err(err))
	}
}

func (c *DocumentsController) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var up *svc.UpstreamError
	switch {
	case errors.Is(err, svc.ErrNoAccessToken):
		httperrors.WriteError(w, httperrors.ErrAuthenticationRequired)
	case errors.Is(err, svc.ErrMissingURI):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("uri is required"))
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("document not found"))
	case errors.As(err, &up):
		httperrors.WriteError(w, httperrors.ErrUpstreamError)
	case errors.Is(err, digilocker.ErrTimeout):
		httperrors.WriteError(w, httperrors.ErrGatewayTimeout)
	default:
		logger.From(r.Context()).Error("documents request failed",
			logger.Layer("controller"), logger.Op(op), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
