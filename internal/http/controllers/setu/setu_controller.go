// Package setu contiene los controllers del tracker de consent requests.
package setu

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/lockerbridge/internal/http/dto/setu"
	httperrors "github.com/dropDatabas3/lockerbridge/internal/http/errors"
	"github.com/dropDatabas3/lockerbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/lockerbridge/internal/http/services/setu"
	"github.com/dropDatabas3/lockerbridge/internal/observability/logger"
)

type SetuController struct {
	service svc.Service
}

func NewSetuController(s svc.Service) *SetuController {
	return &SetuController{service: s}
}

// Create maneja POST /apisetu/digilocker {redirectUrl}
func (c *SetuController) Create(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	res, err := c.service.Create(r.Context(), req)
	if err != nil {
		c.handleError(w, r, "SetuController.Create", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Status maneja GET /apisetu/digilocker/{id}/status
func (c *SetuController) Status(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res, err := c.service.Status(r.Context(), requestID(r))
	if err != nil {
		c.handleError(w, r, "SetuController.Status", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Revoke maneja GET /apisetu/digilocker/{id}/revoke
func (c *SetuController) Revoke(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res, err := c.service.Revoke(r.Context(), requestID(r))
	if err != nil {
		c.handleError(w, r, "SetuController.Revoke", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Documents maneja GET /apisetu/digilocker/documents
func (c *SetuController) Documents(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res, err := c.service.Documents(r.Context())
	if err != nil {
		c.handleError(w, r, "SetuController.Documents", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// FetchDocument maneja POST /apisetu/digilocker/{id}/document
func (c *SetuController) FetchDocument(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodPost) {
		return
	}
	var req dto.FetchDocumentRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	res, err := c.service.FetchDocument(r.Context(), requestID(r), req)
	if err != nil {
		c.handleError(w, r, "SetuController.FetchDocument", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Aadhaar maneja GET /apisetu/digilocker/{id}/aadhaar
func (c *SetuController) Aadhaar(w http.ResponseWriter, r *http.Request) {
	if !helpers.AllowMethods(w, r, http.MethodGet) {
		return
	}
	res, err := c.service.Aadhaar(r.Context(), requestID(r))
	if err != nil {
		c.handleError(w, r, "SetuController.Aadhaar", err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// requestID devuelve el {id} decodificado: chi rutea sobre el path escapado
// cuando existe.
func requestID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func (c *SetuController) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter)
	case errors.Is(err, svc.ErrUpstream), errors.Is(err, svc.ErrNotConfigured):
		logger.From(r.Context()).Warn("api setu request failed",
			logger.Layer("controller"), logger.Op(op), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrUpstreamRequestFailed)
	default:
		logger.From(r.Context()).Error("api setu request failed",
			logger.Layer("controller"), logger.Op(op), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrUpstreamRequestFailed)
	}
}
